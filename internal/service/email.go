package service

import (
	"context"
	"fmt"
	"strings"

	"safesite-backend/internal/domain"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) SendDecisionNotification(ctx context.Context, email, name, decision, note string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("SafeSite Access Request %s", decision))

	body := fmt.Sprintf("Hello %s,\n\nYour SafeSite access request has been %s.", name, strings.ToLower(decision))
	if note != "" {
		body += "\n\n" + note
	}
	body += "\n\nBest regards,\nThe SafeSite Team"
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send decision notification: %w", err)
	}

	return nil
}

func (s *emailService) SendPendingReminder(ctx context.Context, adminEmail string, requests []domain.RegistrationRequest) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", adminEmail)
	m.SetHeader("Subject", fmt.Sprintf("%d registration request(s) awaiting review", len(requests)))

	var b strings.Builder
	b.WriteString("Hello,\n\nThe following registration requests are awaiting your review:\n\n")
	for _, r := range requests {
		fmt.Fprintf(&b, "- %s <%s> (%s), requested %s\n",
			r.FullName, r.Email, r.JobTitle, r.RequestedOn.Format("2006-01-02 15:04 UTC"))
	}
	b.WriteString("\nBest regards,\nThe SafeSite Team")
	m.SetBody("text/plain", b.String())

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send pending reminder: %w", err)
	}

	return nil
}
