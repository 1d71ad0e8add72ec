package service

import (
	"context"
	"fmt"
	"strings"

	"safesite-backend/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridEmailService struct {
	apiKey string
	from   string
}

func NewSendGridEmailService(apiKey, from string) EmailService {
	return &sendGridEmailService{
		apiKey: apiKey,
		from:   from,
	}
}

func (s *sendGridEmailService) SendDecisionNotification(ctx context.Context, email, name, decision, note string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour SafeSite access request has been %s.", name, strings.ToLower(decision))
	if note != "" {
		body += "\n\n" + note
	}
	body += "\n\nBest regards,\nThe SafeSite Team"

	subject := fmt.Sprintf("SafeSite Access Request %s", decision)
	return s.send(email, name, subject, body)
}

func (s *sendGridEmailService) SendPendingReminder(ctx context.Context, adminEmail string, requests []domain.RegistrationRequest) error {
	var b strings.Builder
	b.WriteString("Hello,\n\nThe following registration requests are awaiting your review:\n\n")
	for _, r := range requests {
		fmt.Fprintf(&b, "- %s <%s> (%s), requested %s\n",
			r.FullName, r.Email, r.JobTitle, r.RequestedOn.Format("2006-01-02 15:04 UTC"))
	}
	b.WriteString("\nBest regards,\nThe SafeSite Team")

	subject := fmt.Sprintf("%d registration request(s) awaiting review", len(requests))
	return s.send(adminEmail, "", subject, b.String())
}

func (s *sendGridEmailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail("SafeSite", s.from)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}
