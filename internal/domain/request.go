package domain

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	// RequestStatusNone means no record exists for the email in any collection.
	RequestStatusNone     RequestStatus = "NONE"
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusDenied   RequestStatus = "DENIED"
)

// RegistrationRequest is a submitted access request awaiting or past an
// administrator decision. Email is stored normalized and is the identity key.
type RegistrationRequest struct {
	ID          string        `json:"id"`
	FullName    string        `json:"full_name"`
	Email       string        `json:"email"`
	JobTitle    string        `json:"job_title"`
	RequestedOn time.Time     `json:"requested_on"`
	DeniedOn    *time.Time    `json:"denied_on,omitempty"`
	Status      RequestStatus `json:"status"`
}

// NormalizeEmail lower-cases and trims an email address. Two addresses that
// normalize to the same string are the same identity everywhere in the
// workflow.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
