package service

import (
	"context"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/identity"
	"safesite-backend/internal/roles"
)

// Outcome is the workflow signal returned for a registration submission.
// Expected conditions are outcomes, never errors; only faults (store or
// programming errors) propagate as errors past the service boundary.
type Outcome string

const (
	// OutcomeAcceptedImmediate: email pre-approved, account created, caller
	// may proceed to sign-in.
	OutcomeAcceptedImmediate Outcome = "ACCEPTED_IMMEDIATE"
	// OutcomeAcceptedPending: account created and request recorded, caller
	// waits for a decision.
	OutcomeAcceptedPending        Outcome = "ACCEPTED_PENDING"
	OutcomeRejectedAlreadyPending Outcome = "REJECTED_ALREADY_PENDING"
	OutcomeRejectedAlreadyDenied  Outcome = "REJECTED_ALREADY_DENIED"
	OutcomeRejectedEmailInUse     Outcome = "REJECTED_EMAIL_IN_USE"
	OutcomeRejectedWeakCredential Outcome = "REJECTED_WEAK_CREDENTIAL"
	OutcomeRejectedUnexpected     Outcome = "REJECTED_UNEXPECTED"
)

// SubmitRequest is the typed contract between the form layer and the
// workflow. Field-level validation happens before Submit is invoked.
type SubmitRequest struct {
	FullName string
	Email    string
	JobTitle string
	Password string
}

type SubmitResult struct {
	Outcome Outcome
	Message string
	Request *domain.RegistrationRequest // set for accepted outcomes
}

type RegistrationService interface {
	Submit(ctx context.Context, sub SubmitRequest) (*SubmitResult, error)
	Status(ctx context.Context, email string) (domain.RequestStatus, error)
}

type AdminService interface {
	// Approve and Deny are idempotent: acting on an email with no pending
	// request is a no-op, not an error.
	Approve(ctx context.Context, email string) error
	Deny(ctx context.Context, email string) error
	ListPending(ctx context.Context) ([]domain.RegistrationRequest, error)
	ListApproved(ctx context.Context) ([]string, error)
	ListDenied(ctx context.Context) ([]domain.RegistrationRequest, error)
}

type SessionService interface {
	Login(ctx context.Context, email, password string) (*identity.Session, roles.Role, error)
	Logout(ctx context.Context, session *identity.Session) error
	Refresh(ctx context.Context, refreshToken string) (*identity.Session, error)
}

type EmailService interface {
	SendDecisionNotification(ctx context.Context, email, name, decision, note string) error
	SendPendingReminder(ctx context.Context, adminEmail string, requests []domain.RegistrationRequest) error
}
