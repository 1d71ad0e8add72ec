package repository

import (
	"context"

	"safesite-backend/internal/domain"
)

// RequestStore holds the three authorization collections: pending requests,
// denied requests, and the approved-email set. The normalized email is the
// identity key in every collection. Cross-collection uniqueness is the
// coordinator's responsibility, evaluated before mutation; the store only
// guarantees each individual operation's contract.
type RequestStore interface {
	// AddPending appends a request to the pending collection.
	AddPending(ctx context.Context, req *domain.RegistrationRequest) error
	// RemovePending removes the pending request for the email. Removing an
	// absent email is a no-op, not an error.
	RemovePending(ctx context.Context, email string) error
	// GetPending returns the pending request for the email, or (nil, nil)
	// when none exists.
	GetPending(ctx context.Context, email string) (*domain.RegistrationRequest, error)

	// AddApproved inserts the email into the approved set. Idempotent; the
	// set is append-only and never pruned.
	AddApproved(ctx context.Context, email string) error
	IsApproved(ctx context.Context, email string) (bool, error)

	// AddDenied appends a denial record. The caller stamps DeniedOn.
	AddDenied(ctx context.Context, req *domain.RegistrationRequest) error
	IsDenied(ctx context.Context, email string) (bool, error)

	// ListPending returns pending requests in insertion order.
	ListPending(ctx context.Context) ([]domain.RegistrationRequest, error)
	ListApproved(ctx context.Context) ([]string, error)
	ListDenied(ctx context.Context) ([]domain.RegistrationRequest, error)
}
