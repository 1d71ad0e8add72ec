package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/identity"
	"safesite-backend/internal/logger"
	"safesite-backend/internal/repository"

	"github.com/google/uuid"
)

// ApprovalService coordinates the registration approval workflow. It is the
// only writer of the request store; every mutation runs under a per-email
// lock so concurrent submits and concurrent approve/deny races resolve to
// exactly one winner, the loser observing a no-op or a conflict outcome.
type ApprovalService struct {
	store       repository.RequestStore
	provider    identity.Provider
	emailSvc    EmailService
	callTimeout time.Duration
	locks       emailLocks
}

func NewApprovalService(store repository.RequestStore, provider identity.Provider, emailSvc EmailService, callTimeout time.Duration) *ApprovalService {
	return &ApprovalService{
		store:       store,
		provider:    provider,
		emailSvc:    emailSvc,
		callTimeout: callTimeout,
	}
}

var (
	_ RegistrationService = (*ApprovalService)(nil)
	_ AdminService        = (*ApprovalService)(nil)
)

// SeedApproved inserts the configured pre-approved emails. Idempotent; the
// approved set only grows.
func (s *ApprovalService) SeedApproved(ctx context.Context, emails []string) error {
	for _, e := range emails {
		if err := s.store.AddApproved(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *ApprovalService) Submit(ctx context.Context, sub SubmitRequest) (*SubmitResult, error) {
	email := domain.NormalizeEmail(sub.Email)
	unlock := s.locks.lock(email)
	defer unlock()

	// Workflow-state conflicts are decided before the provider is involved;
	// no account is created for an email already pending or denied.
	pending, err := s.store.GetPending(ctx, email)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return &SubmitResult{
			Outcome: OutcomeRejectedAlreadyPending,
			Message: "Your registration request is already under review. Please wait for admin approval.",
		}, nil
	}

	denied, err := s.store.IsDenied(ctx, email)
	if err != nil {
		return nil, err
	}
	if denied {
		return &SubmitResult{
			Outcome: OutcomeRejectedAlreadyDenied,
			Message: "Your registration request was previously denied. Please contact your Site Administrator.",
		}, nil
	}

	approved, err := s.store.IsApproved(ctx, email)
	if err != nil {
		return nil, err
	}

	// The provider account is created before the pending-vs-approved
	// decision; approval gates workflow progression, not account existence.
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	signUp, err := s.provider.SignUp(callCtx, email, sub.Password, identity.Metadata{
		FullName: strings.TrimSpace(sub.FullName),
		JobTitle: strings.TrimSpace(sub.JobTitle),
		Approved: approved,
	})
	if err != nil {
		return s.signUpFailure(email, err), nil
	}

	req := &domain.RegistrationRequest{
		ID:          signUp.UserID,
		FullName:    strings.TrimSpace(sub.FullName),
		Email:       email,
		JobTitle:    strings.TrimSpace(sub.JobTitle),
		RequestedOn: time.Now().UTC(),
	}
	if req.ID == "" {
		// Provider gave no user id; fall back to a locally generated token.
		req.ID = uuid.New().String()
	}

	if approved {
		req.Status = domain.RequestStatusApproved
		logger.Info("Registration accepted immediately", "email", email, "request_id", req.ID)
		return &SubmitResult{
			Outcome: OutcomeAcceptedImmediate,
			Message: "Your account has been created. Please check your email to verify your account, then you can log in.",
			Request: req,
		}, nil
	}

	req.Status = domain.RequestStatusPending
	if err := s.store.AddPending(ctx, req); err != nil {
		return nil, err
	}
	logger.Info("Registration request recorded", "email", email, "request_id", req.ID)
	return &SubmitResult{
		Outcome: OutcomeAcceptedPending,
		Message: "Your account has been created and registration request submitted. You will be able to log in once the Site Administrator approves your request.",
		Request: req,
	}, nil
}

func (s *ApprovalService) signUpFailure(email string, err error) *SubmitResult {
	switch {
	case errors.Is(err, identity.ErrEmailInUse):
		return &SubmitResult{
			Outcome: OutcomeRejectedEmailInUse,
			Message: "This email is already registered. Try logging in.",
		}
	case errors.Is(err, identity.ErrWeakPassword):
		return &SubmitResult{
			Outcome: OutcomeRejectedWeakCredential,
			Message: "The password does not meet the provider's requirements.",
		}
	default:
		// Includes timeouts: the sign-up may or may not have completed, so a
		// retried submit can come back as email-in-use.
		logger.Error("Sign-up failed", "email", email, "error", err)
		return &SubmitResult{
			Outcome: OutcomeRejectedUnexpected,
			Message: "An unexpected error occurred. Please try again.",
		}
	}
}

func (s *ApprovalService) Status(ctx context.Context, email string) (domain.RequestStatus, error) {
	email = domain.NormalizeEmail(email)

	approved, err := s.store.IsApproved(ctx, email)
	if err != nil {
		return "", err
	}
	if approved {
		return domain.RequestStatusApproved, nil
	}

	pending, err := s.store.GetPending(ctx, email)
	if err != nil {
		return "", err
	}
	if pending != nil {
		return domain.RequestStatusPending, nil
	}

	denied, err := s.store.IsDenied(ctx, email)
	if err != nil {
		return "", err
	}
	if denied {
		return domain.RequestStatusDenied, nil
	}
	return domain.RequestStatusNone, nil
}

func (s *ApprovalService) Approve(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	unlock := s.locks.lock(email)
	defer unlock()

	req, err := s.store.GetPending(ctx, email)
	if err != nil {
		return err
	}
	if req == nil {
		// Already decided, or never submitted. Admin retries land here.
		logger.Info("Approve with no pending request, no-op", "email", email)
		return nil
	}

	if err := s.store.AddApproved(ctx, email); err != nil {
		return err
	}
	if err := s.store.RemovePending(ctx, email); err != nil {
		return err
	}
	logger.Info("Registration request approved", "email", email, "request_id", req.ID)

	_ = s.emailSvc.SendDecisionNotification(ctx, req.Email, req.FullName, "APPROVED",
		"Your access request has been approved. You can now log in.")
	return nil
}

func (s *ApprovalService) Deny(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	unlock := s.locks.lock(email)
	defer unlock()

	req, err := s.store.GetPending(ctx, email)
	if err != nil {
		return err
	}
	if req == nil {
		logger.Info("Deny with no pending request, no-op", "email", email)
		return nil
	}

	now := time.Now().UTC()
	req.DeniedOn = &now
	if err := s.store.AddDenied(ctx, req); err != nil {
		return err
	}
	if err := s.store.RemovePending(ctx, email); err != nil {
		return err
	}
	logger.Info("Registration request denied", "email", email, "request_id", req.ID)

	_ = s.emailSvc.SendDecisionNotification(ctx, req.Email, req.FullName, "DENIED",
		"Your access request was not approved. Contact your Site Administrator for more information.")
	return nil
}

func (s *ApprovalService) ListPending(ctx context.Context) ([]domain.RegistrationRequest, error) {
	return s.store.ListPending(ctx)
}

func (s *ApprovalService) ListApproved(ctx context.Context) ([]string, error) {
	return s.store.ListApproved(ctx)
}

func (s *ApprovalService) ListDenied(ctx context.Context) ([]domain.RegistrationRequest, error) {
	return s.store.ListDenied(ctx)
}

// emailLocks hands out one mutex per normalized email. Entries are never
// pruned; the key space is bounded by the set of emails ever submitted,
// like the terminal collections themselves.
type emailLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *emailLocks) lock(email string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[email]
	if !ok {
		m = &sync.Mutex{}
		l.locks[email] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
