package memory

import (
	"context"
	"sync"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/repository"
)

// Store is the in-memory RequestStore. State lives for the process lifetime
// only; pending requests keep insertion order. All methods are safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	pending  []domain.RegistrationRequest
	denied   []domain.RegistrationRequest
	approved map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		approved: make(map[string]struct{}),
	}
}

var _ repository.RequestStore = (*Store)(nil)

func (s *Store) AddPending(ctx context.Context, req *domain.RegistrationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *req
	r.Email = domain.NormalizeEmail(r.Email)
	r.Status = domain.RequestStatusPending
	s.pending = append(s.pending, r)
	return nil
}

func (s *Store) RemovePending(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = domain.NormalizeEmail(email)
	kept := s.pending[:0]
	for _, r := range s.pending {
		if r.Email != email {
			kept = append(kept, r)
		}
	}
	s.pending = kept
	return nil
}

func (s *Store) GetPending(ctx context.Context, email string) (*domain.RegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, r := range s.pending {
		if r.Email == email {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) AddApproved(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.approved[domain.NormalizeEmail(email)] = struct{}{}
	return nil
}

func (s *Store) IsApproved(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.approved[domain.NormalizeEmail(email)]
	return ok, nil
}

func (s *Store) AddDenied(ctx context.Context, req *domain.RegistrationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *req
	r.Email = domain.NormalizeEmail(r.Email)
	r.Status = domain.RequestStatusDenied
	s.denied = append(s.denied, r)
	return nil
}

func (s *Store) IsDenied(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, r := range s.denied {
		if r.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListPending(ctx context.Context) ([]domain.RegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.RegistrationRequest, len(s.pending))
	copy(out, s.pending)
	return out, nil
}

func (s *Store) ListApproved(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.approved))
	for e := range s.approved {
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) ListDenied(ctx context.Context) ([]domain.RegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.RegistrationRequest, len(s.denied))
	copy(out, s.denied)
	return out, nil
}
