package postgres

import (
	"context"
	"database/sql"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/repository"
)

// requestStore keeps the three collections in three tables keyed by
// normalized email: pending_requests, denied_requests, approved_emails.
type requestStore struct {
	db *sql.DB
}

func NewRequestStore(db *sql.DB) repository.RequestStore {
	return &requestStore{db: db}
}

func (r *requestStore) AddPending(ctx context.Context, req *domain.RegistrationRequest) error {
	query := `INSERT INTO pending_requests (id, full_name, email, job_title, requested_on)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.FullName, domain.NormalizeEmail(req.Email), req.JobTitle, req.RequestedOn)
	return err
}

func (r *requestStore) RemovePending(ctx context.Context, email string) error {
	query := `DELETE FROM pending_requests WHERE email = $1`
	_, err := r.db.ExecContext(ctx, query, domain.NormalizeEmail(email))
	return err
}

func (r *requestStore) GetPending(ctx context.Context, email string) (*domain.RegistrationRequest, error) {
	req := &domain.RegistrationRequest{Status: domain.RequestStatusPending}
	query := `SELECT id, full_name, email, job_title, requested_on FROM pending_requests WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)).
		Scan(&req.ID, &req.FullName, &req.Email, &req.JobTitle, &req.RequestedOn)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestStore) AddApproved(ctx context.Context, email string) error {
	query := `INSERT INTO approved_emails (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, domain.NormalizeEmail(email))
	return err
}

func (r *requestStore) IsApproved(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM approved_emails WHERE email = $1)`
	err := r.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)).Scan(&exists)
	return exists, err
}

func (r *requestStore) AddDenied(ctx context.Context, req *domain.RegistrationRequest) error {
	query := `INSERT INTO denied_requests (id, full_name, email, job_title, requested_on, denied_on)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.FullName, domain.NormalizeEmail(req.Email), req.JobTitle, req.RequestedOn, req.DeniedOn)
	return err
}

func (r *requestStore) IsDenied(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM denied_requests WHERE email = $1)`
	err := r.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)).Scan(&exists)
	return exists, err
}

func (r *requestStore) ListPending(ctx context.Context) ([]domain.RegistrationRequest, error) {
	query := `SELECT id, full_name, email, job_title, requested_on FROM pending_requests ORDER BY requested_on`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.RegistrationRequest
	for rows.Next() {
		req := domain.RegistrationRequest{Status: domain.RequestStatusPending}
		if err := rows.Scan(&req.ID, &req.FullName, &req.Email, &req.JobTitle, &req.RequestedOn); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *requestStore) ListApproved(ctx context.Context) ([]string, error) {
	query := `SELECT email FROM approved_emails ORDER BY email`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (r *requestStore) ListDenied(ctx context.Context) ([]domain.RegistrationRequest, error) {
	query := `SELECT id, full_name, email, job_title, requested_on, denied_on FROM denied_requests ORDER BY denied_on`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.RegistrationRequest
	for rows.Next() {
		req := domain.RegistrationRequest{Status: domain.RequestStatusDenied}
		if err := rows.Scan(&req.ID, &req.FullName, &req.Email, &req.JobTitle, &req.RequestedOn, &req.DeniedOn); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
