package postgres

import (
	"database/sql"

	"safesite-backend/internal/repository"

	_ "github.com/lib/pq"
)

// Store bundles the Postgres-backed repositories.
type Store struct {
	db *sql.DB
	repository.RequestStore
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		RequestStore: NewRequestStore(db),
	}
}
