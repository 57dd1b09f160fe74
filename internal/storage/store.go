// Package storage implements the Postgres persistence layer. All queries
// are single round trips; JSON columns are marshalled here and nowhere else.
package storage

import "github.com/jmoiron/sqlx"

// Store groups all Postgres-backed repositories over one shared pool.
type Store struct {
	db *sqlx.DB
}

// New wraps an already-connected pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}
