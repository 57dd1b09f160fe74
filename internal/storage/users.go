package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/foodwizard/bot/internal/models"
)

// UpsertUser creates the user on first contact or refreshes the profile
// fields on subsequent ones. The ban flag is never touched here.
func (s *Store) UpsertUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			username   = COALESCE(EXCLUDED.username, users.username),
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			last_name  = COALESCE(EXCLUDED.last_name, users.last_name)
		RETURNING id, username, first_name, last_name, is_banned, created_at`

	var out models.User
	err := s.db.GetContext(ctx, &out, query, user.ID, user.Username, user.FirstName, user.LastName)
	if err != nil {
		return models.User{}, fmt.Errorf("upsert user %d: %w", user.ID, err)
	}
	return out, nil
}

// GetUser returns the user row or (false, nil) when unknown.
func (s *Store) GetUser(ctx context.Context, userID int64) (models.User, bool, error) {
	var out models.User
	err := s.db.GetContext(ctx, &out,
		`SELECT id, username, first_name, last_name, is_banned, created_at FROM users WHERE id = $1`,
		userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("get user %d: %w", userID, err)
	}
	return out, true, nil
}

// SetBanned flips the ban flag. Returns false when no such user exists.
func (s *Store) SetBanned(ctx context.Context, userID int64, banned bool) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_banned = $2 WHERE id = $1`,
		userID, banned,
	)
	if err != nil {
		return false, fmt.Errorf("set banned user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set banned user %d: %w", userID, err)
	}
	return n > 0, nil
}

// BannedUserIDs returns the ids of all currently banned users.
func (s *Store) BannedUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM users WHERE is_banned`); err != nil {
		return nil, fmt.Errorf("banned user ids: %w", err)
	}
	return ids, nil
}

// AllUserIDs returns every known user id, used by broadcasts.
func (s *Store) AllUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("all user ids: %w", err)
	}
	return ids, nil
}
