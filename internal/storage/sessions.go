package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/foodwizard/bot/internal/models"
)

// sessionRow mirrors the sessions table; list fields live as JSONB and are
// decoded into typed slices on the way out.
type sessionRow struct {
	UserID      int64     `db:"user_id"`
	Products    string    `db:"products"`
	State       string    `db:"state"`
	Categories  []byte    `db:"categories"`
	Dishes      []byte    `db:"generated_dishes"`
	CurrentDish string    `db:"current_dish"`
	History     []byte    `db:"history"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// GetSession loads the persisted session snapshot. Unknown users return
// (false, nil). Malformed JSON columns decode to empty slices rather than
// failing the load.
func (s *Store) GetSession(ctx context.Context, userID int64) (models.Session, bool, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT user_id, products, state, categories, generated_dishes, current_dish, history, updated_at
		 FROM sessions WHERE user_id = $1`,
		userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("get session %d: %w", userID, err)
	}

	sess := models.Session{
		UserID:      row.UserID,
		Products:    row.Products,
		State:       row.State,
		CurrentDish: row.CurrentDish,
		UpdatedAt:   row.UpdatedAt,
	}
	sess.Categories = decodeJSONList[string](row.Categories)
	sess.Dishes = decodeJSONList[models.Dish](row.Dishes)
	sess.History = decodeJSONList[models.HistoryEntry](row.History)
	return sess, true, nil
}

// SaveSession upserts the full session snapshot (write-through target).
func (s *Store) SaveSession(ctx context.Context, sess models.Session) error {
	categories, err := encodeJSONList(sess.Categories)
	if err != nil {
		return fmt.Errorf("save session %d: %w", sess.UserID, err)
	}
	dishes, err := encodeJSONList(sess.Dishes)
	if err != nil {
		return fmt.Errorf("save session %d: %w", sess.UserID, err)
	}
	history, err := encodeJSONList(sess.History)
	if err != nil {
		return fmt.Errorf("save session %d: %w", sess.UserID, err)
	}

	const query = `
		INSERT INTO sessions (user_id, products, state, categories, generated_dishes, current_dish, history, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			products         = EXCLUDED.products,
			state            = EXCLUDED.state,
			categories       = EXCLUDED.categories,
			generated_dishes = EXCLUDED.generated_dishes,
			current_dish     = EXCLUDED.current_dish,
			history          = EXCLUDED.history,
			updated_at       = NOW()`

	if _, err := s.db.ExecContext(ctx, query,
		sess.UserID, sess.Products, sess.State, categories, dishes, sess.CurrentDish, history,
	); err != nil {
		return fmt.Errorf("save session %d: %w", sess.UserID, err)
	}
	return nil
}

// ClearSession resets every field of the row to its empty default. The row
// itself is kept so created/updated metadata survives a user reset.
func (s *Store) ClearSession(ctx context.Context, userID int64) error {
	const query = `
		UPDATE sessions SET
			products         = '',
			state            = '',
			categories       = '[]'::jsonb,
			generated_dishes = '[]'::jsonb,
			current_dish     = '',
			history          = '[]'::jsonb,
			updated_at       = NOW()
		WHERE user_id = $1`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear session %d: %w", userID, err)
	}
	return nil
}

// ActiveSessionCount counts sessions holding a non-empty state tag.
func (s *Store) ActiveSessionCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sessions WHERE state <> ''`); err != nil {
		return 0, fmt.Errorf("active session count: %w", err)
	}
	return n, nil
}

func decodeJSONList[T any](raw []byte) []T {
	if len(raw) == 0 {
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		// Corrupt persisted JSON degrades to an empty list.
		return nil
	}
	return out
}

func encodeJSONList[T any](list []T) ([]byte, error) {
	if list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(list)
}
