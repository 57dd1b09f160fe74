// Package session implements the per-user conversational state cache:
// write-through to Postgres on every mutation, lazy load on first access,
// and inactivity-based eviction of the in-memory copy.
package session

import (
	"context"
	"time"

	"github.com/foodwizard/bot/internal/models"
)

const (
	// MaxCategories caps the classifier output kept per session.
	MaxCategories = 4
	// MaxDishes caps the candidate dish list kept per session.
	MaxDishes = 5

	// DefaultHistoryCap bounds the per-user history when config leaves it unset.
	DefaultHistoryCap = 8
	// DefaultIdleTTL is the inactivity window before in-memory eviction.
	DefaultIdleTTL = 24 * time.Hour
)

// Store is the durable side of the write-through cache.
type Store interface {
	GetSession(ctx context.Context, userID int64) (models.Session, bool, error)
	SaveSession(ctx context.Context, sess models.Session) error
	ClearSession(ctx context.Context, userID int64) error
}

// Manager is the session cache contract. Getters never fail: an unreachable
// store degrades to empty defaults. Mutators write through synchronously;
// a failed write is logged and the in-memory value retained, so the next
// successful write reconciles the store.
type Manager interface {
	Products(ctx context.Context, userID int64) string
	SetProducts(ctx context.Context, userID int64, products string)
	AppendProducts(ctx context.Context, userID int64, products string)

	State(ctx context.Context, userID int64) string
	SetState(ctx context.Context, userID int64, state string)

	Categories(ctx context.Context, userID int64) []string
	SetCategories(ctx context.Context, userID int64, categories []string)

	Dishes(ctx context.Context, userID int64) []models.Dish
	SetDishes(ctx context.Context, userID int64, dishes []models.Dish)

	CurrentDish(ctx context.Context, userID int64) string
	SetCurrentDish(ctx context.Context, userID int64, dish string)

	History(ctx context.Context, userID int64) []models.HistoryEntry
	RecordHistory(ctx context.Context, userID int64, entry models.HistoryEntry)

	// BroadcastDraft state is cache-only and never written through.
	BroadcastDraft(ctx context.Context, userID int64) string
	SetBroadcastDraft(ctx context.Context, userID int64, text string)

	// Reset clears every field in memory and in the store; the store row
	// is emptied, not deleted.
	Reset(ctx context.Context, userID int64)

	// Sweep evicts in-memory entries idle past the TTL and reports how many
	// went away. Durable data is untouched.
	Sweep(ctx context.Context) int
}

// Config tunes cache bounds and eviction.
type Config struct {
	HistoryCap int
	IdleTTL    time.Duration
}

func (c Config) withDefaults() Config {
	if c.HistoryCap <= 0 {
		c.HistoryCap = DefaultHistoryCap
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = DefaultIdleTTL
	}
	return c
}

func capCategories(categories []string) []string {
	if len(categories) > MaxCategories {
		return categories[:MaxCategories]
	}
	return categories
}

func capDishes(dishes []models.Dish) []models.Dish {
	if len(dishes) > MaxDishes {
		return dishes[:MaxDishes]
	}
	return dishes
}

func capHistory(history []models.HistoryEntry, cap int) []models.HistoryEntry {
	if len(history) > cap {
		return history[len(history)-cap:]
	}
	return history
}
