package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/foodwizard/bot/core/logger"
	"github.com/foodwizard/bot/internal/models"
)

// entry holds one user's cached session. The per-entry mutex serializes
// concurrent operations for the same user id; operations for different
// users only contend on the map lock. lastAccess is unix nanos, atomic so
// Sweep can read it without taking the entry mutex.
type entry struct {
	mu         sync.Mutex
	sess       models.Session
	draft      string
	lastAccess atomic.Int64
}

// Memory is the in-process Manager implementation.
type Memory struct {
	store Store
	cfg   Config

	mu      sync.RWMutex
	entries map[int64]*entry

	now func() time.Time
}

var _ Manager = (*Memory)(nil)

// NewMemory builds an in-memory cache over the given durable store.
func NewMemory(store Store, cfg Config) *Memory {
	return &Memory{
		store:   store,
		cfg:     cfg.withDefaults(),
		entries: make(map[int64]*entry),
		now:     time.Now,
	}
}

// acquire returns the locked entry for the user, lazily loading the session
// from the store on first access. Callers must release e.mu.
func (m *Memory) acquire(ctx context.Context, userID int64) *entry {
	m.mu.RLock()
	e, ok := m.entries[userID]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		e, ok = m.entries[userID]
		if !ok {
			e = &entry{sess: models.Session{UserID: userID}}
			// Stamp and lock before publishing so a concurrent sweep never
			// sees a zero timestamp and nobody observes the entry unloaded.
			e.lastAccess.Store(m.now().UnixNano())
			e.mu.Lock()
			m.entries[userID] = e
			m.mu.Unlock()

			m.load(ctx, e, userID)
			return e
		}
		m.mu.Unlock()
	}

	e.mu.Lock()
	e.lastAccess.Store(m.now().UnixNano())
	return e
}

// load populates a fresh entry from the store. An unreachable store degrades
// to an empty session so the bot stays responsive.
func (m *Memory) load(ctx context.Context, e *entry, userID int64) {
	sess, ok, err := m.store.GetSession(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "service.sessions", "load.degraded",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return
	}
	if ok {
		sess.History = capHistory(sess.History, m.cfg.HistoryCap)
		e.sess = sess
		logger.Debug(ctx, "service.sessions", "load",
			slog.Int64("user_id", userID),
			slog.String("cache", "miss"),
		)
	}
}

// writeThrough persists the current in-memory snapshot. A failed write keeps
// the memory value; the next successful write reconciles the store.
func (m *Memory) writeThrough(ctx context.Context, e *entry) {
	if err := m.store.SaveSession(ctx, e.sess); err != nil {
		logger.Warn(ctx, "service.sessions", "write_through.failed",
			slog.Int64("user_id", e.sess.UserID),
			slog.String("err", err.Error()),
		)
	}
}

func (m *Memory) Products(ctx context.Context, userID int64) string {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	return e.sess.Products
}

func (m *Memory) SetProducts(ctx context.Context, userID int64, products string) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	e.sess.Products = products
	m.writeThrough(ctx, e)
}

// AppendProducts concatenates with ", " and does not deduplicate.
func (m *Memory) AppendProducts(ctx context.Context, userID int64, products string) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	if e.sess.Products == "" {
		e.sess.Products = products
	} else {
		e.sess.Products += ", " + products
	}
	m.writeThrough(ctx, e)
}

func (m *Memory) State(ctx context.Context, userID int64) string {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	return e.sess.State
}

func (m *Memory) SetState(ctx context.Context, userID int64, state string) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	e.sess.State = state
	m.writeThrough(ctx, e)
}

func (m *Memory) Categories(ctx context.Context, userID int64) []string {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	return e.sess.Categories
}

func (m *Memory) SetCategories(ctx context.Context, userID int64, categories []string) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	e.sess.Categories = capCategories(categories)
	m.writeThrough(ctx, e)
}

func (m *Memory) Dishes(ctx context.Context, userID int64) []models.Dish {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	return e.sess.Dishes
}

func (m *Memory) SetDishes(ctx context.Context, userID int64, dishes []models.Dish) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	e.sess.Dishes = capDishes(dishes)
	m.writeThrough(ctx, e)
}

func (m *Memory) CurrentDish(ctx context.Context, userID int64) string {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	return e.sess.CurrentDish
}

func (m *Memory) SetCurrentDish(ctx context.Context, userID int64, dish string) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	e.sess.CurrentDish = dish
	m.writeThrough(ctx, e)
}

func (m *Memory) History(ctx context.Context, userID int64) []models.HistoryEntry {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	return e.sess.History
}

// RecordHistory appends in call order and drops the oldest entries beyond
// the configured cap.
func (m *Memory) RecordHistory(ctx context.Context, userID int64, he models.HistoryEntry) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	e.sess.History = capHistory(append(e.sess.History, he), m.cfg.HistoryCap)
	m.writeThrough(ctx, e)
}

func (m *Memory) BroadcastDraft(ctx context.Context, userID int64) string {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	return e.draft
}

func (m *Memory) SetBroadcastDraft(ctx context.Context, userID int64, text string) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	e.draft = text
}

func (m *Memory) Reset(ctx context.Context, userID int64) {
	e := m.acquire(ctx, userID)
	defer e.mu.Unlock()
	e.sess = models.Session{UserID: userID}
	e.draft = ""
	if err := m.store.ClearSession(ctx, userID); err != nil {
		logger.Warn(ctx, "service.sessions", "reset.store_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// Sweep runs on a fixed interval independent of traffic; nothing else
// triggers cleanup. In-flight operations on an evicted entry finish on the
// orphaned copy, which is acceptable staleness.
func (m *Memory) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.cfg.IdleTTL).UnixNano()

	m.mu.Lock()
	evicted := 0
	for userID, e := range m.entries {
		if e.lastAccess.Load() < cutoff {
			delete(m.entries, userID)
			evicted++
		}
	}
	remaining := len(m.entries)
	m.mu.Unlock()

	if evicted > 0 {
		logger.Info(ctx, "service.sessions", "sweep",
			slog.Int("evicted", evicted),
			slog.Int("sessions", remaining),
		)
	}
	return evicted
}
