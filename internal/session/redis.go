package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/foodwizard/bot/core/logger"
	"github.com/foodwizard/bot/internal/models"
)

// Redis is the Manager implementation backed by a Redis cache in front of
// the durable store. Eviction is delegated to per-key TTLs, so Sweep is a
// no-op. Write-through behaviour matches Memory.
type Redis struct {
	rdb   *redis.Client
	store Store
	cfg   Config

	// locks serializes same-user operations within this process.
	locks sync.Map
}

var _ Manager = (*Redis)(nil)

// NewRedis builds a Redis-fronted cache over the given durable store.
func NewRedis(rdb *redis.Client, store Store, cfg Config) *Redis {
	return &Redis{rdb: rdb, store: store, cfg: cfg.withDefaults()}
}

func (r *Redis) lock(userID int64) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func sessionKey(userID int64) string   { return fmt.Sprintf("session:%d", userID) }
func broadcastKey(userID int64) string { return fmt.Sprintf("broadcast:%d", userID) }

// getSession reads the cached session, falling back to the store on a miss
// and to empty defaults when both are unreachable.
func (r *Redis) getSession(ctx context.Context, userID int64) models.Session {
	raw, err := r.rdb.Get(ctx, sessionKey(userID)).Result()
	if err == nil {
		var sess models.Session
		if jsonErr := json.Unmarshal([]byte(raw), &sess); jsonErr == nil {
			return sess
		}
		// Corrupt cache payload: fall through to the store.
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn(ctx, "service.sessions", "redis.get_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}

	sess, ok, err := r.store.GetSession(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "service.sessions", "load.degraded",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return models.Session{UserID: userID}
	}
	if !ok {
		return models.Session{UserID: userID}
	}
	sess.History = capHistory(sess.History, r.cfg.HistoryCap)
	r.cacheSession(ctx, sess)
	return sess
}

func (r *Redis) cacheSession(ctx context.Context, sess models.Session) {
	raw, err := json.Marshal(sess)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, sessionKey(sess.UserID), raw, r.cfg.IdleTTL).Err(); err != nil {
		logger.Warn(ctx, "service.sessions", "redis.set_failed",
			slog.Int64("user_id", sess.UserID),
			slog.String("err", err.Error()),
		)
	}
}

// mutate loads, applies fn, recaches and writes through under the per-user
// lock.
func (r *Redis) mutate(ctx context.Context, userID int64, fn func(*models.Session)) {
	mu := r.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	sess := r.getSession(ctx, userID)
	fn(&sess)
	r.cacheSession(ctx, sess)
	if err := r.store.SaveSession(ctx, sess); err != nil {
		logger.Warn(ctx, "service.sessions", "write_through.failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

func (r *Redis) Products(ctx context.Context, userID int64) string {
	return r.getSession(ctx, userID).Products
}

func (r *Redis) SetProducts(ctx context.Context, userID int64, products string) {
	r.mutate(ctx, userID, func(s *models.Session) { s.Products = products })
}

func (r *Redis) AppendProducts(ctx context.Context, userID int64, products string) {
	r.mutate(ctx, userID, func(s *models.Session) {
		if s.Products == "" {
			s.Products = products
		} else {
			s.Products += ", " + products
		}
	})
}

func (r *Redis) State(ctx context.Context, userID int64) string {
	return r.getSession(ctx, userID).State
}

func (r *Redis) SetState(ctx context.Context, userID int64, state string) {
	r.mutate(ctx, userID, func(s *models.Session) { s.State = state })
}

func (r *Redis) Categories(ctx context.Context, userID int64) []string {
	return r.getSession(ctx, userID).Categories
}

func (r *Redis) SetCategories(ctx context.Context, userID int64, categories []string) {
	r.mutate(ctx, userID, func(s *models.Session) { s.Categories = capCategories(categories) })
}

func (r *Redis) Dishes(ctx context.Context, userID int64) []models.Dish {
	return r.getSession(ctx, userID).Dishes
}

func (r *Redis) SetDishes(ctx context.Context, userID int64, dishes []models.Dish) {
	r.mutate(ctx, userID, func(s *models.Session) { s.Dishes = capDishes(dishes) })
}

func (r *Redis) CurrentDish(ctx context.Context, userID int64) string {
	return r.getSession(ctx, userID).CurrentDish
}

func (r *Redis) SetCurrentDish(ctx context.Context, userID int64, dish string) {
	r.mutate(ctx, userID, func(s *models.Session) { s.CurrentDish = dish })
}

func (r *Redis) History(ctx context.Context, userID int64) []models.HistoryEntry {
	return r.getSession(ctx, userID).History
}

func (r *Redis) RecordHistory(ctx context.Context, userID int64, he models.HistoryEntry) {
	r.mutate(ctx, userID, func(s *models.Session) {
		s.History = capHistory(append(s.History, he), r.cfg.HistoryCap)
	})
}

func (r *Redis) BroadcastDraft(ctx context.Context, userID int64) string {
	raw, err := r.rdb.Get(ctx, broadcastKey(userID)).Result()
	if err != nil {
		return ""
	}
	return raw
}

func (r *Redis) SetBroadcastDraft(ctx context.Context, userID int64, text string) {
	if err := r.rdb.Set(ctx, broadcastKey(userID), text, r.cfg.IdleTTL).Err(); err != nil {
		logger.Warn(ctx, "service.sessions", "redis.set_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

func (r *Redis) Reset(ctx context.Context, userID int64) {
	mu := r.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	if err := r.rdb.Del(ctx, sessionKey(userID), broadcastKey(userID)).Err(); err != nil {
		logger.Warn(ctx, "service.sessions", "redis.del_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
	if err := r.store.ClearSession(ctx, userID); err != nil {
		logger.Warn(ctx, "service.sessions", "reset.store_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// Sweep is a no-op: Redis evicts session keys via their TTL.
func (r *Redis) Sweep(context.Context) int { return 0 }
