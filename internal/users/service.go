// Package users tracks user identity and the admin-managed ban list.
package users

import (
	"context"
	"fmt"
	"sync"

	"log/slog"

	"github.com/foodwizard/bot/core/logger"
	"github.com/foodwizard/bot/internal/models"
)

// Store is the persistence surface the service needs.
type Store interface {
	UpsertUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, userID int64) (models.User, bool, error)
	SetBanned(ctx context.Context, userID int64, banned bool) (bool, error)
	BannedUserIDs(ctx context.Context) ([]int64, error)
	AllUserIDs(ctx context.Context) ([]int64, error)
}

// Service keeps a small in-memory mirror of the ban list so the per-update
// access gate never touches the database.
type Service struct {
	store Store

	mu     sync.RWMutex
	banned map[int64]struct{}
}

// NewService builds the user service with an empty ban mirror; call
// WarmBanList during bootstrap to populate it.
func NewService(store Store) *Service {
	return &Service{store: store, banned: make(map[int64]struct{})}
}

// WarmBanList loads the ban list from the store. A failed load leaves the
// mirror empty, which fails open: no legitimate user is locked out.
func (s *Service) WarmBanList(ctx context.Context) error {
	ids, err := s.store.BannedUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("users: warm ban list: %w", err)
	}
	s.mu.Lock()
	s.banned = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		s.banned[id] = struct{}{}
	}
	s.mu.Unlock()
	logger.Info(ctx, "service.users", "ban_list.warmed", slog.Int("count", len(ids)))
	return nil
}

// Touch upserts the user profile on an inbound interaction.
func (s *Service) Touch(ctx context.Context, user models.User) (models.User, error) {
	out, err := s.store.UpsertUser(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("users: %w", err)
	}
	return out, nil
}

// Get returns the stored user, if any.
func (s *Service) Get(ctx context.Context, userID int64) (models.User, bool, error) {
	u, ok, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, false, fmt.Errorf("users: %w", err)
	}
	return u, ok, nil
}

// IsBanned consults the in-memory mirror only.
func (s *Service) IsBanned(userID int64) bool {
	s.mu.RLock()
	_, ok := s.banned[userID]
	s.mu.RUnlock()
	return ok
}

// SetBanned persists the flag and updates the mirror. Returns false when the
// user is unknown.
func (s *Service) SetBanned(ctx context.Context, userID int64, banned bool) (bool, error) {
	ok, err := s.store.SetBanned(ctx, userID, banned)
	if err != nil {
		return false, fmt.Errorf("users: %w", err)
	}
	if !ok {
		return false, nil
	}
	s.mu.Lock()
	if banned {
		s.banned[userID] = struct{}{}
	} else {
		delete(s.banned, userID)
	}
	s.mu.Unlock()
	logger.Info(ctx, "service.users", "ban.updated",
		slog.Int64("user_id", userID),
		slog.Bool("banned", banned),
	)
	return true, nil
}

// AllIDs returns every known user id for broadcast fan-out.
func (s *Service) AllIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.store.AllUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	return ids, nil
}
