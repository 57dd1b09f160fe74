// Package recipes exposes the ownership-checked favorites and history
// repository over the recipes table.
package recipes

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/foodwizard/bot/core/logger"
	"github.com/foodwizard/bot/internal/models"
)

// DefaultListLimit is applied when a caller does not bound a listing.
const DefaultListLimit = 10

// Store is the persistence surface the service needs.
type Store interface {
	CreateRecipe(ctx context.Context, r models.Recipe) (int64, error)
	ListRecipes(ctx context.Context, userID int64, limit int) ([]models.Recipe, error)
	ListFavorites(ctx context.Context, userID int64, limit int) ([]models.Recipe, error)
	GetRecipeForUser(ctx context.Context, userID, recipeID int64) (models.Recipe, bool, error)
	GetRecipe(ctx context.Context, recipeID int64) (models.Recipe, bool, error)
	SetFavorite(ctx context.Context, userID, recipeID int64, favorite bool) (bool, error)
	SetRecipeImage(ctx context.Context, recipeID int64, imageURL string) error
	DeleteNonFavorites(ctx context.Context, userID int64) (int64, error)
}

// Service wraps the store with authorization and logging.
type Service struct {
	store Store
}

// NewService builds the repository service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create persists a generated recipe and returns its id.
func (s *Service) Create(ctx context.Context, userID int64, dishName, recipeText, productsUsed string) (int64, error) {
	id, err := s.store.CreateRecipe(ctx, models.Recipe{
		UserID:       userID,
		DishName:     dishName,
		RecipeText:   recipeText,
		ProductsUsed: productsUsed,
	})
	if err != nil {
		return 0, fmt.Errorf("recipes: %w", err)
	}
	logger.Debug(ctx, "service.recipes", "create",
		slog.Int64("user_id", userID),
		slog.Int64("recipe_id", id),
		slog.String("dish", dishName),
	)
	return id, nil
}

// ListByUser returns the user's recipes, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Recipe, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	out, err := s.store.ListRecipes(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recipes: %w", err)
	}
	return out, nil
}

// ListFavorites returns the user's favorited recipes, newest first.
func (s *Service) ListFavorites(ctx context.Context, userID int64, limit int) ([]models.Recipe, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	out, err := s.store.ListFavorites(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recipes: %w", err)
	}
	return out, nil
}

// GetForUser fetches a recipe only when the caller owns it. A wrong owner
// reads as not found, never leaking another user's data.
func (s *Service) GetForUser(ctx context.Context, userID, recipeID int64) (models.Recipe, bool, error) {
	r, ok, err := s.store.GetRecipeForUser(ctx, userID, recipeID)
	if err != nil {
		return models.Recipe{}, false, fmt.Errorf("recipes: %w", err)
	}
	return r, ok, nil
}

// Get fetches a recipe without the ownership filter. Internal callers only.
func (s *Service) Get(ctx context.Context, recipeID int64) (models.Recipe, bool, error) {
	r, ok, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return models.Recipe{}, false, fmt.Errorf("recipes: %w", err)
	}
	return r, ok, nil
}

// SetFavorite flips the favorite flag. The ownership check applies to both
// marking and unmarking; flagging an already-favorited recipe is a no-op
// success. Returns false when the recipe is missing or owned by another user.
func (s *Service) SetFavorite(ctx context.Context, userID, recipeID int64, favorite bool) (bool, error) {
	ok, err := s.store.SetFavorite(ctx, userID, recipeID, favorite)
	if err != nil {
		return false, fmt.Errorf("recipes: %w", err)
	}
	if !ok {
		logger.Debug(ctx, "service.recipes", "favorite.denied",
			slog.Int64("user_id", userID),
			slog.Int64("recipe_id", recipeID),
		)
		return false, nil
	}
	logger.Debug(ctx, "service.recipes", "favorite",
		slog.Int64("user_id", userID),
		slog.Int64("recipe_id", recipeID),
		slog.Bool("favorite", favorite),
	)
	return true, nil
}

// AttachImage stores an uploaded photo URL on the recipe.
func (s *Service) AttachImage(ctx context.Context, recipeID int64, imageURL string) error {
	if err := s.store.SetRecipeImage(ctx, recipeID, imageURL); err != nil {
		return fmt.Errorf("recipes: %w", err)
	}
	return nil
}

// ClearHistory removes every non-favorited recipe of the user.
func (s *Service) ClearHistory(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.DeleteNonFavorites(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("recipes: %w", err)
	}
	logger.Info(ctx, "service.recipes", "history.cleared",
		slog.Int64("user_id", userID),
		slog.Int64("count", n),
	)
	return n, nil
}
