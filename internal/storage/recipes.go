package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/foodwizard/bot/internal/models"
)

const recipeColumns = `id, user_id, dish_name, recipe_text, products_used, image_url, is_favorite, created_at`

// CreateRecipe inserts a recipe and returns its assigned id.
func (s *Store) CreateRecipe(ctx context.Context, r models.Recipe) (int64, error) {
	const query = `
		INSERT INTO recipes (user_id, dish_name, recipe_text, products_used, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := s.db.GetContext(ctx, &id, query, r.UserID, r.DishName, r.RecipeText, r.ProductsUsed, r.ImageURL)
	if err != nil {
		return 0, fmt.Errorf("create recipe for user %d: %w", r.UserID, err)
	}
	return id, nil
}

// ListRecipes returns the user's recipes, newest first.
func (s *Store) ListRecipes(ctx context.Context, userID int64, limit int) ([]models.Recipe, error) {
	var out []models.Recipe
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+recipeColumns+` FROM recipes WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes for user %d: %w", userID, err)
	}
	return out, nil
}

// ListFavorites returns the user's favorited recipes, newest first.
func (s *Store) ListFavorites(ctx context.Context, userID int64, limit int) ([]models.Recipe, error) {
	var out []models.Recipe
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+recipeColumns+` FROM recipes WHERE user_id = $1 AND is_favorite ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites for user %d: %w", userID, err)
	}
	return out, nil
}

// GetRecipeForUser fetches a recipe only when it belongs to the given user.
func (s *Store) GetRecipeForUser(ctx context.Context, userID, recipeID int64) (models.Recipe, bool, error) {
	var out models.Recipe
	err := s.db.GetContext(ctx, &out,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1 AND user_id = $2`,
		recipeID, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recipe{}, false, nil
	}
	if err != nil {
		return models.Recipe{}, false, fmt.Errorf("get recipe %d for user %d: %w", recipeID, userID, err)
	}
	return out, true, nil
}

// GetRecipe fetches a recipe without an ownership filter. Internal use only.
func (s *Store) GetRecipe(ctx context.Context, recipeID int64) (models.Recipe, bool, error) {
	var out models.Recipe
	err := s.db.GetContext(ctx, &out,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1`,
		recipeID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recipe{}, false, nil
	}
	if err != nil {
		return models.Recipe{}, false, fmt.Errorf("get recipe %d: %w", recipeID, err)
	}
	return out, true, nil
}

// SetFavorite updates the favorite flag with the ownership check folded into
// the query. Returns false when the recipe does not exist or is owned by
// someone else.
func (s *Store) SetFavorite(ctx context.Context, userID, recipeID int64, favorite bool) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET is_favorite = $3 WHERE id = $1 AND user_id = $2`,
		recipeID, userID, favorite,
	)
	if err != nil {
		return false, fmt.Errorf("set favorite %d for user %d: %w", recipeID, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set favorite %d for user %d: %w", recipeID, userID, err)
	}
	return n > 0, nil
}

// SetRecipeImage attaches an uploaded image URL to an existing recipe.
func (s *Store) SetRecipeImage(ctx context.Context, recipeID int64, imageURL string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET image_url = $2 WHERE id = $1`,
		recipeID, imageURL,
	); err != nil {
		return fmt.Errorf("set recipe image %d: %w", recipeID, err)
	}
	return nil
}

// DeleteNonFavorites removes every non-favorited recipe of the user and
// reports how many rows went away.
func (s *Store) DeleteNonFavorites(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE user_id = $1 AND NOT is_favorite`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete non-favorites for user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete non-favorites for user %d: %w", userID, err)
	}
	return n, nil
}
