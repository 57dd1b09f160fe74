package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foodwizard/bot/internal/models"
)

// GetCachedImage looks up a previously stored photo by its content hash.
func (s *Store) GetCachedImage(ctx context.Context, recipeHash string) (models.CachedImage, bool, error) {
	var out models.CachedImage
	err := s.db.GetContext(ctx, &out,
		`SELECT id, dish_name, recipe_hash, image_url, storage_backend, file_size, created_at
		 FROM image_cache WHERE recipe_hash = $1`,
		recipeHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CachedImage{}, false, nil
	}
	if err != nil {
		return models.CachedImage{}, false, fmt.Errorf("get cached image %s: %w", recipeHash, err)
	}
	return out, true, nil
}

// SaveCachedImage records an uploaded photo, replacing any previous entry
// for the same hash.
func (s *Store) SaveCachedImage(ctx context.Context, img models.CachedImage) error {
	const query = `
		INSERT INTO image_cache (dish_name, recipe_hash, image_url, storage_backend, file_size)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (recipe_hash) DO UPDATE SET
			image_url       = EXCLUDED.image_url,
			storage_backend = EXCLUDED.storage_backend,
			file_size       = EXCLUDED.file_size`

	if _, err := s.db.ExecContext(ctx, query,
		img.DishName, img.RecipeHash, img.ImageURL, img.StorageBackend, img.FileSize,
	); err != nil {
		return fmt.Errorf("save cached image %s: %w", img.RecipeHash, err)
	}
	return nil
}

// PruneImageCache drops cache entries older than the given age.
func (s *Store) PruneImageCache(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM image_cache WHERE created_at < NOW() - $1::interval`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())),
	)
	if err != nil {
		return 0, fmt.Errorf("prune image cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune image cache: %w", err)
	}
	return n, nil
}
