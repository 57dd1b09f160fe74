package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/foodwizard/bot/core/logger"
	"github.com/foodwizard/bot/internal/models"
)

// Uploader is satisfied by the imagestore chain.
type Uploader interface {
	Upload(ctx context.Context, data []byte, name string) (url, backend string, err error)
}

// CacheStore is the content-addressed image cache. Identical dishes hit
// the cache instead of burning a generation call.
type CacheStore interface {
	GetCachedImage(ctx context.Context, recipeHash string) (models.CachedImage, bool, error)
	SaveCachedImage(ctx context.Context, img models.CachedImage) error
}

// Service is the full pipeline behind "attach a photo to this recipe":
// cache lookup, generation chain, optimization, upload chain, cache fill.
type Service struct {
	provider Provider
	uploader Uploader
	cache    CacheStore
}

func NewService(provider Provider, uploader Uploader, cache CacheStore) *Service {
	return &Service{provider: provider, uploader: uploader, cache: cache}
}

// ForDish returns a public URL for a photo of the dish, generating and
// uploading one on cache miss. Cache failures degrade to generation,
// never to a user-visible error.
func (s *Service) ForDish(ctx context.Context, dish, description string) (string, error) {
	hash := dishHash(dish)

	if cached, ok, err := s.cache.GetCachedImage(ctx, hash); err != nil {
		logger.Warn(ctx, "img", "cache.degraded",
			slog.String("dish", dish),
			slog.String("err", err.Error()),
		)
	} else if ok {
		logger.Debug(ctx, "img", "cache.hit",
			slog.String("dish", dish),
			slog.String("backend", cached.StorageBackend),
		)
		return cached.ImageURL, nil
	}

	data, err := s.provider.Generate(ctx, dish, description)
	if err != nil {
		return "", err
	}

	data, err = Optimize(data)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s.jpg", uuid.NewString())
	url, backend, err := s.uploader.Upload(ctx, data, name)
	if err != nil {
		return "", err
	}

	if err := s.cache.SaveCachedImage(ctx, models.CachedImage{
		DishName:       dish,
		RecipeHash:     hash,
		ImageURL:       url,
		StorageBackend: backend,
		FileSize:       int64(len(data)),
	}); err != nil {
		logger.Warn(ctx, "img", "cache.save_failed",
			slog.String("dish", dish),
			slog.String("err", err.Error()),
		)
	}
	return url, nil
}

// dishHash keys the cache by normalized dish name, so case and spacing
// differences still share one image.
func dishHash(dish string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(dish), " "))
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}
