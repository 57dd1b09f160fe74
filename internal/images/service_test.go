package images

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwizard/bot/internal/models"
)

type stubUploader struct {
	url     string
	backend string
	err     error
	calls   int
}

func (s *stubUploader) Upload(ctx context.Context, data []byte, name string) (string, string, error) {
	s.calls++
	return s.url, s.backend, s.err
}

type fakeCache struct {
	images map[string]models.CachedImage
	getErr error
	saved  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{images: make(map[string]models.CachedImage)}
}

func (f *fakeCache) GetCachedImage(ctx context.Context, recipeHash string) (models.CachedImage, bool, error) {
	if f.getErr != nil {
		return models.CachedImage{}, false, f.getErr
	}
	img, ok := f.images[recipeHash]
	return img, ok, nil
}

func (f *fakeCache) SaveCachedImage(ctx context.Context, img models.CachedImage) error {
	f.saved++
	f.images[img.RecipeHash] = img
	return nil
}

func TestServiceCacheHitSkipsGeneration(t *testing.T) {
	provider := &stubProvider{name: "gen", data: []byte("fresh")}
	uploader := &stubUploader{url: "https://cdn/new.jpg", backend: "s3"}
	cache := newFakeCache()
	cache.images[dishHash("Борщ")] = models.CachedImage{
		RecipeHash: dishHash("Борщ"),
		ImageURL:   "https://cdn/cached.jpg",
	}

	svc := NewService(provider, uploader, cache)
	url, err := svc.ForDish(context.Background(), "Борщ", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/cached.jpg", url)
	assert.Equal(t, 0, provider.calls)
	assert.Equal(t, 0, uploader.calls)
}

func TestServiceMissGeneratesUploadsAndCaches(t *testing.T) {
	provider := &stubProvider{name: "gen", data: []byte("fresh")}
	uploader := &stubUploader{url: "https://cdn/new.jpg", backend: "s3"}
	cache := newFakeCache()

	svc := NewService(provider, uploader, cache)
	url, err := svc.ForDish(context.Background(), "Борщ", "со свёклой")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/new.jpg", url)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, 1, cache.saved)

	saved := cache.images[dishHash("Борщ")]
	assert.Equal(t, "s3", saved.StorageBackend)
	assert.Equal(t, int64(len("fresh")), saved.FileSize)
}

func TestServiceCacheErrorDegradesToGeneration(t *testing.T) {
	provider := &stubProvider{name: "gen", data: []byte("fresh")}
	uploader := &stubUploader{url: "https://cdn/new.jpg", backend: "s3"}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")

	svc := NewService(provider, uploader, cache)
	url, err := svc.ForDish(context.Background(), "Борщ", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/new.jpg", url)
	assert.Equal(t, 1, provider.calls)
}

func TestDishHashNormalizes(t *testing.T) {
	assert.Equal(t, dishHash("Борщ  со свёклой"), dishHash("борщ со свёклой"))
	assert.NotEqual(t, dishHash("Борщ"), dishHash("Омлет"))
}
