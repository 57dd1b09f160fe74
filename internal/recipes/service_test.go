package recipes

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwizard/bot/internal/models"
)

type fakeStore struct {
	recipes map[int64]models.Recipe
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{recipes: make(map[int64]models.Recipe), nextID: 1}
}

func (f *fakeStore) CreateRecipe(_ context.Context, r models.Recipe) (int64, error) {
	r.ID = f.nextID
	f.nextID++
	f.recipes[r.ID] = r
	return r.ID, nil
}

func (f *fakeStore) list(userID int64, favoritesOnly bool, limit int) []models.Recipe {
	var out []models.Recipe
	for _, r := range f.recipes {
		if r.UserID != userID {
			continue
		}
		if favoritesOnly && !r.IsFavorite {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeStore) ListRecipes(_ context.Context, userID int64, limit int) ([]models.Recipe, error) {
	return f.list(userID, false, limit), nil
}

func (f *fakeStore) ListFavorites(_ context.Context, userID int64, limit int) ([]models.Recipe, error) {
	return f.list(userID, true, limit), nil
}

func (f *fakeStore) GetRecipeForUser(_ context.Context, userID, recipeID int64) (models.Recipe, bool, error) {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return models.Recipe{}, false, nil
	}
	return r, true, nil
}

func (f *fakeStore) GetRecipe(_ context.Context, recipeID int64) (models.Recipe, bool, error) {
	r, ok := f.recipes[recipeID]
	return r, ok, nil
}

func (f *fakeStore) SetFavorite(_ context.Context, userID, recipeID int64, favorite bool) (bool, error) {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return false, nil
	}
	r.IsFavorite = favorite
	f.recipes[recipeID] = r
	return true, nil
}

func (f *fakeStore) SetRecipeImage(_ context.Context, recipeID int64, imageURL string) error {
	r := f.recipes[recipeID]
	r.ImageURL = &imageURL
	f.recipes[recipeID] = r
	return nil
}

func (f *fakeStore) DeleteNonFavorites(_ context.Context, userID int64) (int64, error) {
	var n int64
	for id, r := range f.recipes {
		if r.UserID == userID && !r.IsFavorite {
			delete(f.recipes, id)
			n++
		}
	}
	return n, nil
}

func TestCreateAndListNewestFirst(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, "борщ", "recipe one", "свёкла, капуста")
	require.NoError(t, err)
	second, err := svc.Create(ctx, 1, "омлет", "recipe two", "яйца, молоко")
	require.NoError(t, err)

	list, err := svc.ListByUser(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
}

func TestSetFavoriteOwnershipBothDirections(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	owned, err := svc.Create(ctx, 1, "борщ", "text", "")
	require.NoError(t, err)

	// A stranger can neither mark nor unmark someone else's recipe.
	ok, err := svc.SetFavorite(ctx, 2, owned, true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, store.recipes[owned].IsFavorite)

	ok, err = svc.SetFavorite(ctx, 1, owned, true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.SetFavorite(ctx, 2, owned, false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, store.recipes[owned].IsFavorite, "foreign unmark must not alter the recipe")
}

func TestSetFavoriteIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	id, err := svc.Create(ctx, 1, "омлет", "text", "")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := svc.SetFavorite(ctx, 1, id, true)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.True(t, store.recipes[id].IsFavorite)
}

func TestGetForUserHidesForeignRecipes(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	id, err := svc.Create(ctx, 1, "борщ", "secret text", "")
	require.NoError(t, err)

	_, ok, err := svc.GetForUser(ctx, 2, id)
	require.NoError(t, err)
	assert.False(t, ok)

	r, ok, err := svc.GetForUser(ctx, 1, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secret text", r.RecipeText)
}

func TestClearHistoryKeepsFavorites(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	kept, err := svc.Create(ctx, 1, "борщ", "text", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, "омлет", "text", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, "салат", "text", "")
	require.NoError(t, err)

	ok, err := svc.SetFavorite(ctx, 1, kept, true)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := svc.ClearHistory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := svc.ListByUser(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept, list[0].ID)
}
