package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwizard/bot/internal/models"
)

type fakeStore struct {
	sessions  map[int64]models.Session
	saveCalls int
	getCalls  int
	down      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[int64]models.Session)}
}

func (f *fakeStore) GetSession(_ context.Context, userID int64) (models.Session, bool, error) {
	f.getCalls++
	if f.down {
		return models.Session{}, false, errors.New("store unavailable")
	}
	sess, ok := f.sessions[userID]
	return sess, ok, nil
}

func (f *fakeStore) SaveSession(_ context.Context, sess models.Session) error {
	f.saveCalls++
	if f.down {
		return errors.New("store unavailable")
	}
	f.sessions[sess.UserID] = sess
	return nil
}

func (f *fakeStore) ClearSession(_ context.Context, userID int64) error {
	if f.down {
		return errors.New("store unavailable")
	}
	if sess, ok := f.sessions[userID]; ok {
		f.sessions[userID] = models.Session{UserID: sess.UserID}
	}
	return nil
}

func TestMemoryDefaultsWithoutStoreWrites(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{})
	ctx := context.Background()

	assert.Equal(t, "", cache.Products(ctx, 1))
	assert.Equal(t, "", cache.State(ctx, 1))
	assert.Empty(t, cache.Categories(ctx, 1))
	assert.Empty(t, cache.Dishes(ctx, 1))
	assert.Empty(t, cache.History(ctx, 1))

	// One lazy load on first access, no further store traffic for reads.
	assert.Equal(t, 1, store.getCalls)
	assert.Equal(t, 0, store.saveCalls)
}

func TestMemoryWriteThroughIdempotence(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{})
	ctx := context.Background()

	cache.SetProducts(ctx, 1, "eggs, milk")
	after := store.sessions[1]

	cache.SetProducts(ctx, 1, "eggs, milk")
	assert.Equal(t, after, store.sessions[1])
	assert.Equal(t, "eggs, milk", cache.Products(ctx, 1))
}

func TestMemoryAppendProducts(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{})
	ctx := context.Background()

	cache.AppendProducts(ctx, 1, "картофель, лук")
	assert.Equal(t, "картофель, лук", cache.Products(ctx, 1))

	cache.AppendProducts(ctx, 1, "морковь")
	assert.Equal(t, "картофель, лук, морковь", cache.Products(ctx, 1))
	assert.Equal(t, "картофель, лук, морковь", store.sessions[1].Products)
}

func TestMemoryHistoryCap(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{HistoryCap: 3})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cache.RecordHistory(ctx, 1, models.HistoryEntry{
			Role:     "bot",
			Text:     string(rune('a' + i)),
			RecipeID: int64(i),
		})
	}

	history := cache.History(ctx, 1)
	require.Len(t, history, 3)
	// Most recent last, oldest discarded first.
	assert.Equal(t, int64(2), history[0].RecipeID)
	assert.Equal(t, int64(4), history[2].RecipeID)
	assert.Len(t, store.sessions[1].History, 3)
}

func TestMemoryCategoryAndDishCaps(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{})
	ctx := context.Background()

	cache.SetCategories(ctx, 1, []string{"soup", "main", "salad", "dessert", "drink", "snack"})
	assert.Len(t, cache.Categories(ctx, 1), MaxCategories)

	dishes := make([]models.Dish, 7)
	for i := range dishes {
		dishes[i] = models.Dish{Name: string(rune('a' + i))}
	}
	cache.SetDishes(ctx, 1, dishes)
	assert.Len(t, cache.Dishes(ctx, 1), MaxDishes)
}

func TestMemorySweepEvictsAndReloads(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{IdleTTL: time.Hour})
	ctx := context.Background()

	cache.SetProducts(ctx, 1, "eggs")
	cache.SetCurrentDish(ctx, 1, "omelette")

	// Age the entry past the TTL and sweep.
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	evicted := cache.Sweep(ctx)
	assert.Equal(t, 1, evicted)

	cache.mu.RLock()
	_, stillCached := cache.entries[1]
	cache.mu.RUnlock()
	assert.False(t, stillCached)

	// Next access transparently reloads the pre-eviction values.
	getsBefore := store.getCalls
	assert.Equal(t, "eggs", cache.Products(ctx, 1))
	assert.Equal(t, "omelette", cache.CurrentDish(ctx, 1))
	assert.Equal(t, getsBefore+1, store.getCalls)
}

func TestMemorySweepKeepsFreshEntries(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{IdleTTL: time.Hour})
	ctx := context.Background()

	cache.SetProducts(ctx, 1, "eggs")
	assert.Equal(t, 0, cache.Sweep(ctx))

	cache.mu.RLock()
	_, stillCached := cache.entries[1]
	cache.mu.RUnlock()
	assert.True(t, stillCached)
}

func TestMemoryResetClearsRowNotDeletes(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{})
	ctx := context.Background()

	cache.SetProducts(ctx, 1, "eggs, milk")
	cache.SetState(ctx, 1, "choosing_dish")
	cache.Reset(ctx, 1)

	assert.Equal(t, "", cache.Products(ctx, 1))
	assert.Equal(t, "", cache.State(ctx, 1))

	row, ok := store.sessions[1]
	require.True(t, ok, "store row must survive a reset")
	assert.Equal(t, "", row.Products)
	assert.Equal(t, "", row.State)
}

func TestMemoryStoreDownDegradesToEmpty(t *testing.T) {
	store := newFakeStore()
	store.sessions[1] = models.Session{UserID: 1, Products: "eggs"}
	store.down = true

	cache := NewMemory(store, Config{})
	ctx := context.Background()

	// Load failure yields empty defaults instead of an error.
	assert.Equal(t, "", cache.Products(ctx, 1))

	// A failed write-through retains the in-memory value.
	cache.SetProducts(ctx, 1, "milk")
	assert.Equal(t, "milk", cache.Products(ctx, 1))

	// Once the store recovers the next write reconciles it.
	store.down = false
	cache.SetState(ctx, 1, "collecting")
	assert.Equal(t, "milk", store.sessions[1].Products)
	assert.Equal(t, "collecting", store.sessions[1].State)
}

func TestMemoryBroadcastDraftIsCacheOnly(t *testing.T) {
	store := newFakeStore()
	cache := NewMemory(store, Config{})
	ctx := context.Background()

	saves := store.saveCalls
	cache.SetBroadcastDraft(ctx, 1, "hello everyone")
	assert.Equal(t, "hello everyone", cache.BroadcastDraft(ctx, 1))
	assert.Equal(t, saves, store.saveCalls)
}

type noopStore struct{}

func (noopStore) GetSession(context.Context, int64) (models.Session, bool, error) {
	return models.Session{}, false, nil
}
func (noopStore) SaveSession(context.Context, models.Session) error { return nil }
func (noopStore) ClearSession(context.Context, int64) error         { return nil }

// Sweep reads access stamps while writers refresh them; the stamps are
// atomic so the two sides never need the same locks.
func TestMemorySweepConcurrentWithWrites(t *testing.T) {
	cache := NewMemory(noopStore{}, Config{IdleTTL: time.Nanosecond})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			cache.SetProducts(ctx, int64(i%5), "картофель")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			cache.Sweep(ctx)
		}
	}()
	wg.Wait()

	cache.SetProducts(ctx, 99, "лук")
	assert.Equal(t, "лук", cache.Products(ctx, 99))
}
