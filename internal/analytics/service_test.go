package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwizard/bot/internal/storage"
)

type fakeStore struct {
	totals    storage.Totals
	weekly    int
	cooks     []storage.TopCook
	products  []string
	dishes    []storage.DishCount
	newUsers  int
	retained  int
	lastSince time.Time
}

func (f *fakeStore) GetTotals(context.Context) (storage.Totals, error)  { return f.totals, nil }
func (f *fakeStore) WeeklyActiveUsers(context.Context) (int, error)     { return f.weekly, nil }
func (f *fakeStore) TopCooks(_ context.Context, limit int) ([]storage.TopCook, error) {
	if len(f.cooks) > limit {
		return f.cooks[:limit], nil
	}
	return f.cooks, nil
}
func (f *fakeStore) ProductsUsedSince(_ context.Context, since time.Time) ([]string, error) {
	f.lastSince = since
	return f.products, nil
}
func (f *fakeStore) TopDishes(_ context.Context, limit int) ([]storage.DishCount, error) {
	if len(f.dishes) > limit {
		return f.dishes[:limit], nil
	}
	return f.dishes, nil
}
func (f *fakeStore) RetentionCounts(context.Context) (int, int, error) {
	return f.newUsers, f.retained, nil
}
func (f *fakeStore) ActivityByWeekday(context.Context) ([]storage.DayCount, error) { return nil, nil }
func (f *fakeStore) DailyGrowth(context.Context, int) ([]storage.DayCount, error)  { return nil, nil }

func TestTokenizeProducts(t *testing.T) {
	tokens := TokenizeProducts("Картофель, 2 шт лук; МОРКОВЬ\n500 г говядина, и, ab")
	assert.Equal(t, []string{"картофель", "лук", "морковь", "говядина"}, tokens)
}

func TestTokenizeProductsEmpty(t *testing.T) {
	assert.Empty(t, TokenizeProducts(""))
	assert.Empty(t, TokenizeProducts("1, 2, 3"))
}

func TestTopIngredientsOrdersByFrequency(t *testing.T) {
	store := &fakeStore{products: []string{
		"картофель, лук",
		"картофель, морковь",
		"картофель",
		"лук",
	}}
	svc := NewService(store)

	top, err := svc.TopIngredients(context.Background(), PeriodWeek, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, IngredientCount{Name: "картофель", Count: 3}, top[0])
	assert.Equal(t, IngredientCount{Name: "лук", Count: 2}, top[1])
}

func TestTopIngredientsPeriodCutoff(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.TopIngredients(context.Background(), PeriodWeek, 10)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), store.lastSince)

	_, err = svc.TopIngredients(context.Background(), PeriodYear, 10)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(-1, 0, 0), store.lastSince)
}

func TestRetentionZeroGuard(t *testing.T) {
	svc := NewService(&fakeStore{newUsers: 0, retained: 0})
	got, err := svc.Retention(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestRetentionRatio(t *testing.T) {
	svc := NewService(&fakeStore{newUsers: 4, retained: 3})
	got, err := svc.Retention(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-9)
}

func TestBarChart(t *testing.T) {
	assert.Equal(t, "⬜⬜⬜⬜⬜⬜⬜⬜⬜⬜", barChart(5, 0, "🟦"))
	assert.Equal(t, "🟦🟦🟦🟦🟦🟦🟦🟦🟦🟦", barChart(10, 10, "🟦"))
	assert.Equal(t, "🟦🟦🟦🟦🟦⬜⬜⬜⬜⬜", barChart(5, 10, "🟦"))
}

func TestTopCooksReportMedals(t *testing.T) {
	name := "Alex"
	username := "alexcooks"
	store := &fakeStore{cooks: []storage.TopCook{
		{UserID: 1, FirstName: &name, Username: &username, RecipeCount: 9},
		{UserID: 2, RecipeCount: 4},
	}}
	svc := NewService(store)

	report, err := svc.TopCooksReport(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report, "🥇 <b>Alex (@alexcooks)</b>")
	assert.Contains(t, report, "🥈 <b>Аноним</b>")
}

func TestOverviewReportIncludesRetention(t *testing.T) {
	store := &fakeStore{
		totals:   storage.Totals{Users: 10, Recipes: 25, Favorites: 5},
		weekly:   6,
		newUsers: 10,
		retained: 5,
	}
	svc := NewService(store)

	report, err := svc.OverviewReport(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report, "Всего пользователей: <b>10</b>")
	assert.Contains(t, report, "Retention (30 дней): <b>50%</b>")
}
