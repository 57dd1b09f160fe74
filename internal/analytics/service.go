// Package analytics computes the read-only admin aggregates: headline
// counters, leaderboards, ingredient frequency and retention.
package analytics

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foodwizard/bot/internal/storage"
)

// Period selects the trailing window for ingredient frequency.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) cutoff(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}

// Store is the query surface the aggregator needs.
type Store interface {
	GetTotals(ctx context.Context) (storage.Totals, error)
	WeeklyActiveUsers(ctx context.Context) (int, error)
	TopCooks(ctx context.Context, limit int) ([]storage.TopCook, error)
	ProductsUsedSince(ctx context.Context, since time.Time) ([]string, error)
	TopDishes(ctx context.Context, limit int) ([]storage.DishCount, error)
	RetentionCounts(ctx context.Context) (newUsers, retained int, err error)
	ActivityByWeekday(ctx context.Context) ([]storage.DayCount, error)
	DailyGrowth(ctx context.Context, days int) ([]storage.DayCount, error)
}

// Service runs the aggregate queries and the Go-side tokenization.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService builds the aggregator.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// IngredientCount is one frequency row of the ingredient leaderboard.
type IngredientCount struct {
	Name  string
	Count int
}

// Overview bundles the headline numbers of the admin stats view.
type Overview struct {
	Totals       storage.Totals
	WeeklyActive int
	Retention    float64

	Weekday []storage.DayCount
	Growth  []storage.DayCount
}

// Overview gathers counters, retention and the activity histograms.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	totals, err := s.store.GetTotals(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("analytics: %w", err)
	}
	weekly, err := s.store.WeeklyActiveUsers(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("analytics: %w", err)
	}
	retention, err := s.Retention(ctx)
	if err != nil {
		return Overview{}, err
	}

	weekday, err := s.store.ActivityByWeekday(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("analytics: %w", err)
	}
	growth, err := s.store.DailyGrowth(ctx, 7)
	if err != nil {
		return Overview{}, fmt.Errorf("analytics: %w", err)
	}

	return Overview{
		Totals:       totals,
		WeeklyActive: weekly,
		Retention:    retention,
		Weekday:      weekday,
		Growth:       growth,
	}, nil
}

// TopCooks returns the recipe-count leaderboard. Ties keep the store's row
// order, which is undefined.
func (s *Service) TopCooks(ctx context.Context, limit int) ([]storage.TopCook, error) {
	out, err := s.store.TopCooks(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	return out, nil
}

// TopDishes returns the most requested dish names by exact-string frequency.
func (s *Service) TopDishes(ctx context.Context, limit int) ([]storage.DishCount, error) {
	out, err := s.store.TopDishes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	return out, nil
}

// TopIngredients tokenizes the product strings of the trailing window and
// returns the most frequent tokens.
func (s *Service) TopIngredients(ctx context.Context, period Period, limit int) ([]IngredientCount, error) {
	raw, err := s.store.ProductsUsedSince(ctx, period.cutoff(s.now()))
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}

	counts := make(map[string]int)
	for _, products := range raw {
		for _, token := range TokenizeProducts(products) {
			counts[token]++
		}
	}

	out := make([]IngredientCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, IngredientCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Retention is new users of the trailing 30 days who produced at least one
// recipe, divided by all new users of that window. Zero new users yields 0.
func (s *Service) Retention(ctx context.Context) (float64, error) {
	newUsers, retained, err := s.store.RetentionCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("analytics: %w", err)
	}
	if newUsers == 0 {
		return 0, nil
	}
	return float64(retained) / float64(newUsers), nil
}

var (
	productSplitRe = regexp.MustCompile(`[,;\n]`)
	digitsRe       = regexp.MustCompile(`\d+`)
	unitsRe        = regexp.MustCompile(`(^|\s)(г|кг|мл|л|шт|штук|штука)($|\s)`)
)

var stopTokens = map[string]struct{}{
	"и": {}, "или": {}, "для": {}, "по": {}, "на": {}, "в": {}, "из": {},
}

// TokenizeProducts splits a free-text product string into normalized
// ingredient tokens: lowercased, with quantities and measure units stripped,
// short and stop tokens dropped.
func TokenizeProducts(products string) []string {
	var out []string
	for _, part := range productSplitRe.Split(strings.ToLower(products), -1) {
		token := digitsRe.ReplaceAllString(part, "")
		token = unitsRe.ReplaceAllString(token, " ")
		token = strings.Join(strings.Fields(token), " ")
		if utf8.RuneCountInString(token) < 3 {
			continue
		}
		if _, stop := stopTokens[token]; stop {
			continue
		}
		out = append(out, token)
	}
	return out
}
