package storage

import (
	"context"
	"fmt"
	"time"
)

// Totals is the headline counter block of the admin stats view.
type Totals struct {
	Users          int `db:"users"`
	Banned         int `db:"banned"`
	ActiveSessions int `db:"active_sessions"`
	Recipes        int `db:"recipes"`
	Favorites      int `db:"favorites"`
}

// TopCook is one leaderboard row; ties keep the store's natural row order,
// which is deliberately left undefined.
type TopCook struct {
	UserID      int64   `db:"user_id"`
	Username    *string `db:"username"`
	FirstName   *string `db:"first_name"`
	LastName    *string `db:"last_name"`
	RecipeCount int     `db:"recipe_count"`
}

// DishCount is one exact-name frequency row.
type DishCount struct {
	DishName string `db:"dish_name"`
	Count    int    `db:"count"`
}

// DayCount is a per-day or per-weekday activity bucket.
type DayCount struct {
	Day   string `db:"day"`
	Count int    `db:"count"`
}

// GetTotals runs the headline counters in one query.
func (s *Store) GetTotals(ctx context.Context) (Totals, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM users)                             AS users,
			(SELECT COUNT(*) FROM users WHERE is_banned)             AS banned,
			(SELECT COUNT(*) FROM sessions WHERE state <> '')        AS active_sessions,
			(SELECT COUNT(*) FROM recipes)                           AS recipes,
			(SELECT COUNT(*) FROM recipes WHERE is_favorite)         AS favorites`

	var out Totals
	if err := s.db.GetContext(ctx, &out, query); err != nil {
		return Totals{}, fmt.Errorf("analytics totals: %w", err)
	}
	return out, nil
}

// WeeklyActiveUsers counts distinct users who produced a recipe in the last
// seven days.
func (s *Store) WeeklyActiveUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(DISTINCT user_id) FROM recipes WHERE created_at > NOW() - INTERVAL '7 days'`,
	)
	if err != nil {
		return 0, fmt.Errorf("weekly active users: %w", err)
	}
	return n, nil
}

// TopCooks returns the users with the most recipes.
func (s *Store) TopCooks(ctx context.Context, limit int) ([]TopCook, error) {
	const query = `
		SELECT u.id AS user_id, u.username, u.first_name, u.last_name, COUNT(r.id) AS recipe_count
		FROM users u
		JOIN recipes r ON r.user_id = u.id
		GROUP BY u.id, u.username, u.first_name, u.last_name
		ORDER BY recipe_count DESC
		LIMIT $1`

	var out []TopCook
	if err := s.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("top cooks: %w", err)
	}
	return out, nil
}

// ProductsUsedSince returns the raw product strings of recipes created after
// the cutoff; tokenization happens in the analytics service.
func (s *Store) ProductsUsedSince(ctx context.Context, since time.Time) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out,
		`SELECT products_used FROM recipes WHERE created_at > $1 AND products_used <> ''`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("products used since %s: %w", since.Format(time.RFC3339), err)
	}
	return out, nil
}

// TopDishes returns the most requested dish names by exact-string frequency.
func (s *Store) TopDishes(ctx context.Context, limit int) ([]DishCount, error) {
	const query = `
		SELECT dish_name, COUNT(*) AS count
		FROM recipes
		GROUP BY dish_name
		ORDER BY count DESC
		LIMIT $1`

	var out []DishCount
	if err := s.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("top dishes: %w", err)
	}
	return out, nil
}

// RetentionCounts returns (new users in the trailing 30 days, how many of
// them produced at least one recipe).
func (s *Store) RetentionCounts(ctx context.Context) (newUsers, retained int, err error) {
	const query = `
		SELECT
			COUNT(*) AS new_users,
			COUNT(*) FILTER (WHERE EXISTS (
				SELECT 1 FROM recipes r WHERE r.user_id = u.id
			)) AS retained
		FROM users u
		WHERE u.created_at > NOW() - INTERVAL '30 days'`

	row := struct {
		NewUsers int `db:"new_users"`
		Retained int `db:"retained"`
	}{}
	if err := s.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("retention counts: %w", err)
	}
	return row.NewUsers, row.Retained, nil
}

// ActivityByWeekday buckets the last 30 days of recipes per weekday,
// Monday first.
func (s *Store) ActivityByWeekday(ctx context.Context) ([]DayCount, error) {
	const query = `
		SELECT TRIM(TO_CHAR(created_at, 'Day')) AS day, COUNT(*) AS count
		FROM recipes
		WHERE created_at > NOW() - INTERVAL '30 days'
		GROUP BY TRIM(TO_CHAR(created_at, 'Day')), EXTRACT(ISODOW FROM created_at)
		ORDER BY EXTRACT(ISODOW FROM created_at)`

	var out []DayCount
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("activity by weekday: %w", err)
	}
	return out, nil
}

// DailyGrowth returns new-user counts per day for the trailing window.
func (s *Store) DailyGrowth(ctx context.Context, days int) ([]DayCount, error) {
	const query = `
		SELECT TO_CHAR(created_at, 'DD.MM') AS day, COUNT(*) AS count
		FROM users
		WHERE created_at > NOW() - $1 * INTERVAL '1 day'
		GROUP BY TO_CHAR(created_at, 'DD.MM'), DATE(created_at)
		ORDER BY DATE(created_at)`

	var out []DayCount
	if err := s.db.SelectContext(ctx, &out, query, days); err != nil {
		return nil, fmt.Errorf("daily growth: %w", err)
	}
	return out, nil
}
