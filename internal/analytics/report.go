package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodwizard/bot/core/telegram/format"
	"github.com/foodwizard/bot/internal/storage"
)

var medals = []string{"🥇", "🥈", "🥉"}

var weekdayRU = map[string]string{
	"Monday":    "Пн",
	"Tuesday":   "Вт",
	"Wednesday": "Ср",
	"Thursday":  "Чт",
	"Friday":    "Пт",
	"Saturday":  "Сб",
	"Sunday":    "Вс",
}

var periodRU = map[Period]string{
	PeriodWeek:  "за неделю",
	PeriodMonth: "за месяц",
	PeriodYear:  "за год",
}

var ingredientEmoji = []struct {
	key   string
	emoji string
}{
	{"картофель", "🥔"}, {"картошка", "🥔"},
	{"лук", "🧅"},
	{"морковь", "🥕"},
	{"помидор", "🍅"}, {"томат", "🍅"},
	{"огурец", "🥒"},
	{"яйц", "🥚"},
	{"молоко", "🥛"},
	{"сыр", "🧀"},
	{"мяс", "🥩"}, {"говядин", "🥩"}, {"свинин", "🥩"},
	{"куриц", "🍗"}, {"курица", "🍗"},
	{"рыб", "🐟"},
	{"рис", "🍚"},
	{"макарон", "🍝"}, {"паста", "🍝"},
	{"хлеб", "🍞"},
	{"масло", "🧈"},
	{"чеснок", "🧄"},
	{"перец", "🌶️"},
	{"зелень", "🌿"}, {"петрушка", "🌿"}, {"укроп", "🌿"},
	{"капуста", "🥬"},
}

// barChart renders value against max as a ten-cell emoji bar.
func barChart(value, max int, filled string) string {
	const cells = 10
	if max <= 0 {
		return strings.Repeat("⬜", cells)
	}
	n := value * cells / max
	if n > cells {
		n = cells
	}
	return strings.Repeat(filled, n) + strings.Repeat("⬜", cells-n)
}

func maxCount(rows []storage.DayCount) int {
	max := 0
	for _, row := range rows {
		if row.Count > max {
			max = row.Count
		}
	}
	return max
}

// OverviewReport renders the admin stats view with activity histograms.
func (s *Service) OverviewReport(ctx context.Context) (string, error) {
	ov, err := s.Overview(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("📊 <b>Статистика бота</b>\n\n")
	fmt.Fprintf(&b, "👥 Всего пользователей: <b>%d</b>\n", ov.Totals.Users)
	fmt.Fprintf(&b, "🚫 Забанено: <b>%d</b>\n", ov.Totals.Banned)
	fmt.Fprintf(&b, "🔥 Активных за неделю: <b>%d</b>\n", ov.WeeklyActive)
	fmt.Fprintf(&b, "📱 Активных сессий: <b>%d</b>\n", ov.Totals.ActiveSessions)
	fmt.Fprintf(&b, "📝 Рецептов создано: <b>%d</b>\n", ov.Totals.Recipes)
	fmt.Fprintf(&b, "❤️ В избранном: <b>%d</b>\n", ov.Totals.Favorites)
	fmt.Fprintf(&b, "📈 Retention (30 дней): <b>%.0f%%</b>\n\n", ov.Retention*100)

	if len(ov.Weekday) > 0 {
		b.WriteString("📈 <b>Активность по дням недели:</b>\n")
		max := maxCount(ov.Weekday)
		for _, row := range ov.Weekday {
			day := weekdayRU[row.Day]
			if day == "" {
				day = row.Day
			}
			fmt.Fprintf(&b, "%s %s %d\n", day, barChart(row.Count, max, "🟦"), row.Count)
		}
		b.WriteString("\n")
	}

	if len(ov.Growth) > 0 {
		b.WriteString("📊 <b>Новые пользователи (7 дней):</b>\n")
		max := maxCount(ov.Growth)
		for _, row := range ov.Growth {
			fmt.Fprintf(&b, "%s %s +%d\n", row.Day, barChart(row.Count, max, "🟩"), row.Count)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// TopCooksReport renders the medal leaderboard.
func (s *Service) TopCooksReport(ctx context.Context) (string, error) {
	cooks, err := s.TopCooks(ctx, 3)
	if err != nil {
		return "", err
	}
	if len(cooks) == 0 {
		return "🏆 <b>Доска почёта</b>\n\nПока нет данных", nil
	}

	var b strings.Builder
	b.WriteString("🏆 <b>Доска почёта</b>\n\n")
	for i, cook := range cooks {
		medal := "🔸"
		if i < len(medals) {
			medal = medals[i]
		}
		fmt.Fprintf(&b, "%s <b>%s</b>\n   📝 Рецептов: %d\n\n", medal, displayName(cook), cook.RecipeCount)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func displayName(cook storage.TopCook) string {
	name := strings.TrimSpace(strings.Join([]string{
		format.DerefString(cook.FirstName, ""),
		format.DerefString(cook.LastName, ""),
	}, " "))
	if name == "" {
		name = "Аноним"
	}
	if username := format.DerefString(cook.Username, ""); username != "" {
		name += " (@" + username + ")"
	}
	return format.EscapeHTML(name)
}

// TopIngredientsReport renders the ingredient leaderboard for the period.
func (s *Service) TopIngredientsReport(ctx context.Context, period Period) (string, error) {
	top, err := s.TopIngredients(ctx, period, 10)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return "🥕 <b>Топ продуктов</b>\n\nПока нет данных", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🥕 <b>Топ-10 продуктов %s</b>\n\n", periodRU[period])
	for i, row := range top {
		fmt.Fprintf(&b, "%d. %s <b>%s</b> — %d раз\n", i+1, emojiFor(row.Name), capitalize(row.Name), row.Count)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func emojiFor(name string) string {
	for _, e := range ingredientEmoji {
		if strings.Contains(name, e.key) {
			return e.emoji
		}
	}
	return "🔸"
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// TopDishesReport renders the most requested dishes.
func (s *Service) TopDishesReport(ctx context.Context) (string, error) {
	dishes, err := s.TopDishes(ctx, 5)
	if err != nil {
		return "", err
	}
	if len(dishes) == 0 {
		return "🍽️ <b>Популярные блюда</b>\n\nПока нет данных", nil
	}

	var b strings.Builder
	b.WriteString("🍽️ <b>Что готовят чаще всего</b>\n\n")
	for i, dish := range dishes {
		marker := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			marker = medals[i]
		}
		fmt.Fprintf(&b, "%s <b>%s</b>\n   📊 Запросов: %d\n\n", marker, dish.DishName, dish.Count)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// RandomFactReport picks one statistic and phrases it as a fact.
func (s *Service) RandomFactReport(ctx context.Context) (string, error) {
	dishes, err := s.TopDishes(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(dishes) == 0 {
		return "🎲 <b>Случайный факт</b>\n\nПока недостаточно данных", nil
	}
	return fmt.Sprintf(
		"🎲 <b>Случайный факт</b>\n\n🍽️ Самое популярное блюдо: <b>%s</b> (%d запросов)",
		dishes[0].DishName, dishes[0].Count,
	), nil
}
