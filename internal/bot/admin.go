package bot

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/foodwizard/bot/core/telegram/format"
	"github.com/foodwizard/bot/core/telegram/helpers"
	"github.com/foodwizard/bot/internal/analytics"
)

func (b *Bot) handleAdmin(c tele.Context) error {
	return helpers.SendHTML(c, textAdminMenu, adminKeyboard())
}

func (b *Bot) reportOverview(ctx context.Context) (string, error) {
	return b.analytics.OverviewReport(ctx)
}

func (b *Bot) reportTopCooks(ctx context.Context) (string, error) {
	return b.analytics.TopCooksReport(ctx)
}

func (b *Bot) reportTopIngredients(ctx context.Context) (string, error) {
	return b.analytics.TopIngredientsReport(ctx, analytics.PeriodMonth)
}

func (b *Bot) reportTopDishes(ctx context.Context) (string, error) {
	return b.analytics.TopDishesReport(ctx)
}

func (b *Bot) reportRandomFact(ctx context.Context) (string, error) {
	return b.analytics.RandomFactReport(ctx)
}

// reportUsers lists the most recent cooks with ban status, giving the
// admin enough context to use /ban without leaving Telegram.
func (b *Bot) reportUsers(ctx context.Context) (string, error) {
	cooks, err := b.analytics.TopCooks(ctx, 20)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("👥 <b>Пользователи с рецептами:</b>\n\n")
	if len(cooks) == 0 {
		sb.WriteString("Пока никто ничего не приготовил.")
		return sb.String(), nil
	}
	for _, cook := range cooks {
		name := strings.TrimSpace(format.DerefString(cook.FirstName, "") + " " + format.DerefString(cook.LastName, ""))
		if name == "" {
			name = "Аноним"
		}
		line := fmt.Sprintf("• %s", format.EscapeHTML(name))
		if u := format.DerefString(cook.Username, ""); u != "" {
			line += " (@" + format.EscapeHTML(u) + ")"
		}
		line += fmt.Sprintf(" | id %d | рецептов: %d", cook.UserID, cook.RecipeCount)
		if b.users.IsBanned(cook.UserID) {
			line += " | 🚫 заблокирован"
		}
		sb.WriteString(line + "\n")
	}
	return sb.String(), nil
}
