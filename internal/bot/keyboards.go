package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/foodwizard/bot/core/telegram/keyboard"
	"github.com/foodwizard/bot/internal/models"
)

// Callback uniques. Keyboards and registry registration share these so
// a renamed button cannot silently orphan its handler.
const (
	cbAddMore          = "action_add_more"
	cbCook             = "action_cook"
	cbCategory         = "cat"
	cbDish             = "dish"
	cbFavAdd           = "fav_add"
	cbFavShow          = "fav"
	cbFavDelete        = "fav_delete"
	cbHistoryShow      = "history"
	cbClearHistory     = "clear_my_history"
	cbDeleteMsg        = "delete_msg"
	cbRestart          = "restart"
	cbBackToCategories = "back_to_categories"

	cbAdminStats          = "admin_stats"
	cbAdminUsers          = "admin_users"
	cbAdminTopCooks       = "admin_top_cooks"
	cbAdminTopIngredients = "admin_top_ingredients"
	cbAdminTopDishes      = "admin_top_dishes"
	cbAdminRandomFact     = "admin_random_fact"
	cbAdminBroadcast      = "admin_broadcast"

	cbBroadcastConfirm = "broadcast_confirm"
	cbBroadcastCancel  = "broadcast_cancel"
)

func confirmProductsKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "➕ Добавить ещё", Unique: cbAddMore},
			{Text: "🍳 Готовить!", Unique: cbCook},
		},
	)
}

func categoriesKeyboard(categories []string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(categories))
	for _, key := range categories {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   categoryLabel(key),
			Unique: cbCategory,
			Data:   key,
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}

func dishesKeyboard(dishes []models.Dish) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(dishes)+1)
	for i, dish := range dishes {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   dish.Name,
			Unique: cbDish,
			Data:   strconv.Itoa(i),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{{
		Text:   "⬅️ К категориям",
		Unique: cbBackToCategories,
	}})
	return keyboard.InlineButtonsRows(rows...)
}

// recipeKeyboard hangs under a freshly generated recipe. recipeID may
// be zero when the recipe could not be persisted; the favorite button
// is dropped then.
func recipeKeyboard(recipeID int64, favorite bool) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	if recipeID > 0 {
		favBtn := keyboard.InlineBtn{
			Text:   "⭐ В избранное",
			Unique: cbFavAdd,
			Data:   strconv.FormatInt(recipeID, 10),
		}
		if favorite {
			favBtn = keyboard.InlineBtn{
				Text:   "💔 Убрать из избранного",
				Unique: cbFavDelete,
				Data:   strconv.FormatInt(recipeID, 10),
			}
		}
		rows = append(rows, []keyboard.InlineBtn{favBtn})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "⬅️ К категориям", Unique: cbBackToCategories},
		{Text: "🔄 Заново", Unique: cbRestart},
	})
	return keyboard.InlineButtonsRows(rows...)
}

func favoritesKeyboard(favorites []models.Recipe) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(favorites))
	for _, r := range favorites {
		id := strconv.FormatInt(r.ID, 10)
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "📖 " + r.DishName, Unique: cbFavShow, Data: id},
			{Text: "🗑", Unique: cbFavDelete, Data: id},
		})
	}
	return keyboard.InlineButtonsRows(rows...)
}

func historyKeyboard(recipes []models.Recipe) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(recipes)+1)
	for _, r := range recipes {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("📖 %s (%s)", r.DishName, r.CreatedAt.Format("02.01")),
			Unique: cbHistoryShow,
			Data:   strconv.FormatInt(r.ID, 10),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{{
		Text:   "🗑 Очистить историю",
		Unique: cbClearHistory,
	}})
	return keyboard.InlineButtonsRows(rows...)
}

func adminKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "📊 Сводка", Unique: cbAdminStats},
			{Text: "👥 Пользователи", Unique: cbAdminUsers},
		},
		[]keyboard.InlineBtn{
			{Text: "🏆 Топ поваров", Unique: cbAdminTopCooks},
			{Text: "🍽 Топ блюд", Unique: cbAdminTopDishes},
		},
		[]keyboard.InlineBtn{
			{Text: "🥕 Топ продуктов", Unique: cbAdminTopIngredients},
			{Text: "🎲 Случайный факт", Unique: cbAdminRandomFact},
		},
		[]keyboard.InlineBtn{
			{Text: "📢 Рассылка", Unique: cbAdminBroadcast},
		},
	)
}

func broadcastConfirmKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Отправить", Unique: cbBroadcastConfirm},
			{Text: "❌ Отмена", Unique: cbBroadcastCancel},
		},
	)
}

func deleteMsgKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "👌 Понятно", Unique: cbDeleteMsg},
	})
}
