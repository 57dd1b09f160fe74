package bot

// User-facing texts. The bot speaks Russian and every message is sent
// in HTML parse mode, so strings here may carry <b> and <i> tags.

const (
	textGreeting = `👋 <b>Привет! Я ЧёПоесть Бот!</b>

Напиши мне, какие продукты у тебя есть, и я придумаю, что из них приготовить. 🍳

Можно и по-другому:
• попроси рецепт конкретного блюда
• спроси совет по готовке
• узнай калорийность продукта
• отправь голосовое, если лень печатать

Ну что, чё поесть? 😋`

	textProductsSaved = `📝 Записал: <b>%s</b>

Добавить ещё продуктов или начинаем готовить?`

	textAskMoreProducts  = "Напиши, какие ещё продукты добавить. 🥕"
	textChooseCategory   = "Отлично! Из твоих продуктов можно приготовить вот что. Выбирай категорию: 👇"
	textChooseDish       = "Вот что я придумал. Какое блюдо готовим? 👨‍🍳"
	textCookingRecipe    = "⏳ Пишу рецепт..."
	textThinking         = "⏳ Думаю..."
	textTranscribing     = "🎙 Слушаю голосовое..."
	textRecipeSaved      = "⭐ Рецепт сохранён в избранное!"
	textRecipeUnsaved    = "Рецепт убран из избранного."
	textHistoryCleared   = "🗑 История очищена. Избранные рецепты остались на месте."
	textSessionRestarted = "🔄 Начинаем заново! Какие продукты у тебя есть?"

	textNoProducts      = "Сначала напиши, какие продукты у тебя есть. 🥔"
	textNoFavorites     = "У тебя пока нет избранных рецептов. Приготовь что-нибудь и нажми ⭐ под рецептом!"
	textNoHistory       = "История пока пуста. Напиши продукты, и начнём готовить!"
	textFavoritesTitle  = "⭐ <b>Твои избранные рецепты:</b>"
	textHistoryTitle    = "📖 <b>Твои последние блюда:</b>"
	textRecipeNotFound  = "Не нашёл этот рецепт. Возможно, он был удалён."
	textDishListBroken  = "Не получилось придумать блюда, попробуй ещё раз чуть позже."
	textGenerationError = "😔 Что-то пошло не так. Попробуй ещё раз через минуту."
	textUnknownDocument = "Я понимаю только текст и голосовые сообщения. 🙂"
	textVoiceError      = "Не расслышал голосовое, попробуй ещё раз или напиши текстом."
	textBanned          = "Доступ к боту ограничен."
	textAdminsOnly      = "Эта команда только для администраторов."

	textAdminMenu = "🛠 <b>Панель администратора</b>\n\nВыбери отчёт:"

	textBroadcastAsk     = "📢 Отправь сообщение для рассылки. Оно уйдёт всем пользователям бота."
	textBroadcastPreview = "📢 <b>Проверь рассылку:</b>\n\n%s\n\nОтправляем?"
	textBroadcastStarted = "🚀 Рассылка запущена."
	textBroadcastCancel  = "Рассылка отменена."
	textBroadcastEmpty   = "Сначала пришли текст рассылки."

	textBanUsage   = "Использование: /ban &lt;user_id&gt;"
	textUnbanUsage = "Использование: /unban &lt;user_id&gt;"
	textBanDone    = "Пользователь %d заблокирован."
	textUnbanDone  = "Пользователь %d разблокирован."
	textBanNoUser  = "Пользователь %d не найден."
)

// categoryLabels maps the stable callback keys to what the user sees;
// keyboard order follows the model's category list.
var categoryLabels = map[string]string{
	"breakfast": "🍳 Завтраки",
	"soup":      "🍲 Супы",
	"main":      "🍝 Вторые блюда",
	"salad":     "🥗 Салаты",
	"snack":     "🥪 Закуски",
	"dessert":   "🍰 Десерты",
	"drink":     "🥤 Напитки",
	"mix":       "🍱 Сборные блюда",
	"sauce":     "🍾 Соусы",
}

func categoryLabel(key string) string {
	if label, ok := categoryLabels[key]; ok {
		return label
	}
	return key
}
