package bot

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/foodwizard/bot/core/logger"
	tg "github.com/foodwizard/bot/core/telegram"
	"github.com/foodwizard/bot/core/telegram/callbacks"
	"github.com/foodwizard/bot/core/telegram/helpers"
	"github.com/foodwizard/bot/internal/session"
)

func (b *Bot) registerCallbacks(reg *tg.Registry) {
	register := func(key string, h tele.HandlerFunc) {
		if err := reg.RegisterCallback(key, h); err != nil {
			logger.Error(context.Background(), "tg.wire", "callback.register_failed",
				slog.String("key", key),
				slog.String("err", err.Error()),
			)
		}
	}

	register(cbAddMore, b.cbAddMoreProducts)
	register(cbCook, b.cbStartCooking)
	register(cbCategory, b.cbPickCategory)
	register(cbDish, b.cbPickDish)
	register(cbFavAdd, b.cbFavoriteAdd)
	register(cbFavShow, b.cbFavoriteShow)
	register(cbFavDelete, b.cbFavoriteDelete)
	register(cbHistoryShow, b.cbHistoryShow)
	register(cbClearHistory, b.cbClearHistory)
	register(cbDeleteMsg, b.cbDeleteMessage)
	register(cbRestart, b.cbRestart)
	register(cbBackToCategories, b.cbBackToCategories)

	register(cbAdminStats, b.adminReport((*Bot).reportOverview))
	register(cbAdminUsers, b.adminReport((*Bot).reportUsers))
	register(cbAdminTopCooks, b.adminReport((*Bot).reportTopCooks))
	register(cbAdminTopIngredients, b.adminReport((*Bot).reportTopIngredients))
	register(cbAdminTopDishes, b.adminReport((*Bot).reportTopDishes))
	register(cbAdminRandomFact, b.adminReport((*Bot).reportRandomFact))
	register(cbAdminBroadcast, b.cbAdminBroadcast)

	register(cbBroadcastConfirm, b.cbBroadcastConfirm)
	register(cbBroadcastCancel, b.cbBroadcastCancel)
}

func (b *Bot) cbAddMoreProducts(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	b.sessions.SetState(ctx, c.Sender().ID, stateAddingProducts)
	return helpers.EditOrSendHTML(c, textAskMoreProducts)
}

func (b *Bot) cbStartCooking(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	products := b.sessions.Products(ctx, userID)
	if products == "" {
		return helpers.EditOrSendHTML(c, textNoProducts)
	}
	_ = helpers.EditOrSendHTML(c, textThinking)

	cats, err := b.llm.AnalyzeCategories(ctx, products)
	if err != nil {
		logger.Warn(ctx, "tg", "categories.failed", slog.String("err", err.Error()))
		return helpers.EditOrSendHTML(c, textGenerationError)
	}
	if len(cats) > session.MaxCategories {
		cats = cats[:session.MaxCategories]
	}
	b.sessions.SetCategories(ctx, userID, cats)
	return helpers.EditOrSendHTML(c, textChooseCategory, categoriesKeyboard(cats))
}

func (b *Bot) cbPickCategory(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	category := callbacks.CallbackPayload(c)
	products := b.sessions.Products(ctx, userID)
	if products == "" {
		return helpers.EditOrSendHTML(c, textNoProducts)
	}
	_ = helpers.EditOrSendHTML(c, textThinking)

	dishes, err := b.llm.GenerateDishes(ctx, products, categoryLabel(category), session.MaxDishes)
	if err != nil {
		logger.Warn(ctx, "tg", "dishes.failed",
			slog.String("category", category),
			slog.String("err", err.Error()),
		)
		return helpers.EditOrSendHTML(c, textDishListBroken)
	}
	b.sessions.SetDishes(ctx, userID, dishes)
	return helpers.EditOrSendHTML(c, textChooseDish, dishesKeyboard(dishes))
}

func (b *Bot) cbPickDish(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	idx, err := callbacks.PayloadInt(c)
	if err != nil {
		return helpers.EditOrSendHTML(c, textGenerationError)
	}
	dishes := b.sessions.Dishes(ctx, userID)
	if idx < 0 || idx >= len(dishes) {
		return helpers.EditOrSendHTML(c, textDishListBroken)
	}
	dish := dishes[idx]
	products := b.sessions.Products(ctx, userID)

	b.sessions.SetCurrentDish(ctx, userID, dish.Name)
	_ = helpers.EditOrSendHTML(c, textCookingRecipe)

	recipeText, err := b.llm.GenerateRecipe(ctx, dish.Name, products)
	if err != nil {
		logger.Warn(ctx, "tg", "recipe.failed",
			slog.String("dish", dish.Name),
			slog.String("err", err.Error()),
		)
		return helpers.EditOrSendHTML(c, textGenerationError)
	}
	return b.deliverRecipe(ctx, c, dish.Name, dish.Description, recipeText, products)
}

func (b *Bot) cbFavoriteAdd(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	recipeID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}
	ok, err := b.recipes.SetFavorite(ctx, c.Sender().ID, recipeID, true)
	if err != nil || !ok {
		return helpers.SendHTML(c, textRecipeNotFound)
	}
	// Flip the button under the recipe message in place.
	if err := c.Edit(recipeKeyboard(recipeID, true)); err != nil {
		return helpers.SendHTML(c, textRecipeSaved)
	}
	return nil
}

func (b *Bot) cbFavoriteDelete(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID
	recipeID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}
	if _, err := b.recipes.SetFavorite(ctx, userID, recipeID, false); err != nil {
		return helpers.SendHTML(c, textGenerationError)
	}

	list, err := b.recipes.ListFavorites(ctx, userID, historyListLimit)
	if err != nil {
		return helpers.SendHTML(c, textRecipeUnsaved)
	}
	if len(list) == 0 {
		return helpers.EditOrSendHTML(c, textNoFavorites)
	}
	return helpers.EditOrSendHTML(c, textFavoritesTitle, favoritesKeyboard(list))
}

func (b *Bot) cbFavoriteShow(c tele.Context) error {
	return b.showSavedRecipe(c)
}

func (b *Bot) cbHistoryShow(c tele.Context) error {
	return b.showSavedRecipe(c)
}

func (b *Bot) showSavedRecipe(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	recipeID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}
	recipe, ok, err := b.recipes.GetForUser(ctx, c.Sender().ID, recipeID)
	if err != nil {
		return helpers.SendHTML(c, textGenerationError)
	}
	if !ok {
		return helpers.SendHTML(c, textRecipeNotFound)
	}
	if recipe.ImageURL != nil && *recipe.ImageURL != "" {
		_ = c.Send(&tele.Photo{File: tele.FromURL(*recipe.ImageURL)})
	}
	return helpers.SendHTML(c, recipe.RecipeText, recipeKeyboard(recipe.ID, recipe.IsFavorite))
}

func (b *Bot) cbClearHistory(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	if _, err := b.recipes.ClearHistory(ctx, c.Sender().ID); err != nil {
		return helpers.SendHTML(c, textGenerationError)
	}
	return helpers.EditOrSendHTML(c, textHistoryCleared)
}

func (b *Bot) cbDeleteMessage(c tele.Context) error {
	return c.Delete()
}

func (b *Bot) cbRestart(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	b.sessions.Reset(ctx, c.Sender().ID)
	return helpers.EditOrSendHTML(c, textSessionRestarted)
}

func (b *Bot) cbBackToCategories(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	cats := b.sessions.Categories(ctx, c.Sender().ID)
	if len(cats) == 0 {
		return helpers.EditOrSendHTML(c, textNoProducts)
	}
	return helpers.EditOrSendHTML(c, textChooseCategory, categoriesKeyboard(cats))
}

// adminReport wraps a report method with the admin gate. Callback
// routes skip the command middleware, so the check lives here.
func (b *Bot) adminReport(report func(*Bot, context.Context) (string, error)) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.BuildContext(c)
		if !b.isAdmin(c.Sender().ID) {
			return helpers.SendHTML(c, textAdminsOnly)
		}
		text, err := report(b, ctx)
		if err != nil {
			logger.Warn(ctx, "tg", "report.failed", slog.String("err", err.Error()))
			return helpers.EditOrSendHTML(c, textGenerationError)
		}
		return helpers.EditOrSendHTML(c, text, adminKeyboard())
	}
}
