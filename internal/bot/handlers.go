// Package bot wires the Telegram surface: commands, callbacks, the
// ingredients-to-recipe flow and the admin panel. All heavy lifting
// lives in the services; handlers translate updates into service calls
// and render the answers.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/foodwizard/bot/core/logger"
	tg "github.com/foodwizard/bot/core/telegram"
	"github.com/foodwizard/bot/core/telegram/commands"
	"github.com/foodwizard/bot/core/telegram/format"
	"github.com/foodwizard/bot/core/telegram/helpers"
	"github.com/foodwizard/bot/internal/ai"
	"github.com/foodwizard/bot/internal/analytics"
	"github.com/foodwizard/bot/internal/images"
	"github.com/foodwizard/bot/internal/models"
	"github.com/foodwizard/bot/internal/recipes"
	"github.com/foodwizard/bot/internal/session"
	"github.com/foodwizard/bot/internal/users"
)

const (
	historyListLimit = 10
	imageTimeout     = 45 * time.Second
	maxVoiceBytes    = 20 << 20
)

// Deps collects everything the handlers need. Images may be nil when no
// generation backend is configured; recipes then go out text-only.
type Deps struct {
	Sessions  session.Manager
	Users     *users.Service
	Recipes   *recipes.Service
	Analytics *analytics.Service
	AI        *ai.Client
	Images    *images.Service
	AdminIDs  []int64
}

type Bot struct {
	sessions  session.Manager
	users     *users.Service
	recipes   *recipes.Service
	analytics *analytics.Service
	llm       *ai.Client
	imgs      *images.Service
	adminIDs  map[int64]struct{}
}

func New(deps Deps) *Bot {
	admins := make(map[int64]struct{}, len(deps.AdminIDs))
	for _, id := range deps.AdminIDs {
		admins[id] = struct{}{}
	}
	return &Bot{
		sessions:  deps.Sessions,
		users:     deps.Users,
		recipes:   deps.Recipes,
		analytics: deps.Analytics,
		llm:       deps.AI,
		imgs:      deps.Images,
		adminIDs:  admins,
	}
}

// FSM returns the state adapter the text router needs.
func (b *Bot) FSM() *flow {
	return &flow{b: b}
}

func (b *Bot) isAdmin(userID int64) bool {
	_, ok := b.adminIDs[userID]
	return ok
}

// IsBanned feeds the ban gate middleware; it reads the warmed in-memory
// mirror, never the database.
func (b *Bot) IsBanned(userID int64) bool {
	return b.users.IsBanned(userID)
}

// RejectBanned is the ban gate's reply to blocked users.
func (b *Bot) RejectBanned(c tele.Context) error {
	return helpers.SendText(c, textBanned)
}

// Register fills the registry with commands and callbacks. Free text
// falls back to the intent flow.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Начать сначала",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.handleHistory,
		Description: "Мои последние блюда",
		Aliases:     []string{"history"},
	})
	reg.RegisterCommand("/favorites", commands.Command{
		Handler:     b.handleFavorites,
		Description: "Избранные рецепты",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     b.handleAdmin,
		Description: "Панель администратора",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/broadcast", commands.Command{
		Handler:     b.handleBroadcast,
		Description: "Рассылка всем пользователям",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/ban", commands.Command{
		Handler:     b.handleBan,
		Description: "Заблокировать пользователя",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/unban", commands.Command{
		Handler:     b.handleUnban,
		Description: "Разблокировать пользователя",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.SetTextFallback(b.handleFreeText)
	b.registerCallbacks(reg)
}

// touchUser upserts the sender so analytics always sees fresh names.
func (b *Bot) touchUser(ctx context.Context, c tele.Context) {
	sender := c.Sender()
	if sender == nil {
		return
	}
	user := models.User{ID: sender.ID}
	if sender.Username != "" {
		user.Username = &sender.Username
	}
	if sender.FirstName != "" {
		user.FirstName = &sender.FirstName
	}
	if sender.LastName != "" {
		user.LastName = &sender.LastName
	}
	if _, err := b.users.Touch(ctx, user); err != nil {
		logger.Warn(ctx, "tg", "user.touch_failed",
			slog.Int64("user_id", sender.ID),
			slog.String("err", err.Error()),
		)
	}
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	b.touchUser(ctx, c)
	b.sessions.Reset(ctx, c.Sender().ID)
	return helpers.SendHTML(c, textGreeting)
}

// handleFreeText is the entry point for any message that is neither a
// command nor part of an active flow.
func (b *Bot) handleFreeText(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	b.touchUser(ctx, c)
	return b.routeText(ctx, c, c.Text())
}

// routeTranscribed feeds recognized speech into the same intent flow.
func (b *Bot) routeTranscribed(c tele.Context, text string) error {
	ctx := helpers.BuildContext(c)
	b.touchUser(ctx, c)
	return b.routeText(ctx, c, text)
}

func (b *Bot) routeText(ctx context.Context, c tele.Context, text string) error {
	if text == "" {
		return nil
	}

	intent, err := b.llm.ClassifyIntent(ctx, text)
	if err != nil {
		logger.Warn(ctx, "tg", "intent.failed", slog.String("err", err.Error()))
		return helpers.SendHTML(c, textGenerationError)
	}

	switch intent {
	case ai.IntentIngredients:
		return b.acceptProducts(ctx, c, text)
	case ai.IntentRecipe:
		return b.freestyleRecipe(ctx, c, text)
	case ai.IntentComparison:
		return b.answerWith(ctx, c, text, b.llm.GenerateComparison)
	case ai.IntentAdvice:
		return b.answerWith(ctx, c, text, b.llm.GenerateCookingAdvice)
	case ai.IntentNutrition:
		return b.answerWith(ctx, c, text, b.llm.GenerateNutritionInfo)
	default:
		return b.answerWith(ctx, c, text, b.llm.GenerateChatReply)
	}
}

func (b *Bot) acceptProducts(ctx context.Context, c tele.Context, text string) error {
	userID := c.Sender().ID
	b.sessions.AppendProducts(ctx, userID, normalizeIngredients(text))
	products := b.sessions.Products(ctx, userID)
	return helpers.SendHTML(c, fmt.Sprintf(textProductsSaved, format.EscapeHTML(products)), confirmProductsKeyboard())
}

func (b *Bot) continueAddingProducts(ctx context.Context, c tele.Context, text string) error {
	userID := c.Sender().ID
	b.sessions.SetState(ctx, userID, "")
	if text == "" {
		return helpers.SendHTML(c, textAskMoreProducts)
	}
	b.sessions.AppendProducts(ctx, userID, normalizeIngredients(text))
	products := b.sessions.Products(ctx, userID)
	return helpers.SendHTML(c, fmt.Sprintf(textProductsSaved, format.EscapeHTML(products)), confirmProductsKeyboard())
}

// freestyleRecipe serves "дай рецепт борща" style requests that skip
// the ingredients flow entirely.
func (b *Bot) freestyleRecipe(ctx context.Context, c tele.Context, text string) error {
	dish := extractDishName(text)
	_ = helpers.SendHTML(c, textCookingRecipe)

	recipeText, err := b.llm.GenerateFreestyleRecipe(ctx, dish)
	if err != nil {
		logger.Warn(ctx, "tg", "recipe.failed", slog.String("err", err.Error()))
		return helpers.SendHTML(c, textGenerationError)
	}
	return b.deliverRecipe(ctx, c, dish, "", recipeText, "")
}

func (b *Bot) answerWith(ctx context.Context, c tele.Context, text string, generate func(context.Context, string) (string, error)) error {
	answer, err := generate(ctx, text)
	if err != nil {
		logger.Warn(ctx, "tg", "answer.failed", slog.String("err", err.Error()))
		return helpers.SendHTML(c, textGenerationError)
	}
	return helpers.SendHTML(c, answer, deleteMsgKeyboard())
}

// deliverRecipe persists the recipe, attaches a generated photo when a
// backend is available, records history and sends everything out.
func (b *Bot) deliverRecipe(ctx context.Context, c tele.Context, dish, description, recipeText, products string) error {
	userID := c.Sender().ID

	recipeID, err := b.recipes.Create(ctx, userID, dish, recipeText, products)
	if err != nil {
		logger.Warn(ctx, "tg", "recipe.save_failed",
			slog.Int64("user_id", userID),
			slog.String("dish", dish),
			slog.String("err", err.Error()),
		)
	}

	if b.imgs != nil {
		imgCtx, cancel := context.WithTimeout(ctx, imageTimeout)
		url, imgErr := b.imgs.ForDish(imgCtx, dish, description)
		cancel()
		if imgErr != nil {
			logger.Warn(ctx, "img", "recipe.image_failed",
				slog.String("dish", dish),
				slog.String("err", imgErr.Error()),
			)
		} else {
			if recipeID > 0 {
				if err := b.recipes.AttachImage(ctx, recipeID, url); err != nil {
					logger.Warn(ctx, "tg", "recipe.attach_image_failed", slog.String("err", err.Error()))
				}
			}
			_ = c.Send(&tele.Photo{File: tele.FromURL(url)})
		}
	}

	b.sessions.RecordHistory(ctx, userID, models.HistoryEntry{
		Role:      "assistant",
		Text:      "рецепт: " + dish,
		Timestamp: time.Now(),
		DishName:  dish,
		RecipeID:  recipeID,
	})

	return helpers.SendHTML(c, recipeText, recipeKeyboard(recipeID, false))
}

func (b *Bot) handleHistory(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	list, err := b.recipes.ListByUser(ctx, c.Sender().ID, historyListLimit)
	if err != nil {
		return helpers.SendHTML(c, textGenerationError)
	}
	if len(list) == 0 {
		return helpers.SendHTML(c, textNoHistory)
	}
	return helpers.SendHTML(c, textHistoryTitle, historyKeyboard(list))
}

func (b *Bot) handleFavorites(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	list, err := b.recipes.ListFavorites(ctx, c.Sender().ID, historyListLimit)
	if err != nil {
		return helpers.SendHTML(c, textGenerationError)
	}
	if len(list) == 0 {
		return helpers.SendHTML(c, textNoFavorites)
	}
	return helpers.SendHTML(c, textFavoritesTitle, favoritesKeyboard(list))
}

func (b *Bot) handleBan(c tele.Context) error {
	return b.setBanFromArgs(c, true, textBanUsage, textBanDone)
}

func (b *Bot) handleUnban(c tele.Context) error {
	return b.setBanFromArgs(c, false, textUnbanUsage, textUnbanDone)
}

func (b *Bot) setBanFromArgs(c tele.Context, banned bool, usage, done string) error {
	ctx := helpers.BuildContext(c)
	args := c.Args()
	if len(args) != 1 {
		return helpers.SendHTML(c, usage)
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return helpers.SendHTML(c, usage)
	}
	ok, err := b.users.SetBanned(ctx, userID, banned)
	if err != nil {
		return helpers.SendHTML(c, textGenerationError)
	}
	if !ok {
		return helpers.SendHTML(c, fmt.Sprintf(textBanNoUser, userID))
	}
	return helpers.SendHTML(c, fmt.Sprintf(done, userID))
}

// HandleVoice transcribes a voice note and pushes the text through the
// regular flow, so "скажи рецепт борща" works spoken as well as typed.
func (b *Bot) HandleVoice(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	voice := c.Message().Voice
	if voice == nil {
		return nil
	}
	_ = helpers.SendHTML(c, textTranscribing)

	rc, err := c.Bot().File(&voice.File)
	if err != nil {
		logger.Warn(ctx, "tg", "voice.download_failed", slog.String("err", err.Error()))
		return helpers.SendHTML(c, textVoiceError)
	}
	defer rc.Close()

	audio, err := io.ReadAll(io.LimitReader(rc, maxVoiceBytes))
	if err != nil {
		logger.Warn(ctx, "tg", "voice.read_failed", slog.String("err", err.Error()))
		return helpers.SendHTML(c, textVoiceError)
	}

	text, err := b.llm.Transcribe(ctx, audio, "voice.ogg")
	if err != nil || text == "" {
		if err != nil {
			logger.Warn(ctx, "tg", "voice.transcribe_failed", slog.String("err", err.Error()))
		}
		return helpers.SendHTML(c, textVoiceError)
	}

	_ = helpers.SendHTML(c, fmt.Sprintf("🗣 <i>%s</i>", format.EscapeHTML(text)))
	return b.routeTranscribed(c, text)
}

// UnknownDocument politely declines stickers, photos and files.
func (b *Bot) UnknownDocument(c tele.Context) error {
	return helpers.SendHTML(c, textUnknownDocument)
}
