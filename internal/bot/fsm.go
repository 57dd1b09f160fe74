package bot

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/foodwizard/bot/core/telegram/helpers"
)

// Conversation states. Empty state means the user is idle and free text
// goes through intent classification.
const (
	stateAddingProducts    = "adding_products"
	stateAwaitingBroadcast = "awaiting_broadcast"
)

// flow adapts the session manager to the router's FSM contract: text
// from a user with a non-empty state bypasses commands and lands here.
type flow struct {
	b *Bot
}

func (f *flow) InProgress(userID int64) bool {
	return f.GetState(userID) != ""
}

func (f *flow) GetState(userID int64) string {
	return f.b.sessions.State(context.Background(), userID)
}

func (f *flow) ManagerHandler(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	switch f.b.sessions.State(ctx, userID) {
	case stateAddingProducts:
		return f.b.continueAddingProducts(ctx, c, text)
	case stateAwaitingBroadcast:
		return f.b.receiveBroadcastDraft(ctx, c, text)
	default:
		// Stale state, drop it and treat the text as a fresh message.
		f.b.sessions.SetState(ctx, userID, "")
		return f.b.handleFreeText(c)
	}
}
