package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/foodwizard/bot/core/logger"
	"github.com/foodwizard/bot/core/telegram/helpers"
)

const (
	broadcastProgressEvery = 50
	broadcastPause         = 50 * time.Millisecond
)

func (b *Bot) handleBroadcast(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	b.sessions.SetState(ctx, c.Sender().ID, stateAwaitingBroadcast)
	return helpers.SendHTML(c, textBroadcastAsk)
}

// cbAdminBroadcast is the panel button variant of /broadcast.
func (b *Bot) cbAdminBroadcast(c tele.Context) error {
	if !b.isAdmin(c.Sender().ID) {
		return helpers.SendHTML(c, textAdminsOnly)
	}
	return b.handleBroadcast(c)
}

// receiveBroadcastDraft stores the admin's message and asks for a
// confirmation click before anything goes out.
func (b *Bot) receiveBroadcastDraft(ctx context.Context, c tele.Context, text string) error {
	userID := c.Sender().ID
	b.sessions.SetState(ctx, userID, "")
	if !b.isAdmin(userID) {
		return nil
	}
	if text == "" {
		return helpers.SendHTML(c, textBroadcastEmpty)
	}
	b.sessions.SetBroadcastDraft(ctx, userID, text)
	return helpers.SendHTML(c, fmt.Sprintf(textBroadcastPreview, text), broadcastConfirmKeyboard())
}

func (b *Bot) cbBroadcastConfirm(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID
	if !b.isAdmin(userID) {
		return helpers.SendHTML(c, textAdminsOnly)
	}

	draft := b.sessions.BroadcastDraft(ctx, userID)
	if draft == "" {
		return helpers.EditOrSendHTML(c, textBroadcastEmpty)
	}
	b.sessions.SetBroadcastDraft(ctx, userID, "")

	ids, err := b.users.AllIDs(ctx)
	if err != nil {
		logger.Error(ctx, "tg", "broadcast.list_failed", slog.String("err", err.Error()))
		return helpers.EditOrSendHTML(c, textGenerationError)
	}

	_ = helpers.EditOrSendHTML(c, textBroadcastStarted)
	go b.runBroadcast(c.Bot(), c.Sender(), draft, ids)
	return nil
}

func (b *Bot) cbBroadcastCancel(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	b.sessions.SetBroadcastDraft(ctx, c.Sender().ID, "")
	return helpers.EditOrSendHTML(c, textBroadcastCancel)
}

// runBroadcast fans the message out in the background. Progress is
// reported to the admin every broadcastProgressEvery deliveries by
// editing a single status message, and a summary goes out at the end.
func (b *Bot) runBroadcast(bot tele.API, admin *tele.User, text string, ids []int64) {
	ctx := context.Background()
	started := time.Now()

	status, statusErr := bot.Send(admin, "📢 Рассылка: 0 из "+fmt.Sprint(len(ids)))
	sent, failed, skipped := 0, 0, 0

	for i, id := range ids {
		if id == admin.ID || b.users.IsBanned(id) {
			skipped++
			continue
		}
		_, err := bot.Send(&tele.User{ID: id}, text, tele.ModeHTML)
		if err != nil {
			failed++
		} else {
			sent++
		}

		if statusErr == nil && (i+1)%broadcastProgressEvery == 0 {
			progress := fmt.Sprintf("📢 Рассылка: %d из %d", i+1, len(ids))
			if _, err := bot.Edit(status, progress); err == nil {
				status.Text = progress
			}
		}
		time.Sleep(broadcastPause)
	}

	report := fmt.Sprintf(
		"✅ <b>Рассылка завершена</b>\n\nОтправлено: %d\nОшибок: %d\nПропущено: %d\nВремя: %s",
		sent, failed, skipped, time.Since(started).Round(time.Second),
	)
	if _, err := bot.Send(admin, report, tele.ModeHTML); err != nil {
		logger.Warn(ctx, "tg", "broadcast.report_failed", slog.String("err", err.Error()))
	}

	logger.Info(ctx, "tg", "broadcast.done",
		slog.Int("sent", sent),
		slog.Int("failed", failed),
		slog.Int("skipped", skipped),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(started)).Milliseconds()),
	)
}
