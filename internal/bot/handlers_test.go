package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/foodwizard/bot/internal/models"
	"github.com/foodwizard/bot/internal/session"
)

type nullSessionStore struct{}

func (nullSessionStore) GetSession(context.Context, int64) (models.Session, bool, error) {
	return models.Session{}, false, nil
}
func (nullSessionStore) SaveSession(context.Context, models.Session) error { return nil }
func (nullSessionStore) ClearSession(context.Context, int64) error         { return nil }

// recordingCtx covers the two methods the product handlers touch; the
// embedded interface panics on anything else, which keeps the handlers
// honest about their surface.
type recordingCtx struct {
	tele.Context
	sender *tele.User
	sent   []string
}

func (c *recordingCtx) Sender() *tele.User { return c.sender }

func (c *recordingCtx) Send(what interface{}, _ ...interface{}) error {
	if text, ok := what.(string); ok {
		c.sent = append(c.sent, text)
	}
	return nil
}

func TestAcceptProductsAccumulatesAcrossMessages(t *testing.T) {
	sessions := session.NewMemory(nullSessionStore{}, session.Config{})
	b := New(Deps{Sessions: sessions})
	ctx := context.Background()
	c := &recordingCtx{sender: &tele.User{ID: 42}}

	require.NoError(t, b.acceptProducts(ctx, c, "Картофель, лук"))
	require.NoError(t, b.acceptProducts(ctx, c, "морковь"))

	assert.Equal(t, "картофель, лук, морковь", sessions.Products(ctx, 42))
	require.Len(t, c.sent, 2)
	assert.Contains(t, c.sent[1], "картофель, лук, морковь")
}

func TestAcceptProductsEchoesFullList(t *testing.T) {
	sessions := session.NewMemory(nullSessionStore{}, session.Config{})
	b := New(Deps{Sessions: sessions})
	ctx := context.Background()
	c := &recordingCtx{sender: &tele.User{ID: 7}}

	require.NoError(t, b.acceptProducts(ctx, c, "яйца"))
	require.NoError(t, b.continueAddingProducts(ctx, c, "молоко"))

	assert.Equal(t, "яйца, молоко", sessions.Products(ctx, 7))
}
