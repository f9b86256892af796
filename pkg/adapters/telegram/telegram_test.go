package telegram_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/intake/pkg/adapters/telegram"
	"github.com/aretw0/intake/pkg/dispatch"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	updates chan tgbotapi.Update
	err     error
	stopped bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 10)}
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return tgbotapi.Message{}, b.err
	}
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
}

func (b *fakeBot) Sent() []tgbotapi.Chattable {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), b.sent...)
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Date: 1709289000,
		Chat: &tgbotapi.Chat{ID: userID},
		From: &tgbotapi.User{ID: userID, FirstName: "Ann", LastName: "Lee", UserName: "ann"},
	}}
}

func TestToMessage(t *testing.T) {
	msg, ok := telegram.ToMessage(textUpdate(42, "start"))
	require.True(t, ok)
	assert.Equal(t, "42", msg.SessionKey)
	assert.Equal(t, "start", msg.Text)
	assert.Equal(t, domain.Sender{DisplayName: "Ann Lee", Handle: "ann", ID: "42"}, msg.Sender)
	assert.Equal(t, int64(1709289000), msg.Timestamp.Unix())

	_, ok = telegram.ToMessage(tgbotapi.Update{})
	assert.False(t, ok)

	_, ok = telegram.ToMessage(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}})
	assert.False(t, ok, "non-text messages are ignored")
}

func TestRender(t *testing.T) {
	t.Run("text with keyboard", func(t *testing.T) {
		out := telegram.Render(7, domain.Reply{Text: "Pick", Keyboard: []string{"Modern", "Classic"}})
		require.Len(t, out, 1)
		msg, ok := out[0].(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.Equal(t, "Pick", msg.Text)
		kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		require.True(t, ok)
		assert.True(t, kb.ResizeKeyboard)
		require.Len(t, kb.Keyboard, 2)
		assert.Equal(t, "Classic", kb.Keyboard[1][0].Text)
	})

	t.Run("no keyboard removes it", func(t *testing.T) {
		out := telegram.Render(7, domain.Reply{Text: "Bye"})
		msg := out[0].(tgbotapi.MessageConfig)
		_, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
		assert.True(t, ok)
	})

	t.Run("document first", func(t *testing.T) {
		out := telegram.Render(7, domain.Reply{
			Text:     "Menu",
			Keyboard: []string{"a"},
			Document: &domain.Document{Path: "catalog.pdf", Caption: "Catalog"},
		})
		require.Len(t, out, 2)
		doc, ok := out[0].(tgbotapi.DocumentConfig)
		require.True(t, ok)
		assert.Equal(t, "Catalog", doc.Caption)
	})

	t.Run("captioned document alone carries the keyboard", func(t *testing.T) {
		out := telegram.Render(7, domain.Reply{
			Keyboard: []string{"a", "b"},
			Document: &domain.Document{Path: "catalog.pdf", Caption: "Catalog"},
		})
		require.Len(t, out, 1)
		doc, ok := out[0].(tgbotapi.DocumentConfig)
		require.True(t, ok)
		assert.Equal(t, "Catalog", doc.Caption)
		kb, ok := doc.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		require.True(t, ok)
		assert.Len(t, kb.Keyboard, 2)
	})
}

func TestTransport_Run(t *testing.T) {
	bot := newFakeBot()
	d := dispatch.New(func(ctx context.Context, msg domain.Message) (domain.Reply, error) {
		if msg.Text == "fail" {
			return domain.Reply{}, errors.New("store down")
		}
		return domain.Reply{Text: "echo " + msg.Text}, nil
	})
	tr := telegram.NewTransport(bot, d)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	bot.updates <- textUpdate(1, "fail")
	bot.updates <- textUpdate(1, "hi")
	bot.updates <- tgbotapi.Update{}

	require.Eventually(t, func() bool { return len(bot.Sent()) == 1 }, 2*time.Second, 10*time.Millisecond)
	msg := bot.Sent()[0].(tgbotapi.MessageConfig)
	assert.Equal(t, "echo hi", msg.Text)
	assert.Equal(t, int64(1), msg.ChatID)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, d.Close(context.Background()))
	assert.True(t, bot.stopped)
}

func TestNotifier(t *testing.T) {
	bot := newFakeBot()
	n := telegram.NewNotifier(bot)

	require.NoError(t, n.Notify(context.Background(), "-100123", "New request"))
	sent := bot.Sent()
	require.Len(t, sent, 1)
	msg := sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(-100123), msg.ChatID)
	assert.Equal(t, "New request", msg.Text)

	assert.Error(t, n.Notify(context.Background(), "operator", "x"))

	bot.err = errors.New("forbidden")
	assert.ErrorContains(t, n.Notify(context.Background(), "1", "x"), "forbidden")
}
