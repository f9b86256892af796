package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/dispatch"
	"github.com/aretw0/intake/pkg/domain"
)

// Bot is the subset of *tgbotapi.BotAPI the adapter uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Enqueuer accepts messages for ordered, per-session processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg domain.Message, done dispatch.Callback) error
}

// Connect authenticates against the Bot API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return bot, nil
}

// Transport long-polls updates and sends the replies back.
type Transport struct {
	bot     Bot
	queue   Enqueuer
	logger  *slog.Logger
	timeout int
}

// Option configures the Transport.
type Option func(*Transport)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithPollTimeout sets the long-polling timeout in seconds.
func WithPollTimeout(seconds int) Option {
	return func(t *Transport) {
		t.timeout = seconds
	}
}

// NewTransport creates a Telegram transport feeding queue.
func NewTransport(bot Bot, queue Enqueuer, opts ...Option) *Transport {
	t := &Transport{
		bot:     bot,
		queue:   queue,
		logger:  logging.NewNop(),
		timeout: 60,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run receives updates until ctx is cancelled or the update channel closes.
func (t *Transport) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = t.timeout
	updates := t.bot.GetUpdatesChan(cfg)
	defer t.bot.StopReceivingUpdates()

	t.logger.Info("telegram transport started")
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram transport stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.receive(ctx, update)
		}
	}
}

func (t *Transport) receive(ctx context.Context, update tgbotapi.Update) {
	msg, ok := ToMessage(update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	err := t.queue.Enqueue(ctx, msg, func(msg domain.Message, reply domain.Reply, err error) {
		if err != nil {
			t.logger.Error("failed to handle message", "session_key", msg.SessionKey, "err", err)
			return
		}
		t.send(chatID, reply)
	})
	if err != nil {
		t.logger.Error("failed to enqueue message", "session_key", msg.SessionKey, "err", err)
	}
}

func (t *Transport) send(chatID int64, reply domain.Reply) {
	for _, c := range Render(chatID, reply) {
		if _, err := t.bot.Send(c); err != nil {
			t.logger.Error("failed to send reply", "chat_id", chatID, "err", err)
			return
		}
	}
}

// Notifier sends operator notifications as plain chat messages.
type Notifier struct {
	bot Bot
}

// NewNotifier creates a Notifier using bot.
func NewNotifier(bot Bot) *Notifier {
	return &Notifier{bot: bot}
}

// Notify sends text to the chat whose numeric id is destination.
func (n *Notifier) Notify(ctx context.Context, destination, text string) error {
	chatID, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", destination, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to notify chat %d: %w", chatID, err)
	}
	return nil
}
