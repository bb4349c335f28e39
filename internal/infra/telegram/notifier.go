package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/poletreat/internal/domain/sorting"
)

const queueSize = 64

// Notifier forwards sorting notifications to the yard admin chat. Notify only
// queues; Run does the sending so a slow Telegram never holds up a sort.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
	queue  chan string
}

func New(token string, chatID int64, log *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Notifier{api: api, chatID: chatID, log: log, queue: make(chan string, queueSize)}, nil
}

// Text renders a notification as the chat message.
func Text(n sorting.Notification) string {
	if n.Kind == sorting.KindSuccess {
		return "✅ " + n.Message
	}
	return "⚠️ " + n.Message
}

func (n *Notifier) Notify(_ context.Context, note sorting.Notification) {
	if n.chatID == 0 {
		return
	}
	select {
	case n.queue <- Text(note):
	default:
		n.log.Warn("telegram queue full, notification dropped", "message", note.Message)
	}
}

// Run sends queued messages until ctx is done.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text := <-n.queue:
			if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
				n.log.Error("telegram send failed", "err", err)
			}
		}
	}
}
