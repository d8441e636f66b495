// Package alert reports failed runs to the operator over Telegram.
package alert

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"air_bot/internal/model"
)

// maxMessageLen is Telegram's limit for a text message.
const maxMessageLen = 4096

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends failure reports to a Telegram chat.
type Notifier struct {
	api    telegramAPI
	chatID int64
}

// NewTelegram creates a Notifier for chatID using the bot token.
func NewTelegram(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Notifier{api: api, chatID: chatID}, nil
}

// FormatFailure formats the report of a failed run.
func FormatFailure(provider string, action model.Action, runErr error) string {
	text := fmt.Sprintf("%s %s failed: %v", provider, action, runErr)
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen-3] + "..."
	}
	return text
}

// Failure sends the report of a failed run.
func (n *Notifier) Failure(provider string, action model.Action, runErr error) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatFailure(provider, action, runErr))
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	return nil
}
