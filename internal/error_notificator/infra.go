package error_notificator

import (
	"context"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegram messages are capped at 4096 characters
const maxMessageLen = 4000

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Infra sends alerts to the admin chat through a Telegram bot.
type Infra struct {
	bot         Sender
	adminChatID int64
}

func NewInfra(bot Sender, adminChatID int64) *Infra {
	return &Infra{bot: bot, adminChatID: adminChatID}
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf("❗ Tutor error\n\nError: %v\n\nDetails: %s", err, details)
	if utf8.RuneCountInString(text) > maxMessageLen {
		text = string([]rune(text)[:maxMessageLen])
	}

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.adminChatID, text)); sendErr != nil {
		return fmt.Errorf("send admin alert: %w", sendErr)
	}
	return nil
}
