package telegram

import (
	"context"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vovarama1992/lang_tutor/internal/conversation"
	"github.com/Vovarama1992/lang_tutor/internal/tutor"
)

type Flow interface {
	AudioTurn(ctx context.Context, sess *conversation.Session, audioPath string) (*tutor.TurnResult, error)
	TextTurn(ctx context.Context, sess *conversation.Session, text string) (*tutor.TurnResult, error)
	Transcript(sess *conversation.Session) string
}

// Bot is the slice of *tgbotapi.BotAPI the tutor uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// BotApp talks to a single learner. A non-zero chatID restricts the bot to
// that chat; everyone else gets a refusal.
type BotApp struct {
	flow   Flow
	sess   *conversation.Session
	bot    Bot
	chatID int64

	httpClient *http.Client
	tmpDir     string
}

func NewBotApp(flow Flow, sess *conversation.Session, bot Bot, chatID int64) *BotApp {
	return &BotApp{
		flow:       flow,
		sess:       sess,
		bot:        bot,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tmpDir:     os.TempDir(),
	}
}

// Updates opens the long-polling channel of a real bot.
func Updates(bot *tgbotapi.BotAPI) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	return bot.GetUpdatesChan(u)
}
