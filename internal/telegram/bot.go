package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	greeting    = "Hola! Digame su pregunta."
	privateChat = "Este tutor es privado."
)

// Run handles updates one by one until ctx is done or the channel closes.
// Turns are sequential, which is what a single learner expects anyway.
func (app *BotApp) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	log.Printf("[bot_loop] started chatID=%d", app.chatID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[bot_loop] stopped: %v", ctx.Err())
			return
		case update, ok := <-updates:
			if !ok {
				log.Printf("[bot_loop] updates closed")
				return
			}
			if update.Message == nil {
				continue
			}
			app.handleMessage(ctx, update.Message)
		}
	}
}

func (app *BotApp) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if app.chatID != 0 && chatID != app.chatID {
		log.Printf("[bot_loop] rejected chatID=%d", chatID)
		app.send(tgbotapi.NewMessage(chatID, privateChat))
		return
	}

	switch {
	case msg.IsCommand():
		app.handleCommand(msg)
	case msg.Text == transcriptButton:
		app.handleTranscript(chatID)
	case msg.Voice != nil:
		app.handleVoice(ctx, msg)
	case msg.Text != "":
		app.handleText(ctx, msg)
	default:
		app.send(tgbotapi.NewMessage(chatID, "Envíe un mensaje de voz o de texto."))
	}
}

func (app *BotApp) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		m := tgbotapi.NewMessage(chatID, greeting)
		m.ReplyMarkup = mainKeyboard()
		app.send(m)
	case "transcript":
		app.handleTranscript(chatID)
	default:
		app.send(tgbotapi.NewMessage(chatID, "Comando desconocido."))
	}
}

func (app *BotApp) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	sent, err := app.bot.Send(c)
	if err != nil {
		log.Printf("[bot] send fail: %v", err)
		return sent, false
	}
	return sent, true
}
