package telegram

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vovarama1992/lang_tutor/internal/ai"
	"github.com/Vovarama1992/lang_tutor/internal/speech"
	"github.com/Vovarama1992/lang_tutor/internal/tutor"
)

// Telegram rejects messages longer than 4096 characters.
const maxMessageRunes = 4000

func (app *BotApp) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log.Printf("[text] start chatID=%d", chatID)

	thinking, ok := app.send(tgbotapi.NewMessage(chatID, "🤖 Pensando…"))
	res, err := app.flow.TextTurn(ctx, app.sess, msg.Text)
	if ok {
		app.bot.Request(tgbotapi.NewDeleteMessage(chatID, thinking.MessageID))
	}
	if err != nil {
		log.Printf("[text] turn fail chatID=%d: %v", chatID, err)
		app.send(tgbotapi.NewMessage(chatID, failureText(err)))
		return
	}

	app.deliver(ctx, chatID, res)
	log.Printf("[text] done chatID=%d turn=%s", chatID, res.TurnID)
}

func (app *BotApp) handleTranscript(chatID int64) {
	text := app.flow.Transcript(app.sess)
	if text == "" {
		app.send(tgbotapi.NewMessage(chatID, "Todavía no hay conversación."))
		return
	}
	for _, part := range splitMessage(text, maxMessageRunes) {
		app.send(tgbotapi.NewMessage(chatID, part))
	}
}

// deliver sends the reply text, then the spoken reply when synthesis
// produced a file.
func (app *BotApp) deliver(ctx context.Context, chatID int64, res *tutor.TurnResult) {
	for _, part := range splitMessage(res.Reply, maxMessageRunes) {
		app.send(tgbotapi.NewMessage(chatID, part))
	}

	syn := res.Synthesis
	if syn.Status != speech.SynthesisCompleted || syn.AudioPath == "" {
		log.Printf("[voice] no audio turn=%s status=%s detail=%q", res.TurnID, syn.Status, syn.Detail)
		return
	}

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FilePath(syn.AudioPath))
	if d, err := speech.AudioDuration(ctx, syn.AudioPath); err == nil {
		voice.Duration = int(d.Seconds())
	}
	if _, ok := app.send(voice); ok {
		log.Printf("[voice] sent 🎤 turn=%s", res.TurnID)
	}
}

func failureText(err error) string {
	switch {
	case errors.Is(err, speech.ErrTranscription):
		return "⚠️ No pude entender el audio. Inténtelo de nuevo."
	case errors.Is(err, ai.ErrRemoteService):
		return "⚠️ El tutor no está disponible ahora. Inténtelo más tarde."
	default:
		return "⚠️ Error al procesar la pregunta."
	}
}

// splitMessage cuts text into chunks of at most limit runes, preferring the
// blank line between transcript entries.
func splitMessage(text string, limit int) []string {
	var parts []string
	for utf8.RuneCountInString(text) > limit {
		cut := runeOffset(text, limit)
		if i := strings.LastIndex(text[:cut], "\n\n"); i > 0 {
			cut = i + 2
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

func runeOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
