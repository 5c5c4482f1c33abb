package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	fileID := msg.Voice.FileID

	log.Printf("[voice] start chatID=%d fileID=%s", chatID, fileID)

	path, err := app.downloadVoice(ctx, fileID)
	if err != nil {
		log.Printf("[voice] download fail chatID=%d err=%v", chatID, err)
		app.send(tgbotapi.NewMessage(chatID, "⚠️ No se pudo descargar el mensaje de voz."))
		return
	}
	defer os.Remove(path)

	app.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatRecordVoice))

	res, err := app.flow.AudioTurn(ctx, app.sess, path)
	if err != nil {
		log.Printf("[voice] turn fail chatID=%d err=%v", chatID, err)
		app.send(tgbotapi.NewMessage(chatID, failureText(err)))
		return
	}
	log.Printf("[voice] transcribed: %q", res.Question)

	app.deliver(ctx, chatID, res)
	log.Printf("[voice] done chatID=%d turn=%s", chatID, res.TurnID)
}

func (app *BotApp) downloadVoice(ctx context.Context, fileID string) (string, error) {
	url, err := app.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := app.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download status %d", resp.StatusCode)
	}

	path := filepath.Join(app.tmpDir, fileID+".ogg")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
