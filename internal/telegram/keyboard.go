package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const transcriptButton = "📜 Transcripción"

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(transcriptButton),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
