package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	passportMenuButton = "🛂 Мой Паспорт"
	coinMenuButton     = "🪙 Купить Мёдкоин"
)

func MainMenu() tgbotapi.ReplyKeyboardMarkup {
	menu := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(passportMenuButton),
			tgbotapi.NewKeyboardButton(coinMenuButton),
		),
	)
	menu.ResizeKeyboard = true

	return menu
}

func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ToLower(text)

	return text
}
