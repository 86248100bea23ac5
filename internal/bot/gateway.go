package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Action is one clickable button attached to an outbound message. Token is
// delivered back verbatim as callback data when the button is clicked.
type Action struct {
	Label string
	Token string
}

// Gateway is the outbound half of the messaging platform. Handlers depend on
// this interface, not on the telegram client, so tests can record sends.
type Gateway interface {
	// SendText sends plain text without touching the chat keyboard.
	SendText(chatID int64, text string) error
	// SendMenu sends text and restores the main menu keyboard.
	SendMenu(chatID int64, text string) error
	// SendPrompt sends text and removes the reply keyboard, used when the
	// next input is expected as free text.
	SendPrompt(chatID int64, text string) error
	// SendActions sends text with inline action buttons.
	SendActions(chatID int64, text string, actions []Action) error
	// AckCallback confirms an action click so the client stops its spinner.
	AckCallback(callbackID string) error
}

type TelegramGateway struct {
	api *tgbotapi.BotAPI
}

func NewTelegramGateway(api *tgbotapi.BotAPI) *TelegramGateway {
	return &TelegramGateway{
		api: api,
	}
}

func (g *TelegramGateway) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("TelegramGateway.SendText: %w", err)
	}

	return nil
}

func (g *TelegramGateway) SendMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = MainMenu()
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("TelegramGateway.SendMenu: %w", err)
	}

	return nil
}

func (g *TelegramGateway) SendPrompt(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("TelegramGateway.SendPrompt: %w", err)
	}

	return nil
}

func (g *TelegramGateway) SendActions(chatID int64, text string, actions []Action) error {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, action := range actions {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(action.Label, action.Token))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("TelegramGateway.SendActions: %w", err)
	}

	return nil
}

func (g *TelegramGateway) AckCallback(callbackID string) error {
	if _, err := g.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("TelegramGateway.AckCallback: %w", err)
	}

	return nil
}
