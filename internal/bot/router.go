package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// route is one (predicate, handler) pair. Routes are evaluated in order and
// the first match wins; the fallback route is registered last with an
// always-true predicate, so dispatch always resolves.
type route struct {
	match  func(upd tgbotapi.Update, sess *Session) bool
	handle func(ctx context.Context, upd tgbotapi.Update, sess *Session)
}

func isCommand(upd tgbotapi.Update, names ...string) bool {
	if upd.Message == nil || !upd.Message.IsCommand() {
		return false
	}

	for _, name := range names {
		if upd.Message.Command() == name {
			return true
		}
	}

	return false
}

// isCancelEvent matches the /cancel command and the case-insensitive cancel
// phrases typed as plain text.
func isCancelEvent(upd tgbotapi.Update) bool {
	if isCommand(upd, "cancel") {
		return true
	}

	if upd.Message == nil {
		return false
	}

	switch NormalizeText(upd.Message.Text) {
	case "отмена", "cancel":
		return true
	}

	return false
}

func hasText(upd tgbotapi.Update) bool {
	return upd.Message != nil && upd.Message.Text != ""
}

// updateChatID resolves the chat an update belongs to; per-chat ordering is
// keyed on this value.
func updateChatID(upd tgbotapi.Update) (int64, bool) {
	if upd.Message != nil && upd.Message.Chat != nil {
		return upd.Message.Chat.ID, true
	}

	if upd.CallbackQuery != nil {
		if upd.CallbackQuery.Message != nil && upd.CallbackQuery.Message.Chat != nil {
			return upd.CallbackQuery.Message.Chat.ID, true
		}
		if upd.CallbackQuery.From != nil {
			return upd.CallbackQuery.From.ID, true
		}
	}

	return 0, false
}
