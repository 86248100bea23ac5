package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Action tokens carried in inline buttons. The wire format is fixed:
// "<action>_account_<telegram user id>", split on underscores, so the id
// field must never contain one.
const (
	actionConfirm = "confirm"
	actionCancel  = "cancel"
)

func ConfirmAccountToken(telegramUserID int64) string {
	return fmt.Sprintf("%s_account_%d", actionConfirm, telegramUserID)
}

func CancelAccountToken(telegramUserID int64) string {
	return fmt.Sprintf("%s_account_%d", actionCancel, telegramUserID)
}

// ParseActionToken validates a callback token and extracts the action and
// subject id. Malformed tokens are an error, never a panic: callback data is
// attacker-controllable through old or forged messages.
func ParseActionToken(token string) (string, int64, error) {
	parts := strings.Split(token, "_")
	if len(parts) != 3 || parts[1] != "account" {
		return "", 0, fmt.Errorf("malformed action token %q", token)
	}

	if parts[0] != actionConfirm && parts[0] != actionCancel {
		return "", 0, fmt.Errorf("unknown action in token %q", token)
	}

	telegramUserID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed action token %q: %w", token, err)
	}

	return parts[0], telegramUserID, nil
}
