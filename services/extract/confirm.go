package extract

import "strings"

// Confirmation is the outcome of a yes/no check.
type Confirmation int

const (
	ConfirmUnknown Confirmation = iota
	ConfirmYes
	ConfirmNo
)

// Button ids the gateway sends when the user taps a quick reply.
const (
	ButtonConfirmID = "confirm_booking"
	ButtonCancelID  = "cancel_booking"
)

var (
	affirmatives = []string{"sim", "confirmar", "confirmo", "ok", ButtonConfirmID, "✅"}
	negatives    = []string{"não", "nao", "cancelar", ButtonCancelID, "❌"}
)

// Confirm resolves free text (or a button id) to yes/no. Single-letter
// answers only count as exact matches; anything unrecognized re-prompts
// without consuming the attempt as a terminal failure.
func Confirm(text string) Confirmation {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return ConfirmUnknown
	}
	if normalized == "s" {
		return ConfirmYes
	}
	if normalized == "n" {
		return ConfirmNo
	}
	// Negatives first: "não confirmo" must read as a refusal.
	for _, w := range negatives {
		if strings.Contains(normalized, w) {
			return ConfirmNo
		}
	}
	for _, w := range affirmatives {
		if strings.Contains(normalized, w) {
			return ConfirmYes
		}
	}
	return ConfirmUnknown
}
