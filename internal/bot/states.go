package bot

type Step string

const (
	StepIdle             Step = "idle"
	StepAwaitingNickname Step = "awaiting_nickname"

	// Passport flow steps. Reserved: no handler transitions into anything
	// past full_name yet, text sent while in these steps falls through to
	// the fallback route.
	StepAwaitingFullName Step = "awaiting_full_name"
	StepAwaitingFamily   Step = "awaiting_family"
	StepAwaitingAge      Step = "awaiting_age"
	StepAwaitingAddress  Step = "awaiting_address"
)

// Session is the ephemeral per-chat dialog state. Data holds partial input
// collected during a multi-turn dialog and is discarded together with the
// session on completion or cancellation.
type Session struct {
	Step Step
	Data map[string]string
}
