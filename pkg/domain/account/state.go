package account

// State is the freeze lifecycle position of one account. ACTIVE is initial;
// a fresh login event always returns the account to ACTIVE.
type State string

const (
	StateActive   State = "ACTIVE"
	StateFlagged  State = "FLAGGED"
	StateFrozen   State = "FROZEN"
	StateUnfrozen State = "UNFROZEN"
)

// CanTransition reports whether moving from s to next is a legal step.
func (s State) CanTransition(next State) bool {
	switch next {
	case StateFlagged:
		return s == StateActive || s == StateUnfrozen
	case StateFrozen:
		return s == StateFlagged
	case StateUnfrozen:
		return s == StateFrozen
	case StateActive:
		// Any state re-enters ACTIVE on a fresh login event.
		return true
	default:
		return false
	}
}
