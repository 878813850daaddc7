package game

import "time"

// #region action

// Action is the recommended poker action.
type Action string

const (
	ActionFold  Action = "fold"
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
	ActionAllIn Action = "all_in"
)

// ValidAction reports whether s names a recognized action.
func ValidAction(s string) bool {
	switch Action(s) {
	case ActionFold, ActionCheck, ActionCall, ActionRaise, ActionAllIn:
		return true
	}
	return false
}

// #endregion action

// #region urgency

// Urgency grades how loudly a recommendation should be surfaced.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// #endregion urgency

// #region recommendation

// Recommendation is the pipeline's final output. Immutable once created;
// ownership passes to whoever displays or stores it.
type Recommendation struct {
	Action     Action    `json:"action"`
	Amount     float64   `json:"amount,omitempty"` // suggested bet/raise size, 0 = n/a
	Confidence float64   `json:"confidence"`       // [0, 1]
	Rationale  string    `json:"rationale"`
	CreatedAt  time.Time `json:"created_at"`
}

// UrgencyLevel derives a display urgency from the action and confidence.
// All-in and near-certain spots surface loudly, routine confident spots
// quietly, and very uncertain spots demand attention.
func (r Recommendation) UrgencyLevel() Urgency {
	switch {
	case r.Action == ActionAllIn || r.Confidence > 0.95:
		return UrgencyHigh
	case r.Confidence > 0.8:
		return UrgencyMedium
	case r.Confidence > 0.6:
		return UrgencyLow
	default:
		return UrgencyCritical
	}
}

// #endregion recommendation
