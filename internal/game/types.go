package game

import (
	"errors"
	"fmt"
	"time"
)

// #region errors
var (
	// ErrInvalidSnapshot indicates a snapshot failed structural validation.
	ErrInvalidSnapshot = errors.New("invalid game snapshot")
	// ErrInvalidCard indicates a card string could not be parsed.
	ErrInvalidCard = errors.New("invalid card")
)

// #endregion errors

// #region phase

// Phase identifies the betting round of a hand.
type Phase string

const (
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// Known reports whether p is one of the recognized betting rounds.
func (p Phase) Known() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver, PhaseShowdown:
		return true
	}
	return false
}

// #endregion phase

// #region card

// Card is a playing card as extracted from the table: rank 'A' 'K' 'Q' 'J'
// 'T' '9'..'2', suit 'h' 'd' 'c' 's'.
type Card struct {
	Rank byte
	Suit byte
}

// String renders the card in compact form, e.g. "Ah" or "Td".
func (c Card) String() string {
	return string([]byte{c.Rank, c.Suit})
}

// MarshalJSON encodes the card as its compact string form, so snapshots
// serialize to "Ah" rather than a rank/suit byte pair.
func (c Card) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes the compact string form.
func (c *Card) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidCard, data)
	}
	parsed, err := ParseCard(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// RankValue returns the comparable rank value, ace high (A=14, K=13, .. 2=2).
func (c Card) RankValue() int {
	switch c.Rank {
	case 'A':
		return 14
	case 'K':
		return 13
	case 'Q':
		return 12
	case 'J':
		return 11
	case 'T':
		return 10
	default:
		return int(c.Rank - '0')
	}
}

// ParseCard converts a compact card string ("Ah", "Td") into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	c := Card{Rank: s[0], Suit: s[1]}
	if c.RankValue() < 2 || c.RankValue() > 14 {
		return Card{}, fmt.Errorf("%w: rank %q", ErrInvalidCard, s)
	}
	switch c.Suit {
	case 'h', 'd', 'c', 's':
	default:
		return Card{}, fmt.Errorf("%w: suit %q", ErrInvalidCard, s)
	}
	return c, nil
}

// MustCard parses a card string and panics on failure. Test and fixture use only.
func MustCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// #endregion card

// #region player

// Player is one seat's extracted record within a snapshot.
type Player struct {
	Seat          int      `json:"seat"`
	Name          string   `json:"name"`
	Stack         float64  `json:"stack"`
	Cards         []Card   `json:"cards,omitempty"` // visible hole cards, usually hero only
	RecentActions []string `json:"recent_actions,omitempty"`
	Active        bool     `json:"active"`
	Dealer        bool     `json:"dealer"`
}

// #endregion player

// #region snapshot

// GameSnapshot is one observed instant of the external table. Immutable by
// convention: producers hand it off and never mutate it afterwards.
type GameSnapshot struct {
	Phase      Phase     `json:"phase"`
	Players    []Player  `json:"players"`
	Community  []Card    `json:"community,omitempty"`
	Pot        float64   `json:"pot"`
	CurrentBet float64   `json:"current_bet"`
	HeroSeat   int       `json:"hero_seat"`
	CapturedAt time.Time `json:"captured_at"`
	Warnings   []string  `json:"warnings,omitempty"` // extraction quality notes
}

// Validate checks the structural preconditions every downstream component
// relies on: at least one player record and a recognized phase tag.
func (s GameSnapshot) Validate() error {
	if len(s.Players) == 0 {
		return fmt.Errorf("%w: no players", ErrInvalidSnapshot)
	}
	if !s.Phase.Known() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidSnapshot, s.Phase)
	}
	return nil
}

// Hero returns the hero's player record, or nil when the hero seat is not
// present in the snapshot.
func (s GameSnapshot) Hero() *Player {
	for i := range s.Players {
		if s.Players[i].Seat == s.HeroSeat {
			return &s.Players[i]
		}
	}
	return nil
}

// #endregion snapshot
