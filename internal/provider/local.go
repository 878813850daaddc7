package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clduab11/poker-helper/internal/equity"
	"github.com/clduab11/poker-helper/internal/game"
)

// #region local

// Local answers from a Monte Carlo equity heuristic without any network
// call. It reads the table snapshot embedded in the prompt, so it satisfies
// the same Provider contract as the remote clients.
type Local struct {
	calc *equity.Calculator
}

// NewLocal creates a Local provider backed by the given calculator.
func NewLocal(calc *equity.Calculator) *Local {
	return &Local{calc: calc}
}

// Name implements Provider.
func (l *Local) Name() string { return "local" }

// Call implements Provider.
func (l *Local) Call(_ context.Context, prompt string) (string, error) {
	snap, err := snapshotFromPrompt(prompt)
	if err != nil {
		return "", err
	}
	rec := l.decide(snap)
	out, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal recommendation: %w", err)
	}
	return string(out), nil
}

// snapshotFromPrompt finds the first JSON object in the prompt and decodes
// it as a snapshot.
func snapshotFromPrompt(prompt string) (game.GameSnapshot, error) {
	var snap game.GameSnapshot
	start := strings.IndexByte(prompt, '{')
	if start < 0 {
		return snap, fmt.Errorf("prompt has no snapshot")
	}
	dec := json.NewDecoder(strings.NewReader(prompt[start:]))
	if err := dec.Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return snap, err
	}
	return snap, nil
}

// decide maps equity and pot odds to an action. Thresholds: strong hands
// (equity > 0.7) raise, medium (> 0.5) call, and weaker hands call only
// when the pot odds still justify it.
func (l *Local) decide(snap game.GameSnapshot) game.Recommendation {
	hero := snap.Hero()
	if hero == nil || len(hero.Cards) < 2 {
		return game.Recommendation{
			Action:     game.ActionFold,
			Confidence: 0.5,
			Rationale:  "hero cards unknown",
		}
	}

	opponents := 0
	for _, p := range snap.Players {
		if p.Active && p.Seat != snap.HeroSeat {
			opponents++
		}
	}
	if opponents == 0 {
		opponents = 1
	}

	eq := l.calc.Equity(hero.Cards, snap.Community, opponents)
	toCall := snap.CurrentBet
	potOdds := 0.0
	if toCall > 0 {
		potOdds = toCall / (snap.Pot + toCall)
	}

	switch {
	case eq > 0.7:
		amount := snap.Pot * 0.75
		if amount < toCall {
			amount = toCall * 2
		}
		return game.Recommendation{
			Action:     game.ActionRaise,
			Amount:     amount,
			Confidence: 0.9,
			Rationale:  fmt.Sprintf("strong hand, equity %.2f against %d opponents", eq, opponents),
		}
	case eq > 0.5:
		if toCall == 0 {
			return game.Recommendation{
				Action:     game.ActionCheck,
				Confidence: 0.7,
				Rationale:  fmt.Sprintf("medium hand, equity %.2f, nothing to call", eq),
			}
		}
		return game.Recommendation{
			Action:     game.ActionCall,
			Amount:     toCall,
			Confidence: 0.7,
			Rationale:  fmt.Sprintf("medium hand, equity %.2f", eq),
		}
	case toCall > 0 && eq > potOdds:
		return game.Recommendation{
			Action:     game.ActionCall,
			Amount:     toCall,
			Confidence: 0.6,
			Rationale:  fmt.Sprintf("equity %.2f beats pot odds %.2f", eq, potOdds),
		}
	case toCall == 0:
		return game.Recommendation{
			Action:     game.ActionCheck,
			Confidence: 0.6,
			Rationale:  fmt.Sprintf("weak hand, equity %.2f, free card", eq),
		}
	default:
		return game.Recommendation{
			Action:     game.ActionFold,
			Confidence: 0.8,
			Rationale:  fmt.Sprintf("weak hand, equity %.2f below pot odds %.2f", eq, potOdds),
		}
	}
}

// #endregion local
