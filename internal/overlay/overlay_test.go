package overlay

import (
	"strings"
	"testing"
	"time"

	"github.com/clduab11/poker-helper/internal/decide"
	"github.com/clduab11/poker-helper/internal/game"
)

func sampleSnapshot() game.GameSnapshot {
	return game.GameSnapshot{
		Phase: game.PhaseTurn,
		Players: []game.Player{
			{Seat: 1, Name: "hero", Stack: 200, Cards: []game.Card{game.MustCard("Ah"), game.MustCard("Kh")}, Active: true},
			{Seat: 2, Name: "villain", Stack: 100, Active: true},
		},
		Pot:      60,
		HeroSeat: 1,
	}
}

func TestShowRendersDecision(t *testing.T) {
	var buf strings.Builder
	term := NewTerminalWriter(&buf)

	err := term.Show(decide.Decision{
		Recommendation: game.Recommendation{
			Action:     game.ActionRaise,
			Amount:     45,
			Confidence: 0.9,
			Rationale:  "top pair, strong kicker",
		},
		Provider: "local",
		Latency:  30 * time.Millisecond,
	}, sampleSnapshot())
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"RAISE", "45.0", "90% confident", "turn", "pot 60.0", "Ah Kh", "top pair"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowMarksCacheAndFallback(t *testing.T) {
	var buf strings.Builder
	term := NewTerminalWriter(&buf)

	err := term.Show(decide.Decision{
		Recommendation: game.Recommendation{Action: game.ActionFold, Confidence: 0.0},
		Cached:         true,
		Fallback:       true,
	}, sampleSnapshot())
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "cached") || !strings.Contains(out, "fallback") {
		t.Fatalf("provenance flags missing:\n%s", out)
	}
}

func TestUrgencyMarkers(t *testing.T) {
	cases := []struct {
		rec    game.Recommendation
		marker string
	}{
		{game.Recommendation{Action: game.ActionAllIn, Confidence: 0.9}, "!!!"},
		{game.Recommendation{Action: game.ActionCall, Confidence: 0.85}, ">>"},
		{game.Recommendation{Action: game.ActionCheck, Confidence: 0.7}, "."},
		{game.Recommendation{Action: game.ActionFold, Confidence: 0.1}, "??"},
	}
	for _, c := range cases {
		var buf strings.Builder
		term := NewTerminalWriter(&buf)
		if err := term.Show(decide.Decision{Recommendation: c.rec}, sampleSnapshot()); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		if !strings.Contains(buf.String(), c.marker) {
			t.Fatalf("action %s confidence %.2f: expected marker %q in:\n%s", c.rec.Action, c.rec.Confidence, c.marker, buf.String())
		}
	}
}
