package replay

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/game"
)

func fixtureFrames() []game.GameSnapshot {
	base := game.GameSnapshot{
		Players: []game.Player{
			{Seat: 1, Name: "hero", Stack: 200, Cards: []game.Card{game.MustCard("Qs"), game.MustCard("Qd")}, Active: true},
			{Seat: 2, Name: "villain", Stack: 150, Active: true},
		},
		HeroSeat: 1,
	}

	preflop := base
	preflop.Phase = game.PhasePreflop
	preflop.Pot = 3

	flop := base
	flop.Phase = game.PhaseFlop
	flop.Pot = 12
	flop.Community = []game.Card{game.MustCard("Qh"), game.MustCard("7c"), game.MustCard("2d")}

	turn := flop
	turn.Phase = game.PhaseTurn
	turn.Pot = 30
	turn.Community = append(turn.Community[:3:3], game.MustCard("9s"))

	return []game.GameSnapshot{preflop, flop, turn}
}

func writeFixture(t *testing.T, f Fixture) string {
	t.Helper()
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "hand.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func replayConfig() config.Config {
	cfg := config.Default()
	cfg.ProviderTimeoutMs = 2000
	return cfg
}

func TestLoadFixtureValidates(t *testing.T) {
	path := writeFixture(t, Fixture{Name: "set over set", Frames: fixtureFrames()})
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if f.Name != "set over set" || len(f.Frames) != 3 {
		t.Fatalf("unexpected fixture: %+v", f)
	}

	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	empty := writeFixture(t, Fixture{Name: "empty"})
	if _, err := LoadFixture(empty); err == nil {
		t.Fatal("expected error for fixture without frames")
	}
}

func TestLoadFixtureRejectsInvalidFrames(t *testing.T) {
	frames := fixtureFrames()
	frames[1].Players = nil
	path := writeFixture(t, Fixture{Name: "broken", Frames: frames})
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for invalid frame")
	}
}

func TestScriptRepeatsLastResponse(t *testing.T) {
	s := NewScript([]string{"a", "b"})
	for _, want := range []string{"a", "b", "b", "b"} {
		got, err := s.Call(context.Background(), "")
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}

	empty := NewScript(nil)
	if _, err := empty.Call(context.Background(), ""); err == nil {
		t.Fatal("empty script must fail")
	}
}

func TestRunReplaysScriptedHand(t *testing.T) {
	f := Fixture{
		Name:   "scripted",
		Frames: fixtureFrames(),
		Responses: []string{
			`{"action":"call","confidence":0.7,"rationale":"pot odds"}`,
			`{"action":"raise","amount":20,"confidence":0.95,"rationale":"top set"}`,
		},
	}

	var out strings.Builder
	summary, err := NewRunner(replayConfig(), &out).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if summary.Frames != 3 {
		t.Fatalf("expected 3 frames, got %d", summary.Frames)
	}
	if summary.Decisions != 3 {
		t.Fatalf("each frame changes the pot, expected 3 decisions, got %d", summary.Decisions)
	}
	rendered := out.String()
	if !strings.Contains(rendered, "CALL") || !strings.Contains(rendered, "RAISE") {
		t.Fatalf("scripted actions missing from output:\n%s", rendered)
	}
}

func TestRunFallsBackToHeuristicWithoutScript(t *testing.T) {
	f := Fixture{Name: "heuristic", Frames: fixtureFrames()}

	var out strings.Builder
	summary, err := NewRunner(replayConfig(), &out).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if summary.Decisions != 3 {
		t.Fatalf("expected 3 decisions, got %d", summary.Decisions)
	}
	if out.Len() == 0 {
		t.Fatal("expected rendered output")
	}
}
