// Package overlay renders decisions for the player. The terminal renderer
// is the only implementation; it writes a compact one-block summary whose
// prominence follows the recommendation's urgency.
package overlay

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/clduab11/poker-helper/internal/decide"
	"github.com/clduab11/poker-helper/internal/game"
)

// #region terminal

// Terminal renders decisions as text.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal creates a Terminal writing to stdout.
func NewTerminal() *Terminal {
	return &Terminal{out: os.Stdout}
}

// NewTerminalWriter creates a Terminal writing to w. Test use.
func NewTerminalWriter(w io.Writer) *Terminal {
	return &Terminal{out: w}
}

// Show renders one decision.
func (t *Terminal) Show(d decide.Decision, snap game.GameSnapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := d.Recommendation
	urgency := rec.UrgencyLevel()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", marker(urgency), strings.ToUpper(string(rec.Action)))
	if rec.Amount > 0 {
		fmt.Fprintf(&b, " %.1f", rec.Amount)
	}
	fmt.Fprintf(&b, "  (%.0f%% confident", rec.Confidence*100)
	if d.Cached {
		b.WriteString(", cached")
	}
	if d.Fallback {
		b.WriteString(", fallback")
	}
	fmt.Fprintf(&b, ", %dms)\n", d.Latency.Milliseconds())
	fmt.Fprintf(&b, "  %s | pot %.1f", snap.Phase, snap.Pot)
	if hero := snap.Hero(); hero != nil && len(hero.Cards) == 2 {
		fmt.Fprintf(&b, " | holding %s %s", hero.Cards[0], hero.Cards[1])
	}
	b.WriteString("\n")
	if rec.Rationale != "" {
		fmt.Fprintf(&b, "  %s\n", rec.Rationale)
	}

	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return fmt.Errorf("write display: %w", err)
	}

	if urgency == game.UrgencyCritical {
		log.Printf("[DISPLAY] low-confidence recommendation surfaced: %s", rec.Action)
	}
	return nil
}

// marker maps urgency to a leading symbol so the eye can triage quickly.
func marker(u game.Urgency) string {
	switch u {
	case game.UrgencyHigh:
		return "!!!"
	case game.UrgencyMedium:
		return " >>"
	case game.UrgencyLow:
		return "  ."
	default:
		return " ??"
	}
}

// #endregion terminal
