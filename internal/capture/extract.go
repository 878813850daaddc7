package capture

import (
	"encoding/json"
	"fmt"

	"github.com/clduab11/poker-helper/internal/game"
)

// #region extractor

// Extractor decodes raw frames into validated snapshots. Recoverable
// oddities (missing hero cards, inactive hero) become warnings on the
// snapshot rather than failures.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract decodes frame.Data as a snapshot. The frame's capture time wins
// over any timestamp in the payload.
func (e *Extractor) Extract(frame RawFrame) (game.GameSnapshot, error) {
	var snap game.GameSnapshot
	if err := json.Unmarshal(frame.Data, &snap); err != nil {
		return game.GameSnapshot{}, fmt.Errorf("decode frame: %w", err)
	}
	snap.CapturedAt = frame.CapturedAt

	if err := snap.Validate(); err != nil {
		return game.GameSnapshot{}, err
	}

	hero := snap.Hero()
	switch {
	case hero == nil:
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("hero seat %d not found", snap.HeroSeat))
	case len(hero.Cards) < 2:
		snap.Warnings = append(snap.Warnings, "hero cards not visible")
	case !hero.Active:
		snap.Warnings = append(snap.Warnings, "hero is not active in this hand")
	}
	for _, p := range snap.Players {
		if p.Active && p.Stack <= 0 {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("active player at seat %d has no stack", p.Seat))
		}
	}
	return snap, nil
}

// #endregion extractor
