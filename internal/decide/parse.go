package decide

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clduab11/poker-helper/internal/game"
)

// #region parse

// ErrUnparseable indicates a provider response with no usable recommendation.
var ErrUnparseable = errors.New("unparseable provider response")

type rawRecommendation struct {
	Action     string  `json:"action"`
	Amount     float64 `json:"amount"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// ParseRecommendation extracts the first well-formed JSON object from raw
// and validates it. Providers wrap their JSON in prose or code fences often
// enough that a strict whole-string decode would reject good answers; a
// stray brace in the surrounding prose is skipped over, not fatal.
func ParseRecommendation(raw string) (game.Recommendation, error) {
	parsed, ok := firstObject(raw)
	if !ok {
		return game.Recommendation{}, fmt.Errorf("%w: no JSON object found", ErrUnparseable)
	}

	action := strings.ToLower(strings.TrimSpace(parsed.Action))
	if !game.ValidAction(action) {
		return game.Recommendation{}, fmt.Errorf("%w: unknown action %q", ErrUnparseable, parsed.Action)
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	amount := parsed.Amount
	if amount < 0 {
		amount = 0
	}

	return game.Recommendation{
		Action:     game.Action(action),
		Amount:     amount,
		Confidence: confidence,
		Rationale:  strings.TrimSpace(parsed.Rationale),
		CreatedAt:  time.Now(),
	}, nil
}

// firstObject tries each '{' in raw until one decodes.
func firstObject(raw string) (rawRecommendation, bool) {
	for idx := 0; idx < len(raw); idx++ {
		off := strings.IndexByte(raw[idx:], '{')
		if off < 0 {
			break
		}
		idx += off
		var parsed rawRecommendation
		if err := json.NewDecoder(strings.NewReader(raw[idx:])).Decode(&parsed); err == nil {
			return parsed, true
		}
	}
	return rawRecommendation{}, false
}

// #endregion parse
