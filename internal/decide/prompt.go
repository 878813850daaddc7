package decide

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clduab11/poker-helper/internal/equity"
	"github.com/clduab11/poker-helper/internal/game"
)

// #region prompt

const promptEquitySims = 500

// BuildPrompt renders the snapshot into the text sent to a provider. The
// snapshot JSON is embedded verbatim so heuristic providers can read it
// back, and a Monte Carlo equity estimate is appended when the hero's cards
// are visible.
func BuildPrompt(snap game.GameSnapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are advising a single poker player in a Texas Hold'em cash game.\n")
	b.WriteString("Current table state:\n")
	b.Write(data)
	b.WriteString("\n\nThe player is at seat ")
	fmt.Fprintf(&b, "%d", snap.HeroSeat)
	b.WriteString(".")
	if hero := snap.Hero(); hero != nil && len(hero.Cards) == 2 {
		opponents := 0
		for _, p := range snap.Players {
			if p.Active && p.Seat != snap.HeroSeat {
				opponents++
			}
		}
		if opponents == 0 {
			opponents = 1
		}
		eq := equity.NewCalculator(promptEquitySims, 1).Equity(hero.Cards, snap.Community, opponents)
		fmt.Fprintf(&b, " Estimated hand equity against %d opponent(s): %.2f.", opponents, eq)
	}
	b.WriteString(" Recommend exactly one action.\n")
	b.WriteString(`Respond with a single JSON object: {"action": "fold|check|call|raise|all_in", "amount": <number, 0 if not applicable>, "confidence": <0.0-1.0>, "rationale": "<one sentence>"}`)
	b.WriteString("\nNo prose outside the JSON object.")
	return b.String(), nil
}

// #endregion prompt
