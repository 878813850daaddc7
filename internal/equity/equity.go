package equity

import (
	"math/rand"

	"github.com/clduab11/poker-helper/internal/game"
)

// #region calculator

// Calculator estimates hand equity by Monte Carlo simulation against random
// opponent holdings.
type Calculator struct {
	sims int
	rng  *rand.Rand
}

// NewCalculator creates a calculator running sims simulations per estimate.
func NewCalculator(sims int, seed int64) *Calculator {
	return &Calculator{sims: sims, rng: rand.New(rand.NewSource(seed))}
}

// #endregion calculator

// #region equity

// Equity returns the probability [0,1] that the hole cards win against
// opponents random hands, given the current community cards. Ties count as
// half a win. Returns 0 for malformed input (not exactly two hole cards).
func (c *Calculator) Equity(hole, community []game.Card, opponents int) float64 {
	if len(hole) != 2 || opponents < 1 {
		return 0
	}

	known := make(map[game.Card]bool, len(hole)+len(community))
	for _, card := range hole {
		known[card] = true
	}
	for _, card := range community {
		known[card] = true
	}

	var available []game.Card
	for _, card := range Deck() {
		if !known[card] {
			available = append(available, card)
		}
	}

	wins, ties := 0, 0
	deck := make([]game.Card, len(available))
	for i := 0; i < c.sims; i++ {
		copy(deck, available)
		c.rng.Shuffle(len(deck), func(a, b int) { deck[a], deck[b] = deck[b], deck[a] })

		idx := 0
		oppHands := make([][]game.Card, opponents)
		for o := range oppHands {
			oppHands[o] = deck[idx : idx+2]
			idx += 2
		}

		board := append(append([]game.Card{}, community...), deck[idx:idx+5-len(community)]...)

		heroScore := Score(append(append([]game.Card{}, hole...), board...))
		best := 0
		for _, opp := range oppHands {
			if s := Score(append(append([]game.Card{}, opp...), board...)); s > best {
				best = s
			}
		}

		if heroScore > best {
			wins++
		} else if heroScore == best {
			ties++
		}
	}

	return (float64(wins) + 0.5*float64(ties)) / float64(c.sims)
}

// #endregion equity

// #region deck

// Deck returns the standard 52-card deck.
func Deck() []game.Card {
	ranks := []byte{'A', 'K', 'Q', 'J', 'T', '9', '8', '7', '6', '5', '4', '3', '2'}
	suits := []byte{'h', 'd', 'c', 's'}
	deck := make([]game.Card, 0, 52)
	for _, r := range ranks {
		for _, s := range suits {
			deck = append(deck, game.Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// #endregion deck
