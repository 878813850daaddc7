// Package equity scores hold'em hands and estimates win probability by
// Monte Carlo simulation. Scores inform the prompt given to the reasoning
// provider and the local heuristic provider; they are advisory context, not
// a solver.
package equity

import (
	"sort"

	"github.com/clduab11/poker-helper/internal/game"
)

// #region categories

// Hand categories, weakest to strongest.
const (
	HighCard = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"high card", "one pair", "two pair", "three of a kind", "straight",
	"flush", "full house", "four of a kind", "straight flush",
}

// CategoryName returns the human-readable name for a Score's category.
func CategoryName(score int) string {
	cat := score / categoryBase
	if cat < 0 || cat >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[cat]
}

const categoryBase = 1 << 20

// #endregion categories

// #region score

// Score evaluates a 5-7 card hand and returns a comparable strength value:
// higher is stronger. The top bits carry the category, the low bits the
// deciding ranks within it.
func Score(cards []game.Card) int {
	rankCounts := make(map[int]int)
	suitCounts := make(map[byte][]int) // suit -> rank values
	for _, c := range cards {
		v := c.RankValue()
		rankCounts[v]++
		suitCounts[c.Suit] = append(suitCounts[c.Suit], v)
	}

	uniqueRanks := make([]int, 0, len(rankCounts))
	for v := range rankCounts {
		uniqueRanks = append(uniqueRanks, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(uniqueRanks)))

	var flushRanks []int
	for _, ranks := range suitCounts {
		if len(ranks) >= 5 {
			sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
			flushRanks = ranks
			break
		}
	}

	if flushRanks != nil {
		if high, ok := straightHigh(dedupe(flushRanks)); ok {
			return StraightFlush*categoryBase + high
		}
	}

	quad, trips, pairs := 0, []int{}, []int{}
	for _, v := range uniqueRanks {
		switch rankCounts[v] {
		case 4:
			quad = v
		case 3:
			trips = append(trips, v)
		case 2:
			pairs = append(pairs, v)
		}
	}

	switch {
	case quad != 0:
		return FourOfAKind*categoryBase + quad
	case len(trips) >= 2:
		// Two sets of trips play as a full house: higher trips plus pair.
		return FullHouse*categoryBase + trips[0]*16 + trips[1]
	case len(trips) == 1 && len(pairs) >= 1:
		return FullHouse*categoryBase + trips[0]*16 + pairs[0]
	case flushRanks != nil:
		return Flush*categoryBase + ranksValue(flushRanks[:5])
	}

	if high, ok := straightHigh(uniqueRanks); ok {
		return Straight*categoryBase + high
	}

	switch {
	case len(trips) == 1:
		return ThreeOfAKind*categoryBase + trips[0]
	case len(pairs) >= 2:
		return TwoPair*categoryBase + pairs[0]*16 + pairs[1]
	case len(pairs) == 1:
		return OnePair*categoryBase + pairs[0]*16*16*16 + ranksValue(kickers(uniqueRanks, pairs[0], 3))
	}

	n := len(uniqueRanks)
	if n > 5 {
		n = 5
	}
	return HighCard*categoryBase + ranksValue(uniqueRanks[:n])
}

// #endregion score

// #region helpers

// straightHigh reports the high card of the best straight within the
// descending-sorted unique ranks, handling the A-5 wheel.
func straightHigh(ranks []int) (int, bool) {
	for i := 0; i+4 < len(ranks); i++ {
		if ranks[i]-ranks[i+4] == 4 {
			return ranks[i], true
		}
	}
	// wheel: A,5,4,3,2
	has := make(map[int]bool, len(ranks))
	for _, v := range ranks {
		has[v] = true
	}
	if has[14] && has[5] && has[4] && has[3] && has[2] {
		return 5, true
	}
	return 0, false
}

func dedupe(sorted []int) []int {
	out := sorted[:0:0]
	for i, v := range sorted {
		if i == 0 || sorted[i-1] != v {
			out = append(out, v)
		}
	}
	return out
}

// ranksValue packs up to five rank values into a base-16 integer so
// lexicographic rank comparison becomes numeric comparison.
func ranksValue(ranks []int) int {
	v := 0
	for _, r := range ranks {
		v = v*16 + r
	}
	return v
}

// kickers returns up to n ranks excluding the paired rank.
func kickers(ranks []int, exclude, n int) []int {
	out := make([]int, 0, n)
	for _, v := range ranks {
		if v == exclude {
			continue
		}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}

// #endregion helpers
