package game

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// #region hash

// StateHash computes a stable hash of the decision-relevant parts of a
// snapshot. The serialization is canonical: explicit field order, players
// sorted by seat, so any two structurally equal snapshots hash identically
// regardless of extraction order. CapturedAt and Warnings are excluded on
// purpose: two frames of the same situation must produce the same key.
func StateHash(s GameSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "phase=%s|pot=%.2f|bet=%.2f|hero=%d", s.Phase, s.Pot, s.CurrentBet, s.HeroSeat)

	b.WriteString("|board=")
	for _, c := range s.Community {
		b.WriteString(c.String())
	}

	players := make([]Player, len(s.Players))
	copy(players, s.Players)
	sort.Slice(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })

	for _, p := range players {
		fmt.Fprintf(&b, "|p%d=%s,%.2f,%t,%t,", p.Seat, p.Name, p.Stack, p.Active, p.Dealer)
		for _, c := range p.Cards {
			b.WriteString(c.String())
		}
		b.WriteByte(',')
		b.WriteString(strings.Join(p.RecentActions, ";"))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// #endregion hash
