package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/clduab11/poker-helper/internal/equity"
	"github.com/clduab11/poker-helper/internal/game"
)

// #region simulator

// Simulator deals scripted hands and emits them as frames, one street per
// capture. It stands in for a real table when developing or demoing the
// pipeline.
type Simulator struct {
	rng      *rand.Rand
	heroSeat int
	seats    int

	phase   int // index into streets
	players []game.Player
	board   []game.Card
	pot     float64
	bet     float64
	hands   int
}

var streets = []game.Phase{
	game.PhasePreflop,
	game.PhaseFlop,
	game.PhaseTurn,
	game.PhaseRiver,
	game.PhaseShowdown,
}

// NewSimulator creates a simulator with the given seat count and seed.
func NewSimulator(seats int, seed int64) *Simulator {
	if seats < 2 {
		seats = 2
	}
	s := &Simulator{
		rng:      rand.New(rand.NewSource(seed)),
		heroSeat: 1,
		seats:    seats,
	}
	s.deal()
	return s
}

// HeroSeat returns the simulated player's seat.
func (s *Simulator) HeroSeat() int { return s.heroSeat }

// Capture implements Source. Each call advances one street; after the
// showdown a new hand is dealt.
func (s *Simulator) Capture(ctx context.Context) (RawFrame, error) {
	select {
	case <-ctx.Done():
		return RawFrame{}, ctx.Err()
	default:
	}

	snap := s.snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return RawFrame{}, fmt.Errorf("marshal simulated snapshot: %w", err)
	}
	s.advance()
	return RawFrame{Data: data, CapturedAt: time.Now()}, nil
}

// #endregion simulator

// #region hand-state

// deal starts a fresh hand from a shuffled deck.
func (s *Simulator) deal() {
	deck := equity.Deck()
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	s.players = s.players[:0]
	for seat := 1; seat <= s.seats; seat++ {
		p := game.Player{
			Seat:   seat,
			Name:   fmt.Sprintf("player%d", seat),
			Stack:  100 + float64(s.rng.Intn(150)),
			Active: true,
			Dealer: seat == 1+(s.hands%s.seats),
		}
		if seat == s.heroSeat {
			p.Name = "hero"
			p.Cards = []game.Card{deck[0], deck[1]}
			deck = deck[2:]
		}
		s.players = append(s.players, p)
	}
	// burn-free deal; board revealed street by street
	s.board = deck[:5]
	s.phase = 0
	s.pot = 1.5 // blinds
	s.bet = 1
	s.hands++
	log.Printf("[CAPTURE] dealt hand %d", s.hands)
}

// advance moves to the next street, or deals the next hand after showdown.
func (s *Simulator) advance() {
	if s.phase >= len(streets)-1 {
		s.deal()
		return
	}
	s.phase++
	// someone bets on most streets; occasionally it checks through
	if s.rng.Float64() < 0.7 {
		s.bet = float64(2 + s.rng.Intn(10))
		s.pot += s.bet * float64(1+s.rng.Intn(s.seats))
	} else {
		s.bet = 0
	}
	// late streets thin the field
	if s.phase >= 2 && s.rng.Float64() < 0.3 {
		for i := range s.players {
			if s.players[i].Seat != s.heroSeat && s.players[i].Active {
				s.players[i].Active = false
				break
			}
		}
	}
}

// snapshot renders the current street.
func (s *Simulator) snapshot() game.GameSnapshot {
	visible := 0
	switch streets[s.phase] {
	case game.PhaseFlop:
		visible = 3
	case game.PhaseTurn:
		visible = 4
	case game.PhaseRiver, game.PhaseShowdown:
		visible = 5
	}

	players := make([]game.Player, len(s.players))
	copy(players, s.players)
	board := make([]game.Card, visible)
	copy(board, s.board[:visible])

	return game.GameSnapshot{
		Phase:      streets[s.phase],
		Players:    players,
		Community:  board,
		Pot:        s.pot,
		CurrentBet: s.bet,
		HeroSeat:   s.heroSeat,
	}
}

// #endregion hand-state
