// Package replay drives the decision pipeline from a recorded fixture
// instead of a live source. Fixtures capture a hand as a frame sequence and
// optionally script the provider's answers, which makes pipeline behavior
// reproducible down to the decision text.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/decide"
	"github.com/clduab11/poker-helper/internal/diff"
	"github.com/clduab11/poker-helper/internal/equity"
	"github.com/clduab11/poker-helper/internal/game"
	"github.com/clduab11/poker-helper/internal/overlay"
	"github.com/clduab11/poker-helper/internal/provider"
)

// #region fixture

// Fixture is a recorded frame sequence with optional scripted provider
// responses.
type Fixture struct {
	Name      string              `json:"name"`
	Frames    []game.GameSnapshot `json:"frames"`
	Responses []string            `json:"responses,omitempty"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if len(f.Frames) == 0 {
		return Fixture{}, fmt.Errorf("fixture %q has no frames", f.Name)
	}
	for i, frame := range f.Frames {
		if err := frame.Validate(); err != nil {
			return Fixture{}, fmt.Errorf("fixture frame %d: %w", i, err)
		}
	}
	return f, nil
}

// #endregion fixture

// #region script

// Script serves fixture responses in order. Once exhausted it keeps
// repeating the last one, so a short script can cover a long hand.
type Script struct {
	mu        sync.Mutex
	responses []string
	idx       int
}

// NewScript creates a Script over responses.
func NewScript(responses []string) *Script {
	return &Script{responses: responses}
}

// Name implements the provider interface.
func (s *Script) Name() string { return "script" }

// Call implements the provider interface.
func (s *Script) Call(context.Context, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responses) == 0 {
		return "", fmt.Errorf("script has no responses")
	}
	resp := s.responses[s.idx]
	if s.idx < len(s.responses)-1 {
		s.idx++
	}
	return resp, nil
}

// #endregion script

// #region runner

// Summary reports what a replay did.
type Summary struct {
	Frames    int
	Decisions int
	Elapsed   time.Duration
}

// Runner replays fixtures through a tracker and orchestrator.
type Runner struct {
	cfg config.Config
	out io.Writer
}

// NewRunner creates a Runner writing rendered decisions to out.
func NewRunner(cfg config.Config, out io.Writer) *Runner {
	return &Runner{cfg: cfg, out: out}
}

// Run replays one fixture. Scripted responses take priority; without them
// the equity heuristic answers.
func (r *Runner) Run(ctx context.Context, f Fixture) (Summary, error) {
	started := time.Now()

	var prov provider.Provider
	if len(f.Responses) > 0 {
		prov = NewScript(f.Responses)
	} else {
		prov = provider.NewLocal(equity.NewCalculator(2000, 1))
	}

	// offline replay processes frames back to back; the live notification
	// rate limit would swallow most of them
	cfg := r.cfg
	cfg.RateLimitMs = 0

	tracker := diff.NewTracker(diff.NewEngine(), cfg)
	orch := decide.NewOrchestrator(prov, cfg)
	display := overlay.NewTerminalWriter(r.out)

	summary := Summary{Frames: len(f.Frames)}
	for i, snap := range f.Frames {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if snap.CapturedAt.IsZero() {
			snap.CapturedAt = started.Add(time.Duration(i) * time.Second)
		}
		if !tracker.UpdateState(snap) {
			continue
		}
		d := orch.GetRecommendation(ctx, snap)
		if err := display.Show(d, snap); err != nil {
			return summary, fmt.Errorf("render frame %d: %w", i, err)
		}
		summary.Decisions++
	}

	summary.Elapsed = time.Since(started)
	log.Printf("[REPLAY] %q: %d frames, %d decisions in %v", f.Name, summary.Frames, summary.Decisions, summary.Elapsed)
	return summary, nil
}

// #endregion runner
