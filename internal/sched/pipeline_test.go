package sched

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/clduab11/poker-helper/internal/capture"
	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/decide"
	"github.com/clduab11/poker-helper/internal/diff"
	"github.com/clduab11/poker-helper/internal/game"
	"github.com/clduab11/poker-helper/internal/registry"
)

// #region fakes

// countingSource emits frames with a growing pot so every frame is a
// significant change.
type countingSource struct {
	mu  sync.Mutex
	n   int
	err error
}

func (s *countingSource) Capture(context.Context) (capture.RawFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return capture.RawFrame{}, s.err
	}
	s.n++
	snap := game.GameSnapshot{
		Phase: game.PhaseFlop,
		Players: []game.Player{
			{Seat: 1, Name: "hero", Stack: 200, Cards: []game.Card{game.MustCard("Ah"), game.MustCard("Kh")}, Active: true},
			{Seat: 2, Name: "villain", Stack: 150, Active: true},
		},
		Pot:      float64(10 * s.n),
		HeroSeat: 1,
	}
	data, _ := json.Marshal(snap)
	return capture.RawFrame{Data: data, CapturedAt: time.Now()}, nil
}

type staticDecider struct {
	mu    sync.Mutex
	calls int
}

func (d *staticDecider) GetRecommendation(context.Context, game.GameSnapshot) decide.Decision {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return decide.Decision{
		Recommendation: game.Recommendation{Action: game.ActionCall, Confidence: 0.7},
		Provider:       "stub",
	}
}

func (d *staticDecider) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type flakyDisplay struct {
	mu       sync.Mutex
	failures int // fail this many times before succeeding
	shows    int
	errs     int
}

func (f *flakyDisplay) Show(decide.Decision, game.GameSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shows++
	if f.errs < f.failures {
		f.errs++
		return errors.New("render failed")
	}
	return nil
}

func (f *flakyDisplay) shown() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shows
}

type memoryRecorder struct {
	mu        sync.Mutex
	decisions []decide.Decision
	events    []string
}

func (r *memoryRecorder) RecordDecision(d decide.Decision) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
	return fmt.Sprintf("d%d", len(r.decisions)), nil
}

func (r *memoryRecorder) RecordEvent(_, event, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *memoryRecorder) decisionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.decisions)
}

// #endregion fakes

// #region helpers

func testConfig() config.Config {
	cfg := config.Default()
	cfg.PollIntervalMs = 1
	cfg.RateLimitMs = 1
	cfg.LatencyBudgetMs = 2000
	return cfg
}

func testPipeline(cfg config.Config, src capture.Source, dec Decider, disp Display, rec Recorder) *Pipeline {
	mods := Modules{
		Source:    src,
		Extractor: capture.NewExtractor(),
		Tracker:   diff.NewTracker(diff.NewEngine(), cfg),
		Decider:   dec,
		Display:   disp,
		Recorder:  rec,
	}
	return New(cfg, registry.New(), mods)
}

func runFor(t *testing.T, p *Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	p.Run(ctx)
}

// #endregion helpers

// #region tests

func TestPipelineDecidesOnEachSignificantChange(t *testing.T) {
	dec := &staticDecider{}
	disp := &flakyDisplay{}
	rec := &memoryRecorder{}
	p := testPipeline(testConfig(), &countingSource{}, dec, disp, rec)

	runFor(t, p, 150*time.Millisecond)

	if dec.count() < 3 {
		t.Fatalf("expected several decisions, got %d", dec.count())
	}
	if disp.shown() != dec.count() {
		t.Fatalf("every decision must be displayed: %d decisions, %d shows", dec.count(), disp.shown())
	}
	if rec.decisionCount() != dec.count() {
		t.Fatalf("every decision must be recorded: %d decisions, %d records", dec.count(), rec.decisionCount())
	}
}

func TestPipelineSurvivesDisplayFailures(t *testing.T) {
	dec := &staticDecider{}
	disp := &flakyDisplay{failures: 10}
	p := testPipeline(testConfig(), &countingSource{}, dec, disp, nil)

	runFor(t, p, 200*time.Millisecond)

	if disp.shown() <= 10 {
		t.Fatalf("loop must outlive 10 display failures, only %d shows", disp.shown())
	}
	snap := p.Metrics().Snapshot()
	if snap.Failures < 10 {
		t.Fatalf("failures must be counted, got %d", snap.Failures)
	}
	if snap.Iterations == 0 {
		t.Fatal("iterations must keep accruing through failures")
	}
}

func TestPipelineInvokesFallbackWhenRecoveryDeclines(t *testing.T) {
	src := &countingSource{err: errors.New("camera unplugged")}
	p := testPipeline(testConfig(), src, &staticDecider{}, &flakyDisplay{}, nil)

	var mu sync.Mutex
	attempts := 0
	degraded := []string{}
	p.SetRecovery(func(module string, err error) bool {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return attempts < 3 // give up on the third failure
	})
	p.SetFallback(func(module string) {
		mu.Lock()
		defer mu.Unlock()
		degraded = append(degraded, module)
	})

	runFor(t, p, 100*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if attempts < 3 {
		t.Fatalf("expected at least 3 recovery attempts, got %d", attempts)
	}
	if len(degraded) == 0 || degraded[0] != "capture" {
		t.Fatalf("declined recovery must invoke the fallback hook: %v", degraded)
	}
	if attempts < 4 {
		t.Fatal("loop must keep iterating after fallback")
	}
}

func TestMetricsCountCaptureFailurePasses(t *testing.T) {
	src := &countingSource{err: errors.New("camera unplugged")}
	p := testPipeline(testConfig(), src, &staticDecider{}, &flakyDisplay{}, nil)

	runFor(t, p, 100*time.Millisecond)

	m := p.Metrics().Snapshot()
	if m.Iterations == 0 {
		t.Fatal("failed capture passes must still count as iterations")
	}
	if m.Failures == 0 {
		t.Fatal("failed capture passes must count as failures")
	}
	if m.Iterations < m.Failures {
		t.Fatalf("every failure is one pass: %d iterations, %d failures", m.Iterations, m.Failures)
	}
}

func TestPipelineMarksModuleStateInRegistry(t *testing.T) {
	reg := registry.New()
	cfg := testConfig()
	disp := &flakyDisplay{failures: 1}
	if err := reg.Register("display", func(map[string]any) (any, error) { return disp, nil }, nil, true); err != nil {
		t.Fatalf("register display: %v", err)
	}
	if _, err := reg.Resolve("display"); err != nil {
		t.Fatalf("resolve display: %v", err)
	}

	p := New(cfg, reg, Modules{
		Source:    &countingSource{},
		Extractor: capture.NewExtractor(),
		Tracker:   diff.NewTracker(diff.NewEngine(), cfg),
		Decider:   &staticDecider{},
		Display:   disp,
	})
	runFor(t, p, 100*time.Millisecond)

	// the display failed once then recovered; its handle reflects the latest
	// transition rather than the failure
	h, ok := reg.Handle("display")
	if !ok {
		t.Fatal("display handle missing")
	}
	if h.Status != registry.StatusReady {
		t.Fatalf("recovered display must end ready, got %s (%s)", h.Status, h.LastErr)
	}
}

func TestPipelineSkipsDecisionWhenNothingChanged(t *testing.T) {
	// a source that always returns the identical frame
	snap := game.GameSnapshot{
		Phase: game.PhaseFlop,
		Players: []game.Player{
			{Seat: 1, Name: "hero", Stack: 200, Active: true},
			{Seat: 2, Name: "villain", Stack: 150, Active: true},
		},
		Pot:      20,
		HeroSeat: 1,
	}
	data, _ := json.Marshal(snap)
	src := sourceFunc(func(context.Context) (capture.RawFrame, error) {
		return capture.RawFrame{Data: data, CapturedAt: time.Now()}, nil
	})

	dec := &staticDecider{}
	p := testPipeline(testConfig(), src, dec, &flakyDisplay{}, nil)
	runFor(t, p, 100*time.Millisecond)

	if dec.count() != 1 {
		t.Fatalf("only the initial state should trigger a decision, got %d", dec.count())
	}
}

type sourceFunc func(context.Context) (capture.RawFrame, error)

func (f sourceFunc) Capture(ctx context.Context) (capture.RawFrame, error) { return f(ctx) }

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	p := testPipeline(testConfig(), &countingSource{}, &staticDecider{}, &flakyDisplay{}, nil)

	bad := testConfig()
	bad.PollIntervalMs = 0
	if err := p.UpdateConfig(bad); err == nil {
		t.Fatal("invalid config must be rejected")
	}

	good := testConfig()
	good.PollIntervalMs = 5
	if err := p.UpdateConfig(good); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if p.pollInterval() != 5*time.Millisecond {
		t.Fatalf("poll interval not applied: %v", p.pollInterval())
	}
}

func TestBuildWiresLocalProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = "local"
	cfg.HistoryDB = "" // no persistence

	p, err := Build(cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer p.Shutdown()

	if p.mods.Source == nil || p.mods.Decider == nil || p.mods.Display == nil {
		t.Fatal("build must wire all mandatory modules")
	}
	if p.mods.Recorder != nil {
		t.Fatal("empty history path must disable persistence")
	}
}

func TestBuildRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = "psychic"
	if _, err := Build(cfg); err == nil {
		t.Fatal("unknown provider must fail the build")
	}
}

// #endregion tests
