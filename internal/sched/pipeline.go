// Package sched runs the capture-to-display loop. One goroutine owns the
// whole pass: capture, extract, diff, decide, display, record. Module
// failures are contained per iteration; the loop itself only stops when
// told to.
package sched

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/clduab11/poker-helper/internal/capture"
	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/decide"
	"github.com/clduab11/poker-helper/internal/diff"
	"github.com/clduab11/poker-helper/internal/game"
	"github.com/clduab11/poker-helper/internal/registry"
)

// #region collaborators

// Decider produces a recommendation for a snapshot. Never fails.
type Decider interface {
	GetRecommendation(ctx context.Context, snap game.GameSnapshot) decide.Decision
}

// Display surfaces a decision to the player.
type Display interface {
	Show(d decide.Decision, snap game.GameSnapshot) error
}

// Recorder persists decisions and pipeline events. May be absent.
type Recorder interface {
	RecordDecision(d decide.Decision) (string, error)
	RecordEvent(stateHash, event, detail string) error
}

// RecoveryStrategy reports whether it recovered a failed module. Returning
// false routes the module to the fallback hook; the loop continues either
// way.
type RecoveryStrategy func(module string, err error) bool

// FallbackHook is invoked when recovery declines, to degrade the module to
// a simpler mode.
type FallbackHook func(module string)

// Modules are the pipeline's collaborators, resolved before the loop starts.
type Modules struct {
	Source    capture.Source
	Extractor *capture.Extractor
	Tracker   *diff.Tracker
	Decider   Decider
	Display   Display
	Recorder  Recorder // nil disables persistence
}

// #endregion collaborators

// #region pipeline

// Pipeline is the scheduler. Construct with New, then Run.
type Pipeline struct {
	mu       sync.Mutex
	cfg      config.Config
	reg      *registry.Registry
	mods     Modules
	metrics  *Metrics
	recovery RecoveryStrategy
	fallback FallbackHook

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Pipeline from already-resolved modules.
func New(cfg config.Config, reg *registry.Registry, mods Modules) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		reg:     reg,
		mods:    mods,
		metrics: NewMetrics(),
	}
	p.recovery = p.defaultRecovery

	if mods.Recorder != nil && mods.Tracker != nil {
		mods.Tracker.OnUpdate(func(snap game.GameSnapshot, res diff.DiffResult) {
			_ = mods.Recorder.RecordEvent(game.StateHash(snap), "accepted",
				fmt.Sprintf("%d significant changes", res.SignificantCount()))
		})
		mods.Tracker.OnSuppressed(func(snap game.GameSnapshot, reason string) {
			_ = mods.Recorder.RecordEvent(game.StateHash(snap), "suppressed", reason)
		})
	}
	return p
}

// SetRecovery replaces the recovery strategy.
func (p *Pipeline) SetRecovery(r RecoveryStrategy) { p.recovery = r }

// SetFallback installs a hook for modules recovery could not bring back.
func (p *Pipeline) SetFallback(f FallbackHook) { p.fallback = f }

// Metrics exposes the loop counters.
func (p *Pipeline) Metrics() *Metrics { return p.metrics }

// defaultRecovery retries everything: a flaky capture or display must not
// take the session down.
func (p *Pipeline) defaultRecovery(module string, err error) bool {
	log.Printf("[SCHED] module %s failed (%v), retrying next pass", module, err)
	if p.mods.Recorder != nil {
		_ = p.mods.Recorder.RecordEvent("", "recovered", fmt.Sprintf("%s: %v", module, err))
	}
	return true
}

// #endregion pipeline

// #region lifecycle

// Start launches the loop in its own goroutine.
func (p *Pipeline) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()
	go func() {
		defer close(p.done)
		p.Run(ctx)
	}()
}

// Shutdown stops the loop, waits for it to drain, then shuts down the
// registry modules in reverse construction order.
func (p *Pipeline) Shutdown() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	if p.reg != nil {
		return p.reg.ShutdownAll()
	}
	return nil
}

// Run executes the loop until ctx is done. Exported so callers that manage
// their own goroutines can drive it directly.
func (p *Pipeline) Run(ctx context.Context) {
	log.Printf("[SCHED] pipeline started, polling every %v", p.pollInterval())
	for {
		select {
		case <-ctx.Done():
			log.Printf("[SCHED] pipeline stopped")
			return
		default:
		}

		p.iterate(ctx)

		select {
		case <-ctx.Done():
		case <-time.After(p.pollInterval()):
		}
	}
}

func (p *Pipeline) pollInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.PollInterval()
}

func (p *Pipeline) latencyBudget() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.LatencyBudget()
}

// #endregion lifecycle

// #region iteration

// iterate runs one pass. Stage failures are recorded and routed through
// recovery; the loop itself is never at risk. Panics in any module are
// contained here.
func (p *Pipeline) iterate(ctx context.Context) {
	started := time.Now()
	module := "capture"

	defer func() {
		if r := recover(); r != nil {
			p.handleFailure(module, fmt.Errorf("panic in %s: %v", module, r))
		}
	}()

	frame, err := p.mods.Source.Capture(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.handleFailure(module, err)
		p.metrics.RecordIteration(time.Since(started), false)
		return
	}
	p.markReady(module)

	module = "extract"
	snap, err := p.mods.Extractor.Extract(frame)
	if err != nil {
		// malformed frames are expected noise, not module failures
		log.Printf("[SCHED] frame rejected: %v", err)
		if p.mods.Recorder != nil {
			_ = p.mods.Recorder.RecordEvent("", "rejected", err.Error())
		}
		p.metrics.RecordIteration(time.Since(started), false)
		return
	}

	module = "state"
	changed := p.mods.Tracker.UpdateState(snap)
	if !changed {
		p.metrics.RecordIteration(time.Since(started), false)
		return
	}

	module = "decide"
	d := p.mods.Decider.GetRecommendation(ctx, snap)

	module = "display"
	if err := p.mods.Display.Show(d, snap); err != nil {
		p.handleFailure(module, err)
	} else {
		p.markReady(module)
	}

	module = "history"
	if p.mods.Recorder != nil {
		if _, err := p.mods.Recorder.RecordDecision(d); err != nil {
			log.Printf("[SCHED] decision not persisted: %v", err)
		}
	}

	latency := time.Since(started)
	if budget := p.latencyBudget(); latency > budget {
		log.Printf("[SCHED] pass took %v, over the %v budget", latency, budget)
	}
	p.metrics.RecordIteration(latency, true)
}

// handleFailure records a stage error and routes it through recovery, then
// the fallback hook when recovery declines.
func (p *Pipeline) handleFailure(module string, err error) {
	p.metrics.RecordFailure(err)
	p.markError(module, err)
	if p.recovery(module, err) {
		return
	}
	log.Printf("[SCHED] module %s not recovered, degrading", module)
	if p.fallback != nil {
		p.fallback(module)
	}
}

func (p *Pipeline) markError(module string, err error) {
	if p.reg != nil {
		p.reg.MarkError(module, err)
	}
}

func (p *Pipeline) markReady(module string) {
	if p.reg != nil {
		p.reg.MarkReady(module)
	}
}

// #endregion iteration

// #region config

// UpdateConfig validates cfg, applies the scheduler's own settings, and
// fans the new config out to every registered module that accepts one.
func (p *Pipeline) UpdateConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("reject config update: %w", err)
	}
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()

	if p.reg != nil {
		p.reg.Each(func(name string, instance any) {
			if recv, ok := instance.(config.Receiver); ok {
				recv.ApplyConfig(cfg)
				log.Printf("[SCHED] config applied to %s", name)
			}
		})
	}
	// collaborators may be wired directly, outside the registry
	if recv, ok := p.mods.Decider.(config.Receiver); ok {
		recv.ApplyConfig(cfg)
	}
	p.mods.Tracker.ApplyConfig(cfg)
	return nil
}

// #endregion config
