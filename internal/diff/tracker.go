package diff

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/game"
)

// #region tracker

// Tracker wraps the diff engine with state bookkeeping: it always remembers
// the latest valid snapshot, but only notifies downstream consumers when a
// change is significant, the rate-limit window has elapsed, and the
// significant-change count meets the threshold. Storage and notification are
// decoupled: the reasoning step is seconds-scale and costly, so frame-level
// noise must never reach it.
type Tracker struct {
	engine    *Engine
	current   *game.GameSnapshot
	rateLimit time.Duration
	threshold int

	lastNotify   time.Time
	onUpdate     func(game.GameSnapshot, DiffResult)
	onSuppressed func(game.GameSnapshot, string)
	now          func() time.Time
}

// NewTracker creates a tracker with the given engine and throttle settings.
func NewTracker(engine *Engine, cfg config.Config) *Tracker {
	return &Tracker{
		engine:    engine,
		rateLimit: cfg.RateLimit(),
		threshold: cfg.SignificanceThreshold,
		now:       time.Now,
	}
}

// OnUpdate registers the accepted-update callback. Called synchronously from
// UpdateState when a notification fires.
func (t *Tracker) OnUpdate(fn func(game.GameSnapshot, DiffResult)) {
	t.onUpdate = fn
}

// OnSuppressed registers a callback for significant updates withheld by the
// threshold or rate limit. The state is still stored.
func (t *Tracker) OnSuppressed(fn func(game.GameSnapshot, string)) {
	t.onSuppressed = fn
}

// ApplyConfig updates the throttle settings at runtime.
func (t *Tracker) ApplyConfig(cfg config.Config) {
	t.rateLimit = cfg.RateLimit()
	t.threshold = cfg.SignificanceThreshold
}

// Current returns a copy of the stored snapshot, or nil before the first
// valid update.
func (t *Tracker) Current() *game.GameSnapshot {
	if t.current == nil {
		return nil
	}
	cp := *t.current
	return &cp
}

// #endregion tracker

// #region update-state

// UpdateState validates and stores next, returning whether downstream
// consumers were notified. Invalid snapshots are rejected outright: the
// stored state is untouched and no event fires. Valid snapshots always
// replace the stored state, notified or not.
func (t *Tracker) UpdateState(next game.GameSnapshot) bool {
	if err := next.Validate(); err != nil {
		logrus.Debugf("[DIFF] rejected snapshot: %v", err)
		return false
	}

	result := t.engine.Compare(t.current, next)
	t.current = &next

	if !result.AnySignificant {
		return false
	}
	if result.SignificantCount() < t.threshold {
		logrus.Debugf("[DIFF] below threshold: %d significant < %d", result.SignificantCount(), t.threshold)
		t.suppress(next, "below significance threshold")
		return false
	}

	now := t.now()
	if !t.lastNotify.IsZero() && now.Sub(t.lastNotify) < t.rateLimit {
		logrus.Debugf("[DIFF] suppressed by rate limit (%s since last)", now.Sub(t.lastNotify))
		t.suppress(next, "rate limited")
		return false
	}
	t.lastNotify = now

	logrus.Infof("[DIFF] accepted update: %d changes, %d significant", len(result.Changes), result.SignificantCount())
	if t.onUpdate != nil {
		t.onUpdate(next, result)
	}
	return true
}

func (t *Tracker) suppress(snap game.GameSnapshot, reason string) {
	if t.onSuppressed != nil {
		t.onSuppressed(snap, reason)
	}
}

// #endregion update-state
