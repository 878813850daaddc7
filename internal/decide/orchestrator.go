// Package decide turns table snapshots into action recommendations. It
// fronts the provider with an LRU cache keyed by state hash, bounds every
// provider call by a deadline, and degrades through fallbacks rather than
// returning an error: the pipeline always gets an answer.
package decide

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/game"
	"github.com/clduab11/poker-helper/internal/provider"
)

// #region types

// Decision is a recommendation with its provenance.
type Decision struct {
	Recommendation game.Recommendation
	StateHash      string
	Provider       string
	Cached         bool // served from cache without a provider call
	Fallback       bool // provider failed; stale or default answer
	Latency        time.Duration
}

// #endregion types

// #region orchestrator

// Orchestrator coordinates cache lookups and provider calls.
type Orchestrator struct {
	mu       sync.Mutex
	provider provider.Provider
	cache    *Cache
	timeout  time.Duration
}

// NewOrchestrator wires the provider and a cache sized from cfg.
func NewOrchestrator(p provider.Provider, cfg config.Config) *Orchestrator {
	return &Orchestrator{
		provider: p,
		cache:    NewCache(cfg.CacheSize, cfg.CacheTTL()),
		timeout:  cfg.ProviderTimeout(),
	}
}

// Cache exposes the underlying cache for stats reporting.
func (o *Orchestrator) Cache() *Cache { return o.cache }

// ApplyConfig resizes the cache and updates the call deadline.
func (o *Orchestrator) ApplyConfig(cfg config.Config) {
	o.mu.Lock()
	o.timeout = cfg.ProviderTimeout()
	o.mu.Unlock()
	o.cache.Resize(cfg.CacheSize, cfg.CacheTTL())
}

// GetRecommendation returns a decision for snap. It never fails: cache hit,
// then a deadline-bounded provider call, then a zero-confidence fold.
func (o *Orchestrator) GetRecommendation(ctx context.Context, snap game.GameSnapshot) Decision {
	started := time.Now()
	hash := game.StateHash(snap)

	if rec, ok := o.cache.Get(hash); ok {
		log.Printf("[DECIDE] cache hit for state %s", hash[:12])
		return Decision{
			Recommendation: rec,
			StateHash:      hash,
			Provider:       o.provider.Name(),
			Cached:         true,
			Latency:        time.Since(started),
		}
	}

	rec, err := o.callProvider(ctx, snap)
	if err != nil {
		log.Printf("[DECIDE] provider %s failed: %v", o.provider.Name(), err)
		return o.fallback(hash, started)
	}

	o.cache.Put(hash, rec)

	return Decision{
		Recommendation: rec,
		StateHash:      hash,
		Provider:       o.provider.Name(),
		Latency:        time.Since(started),
	}
}

// callProvider runs the provider in a goroutine so a hung call cannot stall
// the pipeline past the deadline. The result channel is buffered; a late
// reply is dropped, not leaked into a blocked goroutine.
func (o *Orchestrator) callProvider(ctx context.Context, snap game.GameSnapshot) (game.Recommendation, error) {
	prompt, err := BuildPrompt(snap)
	if err != nil {
		return game.Recommendation{}, err
	}

	o.mu.Lock()
	timeout := o.timeout
	o.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		raw string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		raw, err := o.provider.Call(callCtx, prompt)
		ch <- result{raw: raw, err: err}
	}()

	select {
	case <-callCtx.Done():
		return game.Recommendation{}, callCtx.Err()
	case res := <-ch:
		if res.err != nil {
			return game.Recommendation{}, res.err
		}
		return ParseRecommendation(res.raw)
	}
}

// fallback serves the fixed fold default with zero confidence.
func (o *Orchestrator) fallback(hash string, started time.Time) Decision {
	log.Printf("[DECIDE] no recommendation available, falling back to fold")
	return Decision{
		Recommendation: game.Recommendation{
			Action:     game.ActionFold,
			Confidence: 0.0,
			Rationale:  "no recommendation available",
			CreatedAt:  time.Now(),
		},
		StateHash: hash,
		Provider:  o.provider.Name(),
		Fallback:  true,
		Latency:   time.Since(started),
	}
}

// #endregion orchestrator
