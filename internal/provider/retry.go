package provider

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/clduab11/poker-helper/internal/config"
)

// #region retry

// Retrying wraps a Provider with exponential backoff on rate-limit errors.
// All other failures abort immediately.
type Retrying struct {
	inner Provider

	mu         sync.Mutex
	minBackoff time.Duration
	maxBackoff time.Duration
	maxRetries uint64
}

// NewRetrying decorates p with the retry policy from cfg.
func NewRetrying(p Provider, cfg config.Config) *Retrying {
	r := &Retrying{inner: p}
	r.ApplyConfig(cfg)
	return r
}

// ApplyConfig refreshes the retry policy at runtime.
func (r *Retrying) ApplyConfig(cfg config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minBackoff = cfg.MinBackoff()
	r.maxBackoff = cfg.MaxBackoff()
	r.maxRetries = uint64(cfg.MaxRetries)
}

// Name implements Provider.
func (r *Retrying) Name() string { return r.inner.Name() }

// Call implements Provider. Waits double the previous interval after each
// rate-limit failure, capped at the configured maximum, and gives up after
// the configured retry count.
func (r *Retrying) Call(ctx context.Context, prompt string) (string, error) {
	r.mu.Lock()
	minBackoff, maxBackoff, maxRetries := r.minBackoff, r.maxBackoff, r.maxRetries
	r.mu.Unlock()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = minBackoff
	policy.MaxInterval = maxBackoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	attempt := 0
	return backoff.RetryWithData(func() (string, error) {
		attempt++
		out, err := r.inner.Call(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if IsRateLimit(err) {
			log.Printf("[PROVIDER] %s rate limited on attempt %d, backing off", r.inner.Name(), attempt)
			return "", err
		}
		return "", backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
}

// #endregion retry
