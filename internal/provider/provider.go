// Package provider abstracts the external reasoning services behind one call
// signature: prompt text in, raw response text out. The set of providers is
// closed and selected once at construction; the orchestrator never inspects
// which one it holds.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/equity"
)

// #region errors
var (
	// ErrRateLimited marks transient throttling failures eligible for
	// backoff retries. Everything else is treated as permanent.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrUnknownProvider indicates a provider name outside the closed set.
	ErrUnknownProvider = errors.New("unknown provider")
)

// IsRateLimit reports whether err is a transient rate-limit failure.
func IsRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// #endregion errors

// #region interface

// Provider is one reasoning backend.
type Provider interface {
	Name() string
	Call(ctx context.Context, prompt string) (string, error)
}

// #endregion interface

// #region constructor

// New builds the named provider. Valid names: "openai", "anthropic",
// "local". The local provider needs no credentials and answers from the
// equity heuristic.
func New(cfg config.Config) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropic(cfg.APIKey, cfg.Model), nil
	case "local":
		return NewLocal(equity.NewCalculator(2000, time.Now().UnixNano())), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// #endregion constructor
