package sched

import (
	"fmt"
	"time"

	"github.com/clduab11/poker-helper/internal/capture"
	"github.com/clduab11/poker-helper/internal/config"
	"github.com/clduab11/poker-helper/internal/decide"
	"github.com/clduab11/poker-helper/internal/diff"
	"github.com/clduab11/poker-helper/internal/history"
	"github.com/clduab11/poker-helper/internal/overlay"
	"github.com/clduab11/poker-helper/internal/provider"
	"github.com/clduab11/poker-helper/internal/registry"
)

// #region wiring

// Build registers every module in a fresh registry, resolves them in
// dependency order, and returns a ready pipeline. Construction stops at the
// first failing module; anything already built is shut down by the caller
// through Pipeline.Shutdown.
func Build(cfg config.Config) (*Pipeline, error) {
	reg := registry.New()

	register := func(name string, deps []string, factory registry.Factory) error {
		if err := reg.Register(name, factory, deps, true); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
		return nil
	}

	steps := []struct {
		name    string
		deps    []string
		factory registry.Factory
	}{
		{"capture", nil, func(map[string]any) (any, error) {
			return capture.NewSimulator(cfg.SimSeats, time.Now().UnixNano()), nil
		}},
		{"extract", nil, func(map[string]any) (any, error) {
			return capture.NewExtractor(), nil
		}},
		{"state", nil, func(map[string]any) (any, error) {
			return diff.NewTracker(diff.NewEngine(), cfg), nil
		}},
		{"provider", nil, func(map[string]any) (any, error) {
			p, err := provider.New(cfg)
			if err != nil {
				return nil, err
			}
			return provider.NewRetrying(p, cfg), nil
		}},
		{"decide", []string{"provider"}, func(deps map[string]any) (any, error) {
			return decide.NewOrchestrator(deps["provider"].(provider.Provider), cfg), nil
		}},
		{"display", nil, func(map[string]any) (any, error) {
			return overlay.NewTerminal(), nil
		}},
		{"history", nil, func(map[string]any) (any, error) {
			if cfg.HistoryDB == "" {
				return nil, nil
			}
			return history.NewStore(cfg.HistoryDB)
		}},
	}
	for _, s := range steps {
		if err := register(s.name, s.deps, s.factory); err != nil {
			return nil, err
		}
	}

	mods := Modules{}
	for _, s := range steps {
		instance, err := reg.Resolve(s.name)
		if err != nil {
			reg.ShutdownAll()
			return nil, fmt.Errorf("build %s: %w", s.name, err)
		}
		switch s.name {
		case "capture":
			mods.Source = instance.(capture.Source)
		case "extract":
			mods.Extractor = instance.(*capture.Extractor)
		case "state":
			mods.Tracker = instance.(*diff.Tracker)
		case "decide":
			mods.Decider = instance.(Decider)
		case "display":
			mods.Display = instance.(Display)
		case "history":
			if store, ok := instance.(*history.Store); ok && store != nil {
				mods.Recorder = store
			}
		}
	}

	return New(cfg, reg, mods), nil
}

// #endregion wiring
