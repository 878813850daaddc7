// Package registry is a name-keyed factory store with lazy singleton
// construction, dependency resolution by name, and ordered best-effort
// teardown. One instance owns the lifecycle of every module it creates.
package registry

import (
	"errors"
	"fmt"
)

// #region recipe
type recipe struct {
	factory   Factory
	deps      []string
	singleton bool
}

// #endregion recipe

// #region registry

// Registry stores construction recipes and caches singleton instances.
// Not safe for concurrent use: resolution happens during pipeline
// initialization, before the loop starts.
type Registry struct {
	recipes   map[string]recipe
	handles   map[string]*Handle
	order     []string // construction order, for reverse teardown
	resolving map[string]bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		recipes:   make(map[string]recipe),
		handles:   make(map[string]*Handle),
		resolving: make(map[string]bool),
	}
}

// #endregion registry

// #region register

// Register stores a construction recipe under name. Registering the same
// name twice fails with ErrDuplicateModule.
func (r *Registry) Register(name string, factory Factory, deps []string, singleton bool) error {
	if _, ok := r.recipes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
	}
	r.recipes[name] = recipe{factory: factory, deps: deps, singleton: singleton}
	return nil
}

// #endregion register

// #region resolve

// Resolve constructs (or returns the cached singleton of) the named module,
// resolving its declared dependencies first. Unregistered names fail with
// ErrUnknownModule; circular recipes fail with ErrDependencyCycle.
func (r *Registry) Resolve(name string) (any, error) {
	if h, ok := r.handles[name]; ok && h.Status == StatusReady {
		return h.Instance, nil
	}

	rec, ok := r.recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	if r.resolving[name] {
		return nil, fmt.Errorf("%w: via %s", ErrDependencyCycle, name)
	}
	r.resolving[name] = true
	defer delete(r.resolving, name)

	h := &Handle{Name: name, Status: StatusInitializing}

	deps := make(map[string]any, len(rec.deps))
	for _, d := range rec.deps {
		inst, err := r.Resolve(d)
		if err != nil {
			return nil, fmt.Errorf("resolve %s dependency: %w", name, err)
		}
		deps[d] = inst
	}

	inst, err := rec.factory(deps)
	if err != nil {
		h.Status = StatusError
		h.LastErr = err.Error()
		r.handles[name] = h
		return nil, fmt.Errorf("construct %s: %w", name, err)
	}

	h.Instance = inst
	h.Status = StatusReady
	if rec.singleton {
		r.handles[name] = h
		r.order = append(r.order, name)
	}
	return inst, nil
}

// #endregion resolve

// #region handle-access

// Handle returns the handle for a constructed module.
func (r *Registry) Handle(name string) (*Handle, bool) {
	h, ok := r.handles[name]
	return h, ok
}

// MarkError flips a constructed module's handle to Error with the given
// message. Used by the scheduler when a steady-state stage fails.
func (r *Registry) MarkError(name string, err error) {
	if h, ok := r.handles[name]; ok && h.Status != StatusShutdown {
		h.Status = StatusError
		h.LastErr = err.Error()
	}
}

// MarkReady flips a module back from Error after successful recovery.
func (r *Registry) MarkReady(name string) {
	if h, ok := r.handles[name]; ok && h.Status == StatusError {
		h.Status = StatusReady
		h.LastErr = ""
	}
}

// Each visits every constructed singleton in construction order.
func (r *Registry) Each(fn func(name string, instance any)) {
	for _, name := range r.order {
		fn(name, r.handles[name].Instance)
	}
}

// #endregion handle-access

// #region shutdown

// ShutdownAll tears down constructed singletons in reverse construction
// order. Individual failures are collected, not fatal: every module gets its
// shutdown hook invoked.
func (r *Registry) ShutdownAll() error {
	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		h := r.handles[r.order[i]]
		if h.Status == StatusShutdown {
			continue
		}
		if s, ok := h.Instance.(Shutdowner); ok {
			if err := s.Shutdown(); err != nil {
				h.LastErr = err.Error()
				errs = append(errs, fmt.Errorf("shutdown %s: %w", h.Name, err))
			}
		}
		h.Status = StatusShutdown
	}
	return errors.Join(errs...)
}

// #endregion shutdown
