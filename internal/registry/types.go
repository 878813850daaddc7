package registry

import "errors"

// #region errors
var (
	// ErrDuplicateModule indicates a name was registered twice.
	ErrDuplicateModule = errors.New("module already registered")
	// ErrUnknownModule indicates resolution of an unregistered name.
	ErrUnknownModule = errors.New("unknown module")
	// ErrDependencyCycle indicates a circular dependency between recipes.
	ErrDependencyCycle = errors.New("dependency cycle")
)

// #endregion errors

// #region status

// Status tracks a module handle's lifecycle. Transitions are monotonic
// except Error and Ready, which may alternate under recovery; Shutdown is
// terminal.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusReady        Status = "ready"
	StatusError        Status = "error"
	StatusShutdown     Status = "shutdown"
)

// #endregion status

// #region handle

// Handle is the registry's record for one constructed module.
type Handle struct {
	Name     string
	Status   Status
	Instance any
	LastErr  string
}

// #endregion handle

// #region interfaces

// Factory builds a module instance. deps maps each declared dependency name
// to its resolved instance.
type Factory func(deps map[string]any) (any, error)

// Shutdowner is implemented by modules that hold resources needing teardown.
type Shutdowner interface {
	Shutdown() error
}

// #endregion interfaces
