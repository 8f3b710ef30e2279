package wcjsbuild

import (
	"errors"
	"fmt"
)

// ErrModuleNotFound marks the recoverable race where a required module is
// not installed yet. Match it with errors.Is.
var ErrModuleNotFound = errors.New("module not found")

// ModuleNotFoundError reports a module that could not be resolved.
//
// The launcher treats it as transient and retries the build.
type ModuleNotFoundError struct {
	Module       string // Module name, e.g. "cmake-js"
	SearchedFrom string // Directory the lookup started from
}

func (e *ModuleNotFoundError) Error() string {
	if e.SearchedFrom == "" {
		return fmt.Sprintf("cannot find module '%s'", e.Module)
	}
	return fmt.Sprintf("cannot find module '%s' from %s", e.Module, e.SearchedFrom)
}

// Is makes errors.Is(err, ErrModuleNotFound) true.
func (e *ModuleNotFoundError) Is(target error) bool {
	return target == ErrModuleNotFound
}

// IsModuleNotFound reports whether err carries the module-not-found signal.
func IsModuleNotFound(err error) bool {
	return errors.Is(err, ErrModuleNotFound)
}

// DeferredFailureError wraps a failure reported after a build started successfully.
type DeferredFailureError struct {
	Err error
}

func (e *DeferredFailureError) Error() string {
	return fmt.Sprintf("build failed after start: %v", e.Err)
}

func (e *DeferredFailureError) Unwrap() error {
	return e.Err
}

// IsDeferredFailure reports whether err is a deferred build failure.
func IsDeferredFailure(err error) bool {
	var deferred *DeferredFailureError
	return errors.As(err, &deferred)
}
