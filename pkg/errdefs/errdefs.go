// Package errdefs defines the error kinds shared by the viewer packages.
// Callers match them with errors.Is.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports missing or invalid configuration, such as a
	// load without any panorama path.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidArgument reports an argument rejected before any state was
	// changed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLoad reports a failed metadata or texture load.
	ErrLoad = errors.New("load error")

	// ErrDestroyed is returned by operations on a destroyed viewer.
	ErrDestroyed = errors.New("viewer destroyed")

	// ErrSuperseded is returned for a load whose result was discarded
	// because a newer load was requested.
	ErrSuperseded = errors.New("load superseded")
)

// Stage names the load pipeline step that failed
type Stage string

const (
	StageMetadata Stage = "metadata"
	StageTexture  Stage = "texture"
	StageCommit   Stage = "commit"
)

// LoadError wraps a failure of one load stage
type LoadError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s of %s: %v", e.Stage, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrLoad so that callers do not need errors.As.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// InvalidArgument wraps a formatted message with ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Configuration wraps a formatted message with ErrConfiguration.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
