package command

import (
	"errors"
	"fmt"
)

// Process exit codes returned by Dispatch
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitUsage           = 2
	ExitCommandNotFound = 127
)

// ErrCommandNotFound represents a request for a command that is not registered
type ErrCommandNotFound struct {
	Name string
}

func (e *ErrCommandNotFound) Error() string {
	return fmt.Sprintf("no such command '%s'", e.Name)
}

// ErrCommandExists represents a second registration of the same command name
type ErrCommandExists struct {
	Name string
}

func (e *ErrCommandExists) Error() string {
	return fmt.Sprintf("command already registered: %s", e.Name)
}

// ErrInvalidDescriptor represents a registration that cannot be dispatched to
type ErrInvalidDescriptor struct {
	Name   string
	Reason string
}

func (e *ErrInvalidDescriptor) Error() string {
	return fmt.Sprintf("invalid command %q: %s", e.Name, e.Reason)
}

// ErrCommandLoad represents a failure of a command's deferred loader
type ErrCommandLoad struct {
	Name string
	Err  error
}

func (e *ErrCommandLoad) Error() string {
	return fmt.Sprintf("failed to load command %s: %v", e.Name, e.Err)
}

func (e *ErrCommandLoad) Unwrap() error { return e.Err }

// ErrUsage represents a malformed invocation
type ErrUsage struct {
	Err error
}

func (e *ErrUsage) Error() string {
	return e.Err.Error()
}

func (e *ErrUsage) Unwrap() error { return e.Err }

// ErrCommandExecution carries a failure raised by a resolved command together
// with the exit code the invocation ends with. The wrapped error is the
// command's own and is never reinterpreted.
type ErrCommandExecution struct {
	Name string
	Code int
	Err  error
}

func (e *ErrCommandExecution) Error() string {
	return e.Err.Error()
}

func (e *ErrCommandExecution) Unwrap() error { return e.Err }

var (
	errMissingCommand  = errors.New("missing command")
	errNilCommand      = errors.New("loader returned no command")
	errMetricsDisabled = errors.New("metrics are disabled")
)

// IsCommandNotFoundError checks if the error is a command not found error
func IsCommandNotFoundError(err error) bool {
	var target *ErrCommandNotFound
	return errors.As(err, &target)
}

// IsCommandLoadError checks if the error is a command load error
func IsCommandLoadError(err error) bool {
	var target *ErrCommandLoad
	return errors.As(err, &target)
}

// IsUsageError checks if the error is a usage error
func IsUsageError(err error) bool {
	var target *ErrUsage
	return errors.As(err, &target)
}
