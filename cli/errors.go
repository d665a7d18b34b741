package cli

import (
	"errors"
	"fmt"
)

// Exit codes. Scripts around "run" and "replay" depend on these values.
const (
	ExitSuccess        = 0
	ExitGeneral        = 1
	ExitConfig         = 2 // unreadable config, invalid rules or settings
	ExitSubsystem      = 3 // backend could not be created or subscribed
	ExitReplayMismatch = 4 // replay results or golden output disagreed
)

// ExitCoder is implemented by errors that select the process exit code.
type ExitCoder interface {
	ExitCode() int
	Message() string
}

type cliError struct {
	code    int
	message string
	err     error
}

func (e *cliError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *cliError) ExitCode() int { return e.code }

// Message is the line printed on stderr before exiting.
func (e *cliError) Message() string {
	return fmt.Sprintf("Error: %s\n", e.Error())
}

func (e *cliError) Unwrap() error { return e.err }

// ExitCodeFor maps an error returned by a command to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitGeneral
}

// ErrConfig reports a configuration that cannot be loaded or used.
func ErrConfig(message string, err error) error {
	return &cliError{code: ExitConfig, message: message, err: err}
}

// ErrSubsystem reports a backend that could not be started.
func ErrSubsystem(message string, err error) error {
	return &cliError{code: ExitSubsystem, message: message, err: err}
}

// ErrReplayMismatch reports replay results that did not meet expectations.
func ErrReplayMismatch(mismatches int) error {
	return &cliError{
		code:    ExitReplayMismatch,
		message: fmt.Sprintf("replay did not match expectations (%d mismatches)", mismatches),
	}
}
