package errors

import (
	stdLibErrors "errors"
)

// StartupError aborts the tool before the control loop starts.
type StartupError struct {
	Err error
}

func NewStartupError(err error) error {
	if err == nil {
		return nil
	}
	return &StartupError{Err: err}
}

func (e *StartupError) Error() string {
	return "startup: " + e.Err.Error()
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// TerminalError is raised when the display can no longer be driven.
type TerminalError struct {
	Err error
}

func NewTerminalError(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

func (e *TerminalError) Error() string {
	return "terminal: " + e.Err.Error()
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

func IsStartupError(err error) bool {
	var target *StartupError
	return stdLibErrors.As(err, &target)
}

func IsTerminalError(err error) bool {
	var target *TerminalError
	return stdLibErrors.As(err, &target)
}
