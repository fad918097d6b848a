package cli

import (
	"errors"
	"fmt"

	perr "ecotrack/internal/platform/errors"
)

// Exit codes for CLI commands
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a run or persistence failed
	ExitCommandError = 2 // bad flags, options or environment
)

// ExitError carries the process exit code out of a command
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError without a cause
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode maps err to a process exit code. Config and argument errors that
// were not wrapped explicitly still exit with ExitCommandError
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeValidation:
		return ExitCommandError
	}
	return ExitFailure
}

// setupErr classifies an error from building a module
func setupErr(what string, err error) error {
	code := ExitFailure
	switch perr.CodeOf(err) {
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeValidation:
		code = ExitCommandError
	}
	return WrapExitError(code, what, err)
}
