// Package errors defines the error type and exit codes for kolibri-server-ctl.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for kolibri-server-ctl
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitConfigError  = 2
	ExitOptionsError = 3
	ExitDebconfError = 4
	ExitCacheError   = 5
	ExitProxyError   = 6
)

// CtlError is the base error type for kolibri-server-ctl
type CtlError struct {
	Code    int
	Message string
	Cause   error
}

func (e *CtlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CtlError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *CtlError) ExitCode() int {
	return e.Code
}

// New creates a new CtlError
func New(code int, message string) *CtlError {
	return &CtlError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a CtlError
func Wrap(code int, message string, cause error) *CtlError {
	return &CtlError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// ConfigError returns an error for tool configuration issues
func ConfigError(message string, cause error) *CtlError {
	return Wrap(ExitConfigError, message, cause)
}

// OptionsError returns an error for options file read/write failures
func OptionsError(op string, cause error) *CtlError {
	return Wrap(ExitOptionsError, fmt.Sprintf("options file %s failed", op), cause)
}

// DebconfError returns an error for debconf session failures
func DebconfError(cause error) *CtlError {
	return Wrap(ExitDebconfError, "debconf session failed", cause)
}

// CacheError returns an error for cache configuration failures
func CacheError(message string, cause error) *CtlError {
	return Wrap(ExitCacheError, message, cause)
}

// ProxyConfigError returns an error for nginx config write failures
func ProxyConfigError(path string, cause error) *CtlError {
	return Wrap(ExitProxyError, fmt.Sprintf("failed to write proxy config %s", path), cause)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var ctlErr *CtlError
	if errors.As(err, &ctlErr) {
		return ctlErr.ExitCode()
	}
	return ExitGeneralError
}
