// Package errors provides error types with actionable suggestions for
// bundlecheck. Errors carry a kind for errors.Is matching plus enough context
// to tell the user what to do next.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel kinds for use with errors.Is().
var (
	// ErrGemNotFound indicates declared gems are not installed.
	ErrGemNotFound = errors.New("gem not found")
	// ErrFetch indicates a gem source (usually a git checkout) could not be fetched.
	ErrFetch = errors.New("fetch error")
	// ErrGemfile indicates the manifest is missing or unreadable.
	ErrGemfile = errors.New("gemfile error")
	// ErrVerify indicates verification failed for an unrecognized reason.
	ErrVerify = errors.New("verification error")
	// ErrCommand indicates an external command could not be started.
	ErrCommand = errors.New("command error")
	// ErrConfig indicates a configuration error.
	ErrConfig = errors.New("configuration error")
)

// CheckError is the base error type for bundlecheck errors.
type CheckError struct {
	// Kind is the category of error (e.g., ErrGemNotFound).
	Kind error
	// Message is the human-readable error message.
	Message string
	// Suggestion provides actionable advice for resolving the error.
	Suggestion string
	// Cause is the underlying error that caused this error.
	Cause error
	// Details provides additional context (e.g., command, output).
	Details map[string]string
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *CheckError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether the error's kind matches the target.
func (e *CheckError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Format returns a formatted error message with details and suggestion.
func (e *CheckError) Format() string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Error())
	sb.WriteString("\n")

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, e.Details[k]))
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(e.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WithDetails adds details to the error.
func (e *CheckError) WithDetails(key, value string) *CheckError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause of the error.
func (e *CheckError) WithCause(cause error) *CheckError {
	e.Cause = cause
	return e
}

// New creates a new CheckError with the given kind and message.
func New(kind error, message string) *CheckError {
	return &CheckError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind error, message string) *CheckError {
	return &CheckError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// As is errors.As, re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsRecoverable reports whether err is a verification failure the routine
// handles by advising or installing, rather than propagating.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrGemNotFound) || errors.Is(err, ErrFetch)
}
