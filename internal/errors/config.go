// Package errors provides error types for bundlecheck.
// This file contains configuration-related errors.
package errors

import (
	"fmt"
	"strings"
)

// ConfigNotFound creates an error for an explicitly requested config file
// that does not exist.
func ConfigNotFound(configPath string) *CheckError {
	return &CheckError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("configuration file not found: %s", configPath),
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Check the --config path, or drop the flag to use .bundlecheck.yaml
  in the working directory (optional, defaults apply when absent).
  
  Print the effective configuration:
    bundlecheck config`,
	}
}

// ConfigParseError creates an error for YAML parsing failures.
func ConfigParseError(configPath string, parseErr error) *CheckError {
	return &CheckError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("failed to parse configuration: %s", configPath),
		Cause:   parseErr,
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Check the file for YAML syntax errors:
  1. Use spaces, not tabs, for indentation
  2. Quote strings containing special characters
  3. Durations use Go syntax (30s, 5m, 1h)`,
	}
}

// ConfigValidationError creates an error for an invalid configuration value.
func ConfigValidationError(field, message string, validOptions []string) *CheckError {
	suggestion := fmt.Sprintf("Fix the %q setting", field)
	if len(validOptions) > 0 {
		suggestion += fmt.Sprintf("\n  Valid options: %s", strings.Join(validOptions, ", "))
	}

	return &CheckError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("invalid configuration: %s", message),
		Details: map[string]string{
			"field": field,
		},
		Suggestion: suggestion,
	}
}
