// Package errors provides error types for bundlecheck.
// This file contains verification and subprocess errors.
package errors

import (
	"fmt"
	"strings"
)

// maxOutputLines bounds how much subprocess output lands in error details.
const maxOutputLines = 10

// GemsNotFound creates the error for declared gems that are not installed.
func GemsNotFound(output string) *CheckError {
	err := &CheckError{
		Kind:       ErrGemNotFound,
		Message:    "declared gems are not installed",
		Suggestion: "Run `bundle install`, or rerun with `autoinstall`.",
	}
	if out := trimOutput(output); out != "" {
		err.WithDetails("output", out)
	}
	return err
}

// FetchFailed creates the error for a gem source that could not be fetched.
func FetchFailed(output string) *CheckError {
	err := &CheckError{
		Kind:    ErrFetch,
		Message: "failed to fetch gem sources",
		Suggestion: `A git-sourced gem could not be checked out.
  Run ` + "`bundle install`" + ` to fetch it, and check network access to the source.`,
	}
	if out := trimOutput(output); out != "" {
		err.WithDetails("output", out)
	}
	return err
}

// GemfileNotFound creates an error for a missing manifest.
func GemfileNotFound(path string) *CheckError {
	return &CheckError{
		Kind:    ErrGemfile,
		Message: fmt.Sprintf("could not locate Gemfile: %s", path),
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `Run bundlecheck from the project root, or point BUNDLE_GEMFILE
  (or --gemfile) at the manifest.`,
	}
}

// VerifyFailed creates an error for a verification command that failed in a
// way that does not mean "gems are missing".
func VerifyFailed(command string, exitCode int, output string) *CheckError {
	err := &CheckError{
		Kind:    ErrVerify,
		Message: fmt.Sprintf("dependency verification failed (exit %d)", exitCode),
		Details: map[string]string{
			"command":   command,
			"exit_code": fmt.Sprintf("%d", exitCode),
		},
		Suggestion: `Run the command above by hand to see the full message.
  Common causes: a Gemfile syntax error or an incompatible Bundler version.`,
	}
	if out := trimOutput(output); out != "" {
		err.Details["output"] = out
	}
	return err
}

// CommandNotFound creates an error for an executable that could not be started.
func CommandNotFound(name string, cause error) *CheckError {
	return &CheckError{
		Kind:    ErrCommand,
		Message: fmt.Sprintf("failed to start %s", name),
		Cause:   cause,
		Details: map[string]string{
			"command": name,
		},
		Suggestion: fmt.Sprintf(`Make sure %s is installed and on PATH,
  or set its location under commands: in .bundlecheck.yaml.`, name),
	}
}

// trimOutput keeps the last maxOutputLines non-empty lines of output.
func trimOutput(output string) string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimRight(line, " \t\r"); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > maxOutputLines {
		lines = lines[len(lines)-maxOutputLines:]
	}
	return strings.Join(lines, "\n")
}
