// Package runner executes external commands for bundlecheck.
package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
)

// Command describes a single external process invocation.
type Command struct {
	// Name is the executable to run, resolved through PATH.
	Name string
	// Args are the arguments passed to the executable.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the process environment.
	Env []string
	// Stdout, if set, receives the process stdout as it is produced.
	Stdout io.Writer
	// Stderr, if set, receives the process stderr as it is produced.
	Stderr io.Writer
}

// String returns the command line as the user would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a command that started.
type Result struct {
	// ExitCode is the process exit status; -1 when the process never started.
	ExitCode int
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Output returns stdout and stderr joined, trimmed.
func (r *Result) Output() string {
	if r == nil {
		return ""
	}
	out := strings.TrimSpace(r.Stdout)
	if errOut := strings.TrimSpace(r.Stderr); errOut != "" {
		if out != "" {
			return out + "\n" + errOut
		}
		return errOut
	}
	return out
}

// Runner runs external commands.
//
// A non-zero exit is reported through Result, not as an error. An error is
// returned only when the process could not be started.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command, capturing its output and tee'ing it to the
// command's writers when set.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = teeTo(&stdout, c.Stdout)
	cmd.Stderr = teeTo(&stderr, c.Stderr)
	if c.Stdout != nil {
		// Interactive installers may prompt for credentials.
		cmd.Stdin = os.Stdin
	}

	err := cmd.Run()

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, bcerrors.CommandNotFound(c.Name, err)
	}

	return result, nil
}

func teeTo(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// Succeeded mirrors a shell's view of a command: it ran and exited 0.
func Succeeded(res *Result, err error) bool {
	return err == nil && res.Success()
}
