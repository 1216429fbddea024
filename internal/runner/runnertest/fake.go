// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/wexinc/bundlecheck/internal/runner"
)

// Response is the scripted outcome of one command line.
type Response struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Err is returned as the start error; ExitCode is forced to -1.
	Err error
}

// Fake records every command it is asked to run and answers from a script
// keyed by the command line (runner.Command.String()). Unscripted commands
// succeed with no output.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []runner.Command
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{responses: make(map[string][]Response)}
}

// On queues a response for the command line. Queued responses are consumed
// in order; the last one repeats.
func (f *Fake) On(commandLine string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[commandLine] = append(f.responses[commandLine], resp)
	return f
}

// Run implements runner.Runner.
func (f *Fake) Run(_ context.Context, c runner.Command) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	key := c.String()
	queue := f.responses[key]
	var resp Response
	if len(queue) > 0 {
		resp = queue[0]
		if len(queue) > 1 {
			f.responses[key] = queue[1:]
		}
	}
	f.mu.Unlock()

	write(c.Stdout, resp.Stdout)
	write(c.Stderr, resp.Stderr)

	if resp.Err != nil {
		return &runner.Result{ExitCode: -1}, resp.Err
	}
	return &runner.Result{
		ExitCode: resp.ExitCode,
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
	}, nil
}

// Calls returns the command lines run so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.calls))
	for i, c := range f.calls {
		lines[i] = c.String()
	}
	return lines
}

// Commands returns the full commands run so far, in order.
func (f *Fake) Commands() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// Count returns how many times the command line was run.
func (f *Fake) Count(commandLine string) int {
	n := 0
	for _, line := range f.Calls() {
		if line == commandLine {
			n++
		}
	}
	return n
}

func write(w io.Writer, s string) {
	if w != nil && s != "" {
		fmt.Fprint(w, s)
	}
}
