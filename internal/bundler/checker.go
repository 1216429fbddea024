package bundler

import (
	"context"
	"io"
	"os"

	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
	"github.com/wexinc/bundlecheck/internal/logging"
	"github.com/wexinc/bundlecheck/internal/runner"
	"github.com/wexinc/bundlecheck/internal/styles"
)

// Advisory text printed when gems are missing.
const (
	MsgGemsMissing     = "Gems are missing. "
	MsgRunInstall      = "Running `bundle install`."
	MsgRunLocalInstall = "Running `bundle install --local`."
	MsgLocalFallback   = "Problem running `bundle install --local`. Running `bundle install` instead."
	MsgRunRehash       = "Running `rbenv rehash`."
	MsgShouldInstall   = "You should `bundle install`."
)

// Report describes what a check did.
type Report struct {
	// Satisfied is true when every declared gem was installed.
	Satisfied bool
	// Cause is the recoverable verification failure, nil when satisfied.
	Cause error
	// Installed is true when an install command exited 0.
	Installed bool
	// FellBack is true when the local install failed and a normal install ran.
	FellBack bool
	// Rehashed is true when `rbenv rehash` exited 0.
	Rehashed bool
	// Commands are the command lines run after verification, in order.
	Commands []string
}

// Checker runs the verify-then-advise routine.
type Checker struct {
	// Verifier decides whether the dependencies are installed.
	Verifier Verifier
	// Runner runs the install and rehash commands.
	Runner runner.Runner
	// Printer receives the advisory text.
	Printer *styles.Printer
	// Logger records diagnostics and install output.
	Logger *logging.Logger
	// Bundle and Rbenv are the executables (defaults: "bundle", "rbenv").
	Bundle string
	Rbenv  string
	// Dir is the working directory for install commands.
	Dir string
	// Stdout and Stderr receive install output (defaults: os.Stdout, os.Stderr).
	Stdout io.Writer
	Stderr io.Writer
}

// NewChecker creates a Checker that prints to out and passes install output
// through to the process's stdout and stderr.
func NewChecker(v Verifier, r runner.Runner, out io.Writer) *Checker {
	return &Checker{
		Verifier: v,
		Runner:   r,
		Printer:  styles.NewPrinter(out),
		Logger:   logging.Global(),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Check verifies the dependencies. Missing gems and failed fetches are
// reported and, with opts.Autoinstall, installed; the returned error is nil
// in that case whatever the install outcome. Any other verification failure
// is returned.
func (c *Checker) Check(ctx context.Context, opts Options) (*Report, error) {
	log := c.logger().With("verify", c.Verifier.Command())
	log.Debug("verifying dependencies", "options", opts.String())

	err := c.Verifier.Verify(ctx)
	if err == nil {
		log.Debug("dependencies satisfied")
		return &Report{Satisfied: true}, nil
	}
	if !bcerrors.IsRecoverable(err) {
		log.Debug("verification failed", "error", err)
		return nil, err
	}

	log.Info("dependencies not installed", "error", err)
	report := &Report{Cause: err}

	c.Printer.Println()
	c.Printer.Warn(MsgGemsMissing)

	if !opts.Autoinstall {
		c.Printer.Warnln(MsgShouldInstall)
		return report, nil
	}

	c.install(ctx, opts, report)

	if opts.Rbenv {
		c.Printer.Warnln(MsgRunRehash)
		report.Rehashed = c.system(ctx, report, orDefault(c.Rbenv, "rbenv"), "rehash")
	}

	return report, nil
}

func (c *Checker) install(ctx context.Context, opts Options, report *Report) {
	bundle := orDefault(c.Bundle, "bundle")

	if opts.Local {
		c.Printer.Warnln(MsgRunLocalInstall)
		if c.system(ctx, report, bundle, "install", "--local") {
			report.Installed = true
			return
		}
		c.Printer.Warnln(MsgLocalFallback)
		report.FellBack = true
	} else {
		c.Printer.Warnln(MsgRunInstall)
	}

	report.Installed = c.system(ctx, report, bundle, "install")
}

// system runs a command with output passed through, returning whether it ran
// and exited 0.
func (c *Checker) system(ctx context.Context, report *Report, name string, args ...string) bool {
	cmd := runner.Command{Name: name, Args: args, Dir: c.Dir}
	report.Commands = append(report.Commands, cmd.String())

	// os/exec copies each stream in its own goroutine
	logOut := c.logger().Writer(logging.LevelDebug)
	defer logOut.Flush()
	logErr := c.logger().Writer(logging.LevelDebug)
	defer logErr.Flush()

	cmd.Stdout = io.MultiWriter(orWriter(c.Stdout, os.Stdout), logOut)
	cmd.Stderr = io.MultiWriter(orWriter(c.Stderr, os.Stderr), logErr)

	res, err := c.Runner.Run(ctx, cmd)
	ok := runner.Succeeded(res, err)

	attrs := []any{"command", cmd.String(), "success", ok}
	if res != nil {
		attrs = append(attrs, "exit_code", res.ExitCode)
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	c.logger().Info("ran command", attrs...)

	return ok
}

func (c *Checker) logger() *logging.Logger {
	if c.Logger == nil {
		return logging.Global()
	}
	return c.Logger
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
