package bundler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wexinc/bundlecheck/internal/config"
	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
	"github.com/wexinc/bundlecheck/internal/project"
	"github.com/wexinc/bundlecheck/internal/runner"
)

// Bundler exit statuses for the failures it raises.
const (
	exitGemNotFound = 7
	exitGitError    = 11
	// exitBundlerMissing is used by the ruby script when bundler cannot load.
	exitBundlerMissing = 3
)

// rubySetupScript loads the bundle in a fresh interpreter and maps the two
// recoverable Bundler exceptions to Bundler's own status codes.
const rubySetupScript = `begin
  require 'bundler'
rescue LoadError => e
  warn e.message
  exit 3
end
begin
  Gem.loaded_specs.clear
  Bundler.setup
rescue Bundler::GemNotFound => e
  warn e.message
  exit 7
rescue Bundler::GitError => e
  warn e.message
  exit 11
end`

var (
	missingMarkers = []string{
		"can't satisfy your Gemfile's dependencies",
		"The following gems are missing",
		"Could not find gem",
		"Install missing gems with `bundle install`",
	}
	fetchMarkers = []string{
		"Git error:",
		"is not yet checked out",
		"does not exist in the repository",
	}
	gemfileMarkers = []string{
		"Could not locate Gemfile",
	}
)

// Verifier reports whether the declared dependencies are installed.
//
// Verify returns nil when they are, an error matching bcerrors.ErrGemNotFound
// or bcerrors.ErrFetch for the recoverable failures, and any other error for
// everything else.
type Verifier interface {
	Verify(ctx context.Context) error
	// Command is the command line used for verification.
	Command() string
}

// NewVerifier returns the Verifier for the configured method.
func NewVerifier(method config.VerifyMethod, r runner.Runner, cmds config.CommandsConfig, dir string, timeout time.Duration) (Verifier, error) {
	switch method {
	case config.VerifyMethodBundle, "":
		return &BundleVerifier{Runner: r, Bundle: cmds.Bundle, Dir: dir, Timeout: timeout}, nil
	case config.VerifyMethodRuby:
		return &RubyVerifier{Runner: r, Ruby: cmds.Ruby, Dir: dir, Timeout: timeout}, nil
	default:
		return nil, bcerrors.ConfigValidationError("verify.method", fmt.Sprintf("unknown method %q", method),
			[]string{string(config.VerifyMethodBundle), string(config.VerifyMethodRuby)})
	}
}

// BundleVerifier verifies with `bundle check --dry-run`.
type BundleVerifier struct {
	Runner  runner.Runner
	Bundle  string
	Dir     string
	Timeout time.Duration
}

func (v *BundleVerifier) command() runner.Command {
	return runner.Command{
		Name: orDefault(v.Bundle, "bundle"),
		Args: []string{"check", "--dry-run"},
		Dir:  v.Dir,
	}
}

// Command implements Verifier.
func (v *BundleVerifier) Command() string {
	return v.command().String()
}

// Verify implements Verifier.
func (v *BundleVerifier) Verify(ctx context.Context) error {
	cmd := v.command()
	res, err := run(ctx, v.Runner, cmd, v.Timeout)
	if err != nil {
		return err
	}
	if res.Success() {
		return nil
	}

	output := res.Output()
	if res.ExitCode == 1 && containsAny(output, missingMarkers) {
		return bcerrors.GemsNotFound(output)
	}
	return classify(cmd.String(), res.ExitCode, output)
}

// RubyVerifier verifies by calling Bundler.setup in a ruby process.
type RubyVerifier struct {
	Runner  runner.Runner
	Ruby    string
	Dir     string
	Timeout time.Duration
}

func (v *RubyVerifier) command() runner.Command {
	return runner.Command{
		Name: orDefault(v.Ruby, "ruby"),
		Args: []string{"-e", rubySetupScript},
		Dir:  v.Dir,
	}
}

// Command implements Verifier.
func (v *RubyVerifier) Command() string {
	return orDefault(v.Ruby, "ruby") + " -e <Bundler.setup script>"
}

// Verify implements Verifier.
func (v *RubyVerifier) Verify(ctx context.Context) error {
	res, err := run(ctx, v.Runner, v.command(), v.Timeout)
	if err != nil {
		return err
	}
	if res.Success() {
		return nil
	}

	output := res.Output()
	if res.ExitCode == exitBundlerMissing {
		return bcerrors.VerifyFailed(v.Command(), res.ExitCode, output).
			WithDetails("hint", "bundler is not installed for this ruby; run `gem install bundler`")
	}
	return classify(v.Command(), res.ExitCode, output)
}

// classify maps a failed verification to an error kind using Bundler's
// status codes and messages shared by both methods.
func classify(command string, exitCode int, output string) error {
	switch {
	case exitCode == exitGemNotFound:
		return bcerrors.GemsNotFound(output)
	case exitCode == exitGitError, containsAny(output, fetchMarkers):
		return bcerrors.FetchFailed(output)
	case containsAny(output, gemfileMarkers):
		return bcerrors.GemfileNotFound(gemfileFromEnv()).
			WithDetails("command", command)
	default:
		return bcerrors.VerifyFailed(command, exitCode, output)
	}
}

func run(ctx context.Context, r runner.Runner, cmd runner.Command, timeout time.Duration) (*runner.Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := r.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, bcerrors.Wrap(ctxErr, bcerrors.ErrVerify, "dependency verification did not finish").
			WithDetails("command", cmd.String()).
			WithDetails("timeout", timeout.String())
	}
	return res, nil
}

func gemfileFromEnv() string {
	return os.Getenv(project.GemfileEnv)
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
