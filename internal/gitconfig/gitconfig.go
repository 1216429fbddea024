// Package gitconfig reads git-up settings from git's config system.
package gitconfig

import (
	"context"
	"fmt"
	"strings"

	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
	"github.com/wexinc/bundlecheck/internal/logging"
	"github.com/wexinc/bundlecheck/internal/runner"
)

// Section is the git config section git-up keeps its settings in.
const Section = "git-up"

// Bundler keys under Section.
const (
	KeyBundlerCheck       = "bundler.check"
	KeyBundlerAutoinstall = "bundler.autoinstall"
	KeyBundlerLocal       = "bundler.local"
	KeyBundlerRbenv       = "bundler.rbenv"
)

// Reader reads git config values through the git executable.
type Reader struct {
	Runner runner.Runner
	// Git is the git executable (default: "git").
	Git string
	// Dir is the repository directory.
	Dir string
}

// NewReader creates a Reader that runs git in dir.
func NewReader(r runner.Runner, git, dir string) *Reader {
	if git == "" {
		git = "git"
	}
	return &Reader{Runner: r, Git: git, Dir: dir}
}

// Bool reads Section.key as a boolean. found is false when the key is unset.
func (r *Reader) Bool(ctx context.Context, key string) (value, found bool, err error) {
	name := Section + "." + key
	cmd := runner.Command{
		Name: r.Git,
		Args: []string{"config", "--get", "--bool", name},
		Dir:  r.Dir,
	}

	res, err := r.Runner.Run(ctx, cmd)
	if err != nil {
		return false, false, err
	}

	switch res.ExitCode {
	case 0:
		// handled below
	case 1:
		logging.Debug("git config key not set", "key", name)
		return false, false, nil
	default:
		return false, false, bcerrors.New(bcerrors.ErrConfig, fmt.Sprintf("failed to read git config %s", name)).
			WithDetails("command", cmd.String()).
			WithDetails("output", res.Output())
	}

	raw := strings.TrimSpace(res.Stdout)
	logging.Debug("git config", "key", name, "value", raw)

	switch raw {
	case "true":
		return true, true, nil
	case "false":
		return false, true, nil
	default:
		return false, false, bcerrors.New(bcerrors.ErrConfig, fmt.Sprintf("unexpected git config value for %s", name)).
			WithDetails("value", raw)
	}
}

// BundlerOptions holds the install switches stored in git config.
type BundlerOptions struct {
	Autoinstall bool
	Local       bool
	Rbenv       bool
}

// ReadBundlerOptions reads git-up.bundler.autoinstall, .local and .rbenv.
// Unset keys are false.
func (r *Reader) ReadBundlerOptions(ctx context.Context) (BundlerOptions, error) {
	var opts BundlerOptions

	fields := []struct {
		key string
		dst *bool
	}{
		{KeyBundlerAutoinstall, &opts.Autoinstall},
		{KeyBundlerLocal, &opts.Local},
		{KeyBundlerRbenv, &opts.Rbenv},
	}
	for _, f := range fields {
		v, _, err := r.Bool(ctx, f.key)
		if err != nil {
			return BundlerOptions{}, err
		}
		*f.dst = v
	}

	return opts, nil
}
