package bundler

import (
	"context"
	"os"

	"github.com/wexinc/bundlecheck/internal/gitconfig"
	"github.com/wexinc/bundlecheck/internal/logging"
	"github.com/wexinc/bundlecheck/internal/project"
	"github.com/wexinc/bundlecheck/internal/styles"
)

// DeprecatedCheckEnv is the environment switch git-up used before the
// git-up.bundler.check config key.
const DeprecatedCheckEnv = "GIT_UP_BUNDLER_CHECK"

// MsgDeprecatedCheckEnv is printed whenever DeprecatedCheckEnv is present.
const MsgDeprecatedCheckEnv = `The GIT_UP_BUNDLER_CHECK environment variable is deprecated.
You can now tell git-up to check (or not check) for missing
gems on a per-project basis using git's config system. To
set it globally, run this command anywhere:

git config --global git-up.bundler.check true

To set it within a project, run this command inside that
project's directory:

git config git-up.bundler.check true

Replace 'true' with 'false' to disable checking.`

// Gate decides whether a project opted in to the check.
type Gate struct {
	Config  *gitconfig.Reader
	Printer *styles.Printer
	Logger  *logging.Logger
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Enabled reports whether the check should run for the project: it needs a
// Gemfile, and either git-up.bundler.check enabled or the deprecated
// GIT_UP_BUNDLER_CHECK=true.
func (g *Gate) Enabled(ctx context.Context, info *project.Info) (bool, error) {
	log := g.Logger
	if log == nil {
		log = logging.Global()
	}

	lookup := g.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	envValue, envSet := lookup(DeprecatedCheckEnv)
	if envSet {
		g.Printer.Warnln(MsgDeprecatedCheckEnv)
	}

	if !info.HasGemfile() {
		log.Debug("no Gemfile, check disabled", "dir", info.Path)
		return false, nil
	}

	configured, _, err := g.Config.Bool(ctx, gitconfig.KeyBundlerCheck)
	if err != nil {
		return false, err
	}
	fromEnv := envSet && envValue == "true"

	log.Debug("check gate",
		"config", configured,
		"env", fromEnv,
		"gemfile", info.Gemfile,
	)
	return configured || fromEnv, nil
}
