// Package app provides the application orchestration for bundlecheck.
// It merges configuration from every source, sets up logging and runs the
// dependency check for one project directory.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wexinc/bundlecheck/internal/bundler"
	"github.com/wexinc/bundlecheck/internal/config"
	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
	"github.com/wexinc/bundlecheck/internal/gitconfig"
	"github.com/wexinc/bundlecheck/internal/logging"
	"github.com/wexinc/bundlecheck/internal/project"
	"github.com/wexinc/bundlecheck/internal/runner"
	"github.com/wexinc/bundlecheck/internal/styles"
)

// Params are the inputs of one bundlecheck invocation.
type Params struct {
	// Dir is the project directory (default: the working directory).
	Dir string
	// Args are the positional words (autoinstall, local, rbenv).
	Args []string
	// Flags are the options set by command-line flags.
	Flags bundler.Options
	// Gemfile overrides the manifest path.
	Gemfile string
	// Method overrides verify.method.
	Method string
	// ConfigPath is an explicit config file, which must exist.
	ConfigPath string
	// GitConfig also reads options from git-up.bundler.* keys.
	GitConfig bool
	// WhenEnabled runs the check only if the project opted in.
	WhenEnabled bool
	// Verbose writes debug logs to Err.
	Verbose bool
	// Out receives the advisory text and install output.
	Out io.Writer
	// Err receives install errors and console logs.
	Err io.Writer
	// Runner runs external commands (default: runner.NewExecRunner()).
	Runner runner.Runner
}

// Result describes one invocation.
type Result struct {
	// Ran is false when the opt-in gate skipped the check.
	Ran bool
	// Options are the merged install options.
	Options bundler.Options
	// Gemfile is the effective BUNDLE_GEMFILE value.
	Gemfile string
	// Project is the detected project.
	Project *project.Info
	// Report is the check outcome, nil when the check did not run.
	Report *bundler.Report
}

// LoadConfig loads the configuration for p and applies the command-line
// overrides.
func LoadConfig(p Params) (*config.Config, error) {
	dir, err := resolveDir(p.Dir)
	if err != nil {
		return nil, err
	}

	loader := config.NewLoader()
	var cfg *config.Config
	if p.ConfigPath != "" {
		cfg, err = loader.LoadConfig(p.ConfigPath)
	} else {
		cfg, err = loader.LoadConfigFromDir(dir)
	}
	if err != nil {
		return nil, err
	}

	if p.Gemfile != "" {
		cfg.Gemfile = p.Gemfile
	}
	if p.Method != "" {
		cfg.Verify.Method = config.VerifyMethod(strings.ToLower(p.Method))
	}
	if err := cfg.Validate(); err != nil {
		return nil, bcerrors.Wrap(err, bcerrors.ErrConfig, "invalid command-line option")
	}
	if cfg.Logging.Dir != "" && !filepath.IsAbs(cfg.Logging.Dir) {
		cfg.Logging.Dir = filepath.Join(dir, cfg.Logging.Dir)
	}

	return cfg, nil
}

// Run checks the project's dependencies and advises or installs as
// configured. Missing gems are not an error; an unrecognized verification
// failure is.
func Run(ctx context.Context, p Params) (*Result, error) {
	dir, err := resolveDir(p.Dir)
	if err != nil {
		return nil, err
	}
	p.Dir = dir
	if p.Out == nil {
		p.Out = os.Stdout
	}
	if p.Err == nil {
		p.Err = os.Stderr
	}
	if p.Runner == nil {
		p.Runner = runner.NewExecRunner()
	}

	cfg, err := LoadConfig(p)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg, p)
	if err != nil {
		return nil, err
	}
	logging.SetGlobal(log)
	defer logging.CloseGlobal()

	info, err := project.Detect(dir)
	if err != nil {
		return nil, err
	}
	gemfile, err := project.GemfilePath(dir, cfg.Gemfile)
	if err != nil {
		return nil, err
	}
	if cfg.Gemfile != "" {
		// an override replaces whatever manifest detection found
		info.Gemfile = ""
		if _, statErr := os.Stat(gemfile); statErr == nil {
			info.Gemfile = gemfile
		}
	}
	log.Debug("project detected",
		"dir", info.Path,
		"gemfile", info.Gemfile,
		"lockfile", info.Lockfile,
		"git", info.IsGitRepo,
		"ruby_version", info.RubyVersion,
	)

	printer := styles.NewPrinter(p.Out)
	git := gitconfig.NewReader(p.Runner, cfg.Commands.Git, dir)

	opts, err := mergeOptions(ctx, cfg, p, git, log)
	if err != nil {
		return nil, err
	}
	result := &Result{Options: opts, Project: info}

	if p.WhenEnabled {
		gate := &bundler.Gate{Config: git, Printer: printer, Logger: log}
		enabled, err := gate.Enabled(ctx, info)
		if err != nil {
			return nil, err
		}
		if !enabled {
			log.Debug("check not enabled for project")
			return result, nil
		}
	}

	effective, set, err := project.EnsureGemfileEnv(gemfile)
	if err != nil {
		return nil, bcerrors.Wrap(err, bcerrors.ErrGemfile, fmt.Sprintf("failed to set %s", project.GemfileEnv))
	}
	result.Gemfile = effective
	log.Debug("manifest environment", "BUNDLE_GEMFILE", effective, "set", set)

	verifier, err := bundler.NewVerifier(cfg.Verify.Method, p.Runner, cfg.Commands, dir, cfg.Verify.Timeout)
	if err != nil {
		return nil, err
	}

	checker := bundler.NewChecker(verifier, p.Runner, p.Out)
	checker.Bundle = cfg.Commands.Bundle
	checker.Rbenv = cfg.Commands.Rbenv
	checker.Dir = dir
	checker.Stdout = p.Out
	checker.Stderr = p.Err

	result.Ran = true
	result.Report, err = checker.Check(ctx, opts)
	return result, err
}

// mergeOptions OR-combines the install options from config, git config,
// positional words and flags.
func mergeOptions(ctx context.Context, cfg *config.Config, p Params, git *gitconfig.Reader, log *logging.Logger) (bundler.Options, error) {
	opts := bundler.Options{
		Autoinstall: cfg.Install.Autoinstall,
		Local:       cfg.Install.Local,
		Rbenv:       cfg.Install.Rbenv,
	}

	if p.GitConfig {
		fromGit, err := git.ReadBundlerOptions(ctx)
		if err != nil {
			return bundler.Options{}, err
		}
		opts = opts.Merge(bundler.Options{
			Autoinstall: fromGit.Autoinstall,
			Local:       fromGit.Local,
			Rbenv:       fromGit.Rbenv,
		})
	}

	words, ignored := bundler.ParseArgs(p.Args)
	for _, word := range ignored {
		if word != "" {
			log.Debug("ignoring unknown argument", "arg", word)
		}
	}

	opts = opts.Merge(words).Merge(p.Flags)
	log.Debug("options", "install", opts.String())
	return opts, nil
}

func newLogger(cfg *config.Config, p Params) (*logging.Logger, error) {
	level, err := logging.ParseLevel(string(cfg.Logging.Level))
	if err != nil {
		return nil, bcerrors.ConfigValidationError("logging.level", err.Error(), nil)
	}
	if p.Verbose {
		level = logging.LevelDebug
	}

	if cfg.Logging.Dir == "" && !p.Verbose {
		return logging.NewNoop(), nil
	}

	log, err := logging.New(&logging.Config{
		Level:       level,
		LogDir:      cfg.Logging.Dir,
		MaxLogFiles: cfg.Logging.MaxFiles,
		Console:     p.Verbose,
		Stderr:      p.Err,
		JSONFormat:  cfg.Logging.JSON,
	})
	if err != nil {
		return nil, bcerrors.Wrap(err, bcerrors.ErrConfig, "failed to initialize logging").
			WithDetails("dir", cfg.Logging.Dir)
	}
	return log, nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(dir)
}
