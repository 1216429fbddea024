// Package cmd provides the CLI commands for bundlecheck.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wexinc/bundlecheck/internal/app"
	"github.com/wexinc/bundlecheck/internal/bundler"
	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
	"github.com/wexinc/bundlecheck/internal/runner"
	"github.com/wexinc/bundlecheck/internal/styles"
)

// Version information - set via ldflags at build time in main.go.
// These are exported so main.go can set them before Execute().
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// newRunner creates the runner for external commands. Tests replace it.
var newRunner = func() runner.Runner { return runner.NewExecRunner() }

// rootCmd is the command hierarchy Execute runs.
var rootCmd = newRootCmd()

// newRootCmd builds the root command, which checks the project's gems when
// called without a subcommand, along with its subcommands.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bundlecheck [autoinstall] [local] [rbenv]",
		Short: "Check that a Ruby project's gems are installed",
		Long: `bundlecheck verifies that every gem declared in the project's Gemfile is
installed. When gems are missing it prints a warning or, with autoinstall,
runs bundle install.

Options can be given as words (the form git-up passes them) or as flags:
  autoinstall   run bundle install when gems are missing
  local         try bundle install --local first (needs autoinstall)
  rbenv         run rbenv rehash after installing (needs autoinstall)

Examples:
  bundlecheck                        # warn if gems are missing
  bundlecheck autoinstall local      # install from the local gem cache first
  bundlecheck --git-config --when-enabled`,
		Args:          cobra.ArbitraryArgs,
		ValidArgs:     []string{bundler.WordAutoinstall, bundler.WordLocal, bundler.WordRbenv},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runCheck,
	}
	addRootFlags(root)

	root.AddCommand(newVersionCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// addRootFlags registers the root command's flags on cmd.
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("autoinstall", false, "Run bundle install when gems are missing")
	cmd.Flags().Bool("local", false, "Try bundle install --local first")
	cmd.Flags().Bool("rbenv", false, "Run rbenv rehash after installing")
	cmd.Flags().Bool("git-config", false, "Also read options from git-up.bundler.* git config keys")
	cmd.Flags().Bool("when-enabled", false, "Only check when git-up.bundler.check is true")

	cmd.PersistentFlags().String("config", "", "Config file (default: .bundlecheck.yaml)")
	cmd.PersistentFlags().String("gemfile", "", "Gemfile path used when BUNDLE_GEMFILE is unset")
	cmd.PersistentFlags().String("method", "", "Verification method: bundle or ruby")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Write debug logs to stderr")
}

// runCheck handles the root command.
func runCheck(cmd *cobra.Command, args []string) error {
	p := paramsFromFlags(cmd)
	p.Args = args
	p.Flags.Autoinstall, _ = cmd.Flags().GetBool("autoinstall")
	p.Flags.Local, _ = cmd.Flags().GetBool("local")
	p.Flags.Rbenv, _ = cmd.Flags().GetBool("rbenv")
	p.GitConfig, _ = cmd.Flags().GetBool("git-config")
	p.WhenEnabled, _ = cmd.Flags().GetBool("when-enabled")
	p.Runner = newRunner()

	_, err := app.Run(cmd.Context(), p)
	return err
}

// paramsFromFlags reads the persistent flags shared by every command.
func paramsFromFlags(cmd *cobra.Command) app.Params {
	var p app.Params
	p.ConfigPath, _ = cmd.Flags().GetString("config")
	p.Gemfile, _ = cmd.Flags().GetString("gemfile")
	p.Method, _ = cmd.Flags().GetString("method")
	p.Verbose, _ = cmd.Flags().GetBool("verbose")
	p.Out = cmd.OutOrStdout()
	p.Err = cmd.ErrOrStderr()
	return p
}

// printError writes err to w, using the detailed format for bundlecheck errors.
func printError(w io.Writer, err error) {
	printer := styles.NewPrinter(w)

	var ce *bcerrors.CheckError
	if bcerrors.As(err, &ce) {
		printer.Errorln(strings.TrimRight(ce.Format(), "\n"))
		return
	}
	printer.Errorln(fmt.Sprintf("Error: %v", err))
}

// Execute runs the root command and exits 1 on error.
// This is called by main.main().
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
	rootCmd.SetVersionTemplate("bundlecheck {{.Version}}\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
