package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wexinc/bundlecheck/internal/app"
)

// newConfigCmd builds the command that prints the effective configuration.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration bundlecheck would use, as YAML.

Defaults, .bundlecheck.yaml (or --config), BUNDLECHECK_* environment
variables and the --gemfile and --method flags are all applied. The output
is a valid .bundlecheck.yaml.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
}

// runConfig handles the config command.
func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfig(paramsFromFlags(cmd))
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
