package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wexinc/bundlecheck/internal/app"
	"github.com/wexinc/bundlecheck/internal/version"
)

// newVersionCmd builds the version command.
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show detailed version information for bundlecheck.

Displays the current version, commit hash, build date,
and Go/platform information.

Examples:
  bundlecheck version           # Show detailed version info
  bundlecheck version --tools   # Also show bundler, ruby, rbenv and git versions`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
	cmd.Flags().BoolP("tools", "t", false, "Show versions of the external tools")
	return cmd
}

// runVersion handles the version command.
func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	info := version.NewInfo(Version, Commit, Date)
	fmt.Fprintln(out, info.FullString())

	tools, _ := cmd.Flags().GetBool("tools")
	if !tools {
		return nil
	}

	cfg, err := app.LoadConfig(paramsFromFlags(cmd))
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Tools:")
	for _, tool := range version.DetectTools(cmd.Context(), newRunner(), cfg.Commands) {
		fmt.Fprintln(out, tool.String())
	}
	return nil
}
