// Package version provides build and toolchain version information for
// bundlecheck.
package version

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/wexinc/bundlecheck/internal/config"
	"github.com/wexinc/bundlecheck/internal/runner"
)

// Info contains version information about bundlecheck.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	GoVer   string `json:"go_version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// NewInfo creates a new Info from the build variables.
func NewInfo(version, commit, date string) *Info {
	return &Info{
		Version: version,
		Commit:  commit,
		Date:    date,
		GoVer:   runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// String returns a formatted version string.
func (i *Info) String() string {
	return fmt.Sprintf("bundlecheck %s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}

// FullString returns a detailed version string.
func (i *Info) FullString() string {
	return fmt.Sprintf(`bundlecheck %s
  Commit:   %s
  Built:    %s
  Go:       %s
  OS/Arch:  %s/%s`, i.Version, i.Commit, i.Date, i.GoVer, i.OS, i.Arch)
}

// Tool is the detected version of an external executable.
type Tool struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Version string `json:"version,omitempty"`
	Err     error  `json:"-"`
}

// String formats the tool for `bundlecheck version --tools`.
func (t Tool) String() string {
	switch {
	case t.Err != nil:
		return fmt.Sprintf("  %-8s unavailable (%v)", t.Name+":", t.Err)
	case t.Version == "":
		return fmt.Sprintf("  %-8s unknown", t.Name+":")
	default:
		return fmt.Sprintf("  %-8s %s", t.Name+":", t.Version)
	}
}

var semverPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?(-[0-9A-Za-z.-]+)?`)

// ParseToolVersion extracts the first version number from `--version`
// output, e.g. "Bundler version 2.4.10" or "ruby 3.2.2 (2023-03-30 ...)".
func ParseToolVersion(output string) string {
	return semverPattern.FindString(strings.TrimSpace(output))
}

// DetectTools runs `--version` for bundler, ruby, rbenv and git.
// A tool that cannot be started or exits non-zero is reported with Err set.
func DetectTools(ctx context.Context, r runner.Runner, cmds config.CommandsConfig) []Tool {
	candidates := []struct{ name, command string }{
		{"bundler", cmds.Bundle},
		{"ruby", cmds.Ruby},
		{"rbenv", cmds.Rbenv},
		{"git", cmds.Git},
	}

	tools := make([]Tool, 0, len(candidates))
	for _, c := range candidates {
		tool := Tool{Name: c.name, Command: c.command}

		res, err := r.Run(ctx, runner.Command{Name: c.command, Args: []string{"--version"}})
		switch {
		case err != nil:
			tool.Err = err
		case !res.Success():
			tool.Err = fmt.Errorf("exit %d", res.ExitCode)
		default:
			tool.Version = ParseToolVersion(res.Stdout)
		}

		tools = append(tools, tool)
	}

	return tools
}
