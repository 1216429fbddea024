// Package main is the entry point for the bundlecheck CLI.
package main

import "github.com/wexinc/bundlecheck/cmd/bundlecheck/cmd"

// Version information - will be set by build flags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	cmd.Date = date
	cmd.Execute()
}
