// workflowctl - command-line client for the Claude workflow runtime sidecar
package main

import "github.com/VladislavFirsov/claude-workflow/pkg/cli"

// Build-time variables set via ldflags
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.BuildDate = buildDate
	cli.Execute()
}
