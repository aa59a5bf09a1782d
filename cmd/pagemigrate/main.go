// pagemigrate CLI - runs mapping-file function pipelines against legacy page controls
package main

import (
	"github.com/pagemigrate/pagemigrate/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
