package main

import (
	// Embedded zone data so DEFAULT_TIMEZONE validates on hosts without tzdata.
	_ "time/tzdata"

	"github.com/teemow/gcalendar-mcp/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
