package main

import (
	"github.com/mlounello/alcohol-origins-geomap-staging/commands"
)

// set by the linker at release build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	commands.Execute(commands.NewRootCommand())
}
