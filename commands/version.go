package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand prints the build information injected via ldflags.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("geomap %s (commit %s, built %s)\n", Version, Commit, Date)
		},
	}
}
