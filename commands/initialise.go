package commands

import (
	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
)

// NewInitCommand writes a commented default geomap.yaml, to the
// --config path when given, otherwise to the current directory.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default geomap.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

func runInit() error {
	path := configFile
	if path == "" {
		path = "geomap.yaml"
	}

	if err := config.WriteFile(path); err != nil {
		return err
	}

	logging.Infof("Wrote default configuration to %v", path)

	return nil
}
