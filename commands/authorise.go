package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
	"github.com/mlounello/alcohol-origins-geomap-staging/sheet"
)

type authoriseFlags struct {
	credentials string
}

// NewAuthoriseCommand runs the interactive OAuth2 flow for client
// configuration credentials and caches the token beside the
// credentials file. Service account keys need no authorisation.
func NewAuthoriseCommand() *cobra.Command {
	flags := &authoriseFlags{}

	cmd := &cobra.Command{
		Use:     "authorise",
		Aliases: []string{"authorize"},
		Short:   "Authorise OAuth2 client credentials for the Sheets and Drive APIs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthorise(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.credentials, "credentials", "", "OAuth2 client credentials JSON file")

	return cmd
}

func runAuthorise(cmd *cobra.Command, flags *authoriseFlags) error {
	path := flags.credentials

	if path == "" {
		cfg, err := config.Load(cmd, configFile)
		if err != nil {
			return err
		}

		path = cfg.Sheets.Credentials
	}

	if path == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	authorised, err := sheet.Authorise(path, sheet.ScopeReadWrite, sheet.ScopeDriveMetadata)
	if err != nil {
		return err
	}

	if !authorised {
		logging.Infof("%v holds a service account key - no authorisation needed", path)
		return nil
	}

	logging.Infof("Token cached for %v", path)

	return nil
}
