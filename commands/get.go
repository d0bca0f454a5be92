package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
)

type getFlags struct {
	file string
}

// NewGetCommand downloads the data worksheet to a local CSV or TSV
// file, picked by extension.
func NewGetCommand() *cobra.Command {
	flags := &getFlags{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Download the data worksheet to a local file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.file, "file", "", "destination file (.csv or .tsv)")
	cmd.Flags().String("url", "", "spreadsheet URL or bare ID")
	cmd.Flags().String("range", defaults.Sheets.Range, "data worksheet range")
	cmd.Flags().String("credentials", "", "service account JSON file")

	return cmd
}

func runGet(ctx context.Context, cmd *cobra.Command, flags *getFlags) error {
	if flags.file == "" {
		return fmt.Errorf("--file is a required option")
	}

	cfg, err := config.Load(cmd, configFile)
	if err != nil {
		return err
	}

	src, err := connect(ctx, cmd, cfg, scopes(false))
	if err != nil {
		return err
	}

	rows, err := src.client.Fetch(ctx, src.spreadsheetID, cfg.Sheets.Range)
	if err != nil {
		return err
	}

	if err := dataset.WriteFile(flags.file, rows); err != nil {
		return err
	}

	logging.Infof("Retrieved %v rows to %v", datarows(rows), flags.file)

	return nil
}
