package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
)

type putFlags struct {
	file  string
	style string
}

// NewPutCommand uploads a local CSV or TSV dataset file to the data
// worksheet. Rows that would be rejected are reported but uploaded
// as-is: the sheet is the source of truth, cleaning happens on build.
func NewPutCommand() *cobra.Command {
	flags := &putFlags{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Upload a local dataset file to the data worksheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd.Context(), cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.file, "file", "", "source file (.csv or .tsv)")
	cmd.Flags().StringVar(&flags.style, "style", "", "standalone style YAML file")
	cmd.Flags().String("url", "", "spreadsheet URL or bare ID")
	cmd.Flags().String("range", defaults.Sheets.Range, "data worksheet range")
	cmd.Flags().String("credentials", "", "service account JSON file")

	return cmd
}

func runPut(ctx context.Context, cmd *cobra.Command, flags *putFlags) error {
	if flags.file == "" {
		return fmt.Errorf("--file is a required option")
	}

	cfg, err := config.Load(cmd, configFile)
	if err != nil {
		return err
	}

	rows, err := dataset.ReadFile(flags.file)
	if err != nil {
		return err
	}

	if s, err := styleFor(flags.style, cfg); err == nil {
		if d, err := dataset.FromRows(rows, s.Names()); err == nil && len(d.Rejects) > 0 {
			logging.Warnf("%v of %v rows would be rejected on build", len(d.Rejects), datarows(rows))
		}
	}

	src, err := connect(ctx, cmd, cfg, scopes(true))
	if err != nil {
		return err
	}

	if err := src.client.PutRows(ctx, src.spreadsheetID, cfg.Sheets.Range, rows); err != nil {
		return err
	}

	logging.Infof("Uploaded %v rows from %v", datarows(rows), flags.file)

	return nil
}
