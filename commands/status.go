package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
	"github.com/mlounello/alcohol-origins-geomap-staging/publish"
	"github.com/mlounello/alcohol-origins-geomap-staging/render"
)

type statusFlags struct {
	file  string
	style string
}

// NewStatusCommand compares the published manifest against the current
// source. The verdict goes to stdout; the exit code is 0 when up to
// date and 3 otherwise.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the published site is up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.file, "file", "", "compare against a local CSV/TSV file instead of the spreadsheet")
	cmd.Flags().StringVar(&flags.style, "style", "", "standalone style YAML file")
	cmd.Flags().String("url", "", "spreadsheet URL or bare ID")
	cmd.Flags().String("range", defaults.Sheets.Range, "data worksheet range")
	cmd.Flags().String("credentials", "", "service account JSON file")
	cmd.Flags().String("remote", "", "git remote URL for the published site")
	cmd.Flags().String("branch", defaults.Publish.Branch, "publish branch")

	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, flags *statusFlags) error {
	cfg, err := config.Load(cmd, configFile)
	if err != nil {
		return err
	}

	if cfg.Publish.URL == "" {
		return fmt.Errorf("--remote is a required option")
	}

	publisher := &publish.Publisher{
		URL:      cfg.Publish.URL,
		Branch:   cfg.Publish.Branch,
		Username: cfg.Publish.Username,
		Token:    token(cfg),
	}

	checkout, err := publisher.Checkout()
	if err != nil {
		return err
	}

	defer checkout.Close()

	published := checkout.Manifest()
	if published == nil {
		fmt.Println("never published")
		return ErrStale
	}

	logging.Debugf("Branch head %v: published %v, revision %v, hash %.7v", checkout.Head(), published.GeneratedAt, published.Revision, published.ContentHash)

	s, err := styleFor(flags.style, cfg)
	if err != nil {
		return err
	}

	var src *source
	var rows [][]string

	if flags.file != "" {
		if rows, err = dataset.ReadFile(flags.file); err != nil {
			return err
		}
	} else {
		if src, err = connect(ctx, cmd, cfg, scopes(false)); err != nil {
			return err
		}

		if published.Revision != "" && published.Revision == src.revision.ID {
			fmt.Println("up to date")
			return nil
		}

		logging.Infof("Spreadsheet revision %v, published %v", src.revision.ID, published.Revision)

		if rows, err = src.client.Fetch(ctx, src.spreadsheetID, cfg.Sheets.Range); err != nil {
			return err
		}
	}

	d, err := prepare(rows, s)
	if err != nil {
		return err
	}

	site, err := render.Build(render.NewPayload(d, s))
	if err != nil {
		return err
	}

	if site.Hash() == published.ContentHash {
		fmt.Println("up to date")
		return nil
	}

	logging.Infof("Rendered content %.7v, published %.7v", site.Hash(), published.ContentHash)
	fmt.Println("stale")

	return ErrStale
}
