package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
	"github.com/mlounello/alcohol-origins-geomap-staging/publish"
	"github.com/mlounello/alcohol-origins-geomap-staging/render"
	"github.com/mlounello/alcohol-origins-geomap-staging/sheet"
)

type publishFlags struct {
	file     string
	style    string
	dryRun   bool
	force    bool
	noLog    bool
	noReport bool
}

// NewPublishCommand builds the site and publishes it to the configured
// branch, skipping the commit when nothing changed.
func NewPublishCommand() *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build the site and publish it to the publish branch",
		Long: `Builds the site and publishes it to the publish branch. The run is
skipped when the spreadsheet revision is already published, and the
commit is skipped when the rendered content is unchanged; --force
bypasses both. Unless suppressed, a run record is appended to the Log
worksheet and rejected rows are written to the Report worksheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), cmd, flags)
		},
	}

	addPublishFlags(cmd, flags)

	return cmd
}

func addPublishFlags(cmd *cobra.Command, flags *publishFlags) {
	defaults := config.Default()

	cmd.Flags().StringVar(&flags.file, "file", "", "build from a local CSV/TSV file instead of the spreadsheet")
	cmd.Flags().StringVar(&flags.style, "style", "", "standalone style YAML file")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report what would happen without writing anything")
	cmd.Flags().BoolVar(&flags.force, "force", false, "publish even when nothing changed")
	cmd.Flags().BoolVar(&flags.noLog, "no-log", false, "do not append a run record to the Log worksheet")
	cmd.Flags().BoolVar(&flags.noReport, "no-report", false, "do not rewrite the Report worksheet")
	cmd.Flags().String("url", "", "spreadsheet URL or bare ID")
	cmd.Flags().String("range", defaults.Sheets.Range, "data worksheet range")
	cmd.Flags().String("credentials", "", "service account JSON file")
	cmd.Flags().String("out", defaults.Site.Out, "output directory")
	cmd.Flags().String("remote", "", "git remote URL for the published site")
	cmd.Flags().String("branch", defaults.Publish.Branch, "publish branch")
	cmd.Flags().Uint("log-retention", defaults.Publish.Retention, "days of Log worksheet rows to keep")
}

func runPublish(ctx context.Context, cmd *cobra.Command, flags *publishFlags) error {
	cfg, err := config.Load(cmd, configFile)
	if err != nil {
		return err
	}

	if cfg.Publish.URL == "" {
		return fmt.Errorf("--remote is a required option")
	}

	s, err := styleFor(flags.style, cfg)
	if err != nil {
		return err
	}

	publisher := &publish.Publisher{
		URL:      cfg.Publish.URL,
		Branch:   cfg.Publish.Branch,
		Author:   cfg.Publish.Author,
		Email:    cfg.Publish.Email,
		Username: cfg.Publish.Username,
		Token:    token(cfg),
	}

	checkout, err := publisher.Checkout()
	if err != nil {
		return err
	}

	defer checkout.Close()

	published := checkout.Manifest()

	var src *source
	var rows [][]string

	if flags.file != "" {
		if rows, err = dataset.ReadFile(flags.file); err != nil {
			return err
		}
	} else {
		write := !flags.noLog || !flags.noReport
		if src, err = connect(ctx, cmd, cfg, scopes(write)); err != nil {
			return err
		}

		// source guard: the published revision is already current
		if published != nil && published.Revision != "" && published.Revision == src.revision.ID && !flags.force {
			return skipUnchangedSource(ctx, cfg, flags, src, published)
		}

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

	// content guard: same prepared dataset and style as published
	action := publish.Published
	if published != nil && published.ContentHash == site.Hash() && !flags.force {
		action = publish.ContentUnchanged
	}

	if flags.dryRun {
		if action == publish.Published {
			logging.Infof("Dry run - would publish %v points to branch %v", len(d.Records), cfg.Publish.Branch)
		} else {
			logging.Infof("Dry run - published content unchanged, nothing to do")
		}

		return nil
	}

	if err := site.AddManifest(manifest(src, d, datarows(rows), site.Hash())); err != nil {
		return err
	}

	if err := site.Write(cfg.Site.Out); err != nil {
		return err
	}

	if action == publish.Published {
		result, err := checkout.Apply(site, publish.Message(site.Hash(), len(d.Records)))
		if err != nil {
			return err
		}

		action = result.Action

		if action == publish.Published {
			logging.Infof("Published %v points to branch %v (%.7v)", len(d.Records), cfg.Publish.Branch, result.Commit)
		} else {
			logging.Infof("Publish branch %v already up to date", cfg.Publish.Branch)
		}
	} else {
		logging.Infof("Published content unchanged - skipping commit")
	}

	if src != nil {
		run := sheet.Run{
			Timestamp: time.Now(),
			Rows:      datarows(rows),
			Points:    len(d.Records),
			Rejects:   len(d.Rejects),
			Action:    string(action),
			Hash:      site.Hash(),
		}

		if err := writeback(ctx, cfg, flags, src, run, d.Rejects); err != nil {
			return err
		}
	}

	return nil
}

// skipUnchangedSource records a skipped run in the Log worksheet and
// concludes without fetching values.
func skipUnchangedSource(ctx context.Context, cfg config.Config, flags *publishFlags, src *source, published *render.Manifest) error {
	logging.Infof("Spreadsheet revision %v already published - skipping", src.revision.ID)

	if flags.dryRun {
		return nil
	}

	run := sheet.Run{
		Timestamp: time.Now(),
		Action:    string(publish.SourceUnchanged),
		Hash:      published.ContentHash,
	}

	return writeback(ctx, cfg, flags, src, run, nil)
}

// writeback appends the run record to the Log worksheet, prunes old log
// rows and rewrites the Report worksheet. Failures here fail the run.
func writeback(ctx context.Context, cfg config.Config, flags *publishFlags, src *source, run sheet.Run, rejects []dataset.Reject) error {
	if !flags.noLog {
		if err := src.client.AppendLog(ctx, src.spreadsheetID, cfg.Sheets.Log, run); err != nil {
			return err
		}

		pruned, err := src.client.PruneLog(ctx, src.spreadsheetID, cfg.Sheets.Log, cfg.Publish.Retention)
		if err != nil {
			return err
		}

		if pruned > 0 {
			logging.Debugf("Pruned %v rows from the log worksheet", pruned)
		}
	}

	if !flags.noReport && rejects != nil {
		if err := src.client.WriteReport(ctx, src.spreadsheetID, cfg.Sheets.Report, rejects); err != nil {
			return err
		}
	}

	return nil
}
