package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
	"github.com/mlounello/alcohol-origins-geomap-staging/render"
)

type buildFlags struct {
	file  string
	style string
	check bool
}

// NewBuildCommand fetches the dataset and renders the site into the
// output directory, without publishing.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch the dataset and render the site",
		Long: `Fetches the data worksheet (or reads a local CSV/TSV file), prepares the
dataset and renders the site into the output directory: index.html,
data.json, manifest.json and .nojekyll.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.file, "file", "", "build from a local CSV/TSV file instead of the spreadsheet")
	cmd.Flags().StringVar(&flags.style, "style", "", "standalone style YAML file")
	cmd.Flags().BoolVar(&flags.check, "check", false, "verify the rendered page before writing")
	cmd.Flags().String("url", "", "spreadsheet URL or bare ID")
	cmd.Flags().String("range", defaults.Sheets.Range, "data worksheet range")
	cmd.Flags().String("credentials", "", "service account JSON file")
	cmd.Flags().String("out", defaults.Site.Out, "output directory")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, flags *buildFlags) error {
	cfg, err := config.Load(cmd, configFile)
	if err != nil {
		return err
	}

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

	if flags.check {
		if err := render.Verify(site.Content("index.html"), s.Names()); err != nil {
			return err
		}

		logging.Debugf("Rendered page verified")
	}

	if err := site.AddManifest(manifest(src, d, datarows(rows), site.Hash())); err != nil {
		return err
	}

	if err := site.Write(cfg.Site.Out); err != nil {
		return err
	}

	logging.Infof("Rendered %v points (%v rejected) to %v", len(d.Records), len(d.Rejects), cfg.Site.Out)

	return nil
}
