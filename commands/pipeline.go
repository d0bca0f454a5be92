package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlounello/alcohol-origins-geomap-staging/config"
	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
	"github.com/mlounello/alcohol-origins-geomap-staging/render"
	"github.com/mlounello/alcohol-origins-geomap-staging/sheet"
	"github.com/mlounello/alcohol-origins-geomap-staging/style"
)

// source is a connected spreadsheet: the client, the reduced spreadsheet
// ID and the latest drive revision.
type source struct {
	client        *sheet.Client
	spreadsheetID string
	revision      *sheet.Revision
}

// connect validates the configured spreadsheet, builds the sheet client
// and reads the spreadsheet's latest revision.
func connect(ctx context.Context, cmd *cobra.Command, cfg config.Config, scopes []string) (*source, error) {
	if cfg.Sheets.URL == "" {
		return nil, fmt.Errorf("--url is a required option")
	}

	if err := sheet.ValidateRange(cfg.Sheets.Range); err != nil {
		return nil, err
	}

	credentials, err := credentials(cmd, cfg)
	if err != nil {
		return nil, err
	}

	client, err := sheet.NewClient(ctx, credentials, scopes...)
	if err != nil {
		return nil, err
	}

	id, err := sheet.SpreadsheetID(cfg.Sheets.URL)
	if err != nil {
		return nil, err
	}

	revision, err := client.Revision(ctx, id)
	if err != nil {
		return nil, err
	}

	logging.Debugf("Spreadsheet %v at revision %v (modified %v)", id, revision.ID, revision.Modified)

	return &source{
		client:        client,
		spreadsheetID: id,
		revision:      revision,
	}, nil
}

// credentials resolves the Google credential. Sources, in order: the
// --credentials flag, the GEOMAP_CREDENTIALS variable holding the JSON
// itself (raw or base64, kept in memory), a file path configured in
// geomap.yaml.
func credentials(cmd *cobra.Command, cfg config.Config) (*sheet.Credentials, error) {
	if flag := cmd.Flags().Lookup("credentials"); flag != nil && flag.Changed {
		return sheet.CredentialsFromFile(flag.Value.String())
	}

	if v := os.Getenv("GEOMAP_CREDENTIALS"); v != "" {
		return sheet.CredentialsFromEnv(v)
	}

	if cfg.Sheets.Credentials != "" {
		return sheet.CredentialsFromFile(cfg.Sheets.Credentials)
	}

	return nil, fmt.Errorf("no Google credentials - use --credentials, set GEOMAP_CREDENTIALS, or set sheets.credentials in geomap.yaml")
}

// token resolves the git push token. Sources, in order: GEOMAP_TOKEN,
// GITHUB_TOKEN, publish.token in geomap.yaml. Never logged.
func token(cfg config.Config) string {
	for _, v := range []string{"GEOMAP_TOKEN", "GITHUB_TOKEN"} {
		if t := os.Getenv(v); t != "" {
			return t
		}
	}

	return cfg.Publish.Token
}

// scopes returns the read-only scope set unless the run writes back to
// the spreadsheet.
func scopes(write bool) []string {
	if write {
		return []string{sheet.ScopeReadWrite, sheet.ScopeDriveMetadata}
	}

	return []string{sheet.ScopeReadOnly, sheet.ScopeDriveMetadata}
}

// styleFor loads the standalone style file when given, otherwise the
// style block from geomap.yaml.
func styleFor(file string, cfg config.Config) (style.Style, error) {
	s := cfg.Style

	if file != "" {
		loaded, err := style.LoadFile(file)
		if err != nil {
			return s, err
		}

		s = loaded
	}

	return s, s.Validate()
}

// prepare builds the dataset from the fetched rows, logging a warning
// per rejected row.
func prepare(rows [][]string, s style.Style) (*dataset.Dataset, error) {
	d, err := dataset.FromRows(rows, s.Names())
	if err != nil {
		return nil, err
	}

	for _, r := range d.Rejects {
		logging.Warnf("Row %v rejected: %v (%v)", r.Row, r.NodeID, r.Reason)
	}

	return d, nil
}

// manifest summarises a prepared run. src is nil for local file builds.
func manifest(src *source, d *dataset.Dataset, rows int, hash string) render.Manifest {
	m := render.Manifest{
		GeneratedAt: time.Now().UTC(),
		Rows:        rows,
		Points:      len(d.Records),
		Edges:       len(d.Edges()),
		Rejects:     len(d.Rejects),
		ContentHash: hash,
		Version:     Version,
	}

	if src != nil {
		m.SpreadsheetID = src.spreadsheetID

		if src.revision != nil {
			m.Revision = src.revision.ID
			m.Modified = src.revision.Modified
		}
	}

	return m
}

// datarows is the fetched row count excluding the header row.
func datarows(rows [][]string) int {
	if len(rows) < 1 {
		return 0
	}

	return len(rows) - 1
}
