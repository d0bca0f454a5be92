package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const manifestFile = "manifest.json"

// Manifest records what a published site was built from. It lives beside
// the site on the publish branch and drives the skip decisions: Revision
// for the source guard, ContentHash for the content guard.
type Manifest struct {
	GeneratedAt   time.Time `json:"generated_at"`
	SpreadsheetID string    `json:"spreadsheet_id,omitempty"`
	Revision      string    `json:"revision,omitempty"`
	Modified      time.Time `json:"modified"`
	Rows          int       `json:"rows"`
	Points        int       `json:"points"`
	Edges         int       `json:"edges"`
	Rejects       int       `json:"rejects"`
	ContentHash   string    `json:"content_hash"`
	Version       string    `json:"version,omitempty"`
}

// ReadManifest reads a manifest.json from a site directory. A missing
// file is an error and callers treat it as 'never published'.
func ReadManifest(dir string) (*Manifest, error) {
	b, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}

	m := Manifest{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest (%v)", err)
	}

	return &m, nil
}
