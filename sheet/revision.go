package sheet

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/drive/v3"
)

// Revision identifies a saved revision of the spreadsheet file.
type Revision struct {
	ID       string
	Modified time.Time
}

// Revision walks the spreadsheet file's revision list and returns the
// most recently modified revision.
func (c *Client) Revision(ctx context.Context, fileID string) (*Revision, error) {
	page := ""
	latest := Revision{}

	for {
		call := drive.NewRevisionsService(c.drive).List(fileID)
		if page != "" {
			call.PageToken(page)
		}

		revisions, err := call.Context(ctx).Do()
		if err != nil {
			return nil, err
		}

		for _, revision := range revisions.Revisions {
			datetime, err := time.Parse("2006-01-02T15:04:05.999Z", revision.ModifiedTime)
			if err != nil {
				return nil, err
			}

			if latest.Modified.Before(datetime) {
				latest.ID = revision.Id
				latest.Modified = datetime
			}
		}

		if page = revisions.NextPageToken; page == "" {
			break
		}
	}

	if latest.Modified.IsZero() {
		return nil, fmt.Errorf("unable to identify latest revision for file ID %s", fileID)
	}

	return &latest, nil
}
