// Package sheet is the Google Sheets access layer: fetching the dataset
// range, resolving the spreadsheet's latest drive revision, uploading
// datasets and maintaining the Log and Report worksheets.
package sheet

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	ScopeReadOnly      = "https://www.googleapis.com/auth/spreadsheets.readonly"
	ScopeReadWrite     = "https://www.googleapis.com/auth/spreadsheets"
	ScopeDriveMetadata = "https://www.googleapis.com/auth/drive.metadata.readonly"
)

var (
	urlPattern   = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)
	idPattern    = regexp.MustCompile(`^[a-zA-Z0-9_-]{20,}$`)
	rangePattern = regexp.MustCompile(`(.+?)!.*`)
	cellPattern  = regexp.MustCompile(`(.+?)!([a-zA-Z]+)([0-9]+):([a-zA-Z]+)([0-9]+)?`)
)

// Client wraps the Sheets and Drive services for a single authorised
// session.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewClient builds the Sheets and Drive services from the credentials,
// authorised for the given scopes.
func NewClient(ctx context.Context, credentials *Credentials, scopes ...string) (*Client, error) {
	client, err := credentials.client(ctx, scopes...)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%v)", err)
	}

	gsheets, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%v)", err)
	}

	gdrive, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Drive client (%v)", err)
	}

	return &Client{
		sheets: gsheets,
		drive:  gdrive,
	}, nil
}

// SpreadsheetID reduces a spreadsheet URL to the document ID. A bare
// document ID is accepted as-is.
func SpreadsheetID(url string) (string, error) {
	v := strings.TrimSpace(url)

	if match := urlPattern.FindStringSubmatch(v); len(match) >= 2 && match[1] != "" {
		return match[1], nil
	}

	if idPattern.MatchString(v) {
		return v, nil
	}

	return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
}

// ValidateRange checks that a range carries a worksheet qualifier.
func ValidateRange(area string) error {
	if match := rangePattern.FindStringSubmatch(strings.TrimSpace(area)); len(match) < 2 {
		return fmt.Errorf("invalid range '%s' - expected something like 'Data!A1:K'", area)
	}

	return nil
}

// worksheetName returns the worksheet qualifier of a range e.g. 'Log' for
// 'Log!A1:F'.
func worksheetName(area string) string {
	match := rangePattern.FindStringSubmatch(strings.TrimSpace(area))
	if len(match) < 2 {
		return ""
	}

	return match[1]
}

func (c *Client) spreadsheet(id string) (*sheets.Spreadsheet, error) {
	spreadsheet, err := c.sheets.Spreadsheets.Get(id).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet (%v)", err)
	}

	return spreadsheet, nil
}

func (c *Client) worksheet(spreadsheet *sheets.Spreadsheet, area string) (*sheets.Sheet, error) {
	name := worksheetName(area)
	for _, sheet := range spreadsheet.Sheets {
		if strings.EqualFold(strings.TrimSpace(sheet.Properties.Title), strings.TrimSpace(name)) {
			return sheet, nil
		}
	}

	return nil, fmt.Errorf("unable to identify worksheet for '%s'", area)
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}
