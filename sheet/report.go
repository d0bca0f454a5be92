package sheet

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
)

// WriteReport replaces the Report worksheet content: a title row with the
// run timestamp and, from row 3, one row per rejected record (node id,
// reason, source row). Row 2 is left for the sheet's own column headers.
func (c *Client) WriteReport(ctx context.Context, spreadsheetID, area string, rejects []dataset.Reject) error {
	spreadsheet, err := c.spreadsheet(spreadsheetID)
	if err != nil {
		return err
	}

	if _, err := c.worksheet(spreadsheet, area); err != nil {
		return err
	}

	name := worksheetName(area)

	// ... clear existing report
	rq := sheets.BatchClearValuesRequest{
		Ranges: []string{
			fmt.Sprintf("%s!A1:C1", name),
			fmt.Sprintf("%s!A3:C", name),
		},
	}

	if _, err := c.sheets.Spreadsheets.Values.BatchClear(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	// ... write title + rejects
	title := sheets.ValueRange{
		Range: fmt.Sprintf("%s!A1:A1", name),
		Values: [][]interface{}{
			{time.Now().Format("Reject Report: 2006-01-02 15:04:05")},
		},
	}

	data := []*sheets.ValueRange{&title}

	if len(rejects) > 0 {
		rows := sheets.ValueRange{
			Range:  fmt.Sprintf("%s!A3:C", name),
			Values: [][]interface{}{},
		}

		for _, r := range rejects {
			rows.Values = append(rows.Values, []interface{}{r.NodeID, r.Reason, r.Row})
		}

		data = append(data, &rows)
	}

	update := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}

	if _, err := c.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, &update).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}
