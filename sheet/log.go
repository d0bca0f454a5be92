package sheet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/mlounello/alcohol-origins-geomap-staging/logging"
)

// Run is one pipeline run's log record.
type Run struct {
	Timestamp time.Time
	Rows      int
	Points    int
	Rejects   int
	Action    string
	Hash      string
}

// AppendLog appends the run record to the Log worksheet, mapping fields
// onto whatever columns the header row declares. A sheet without a header
// gets the default column order.
func (c *Client) AppendLog(ctx context.Context, spreadsheetID, area string, run Run) error {
	index := map[string]int{
		"timestamp": 0,
		"rows":      1,
		"points":    2,
		"rejects":   3,
		"action":    4,
		"hash":      5,
	}

	response, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to retrieve column headers from Log sheet (%v)", err)
	}

	if len(response.Values) > 0 {
		header := response.Values[0]
		index = map[string]int{}

		for i, v := range header {
			switch normalise(fmt.Sprintf("%v", v)) {
			case "timestamp":
				index["timestamp"] = i
			case "rows":
				index["rows"] = i
			case "points":
				index["points"] = i
			case "rejects":
				index["rejects"] = i
			case "action":
				index["action"] = i
			case "hash", "contenthash":
				index["hash"] = i
			}
		}

		logging.Debugf("Log sheet column index: %v", index)
	}

	columns := 0
	for _, v := range index {
		if v >= columns {
			columns = v + 1
		}
	}

	row := make([]interface{}, columns)
	for i := 0; i < columns; i++ {
		row[i] = ""
	}

	set := func(k string, v interface{}) {
		if ix, ok := index[k]; ok {
			row[ix] = v
		}
	}

	set("timestamp", run.Timestamp.Format("2006-01-02 15:04:05"))
	set("rows", run.Rows)
	set("points", run.Points)
	set("rejects", run.Rejects)
	set("action", run.Action)
	set("hash", run.Hash)

	rows := sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	if _, err := c.sheets.Spreadsheets.Values.Append(spreadsheetID, area, &rows).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("error writing log to Google Sheets (%w)", err)
	}

	return nil
}

// PruneLog deletes log rows with a timestamp older than the retention
// window and returns the number of rows deleted. Rows whose first cell is
// not a timestamp (the header row) are left alone.
func (c *Client) PruneLog(ctx context.Context, spreadsheetID, area string, retention uint) (int, error) {
	spreadsheet, err := c.spreadsheet(spreadsheetID)
	if err != nil {
		return 0, err
	}

	worksheet, err := c.worksheet(spreadsheet, area)
	if err != nil {
		return 0, err
	}

	response, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to retrieve data from Log sheet (%v)", err)
	}

	before := cutoff(time.Now(), retention)
	list := []int{}

	logging.Debugf("pruning log records from before %v", before.Format("2006-01-02"))

	for row, record := range response.Values {
		if len(record) == 0 {
			continue
		}

		timestamp, err := time.ParseInLocation("2006-01-02 15:04:05", fmt.Sprintf("%v", record[0]), time.Local)
		if err == nil && timestamp.Before(before) {
			list = append(list, row)
		}
	}

	if len(list) == 0 {
		return 0, nil
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{},
	}

	deleted := 0
	for _, r := range contiguous(list) {
		start := r[0]
		end := r[1]

		rq.Requests = append(rq.Requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    worksheet.Properties.SheetId,
					Dimension:  "ROWS",
					StartIndex: int64(start - deleted),
					EndIndex:   int64(end - deleted + 1),
				},
			},
		})

		deleted += end - start + 1
	}

	if _, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return 0, err
	}

	return deleted, nil
}

// cutoff returns local midnight at the start of the retention window.
func cutoff(now time.Time, retention uint) time.Time {
	before := now.In(time.Local).Add(time.Hour * time.Duration(-24*(int(retention)-1)))

	return time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, before.Location())
}

// contiguous collapses a list of row indices into inclusive [start, end]
// ranges, in ascending order.
func contiguous(list []int) [][2]int {
	if len(list) == 0 {
		return nil
	}

	sort.Ints(list)

	ranges := [][2]int{}
	start := list[0]
	last := list[0]

	for _, row := range list[1:] {
		if row != last+1 {
			ranges = append(ranges, [2]int{start, last})
			start = row
		}

		last = row
	}

	return append(ranges, [2]int{start, last})
}
