package sheet

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/sheets/v4"
)

// Fetch retrieves the values in the given range as rows of strings, as
// entered, without type coercion.
func (c *Client) Fetch(ctx context.Context, spreadsheetID, area string) ([][]string, error) {
	response, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet (%v)", err)
	}

	if len(response.Values) == 0 {
		return nil, fmt.Errorf("no data in spreadsheet/range")
	}

	rows := make([][]string, len(response.Values))
	for i, row := range response.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%v", v)
		}

		rows[i] = cells
	}

	return rows, nil
}

// PutRows uploads a header row plus data rows to the given range: the
// header into the first row of the range, data below it.
func (c *Client) PutRows(ctx context.Context, spreadsheetID, area string, rows [][]string) error {
	header, data, err := uploadRanges(area, rows)
	if err != nil {
		return err
	}

	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             []*sheets.ValueRange{header, data},
	}

	if _, err := c.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}

// uploadRanges splits rows into the header and data value ranges for a
// range like 'Data!A1:K'.
func uploadRanges(area string, rows [][]string) (*sheets.ValueRange, *sheets.ValueRange, error) {
	match := cellPattern.FindStringSubmatch(area)
	if len(match) < 5 {
		return nil, nil, fmt.Errorf("invalid spreadsheet range '%s'", area)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no rows to upload")
	}

	name := match[1]
	left := match[2]
	top, _ := strconv.Atoi(match[3])
	right := match[4]

	h := make([]interface{}, len(rows[0]))
	for i, v := range rows[0] {
		h[i] = v
	}

	header := sheets.ValueRange{
		Range:  fmt.Sprintf("%s!%s%v:%s%v", name, left, top, right, top),
		Values: [][]interface{}{h},
	}

	data := sheets.ValueRange{
		Range:  fmt.Sprintf("%s!%s%v:%s", name, left, top+1, right),
		Values: [][]interface{}{},
	}

	for _, record := range rows[1:] {
		row := make([]interface{}, len(record))
		for i, v := range record {
			row[i] = v
		}

		data.Values = append(data.Values, row)
	}

	return &header, &data, nil
}
