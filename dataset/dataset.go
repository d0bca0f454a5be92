// Package dataset turns raw worksheet or CSV rows into the cleaned set of
// origin sites the map is rendered from. Cleaning never fails a run for a
// bad row: invalid rows are set aside with a reason and reported, the way
// the spreadsheet's maintainers expect to find their typos.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one origin site, cleaned and annotated with the derived year
// and marker radius.
type Record struct {
	NodeID      string  `json:"node_id"`
	ParentID    string  `json:"parent_id"`
	Type        string  `json:"type"`
	Group       string  `json:"group"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Citation    string  `json:"citation"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Year        int     `json:"year"`
	Radius      int     `json:"radius"`
}

// Reject is a row that was dropped during preparation. Row is the 1-based
// row number in the source (the header is row 1).
type Reject struct {
	Row    int
	NodeID string
	Reason string
}

// Edge is a parent→child lineage link between two kept records, by index
// into Dataset.Records.
type Edge struct {
	Parent int
	Child  int
}

// Dataset is the prepared dataset: the kept records in source order plus
// the rejected rows.
type Dataset struct {
	Records []Record
	Rejects []Reject
}

// required columns; the remainder are optional and default to empty.
var required = []string{"nodeid", "group", "date", "latitude", "longitude"}

// FromRows builds a dataset from a header row plus data rows. Columns are
// matched by normalised header name (case, spaces and underscores are
// ignored) and may appear in any order. groups is the list of valid group
// names; rows outside it are rejected.
func FromRows(rows [][]string, groups []string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty sheet")
	}

	// .. build index
	index := map[string]int{}
	for i, v := range rows[0] {
		k := normalise(v)
		if _, ok := index[k]; ok {
			return nil, fmt.Errorf("duplicate column name '%s'", v)
		}

		index[k] = i
	}

	for _, k := range required {
		if _, ok := index[k]; !ok {
			return nil, fmt.Errorf("missing '%s' column", k)
		}
	}

	valid := map[string]bool{}
	for _, g := range groups {
		valid[g] = true
	}

	// ... records
	d := Dataset{
		Records: []Record{},
		Rejects: []Reject{},
	}

	seen := map[string]bool{}

	for i, row := range rows[1:] {
		number := i + 2 // 1-based, header is row 1

		get := func(k string) string {
			ix, ok := index[k]
			if !ok || ix >= len(row) {
				return ""
			}

			return clean(row[ix])
		}

		record := Record{
			NodeID:      get("nodeid"),
			ParentID:    get("parentid"),
			Type:        get("type"),
			Group:       get("group"),
			Date:        get("date"),
			Description: get("description"),
			Citation:    get("citation"),
		}

		reject := func(reason string) {
			d.Rejects = append(d.Rejects, Reject{Row: number, NodeID: record.NodeID, Reason: reason})
		}

		lat, err := strconv.ParseFloat(get("latitude"), 64)
		if err != nil {
			reject(fmt.Sprintf("invalid latitude '%s'", get("latitude")))
			continue
		}

		lon, err := strconv.ParseFloat(get("longitude"), 64)
		if err != nil {
			reject(fmt.Sprintf("invalid longitude '%s'", get("longitude")))
			continue
		}

		if lat < -90 || lat > 90 {
			reject(fmt.Sprintf("latitude %v out of range", lat))
			continue
		}

		if lon < -180 || lon > 180 {
			reject(fmt.Sprintf("longitude %v out of range", lon))
			continue
		}

		if !valid[record.Group] {
			reject(fmt.Sprintf("unknown group '%s'", record.Group))
			continue
		}

		if record.NodeID != "" {
			if seen[record.NodeID] {
				reject(fmt.Sprintf("duplicate node id '%s'", record.NodeID))
				continue
			}

			seen[record.NodeID] = true
		}

		record.Latitude = lat
		record.Longitude = lon
		record.Year = ParseDate(record.Date)
		record.Radius = Radius(record.Year)

		d.Records = append(d.Records, record)
	}

	return &d, nil
}

// Edges returns the lineage links between kept records: one edge per
// record whose parent id resolves to a kept record with a node id.
// Dangling parent ids simply produce no edge.
func (d *Dataset) Edges() []Edge {
	coords := map[string]int{}
	for i, r := range d.Records {
		if r.NodeID != "" {
			coords[r.NodeID] = i
		}
	}

	edges := []Edge{}
	for i, r := range d.Records {
		if parent, ok := coords[r.ParentID]; ok && r.ParentID != "" {
			edges = append(edges, Edge{Parent: parent, Child: i})
		}
	}

	return edges
}

// Center returns the mean latitude/longitude of the kept records, the
// map's initial view. An empty dataset centers on 0,0.
func (d *Dataset) Center() (float64, float64) {
	if len(d.Records) == 0 {
		return 0, 0
	}

	var lat, lon float64
	for _, r := range d.Records {
		lat += r.Latitude
		lon += r.Longitude
	}

	n := float64(len(d.Records))

	return lat / n, lon / n
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

func normalise(v string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "_", "").Replace(v))
}
