package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// delimiter picks the field separator from the file extension: tab for
// .tsv, comma for everything else.
func delimiter(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}

	return ','
}

// ReadFile reads a delimited dataset file (header row first) into raw
// rows. Rows may have fewer fields than the header; missing fields read
// as empty.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiter(path)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading %s (%v)", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	return rows, nil
}

// WriteFile writes rows to a delimited file, creating the directory if
// necessary. The file is written to a temporary file in the destination
// directory and renamed into place.
func WriteFile(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "geomap")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	w.Comma = delimiter(path)

	for _, row := range rows {
		w.Write(row)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
