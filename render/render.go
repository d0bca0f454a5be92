// Package render turns a prepared dataset and a style into the static
// site: a self-contained Leaflet page, the dataset payload as JSON and
// the publication manifest.
package render

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
	"github.com/mlounello/alcohol-origins-geomap-staging/style"
)

//go:embed templates
var templates embed.FS

// Year bounds preloaded into the filter sidebar.
const (
	YearMin = -5000
	YearMax = 2000
)

// Payload is the dataset as embedded in the page and written to
// data.json. Everything the page needs at runtime is in here.
type Payload struct {
	Title  string           `json:"title"`
	Center [2]float64       `json:"center"`
	Zoom   int              `json:"zoom"`
	Years  [2]int           `json:"years"`
	Groups []Group          `json:"groups"`
	Tiles  Tiles            `json:"tiles"`
	Points []dataset.Record `json:"points"`
	Edges  []Edge           `json:"edges"`
}

// Group is a beverage group overlay with its marker color.
type Group struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Tiles are the three base layers.
type Tiles struct {
	Street    TileLayer `json:"street"`
	Satellite TileLayer `json:"satellite"`
	Labels    TileLayer `json:"labels"`
}

type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// Edge is a parent→child lineage link, by index into Points.
type Edge struct {
	Parent int `json:"parent"`
	Child  int `json:"child"`
}

// NewPayload assembles the page payload from a prepared dataset and a
// style.
func NewPayload(d *dataset.Dataset, s style.Style) *Payload {
	lat, lon := d.Center()

	groups := make([]Group, len(s.Groups))
	for i, g := range s.Groups {
		groups[i] = Group{Name: g.Name, Color: g.Color}
	}

	edges := []Edge{}
	for _, e := range d.Edges() {
		edges = append(edges, Edge{Parent: e.Parent, Child: e.Child})
	}

	points := d.Records
	if points == nil {
		points = []dataset.Record{}
	}

	return &Payload{
		Title:  s.Title,
		Center: [2]float64{lat, lon},
		Zoom:   s.Zoom,
		Years:  [2]int{YearMin, YearMax},
		Groups: groups,
		Tiles: Tiles{
			Street:    TileLayer{Name: s.Street.Name, URL: s.Street.URL, Attribution: s.Street.Attribution},
			Satellite: TileLayer{Name: s.Satellite.Name, URL: s.Satellite.URL, Attribution: s.Satellite.Attribution},
			Labels:    TileLayer{Name: s.Labels.Name, URL: s.Labels.URL, Attribution: s.Labels.Attribution},
		},
		Points: points,
		Edges:  edges,
	}
}

// Site is a rendered site: file name → content. The manifest is excluded
// from the content hash so that identical content always hashes the same
// regardless of when it was generated.
type Site struct {
	files map[string][]byte
}

type page struct {
	Title   string
	Groups  []Group
	YearMin int
	YearMax int
	Payload template.JS
}

// Build renders the site files for the payload: the self-contained
// index.html, the payload as data.json and the .nojekyll marker that
// keeps static hosting from running the output through Jekyll.
func Build(payload *Payload) (*Site, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload (%v)", err)
	}

	t, err := template.New("map.html.tmpl").ParseFS(templates, "templates/map.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("error parsing page template (%v)", err)
	}

	var index bytes.Buffer
	if err := t.Execute(&index, page{
		Title:   payload.Title,
		Groups:  payload.Groups,
		YearMin: payload.Years[0],
		YearMax: payload.Years[1],
		Payload: template.JS(b),
	}); err != nil {
		return nil, fmt.Errorf("error rendering page (%v)", err)
	}

	return &Site{
		files: map[string][]byte{
			"index.html": index.Bytes(),
			"data.json":  b,
			".nojekyll":  {},
		},
	}, nil
}

// Files returns the site file names in sorted order.
func (s *Site) Files() []string {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Content returns the content of a site file.
func (s *Site) Content(name string) []byte {
	return s.files[name]
}

// Hash is the sha256 over the site files in name order, excluding
// manifest.json. Same payload, same hash.
func (s *Site) Hash() string {
	h := sha256.New()

	for _, name := range s.Files() {
		if name == manifestFile {
			continue
		}

		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write(s.files[name])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// AddManifest marshals the manifest into the site as manifest.json.
func (s *Site) AddManifest(m Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling manifest (%v)", err)
	}

	s.files[manifestFile] = append(b, '\n')

	return nil
}

// Write writes the site files into dir, creating it if necessary. Each
// file is written to a temporary file in the destination directory and
// renamed into place.
func (s *Site) Write(dir string) error {
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	for _, name := range s.Files() {
		tmp, err := os.CreateTemp(dir, "geomap")
		if err != nil {
			return err
		}

		if _, err := tmp.Write(s.files[name]); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}

		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return err
		}

		if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
			os.Remove(tmp.Name())
			return err
		}
	}

	return nil
}
