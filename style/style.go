// Package style defines the map presentation settings: the beverage
// groups with their marker colors, the base tile layers and the initial
// zoom. The defaults reproduce the published map; a style file only needs
// to be supplied to deviate from them.
package style

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Group is a beverage group overlay. Rows whose group column does not
// match a configured group are rejected during dataset preparation.
type Group struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// TileLayer is a Leaflet tile layer source.
type TileLayer struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Attribution string `yaml:"attribution"`
}

// Style is the complete map style. Groups are ordered: the order controls
// the layer control and the filter sidebar.
type Style struct {
	Title     string    `yaml:"title"`
	Zoom      int       `yaml:"zoom"`
	Groups    []Group   `yaml:"groups"`
	Street    TileLayer `yaml:"street"`
	Satellite TileLayer `yaml:"satellite"`
	Labels    TileLayer `yaml:"labels"`
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Default returns the style of the published alcohol-origins map.
func Default() Style {
	return Style{
		Title: "Origins of Fermented Beverages",
		Zoom:  2,
		Groups: []Group{
			{Name: "Grain", Color: "#f9d81b"},
			{Name: "Grape", Color: "#75147c"},
			{Name: "Sugar", Color: "#FFFFFF"},
			{Name: "Cactus", Color: "#367c21"},
		},
		Street: TileLayer{
			Name:        "Street (English)",
			URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
			Attribution: "CartoDB",
		},
		Satellite: TileLayer{
			Name:        "Satellite",
			URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Esri",
		},
		Labels: TileLayer{
			Name:        "Hybrid (Satellite + Labels)",
			URL:         "https://services.arcgisonline.com/ArcGIS/rest/services/Reference/World_Boundaries_and_Places/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Esri",
		},
	}
}

// LoadFile reads a style from a YAML file. Unknown keys are an error so
// that a typo in a style file fails the run instead of silently reverting
// to a default.
func LoadFile(path string) (Style, error) {
	s := Default()

	f, err := os.Open(path)
	if err != nil {
		return s, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	if err := decoder.Decode(&s); err != nil {
		return s, fmt.Errorf("invalid style file %s (%v)", path, err)
	}

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid style file %s (%v)", path, err)
	}

	return s, nil
}

// Validate checks the style for the invariants the renderer relies on.
func (s Style) Validate() error {
	if len(s.Groups) == 0 {
		return fmt.Errorf("style has no groups")
	}

	seen := map[string]bool{}
	for _, g := range s.Groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return fmt.Errorf("style group with empty name")
		}

		if seen[name] {
			return fmt.Errorf("duplicate style group '%s'", name)
		}
		seen[name] = true

		if !colorPattern.MatchString(g.Color) {
			return fmt.Errorf("invalid color '%s' for group '%s' - expected something like '#75147c'", g.Color, name)
		}
	}

	if s.Zoom < 0 || s.Zoom > 19 {
		return fmt.Errorf("invalid zoom %d - expected a value in the range 0..19", s.Zoom)
	}

	for _, tiles := range []TileLayer{s.Street, s.Satellite, s.Labels} {
		if strings.TrimSpace(tiles.URL) == "" {
			return fmt.Errorf("tile layer '%s' has no URL", tiles.Name)
		}
	}

	return nil
}

// ColorFor returns the configured color for a group and whether the group
// exists.
func (s Style) ColorFor(group string) (string, bool) {
	for _, g := range s.Groups {
		if g.Name == group {
			return g.Color, true
		}
	}

	return "", false
}

// Names returns the group names in configured order.
func (s Style) Names() []string {
	names := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		names[i] = g.Name
	}

	return names
}
