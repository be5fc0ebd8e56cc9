package geo

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Landmass is a filled polygon. Coords holds flat (lat, lon) pairs on input
// and flat (x, y) pairs once loaded.
type Landmass struct {
	Name   string    `yaml:"name" json:"name"`
	Color  string    `yaml:"color" json:"color"`
	Coords []float64 `yaml:"coords" json:"coords"`
}

// Base is a fixed installation. X and Y carry lat and lon in the source
// document and visual coordinates after load.
type Base struct {
	Name    string  `yaml:"name" json:"name"`
	Icon    string  `yaml:"icon" json:"icon"`
	X       float64 `yaml:"x" json:"x"`
	Y       float64 `yaml:"y" json:"y"`
	Stalled int     `yaml:"stalled" json:"stalled"`
}

// Geography is the static map. It is never mutated after LoadGeography returns.
type Geography struct {
	Landmasses []Landmass `yaml:"landmasses" json:"landmasses"`
	Bases      []Base     `yaml:"bases" json:"bases"`
}

// LoadGeography decodes a YAML (or JSON) geography document and converts all
// coordinates with t. A landmass with a malformed polygon is dropped whole and
// reported; the remaining items still load.
func LoadGeography(r io.Reader, t *Transform) (*Geography, []error) {
	var raw Geography
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, []error{fmt.Errorf("decode geography: %w", err)}
	}
	return raw.Project(t)
}

// Project returns a transformed copy of g.
func (g Geography) Project(t *Transform) (*Geography, []error) {
	var errs []error
	out := &Geography{
		Landmasses: make([]Landmass, 0, len(g.Landmasses)),
		Bases:      make([]Base, 0, len(g.Bases)),
	}
	for _, lm := range g.Landmasses {
		coords, err := t.ToVisualPolygon(lm.Coords)
		if err != nil {
			errs = append(errs, &PolygonError{Name: lm.Name, Len: len(lm.Coords), Wrapped: err})
			continue
		}
		out.Landmasses = append(out.Landmasses, Landmass{Name: lm.Name, Color: lm.Color, Coords: coords})
	}
	for _, b := range g.Bases {
		p := t.ToVisual(b.X, b.Y)
		b.X, b.Y = p.X, p.Y
		out.Bases = append(out.Bases, b)
	}
	return out, errs
}
