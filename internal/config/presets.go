package config

import (
	"sort"

	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/geo"
)

// Preset is a named deployment: map extent, event categories and the kinds
// the remote simulation reports.
type Preset struct {
	Name        string
	Description string
	Bounds      geo.Bounds
	Viewport    geo.Viewport
	Categories  []string
	Kinds       []entity.KindSpec
	TurnPeriods []float64
}

var Presets = map[string]*Preset{
	"strait": {
		Name:        "strait",
		Description: "merchant traffic under blockade, escorts and hunters",
		Bounds:      geo.Bounds{MinLat: 110, MaxLat: 140, MinLon: 15, MaxLon: 42},
		Viewport:    geo.Viewport{W: 1000, H: 700},
		Categories: []string{
			"Merchant Seized",
			"Merchant Destroyed",
			"Merchant CTL",
			"Merchant Arrived",
			"Escort Destroyed",
			"Submarine Destroyed",
			"Aircraft Destroyed",
			"Hunter Deterred",
			"Hunter Destroyed",
		},
		Kinds: []entity.KindSpec{
			{Name: "Merchant Manager", Glyph: "m", Color: "#e5c07b", Label: "merchant"},
			{Name: "China Navy Manager", Glyph: "N", Color: "#e06c75", Label: "navy"},
			{Name: "China Air Manager", Glyph: "A", Color: "#ff5f87", Label: "air"},
			{Name: "China Sub Manager", Glyph: "S", Color: "#be5046", Label: "submarine"},
			{Name: "TW Escort Manager", Glyph: "T", Color: "#61afef", Label: "tw escort"},
			{Name: "JP Escort Manager", Glyph: "J", Color: "#56b6c2", Label: "jp escort"},
			{Name: "US Escort Manager", Glyph: "U", Color: "#98c379", Label: "us escort"},
			{Name: "Coalition Air Manager", Glyph: "C", Color: "#c678dd", Label: "coalition air"},
			{Name: "Coalition Sub Manager", Glyph: "s", Color: "#7d8799", Label: "coalition submarine"},
		},
	},
	"demo": {
		Name:        "demo",
		Description: "unit square grid for local testing",
		Bounds:      geo.Bounds{MinLat: 0, MaxLat: 10, MinLon: 0, MaxLon: 10},
		Viewport:    geo.Viewport{W: 100, H: 100},
		Categories:  []string{"Spawned", "Destroyed"},
		Kinds: []entity.KindSpec{
			{Name: "agent", Glyph: "o", Color: "#ffffff"},
		},
		TurnPeriods: []float64{0, 10, 20, 30},
	},
}

// GetPreset returns the named preset or nil.
func GetPreset(name string) *Preset {
	return Presets[name]
}

// ListPresets returns the preset names sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
