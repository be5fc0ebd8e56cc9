package entity

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// KindSpec is the configured form of one catalog entry.
type KindSpec struct {
	Name  string `yaml:"name"`
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
	Label string `yaml:"label"`
}

// Visual selects how an entity of a kind is drawn.
type Visual struct {
	Kind  string
	Glyph rune
	Color string
	Label string
}

// Catalog is the closed set of known kinds.
type Catalog struct {
	visuals map[string]Visual
}

// NewCatalog validates every entry up front so lookups never fall back to
// drawing nothing.
func NewCatalog(specs []KindSpec) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no kinds", ErrInvalidCatalog)
	}
	c := &Catalog{visuals: make(map[string]Visual, len(specs))}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: kind with empty name", ErrInvalidCatalog)
		}
		if _, dup := c.visuals[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate kind %q", ErrInvalidCatalog, s.Name)
		}
		g, size := utf8.DecodeRuneInString(s.Glyph)
		if g == utf8.RuneError || size != len(s.Glyph) {
			return nil, fmt.Errorf("%w: kind %q needs a single-rune glyph, got %q", ErrInvalidCatalog, s.Name, s.Glyph)
		}
		label := s.Label
		if label == "" {
			label = s.Name
		}
		c.visuals[s.Name] = Visual{Kind: s.Name, Glyph: g, Color: s.Color, Label: label}
	}
	return c, nil
}

// Lookup returns the visual for kind.
func (c *Catalog) Lookup(kind string) (Visual, error) {
	v, ok := c.visuals[kind]
	if !ok {
		return Visual{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return v, nil
}

// Kinds returns the catalog's kind names in sorted order.
func (c *Catalog) Kinds() []string {
	names := make([]string, 0, len(c.visuals))
	for k := range c.visuals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
