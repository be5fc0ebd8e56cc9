package geo

import "fmt"

// Bounds is the configured geographic window.
type Bounds struct {
	MinLat float64 `yaml:"min_lat" json:"min_lat"`
	MaxLat float64 `yaml:"max_lat" json:"max_lat"`
	MinLon float64 `yaml:"min_lon" json:"min_lon"`
	MaxLon float64 `yaml:"max_lon" json:"max_lon"`
}

// Viewport is the visual output size. The origin is top-left.
type Viewport struct {
	W float64 `yaml:"width" json:"width"`
	H float64 `yaml:"height" json:"height"`
}

// Point is a visual coordinate pair.
type Point struct {
	X, Y float64
}

// Transform converts geographic coordinates to visual coordinates.
type Transform struct {
	b        Bounds
	v        Viewport
	latRange float64
	lonRange float64
}

// NewTransform validates the bounds once. Per-call conversions never re-check them.
func NewTransform(b Bounds, v Viewport) (*Transform, error) {
	if b.MaxLat == b.MinLat || b.MaxLon == b.MinLon {
		return nil, fmt.Errorf("%w: lat [%g, %g] lon [%g, %g]", ErrDegenerateBounds, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	}
	return &Transform{
		b:        b,
		v:        v,
		latRange: b.MaxLat - b.MinLat,
		lonRange: b.MaxLon - b.MinLon,
	}, nil
}

func (t *Transform) Bounds() Bounds     { return t.b }
func (t *Transform) Viewport() Viewport { return t.v }

// ToVisual maps (lat, lon) to (x, y). Latitude runs along x; longitude runs
// along y with the axis flipped so larger longitudes sit nearer the top.
func (t *Transform) ToVisual(lat, lon float64) Point {
	x := t.v.W * (lat - t.b.MinLat) / t.latRange
	y := t.v.H - t.v.H*(lon-t.b.MinLon)/t.lonRange
	return Point{X: x, Y: y}
}

// ToVisualPolygon maps every consecutive (lat, lon) pair of a flat list.
// The input is left untouched.
func (t *Transform) ToVisualPolygon(flat []float64) ([]float64, error) {
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d values", ErrMalformedPolygon, len(flat))
	}
	out := make([]float64, len(flat))
	for i := 0; i < len(flat); i += 2 {
		p := t.ToVisual(flat[i], flat[i+1])
		out[i], out[i+1] = p.X, p.Y
	}
	return out, nil
}
