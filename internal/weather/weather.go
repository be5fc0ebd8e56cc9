// Package weather overlays receptor regions (sea state cells) on the map.
package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/san-kum/simwatch/internal/geo"
)

// ErrInvalidCategory indicates a sea state outside 0..6.
var ErrInvalidCategory = errors.New("weather: category out of range")

// MaxCategory is the highest sea state.
const MaxCategory = 6

// Palette maps sea state to a fixed fill color, calm to severe.
var Palette = [MaxCategory + 1]string{
	"#1e90ff",
	"#3aa0ff",
	"#66b8ff",
	"#ffd966",
	"#ffa64d",
	"#ff6633",
	"#cc0000",
}

// Receptor is one environmental cell.
type Receptor struct {
	ID       string  `json:"id"`
	MinLat   float64 `json:"min_lat"`
	MaxLat   float64 `json:"max_lat"`
	MinLon   float64 `json:"min_lon"`
	MaxLon   float64 `json:"max_lon"`
	Category int     `json:"category"`
}

// Rect is a visual rectangle with its top-left corner at Min.
type Rect struct {
	Min, Max geo.Point
}

// RegionHandle identifies a drawn region.
type RegionHandle uint64

// Renderer draws regions. There is no destroy path.
type Renderer interface {
	CreateRegion(r Rect, color string) RegionHandle
	UpdateRegion(h RegionHandle, r Rect, color string)
}

// Overlay tracks one region per receptor id.
type Overlay struct {
	mu      sync.Mutex
	tr      *geo.Transform
	render  Renderer
	log     *slog.Logger
	regions map[string]RegionHandle
}

func NewOverlay(tr *geo.Transform, r Renderer, log *slog.Logger) *Overlay {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Overlay{
		tr:      tr,
		render:  r,
		log:     log.With("component", "weather"),
		regions: make(map[string]RegionHandle),
	}
}

// Apply creates a region for each unseen receptor id and updates known ones
// in place. Receptors with an invalid category are skipped and returned.
func (o *Overlay) Apply(receptors []Receptor) []error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for _, rc := range receptors {
		if rc.Category < 0 || rc.Category > MaxCategory {
			err := fmt.Errorf("%w: receptor %s has %d", ErrInvalidCategory, rc.ID, rc.Category)
			o.log.Warn("receptor skipped", "id", rc.ID, "err", err)
			errs = append(errs, err)
			continue
		}
		rect := o.project(rc)
		color := Palette[rc.Category]
		if h, ok := o.regions[rc.ID]; ok {
			o.render.UpdateRegion(h, rect, color)
			continue
		}
		o.regions[rc.ID] = o.render.CreateRegion(rect, color)
	}
	return errs
}

// project converts the geographic box so Min is the visual top-left corner.
func (o *Overlay) project(rc Receptor) Rect {
	a := o.tr.ToVisual(rc.MinLat, rc.MaxLon)
	b := o.tr.ToVisual(rc.MaxLat, rc.MinLon)
	return Rect{Min: a, Max: b}
}

// Len is the number of regions created so far.
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.regions)
}

// DecodeReceptors parses an update_weather payload.
func DecodeReceptors(data []byte) ([]Receptor, error) {
	var rs []Receptor
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode receptors: %w", err)
	}
	return rs, nil
}
