package viz

import (
	"math"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/geo"
	"github.com/san-kum/simwatch/internal/weather"
)

// Sprite is a drawn entity.
type Sprite struct {
	Handle     entity.Handle
	Visual     entity.Visual
	Pos        geo.Point
	Annotation string
}

// Region is a drawn weather cell.
type Region struct {
	Handle weather.RegionHandle
	Rect   weather.Rect
	Color  string
}

// Frame is a consistent copy of the scene contents.
type Frame struct {
	Viewport  geo.Viewport
	Geography *geo.Geography
	Sprites   []Sprite
	Regions   []Region
}

// Scene is the drawing surface shared by the entity manager, the weather
// overlay and the TUI. Hover funcs are never called with the scene lock
// held: they take the entity manager's lock, which is held while the
// manager calls into the scene.
type Scene struct {
	viewport  geo.Viewport
	geography *geo.Geography

	mu         sync.Mutex
	nextEntity entity.Handle
	nextRegion weather.RegionHandle
	sprites    map[entity.Handle]*Sprite
	hovers     map[entity.Handle]func() string
	regions    map[weather.RegionHandle]*Region
}

func NewScene(vp geo.Viewport, g *geo.Geography) *Scene {
	if g == nil {
		g = &geo.Geography{}
	}
	return &Scene{
		viewport:  vp,
		geography: g,
		sprites:   make(map[entity.Handle]*Sprite),
		hovers:    make(map[entity.Handle]func() string),
		regions:   make(map[weather.RegionHandle]*Region),
	}
}

func (s *Scene) CreateEntity(v entity.Visual, p geo.Point) entity.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntity++
	h := s.nextEntity
	s.sprites[h] = &Sprite{Handle: h, Visual: v, Pos: p}
	return h
}

func (s *Scene) UpdateEntity(h entity.Handle, p geo.Point, annotation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sp, ok := s.sprites[h]; ok {
		sp.Pos = p
		sp.Annotation = annotation
	}
}

func (s *Scene) DestroyEntity(h entity.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sprites, h)
	delete(s.hovers, h)
}

func (s *Scene) RegisterHover(h entity.Handle, text func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovers[h] = text
}

func (s *Scene) UnregisterHover(h entity.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hovers, h)
}

func (s *Scene) CreateRegion(r weather.Rect, color string) weather.RegionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRegion++
	h := s.nextRegion
	s.regions[h] = &Region{Handle: h, Rect: r, Color: color}
	return h
}

func (s *Scene) UpdateRegion(h weather.RegionHandle, r weather.Rect, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rg, ok := s.regions[h]; ok {
		rg.Rect = r
		rg.Color = color
	}
}

// Hoverable returns the handles with hover text, in creation order.
func (s *Scene) Hoverable() []entity.Handle {
	s.mu.Lock()
	hs := make([]entity.Handle, 0, len(s.hovers))
	for h := range s.hovers {
		hs = append(hs, h)
	}
	s.mu.Unlock()
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

// HoverText evaluates the hover func of h.
func (s *Scene) HoverText(h entity.Handle) (string, bool) {
	s.mu.Lock()
	fn, ok := s.hovers[h]
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	return fn(), true
}

// Frame copies the current contents, sprites and regions ordered by handle.
func (s *Scene) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := Frame{
		Viewport:  s.viewport,
		Geography: s.geography,
		Sprites:   make([]Sprite, 0, len(s.sprites)),
		Regions:   make([]Region, 0, len(s.regions)),
	}
	for _, sp := range s.sprites {
		f.Sprites = append(f.Sprites, *sp)
	}
	for _, rg := range s.regions {
		f.Regions = append(f.Regions, *rg)
	}
	sort.Slice(f.Sprites, func(i, j int) bool { return f.Sprites[i].Handle < f.Sprites[j].Handle })
	sort.Slice(f.Regions, func(i, j int) bool { return f.Regions[i].Handle < f.Regions[j].Handle })
	return f
}

// Draw paints f onto c, scaling the viewport to the canvas. Regions go
// first so land and sprites stay visible; the selected sprite is drawn with
// highlight instead of its own color.
func Draw(c *Canvas, f Frame, selected entity.Handle, theme Theme) {
	c.Clear()
	sx := float64(c.DotsW()) / math.Max(f.Viewport.W, 1)
	sy := float64(c.DotsH()) / math.Max(f.Viewport.H, 1)
	dot := func(p geo.Point) (int, int) {
		return clampInt(int(math.Round(p.X*sx)), c.DotsW()-1), clampInt(int(math.Round(p.Y*sy)), c.DotsH()-1)
	}

	for _, rg := range f.Regions {
		x0, y0 := dot(rg.Rect.Min)
		x1, y1 := dot(rg.Rect.Max)
		c.DrawRect(x0, y0, x1, y1, rg.Color)
	}
	if f.Geography != nil {
		for _, lm := range f.Geography.Landmasses {
			pts := make([]int, 0, len(lm.Coords))
			for i := 0; i+1 < len(lm.Coords); i += 2 {
				x, y := dot(geo.Point{X: lm.Coords[i], Y: lm.Coords[i+1]})
				pts = append(pts, x, y)
			}
			color := lm.Color
			if color == "" {
				color = string(theme.Muted)
			}
			c.DrawPolygon(pts, color)
		}
		for _, b := range f.Geography.Bases {
			x, y := dot(geo.Point{X: b.X, Y: b.Y})
			icon := '■'
			if r, _ := utf8.DecodeRuneInString(b.Icon); r != utf8.RuneError {
				icon = r
			}
			color := string(theme.Secondary)
			if b.Stalled > 0 {
				color = string(theme.Warning)
			}
			c.Put(x, y, icon, color)
		}
	}
	for _, sp := range f.Sprites {
		x, y := dot(sp.Pos)
		color := sp.Visual.Color
		if sp.Handle == selected {
			color = string(theme.Accent)
		}
		c.Put(x, y, sp.Visual.Glyph, color)
	}
}

func clampInt(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
