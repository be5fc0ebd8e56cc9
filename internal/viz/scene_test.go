package viz

import (
	"sync"
	"testing"

	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/geo"
	"github.com/san-kum/simwatch/internal/weather"
)

func testManager(t *testing.T, s *Scene) *entity.Manager {
	t.Helper()
	cat, err := entity.NewCatalog([]entity.KindSpec{{Name: "ship", Glyph: "s", Color: "#ffffff"}})
	if err != nil {
		t.Fatal(err)
	}
	tr, err := geo.NewTransform(geo.Bounds{MaxLat: 10, MaxLon: 10}, geo.Viewport{W: 100, H: 100})
	if err != nil {
		t.Fatal(err)
	}
	return entity.NewManager(cat, tr, s, nil)
}

func TestSceneTracksManagerLifecycle(t *testing.T) {
	s := NewScene(geo.Viewport{W: 100, H: 100}, nil)
	m := testManager(t, s)

	recs := []entity.AgentRecord{
		{ID: "1", Kind: "ship", Lat: 5, Lon: 5, Activated: true, Service: "Navy", Mission: "patrol", Endurance: 12.4},
		{ID: "2", Kind: "ship", Lat: 1, Lon: 1, Activated: true},
	}
	if _, err := m.ApplySnapshot(recs); err != nil {
		t.Fatal(err)
	}

	f := s.Frame()
	if len(f.Sprites) != 2 {
		t.Fatalf("expected 2 sprites, got %d", len(f.Sprites))
	}
	if f.Sprites[0].Pos != (geo.Point{X: 50, Y: 50}) {
		t.Errorf("unexpected position %+v", f.Sprites[0].Pos)
	}
	if f.Sprites[0].Annotation != "Navy - 1\non patrol\nEndurance 12" {
		t.Errorf("unexpected annotation %q", f.Sprites[0].Annotation)
	}

	hs := s.Hoverable()
	if len(hs) != 2 {
		t.Fatalf("expected 2 hoverable, got %d", len(hs))
	}
	text, ok := s.HoverText(hs[0])
	if !ok || text != f.Sprites[0].Annotation {
		t.Errorf("hover text %q, want %q", text, f.Sprites[0].Annotation)
	}

	recs[0].Activated = false
	if _, err := m.ApplySnapshot(recs[:1]); err != nil {
		t.Fatal(err)
	}
	if len(s.Frame().Sprites) != 1 {
		t.Errorf("expected 1 sprite after destroy")
	}
	if _, ok := s.HoverText(hs[0]); ok {
		t.Error("hover should be gone after destroy")
	}
}

func TestSceneHoverWhileApplying(t *testing.T) {
	s := NewScene(geo.Viewport{W: 100, H: 100}, nil)
	m := testManager(t, s)
	if _, err := m.ApplySnapshot([]entity.AgentRecord{{ID: "a", Kind: "ship", Activated: true}}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			rec := entity.AgentRecord{ID: "a", Kind: "ship", Lat: float64(i % 10), Activated: true}
			m.ApplySnapshot([]entity.AgentRecord{rec})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, h := range s.Hoverable() {
				s.HoverText(h)
			}
		}
	}()
	wg.Wait()
}

func TestSceneRegions(t *testing.T) {
	s := NewScene(geo.Viewport{W: 100, H: 100}, nil)
	h := s.CreateRegion(weather.Rect{Max: geo.Point{X: 10, Y: 10}}, weather.Palette[0])
	s.UpdateRegion(h, weather.Rect{Max: geo.Point{X: 20, Y: 20}}, weather.Palette[6])
	s.UpdateRegion(h+1, weather.Rect{}, "")

	f := s.Frame()
	if len(f.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(f.Regions))
	}
	if f.Regions[0].Color != weather.Palette[6] || f.Regions[0].Rect.Max.X != 20 {
		t.Errorf("region not updated: %+v", f.Regions[0])
	}
}

func TestDrawPlacesGlyphs(t *testing.T) {
	g := &geo.Geography{
		Landmasses: []geo.Landmass{{Name: "island", Coords: []float64{10, 10, 90, 10, 90, 90}}},
		Bases:      []geo.Base{{Name: "port", Icon: "P", X: 0, Y: 0}},
	}
	s := NewScene(geo.Viewport{W: 100, H: 100}, g)
	h := s.CreateEntity(entity.Visual{Kind: "ship", Glyph: 's', Color: "#ffffff"}, geo.Point{X: 99, Y: 99})

	c := NewCanvas(10, 5)
	Draw(c, s.Frame(), h, ThemeDefault)
	if c.At(0, 0) != 'P' {
		t.Errorf("expected base glyph at top-left, got %q", c.At(0, 0))
	}
	if c.At(9, 4) != 's' {
		t.Errorf("expected sprite glyph at bottom-right, got %q", c.At(9, 4))
	}
	if c.Colors[4][9] != string(ThemeDefault.Accent) {
		t.Errorf("selected sprite should use accent, got %q", c.Colors[4][9])
	}
	if c.At(4, 0) == blank {
		t.Error("expected landmass outline on the top row")
	}
}
