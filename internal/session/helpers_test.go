package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/geo"
	"github.com/san-kum/simwatch/internal/timeline"
	"github.com/san-kum/simwatch/internal/weather"
)

type fakeChannel struct {
	mu      sync.Mutex
	sent    []Envelope
	sendErr error
	in      chan inbound
}

// failSends makes every Send fail with err until cleared with nil.
func (f *fakeChannel) failSends(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{in: make(chan inbound, 32)}
}

func (f *fakeChannel) Send(ctx context.Context, env Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, env)
	return nil
}

func (f *fakeChannel) Receive(ctx context.Context) (Envelope, error) {
	select {
	case m, ok := <-f.in:
		if !ok {
			return Envelope{}, ErrClosed
		}
		return m.env, m.err
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

func (f *fakeChannel) push(typ string, payload any) {
	env, err := NewEnvelope(typ, payload)
	if err != nil {
		panic(err)
	}
	f.in <- inbound{env: env}
}

func (f *fakeChannel) sentTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.sent))
	for i, e := range f.sent {
		types[i] = e.Type
	}
	return types
}

func (f *fakeChannel) lastSent() Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return Envelope{}
	}
	return f.sent[len(f.sent)-1]
}

type countingRenderer struct {
	mu       sync.Mutex
	next     entity.Handle
	creates  int
	destroys int
	regions  int
}

func (r *countingRenderer) CreateEntity(v entity.Visual, p geo.Point) entity.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.creates++
	return r.next
}

func (r *countingRenderer) counts() (creates, destroys int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates, r.destroys
}

func (r *countingRenderer) UpdateEntity(h entity.Handle, p geo.Point, annotation string) {}

func (r *countingRenderer) DestroyEntity(h entity.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroys++
}

func (r *countingRenderer) CreateRegion(rect weather.Rect, color string) weather.RegionHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions++
	return weather.RegionHandle(r.regions)
}

func (r *countingRenderer) UpdateRegion(h weather.RegionHandle, rect weather.Rect, color string) {}

type recordingObserver struct {
	mu          sync.Mutex
	views       []timeline.View
	states      []State
	notes       []string
	disconnects int
}

func (o *recordingObserver) OnView(v timeline.View) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.views = append(o.views, v)
}

func (o *recordingObserver) OnState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, s)
}

func (o *recordingObserver) OnNote(note string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notes = append(o.notes, note)
}

func (o *recordingObserver) OnDisconnect(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disconnects++
}

func (o *recordingObserver) lastView() timeline.View {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.views) == 0 {
		return timeline.View{}
	}
	return o.views[len(o.views)-1]
}

func (o *recordingObserver) disconnectCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disconnects
}

type fixture struct {
	ch       *fakeChannel
	render   *countingRenderer
	obs      *recordingObserver
	entities *entity.Manager
	events   *timeline.Log
	ctrl     *Controller
}

// fataler is the part of testing.TB the fixture needs; GinkgoT satisfies it too.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newFixture(tb fataler) *fixture {
	tb.Helper()
	tr, err := geo.NewTransform(geo.Bounds{MinLat: 0, MaxLat: 10, MinLon: 0, MaxLon: 10}, geo.Viewport{W: 100, H: 100})
	if err != nil {
		tb.Fatalf("transform: %v", err)
	}
	cat, err := entity.NewCatalog([]entity.KindSpec{{Name: "Merchant Manager", Glyph: "m"}})
	if err != nil {
		tb.Fatalf("catalog: %v", err)
	}
	f := &fixture{
		ch:     newFakeChannel(),
		render: &countingRenderer{},
		obs:    &recordingObserver{},
		events: timeline.NewLog([]string{"A", "B"}),
	}
	f.entities = entity.NewManager(cat, tr, f.render, nil)
	f.ctrl = New(f.ch, Deps{
		Entities: f.entities,
		Events:   f.events,
		Overlay:  weather.NewOverlay(tr, f.render, nil),
		Observer: f.obs,
	})
	return f
}

func agents(active bool, ids ...string) []map[string]any {
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, map[string]any{"agent_id": id, "type": "Merchant Manager", "x": 1, "y": 1, "activated": active})
	}
	return out
}

func eventsText(events ...timeline.Event) string {
	data, err := json.Marshal(events)
	if err != nil {
		panic(err)
	}
	return string(data)
}
