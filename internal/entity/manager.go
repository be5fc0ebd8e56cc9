package entity

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/san-kum/simwatch/internal/geo"
)

// VisualEntity is the local view of one remote agent.
type VisualEntity struct {
	ID         string
	Kind       string
	Position   geo.Point
	Activated  bool
	Annotation string
}

type tracked struct {
	VisualEntity
	handle Handle
}

// Result summarises one ApplySnapshot call.
type Result struct {
	Created   []string
	Updated   []string
	Destroyed []string
	Skipped   []error
}

// Manager reconciles snapshots into the entity registry.
//
// An id is in the registry iff the last record seen for it had
// Activated set. Ids missing from a snapshot are left alone.
type Manager struct {
	mu       sync.Mutex
	catalog  *Catalog
	tr       *geo.Transform
	render   Renderer
	hover    Interactor
	log      *slog.Logger
	entities map[string]*tracked
	kinds    map[string]string
}

// NewManager wires a manager to its renderer. If r also implements
// Interactor, hover text is registered for every created entity.
func NewManager(catalog *Catalog, tr *geo.Transform, r Renderer, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Manager{
		catalog:  catalog,
		tr:       tr,
		render:   r,
		log:      log.With("component", "entity"),
		entities: make(map[string]*tracked),
		kinds:    make(map[string]string),
	}
	if h, ok := r.(Interactor); ok {
		m.hover = h
	}
	return m
}

// ApplySnapshot applies a full or partial snapshot. Records are reconciled
// against current membership, so applying the same snapshot again issues no
// further create or destroy calls.
func (m *Manager) ApplySnapshot(records []AgentRecord) (Result, error) {
	for i, rec := range records {
		if rec.ID == "" {
			m.log.Warn("snapshot rejected", "index", i, "records", len(records))
			return Result{}, fmt.Errorf("%w: record %d of %d", ErrMalformedSnapshot, i, len(records))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var res Result
	for _, rec := range records {
		if err := m.checkKind(rec); err != nil {
			m.log.Warn("record skipped", "id", rec.ID, "kind", rec.Kind, "err", err)
			res.Skipped = append(res.Skipped, err)
			continue
		}

		pos := m.tr.ToVisual(rec.Lat, rec.Lon)
		existing := m.entities[rec.ID]

		switch {
		case existing == nil && rec.Activated:
			m.create(rec, pos)
			res.Created = append(res.Created, rec.ID)
		case existing != nil && !rec.Activated:
			m.destroy(existing)
			res.Destroyed = append(res.Destroyed, rec.ID)
		case existing != nil:
			existing.Position = pos
			existing.Annotation = rec.Annotation()
			m.render.UpdateEntity(existing.handle, pos, existing.Annotation)
			res.Updated = append(res.Updated, rec.ID)
		}
	}

	if len(res.Created) > 0 || len(res.Destroyed) > 0 {
		m.log.Debug("snapshot applied", "records", len(records), "created", len(res.Created),
			"destroyed", len(res.Destroyed), "live", len(m.entities))
	}
	return res, nil
}

// checkKind validates the reported kind. A record without a kind keeps the
// one already recorded for its id; for an unknown id it may only deactivate.
func (m *Manager) checkKind(rec AgentRecord) error {
	want, seen := m.kinds[rec.ID]
	if rec.Kind == "" && (seen || !rec.Activated) {
		return nil
	}
	if seen && want != rec.Kind {
		return &TypeMismatchError{ID: rec.ID, Want: want, Got: rec.Kind}
	}
	if _, err := m.catalog.Lookup(rec.Kind); err != nil {
		return err
	}
	m.kinds[rec.ID] = rec.Kind
	return nil
}

func (m *Manager) create(rec AgentRecord, pos geo.Point) {
	v, _ := m.catalog.Lookup(rec.Kind)
	e := &tracked{
		VisualEntity: VisualEntity{
			ID:         rec.ID,
			Kind:       rec.Kind,
			Position:   pos,
			Activated:  true,
			Annotation: rec.Annotation(),
		},
	}
	e.handle = m.render.CreateEntity(v, pos)
	m.render.UpdateEntity(e.handle, pos, e.Annotation)
	if m.hover != nil {
		m.hover.RegisterHover(e.handle, m.annotationOf(e))
	}
	m.entities[rec.ID] = e
}

func (m *Manager) annotationOf(e *tracked) func() string {
	return func() string {
		m.mu.Lock()
		defer m.mu.Unlock()
		return e.Annotation
	}
}

func (m *Manager) destroy(e *tracked) {
	if m.hover != nil {
		m.hover.UnregisterHover(e.handle)
	}
	m.render.DestroyEntity(e.handle)
	delete(m.entities, e.ID)
}

// Get returns a copy of the entity registered under id.
func (m *Manager) Get(id string) (VisualEntity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[id]
	if !ok {
		return VisualEntity{}, false
	}
	return e.VisualEntity, true
}

// Entities returns a copy of the registry sorted by id.
func (m *Manager) Entities() []VisualEntity {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]VisualEntity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e.VisualEntity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len is the number of live entities.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entities)
}

// Reset destroys every live entity and forgets all kinds. Used at session
// teardown.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entities {
		m.destroy(e)
	}
	m.kinds = make(map[string]string)
}

// IsSkip reports whether err is a per-record failure that ApplySnapshot
// tolerates.
func IsSkip(err error) bool {
	var mismatch *TypeMismatchError
	return errors.As(err, &mismatch) || errors.Is(err, ErrUnknownKind)
}
