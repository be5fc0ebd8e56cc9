package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/timeline"
	"github.com/san-kum/simwatch/internal/weather"
)

// Observer is notified of everything the user should see. Calls come from
// the processing goroutine and must not block.
type Observer interface {
	OnView(v timeline.View)
	OnState(s State)
	OnNote(note string)
	OnDisconnect(err error)
}

type nopObserver struct{}

func (nopObserver) OnView(timeline.View) {}
func (nopObserver) OnState(State)        {}
func (nopObserver) OnNote(string)        {}
func (nopObserver) OnDisconnect(error)   {}

// ActionKind is a user interaction.
type ActionKind int

const (
	ActionStart ActionKind = iota
	ActionScrub
)

// Action is queued with Submit and handled by Run.
type Action struct {
	Kind ActionKind
	Time float64
}

// Controller owns session state and routes messages.
type Controller struct {
	ch       Channel
	entities *entity.Manager
	events   *timeline.Log
	overlay  *weather.Overlay
	obs      Observer
	log      *slog.Logger
	actions  chan Action

	mu    sync.Mutex
	state State
}

// Deps are the components a controller dispatches to. Overlay and Observer
// may be nil.
type Deps struct {
	Entities *entity.Manager
	Events   *timeline.Log
	Overlay  *weather.Overlay
	Observer Observer
	Logger   *slog.Logger
}

func New(ch Channel, d Deps) *Controller {
	obs := d.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	log := d.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		ch:       ch,
		entities: d.Entities,
		events:   d.Events,
		overlay:  d.Overlay,
		obs:      obs,
		log:      log.With("component", "session"),
		actions:  make(chan Action, 16),
		state:    initialState(),
	}
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) update(fn func(s *State)) State {
	c.mu.Lock()
	fn(&c.state)
	s := c.state
	c.mu.Unlock()
	c.obs.OnState(s)
	return s
}

// Submit queues a user action for Run. It never blocks; when the queue is
// full the action is dropped and false returned.
func (c *Controller) Submit(a Action) bool {
	select {
	case c.actions <- a:
		return true
	default:
		c.log.Warn("action dropped", "kind", a.Kind)
		return false
	}
}

// Start sends a start request. The first call moves the session to running;
// later calls ask the remote side to resume and leave local state alone.
//
// State only changes once the request is sent, so a failed send leaves the
// start control enabled for another try.
func (c *Controller) Start(ctx context.Context) error {
	first := !c.State().Started
	if first {
		c.obs.OnNote("Starting Simulation...")
	} else {
		c.obs.OnNote("Continuing Simulation...")
	}
	if err := c.ch.Send(ctx, Envelope{Type: TypeStart}); err != nil {
		return fmt.Errorf("send start: %w", err)
	}
	c.update(func(s *State) {
		s.Started = true
		s.Phase = PhaseRunning
		s.StartLabel = LabelRunning
		s.StartEnabled = false
	})
	c.log.Info("start requested", "first", first)
	return nil
}

// RequestReplay asks for data at t, clamped to [0, MaxObserved]. A clamped
// time of zero or less sends nothing. The local cursor follows the request so
// the event view reflects the selected time immediately.
func (c *Controller) RequestReplay(ctx context.Context, t float64) error {
	if limit := c.State().MaxObserved; t > limit {
		t = limit
	}
	if t <= 0 {
		return nil
	}
	c.update(func(s *State) { s.Cursor = t })
	c.publishView()

	env, err := NewEnvelope(TypeRequestTimedata, t)
	if err != nil {
		return err
	}
	if err := c.ch.Send(ctx, env); err != nil {
		return fmt.Errorf("send replay request: %w", err)
	}
	c.log.Debug("replay requested", "time", t)
	return nil
}

// Handle dispatches one inbound message. Errors concern that message only.
func (c *Controller) Handle(env Envelope) error {
	switch env.Type {
	case TypeUpdatePlot:
		records, err := entity.DecodeSnapshot(env.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		if _, err := c.entities.ApplySnapshot(records); err != nil {
			return err
		}
	case TypeUpdateLogs:
		events, err := timeline.DecodeEvents(env.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		c.events.Append(events)
		c.publishView()
	case TypeUpdateTime:
		t, err := decodeTime(env.Payload)
		if err != nil {
			return err
		}
		c.update(func(s *State) { s.Cursor = t })
		c.publishView()
	case TypeCompleted:
		t, err := decodeTime(env.Payload)
		if err != nil {
			return err
		}
		c.update(func(s *State) {
			if t > s.MaxObserved {
				s.MaxObserved = t
			}
			s.StartLabel = LabelContinue
			s.StartEnabled = true
		})
		c.log.Info("simulation period completed", "time", t)
	case TypeUpdateWeather:
		if c.overlay == nil {
			return nil
		}
		receptors, err := weather.DecodeReceptors(env.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		c.overlay.Apply(receptors)
	default:
		c.log.Debug("unknown message ignored", "type", env.Type)
	}
	return nil
}

func decodeTime(payload json.RawMessage) (float64, error) {
	var t float64
	if err := json.Unmarshal(payload, &t); err != nil {
		return 0, fmt.Errorf("%w: time: %v", ErrBadPayload, err)
	}
	return t, nil
}

func (c *Controller) publishView() {
	c.obs.OnView(c.events.ViewAt(c.State().Cursor))
}

func (c *Controller) handleAction(ctx context.Context, a Action) error {
	switch a.Kind {
	case ActionStart:
		return c.Start(ctx)
	case ActionScrub:
		return c.RequestReplay(ctx, a.Time)
	}
	return fmt.Errorf("unknown action %d", a.Kind)
}

type inbound struct {
	env Envelope
	err error
}

// Run processes inbound messages and queued actions one at a time until ctx
// is done or the channel closes. A disconnect is reported to the observer and
// processing resumes with whatever the channel delivers next.
func (c *Controller) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan inbound)
	go c.receive(ctx, in)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-c.actions:
			if err := c.handleAction(ctx, a); err != nil {
				c.log.Error("action failed", "kind", a.Kind, "err", err)
				c.obs.OnNote(err.Error())
			}
		case msg := <-in:
			if msg.err != nil {
				if errors.Is(msg.err, ErrBadPayload) {
					c.log.Warn("frame dropped", "err", msg.err)
					continue
				}
				if errors.Is(msg.err, ErrDisconnected) {
					c.log.Warn("disconnected", "err", msg.err)
					c.update(func(s *State) { s.Connected = false })
					c.obs.OnDisconnect(msg.err)
					continue
				}
				if errors.Is(msg.err, ErrClosed) || errors.Is(msg.err, io.EOF) {
					c.log.Info("channel closed")
					return nil
				}
				return msg.err
			}
			if !c.State().Connected {
				c.update(func(s *State) { s.Connected = true })
			}
			if err := c.Handle(msg.env); err != nil {
				c.log.Error("message failed", "type", msg.env.Type, "err", err)
			}
		}
	}
}

func (c *Controller) receive(ctx context.Context, out chan<- inbound) {
	for {
		env, err := c.ch.Receive(ctx)
		select {
		case out <- inbound{env: env, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil && !errors.Is(err, ErrDisconnected) && !errors.Is(err, ErrBadPayload) {
			return
		}
	}
}
