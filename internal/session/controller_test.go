package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/timeline"
)

func mustEnvelope(t *testing.T, typ string, payload any) Envelope {
	t.Helper()
	env, err := NewEnvelope(typ, payload)
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	return env
}

func TestStartTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.ctrl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.ctrl.Handle(mustEnvelope(t, TypeUpdatePlot, agents(true, "1"))); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := f.ctrl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	if diff := cmp.Diff([]string{TypeStart, TypeStart}, f.ch.sentTypes()); diff != "" {
		t.Errorf("sent (-want +got):\n%s", diff)
	}
	if f.entities.Len() != 1 {
		t.Error("second start must not reset the registry")
	}
	if diff := cmp.Diff([]string{"Starting Simulation...", "Continuing Simulation..."}, f.obs.notes); diff != "" {
		t.Errorf("notes (-want +got):\n%s", diff)
	}
	if s := f.ctrl.State(); s.Phase != PhaseRunning || s.StartEnabled || s.StartLabel != LabelRunning {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestStartSendFailureKeepsControl(t *testing.T) {
	f := newFixture(t)
	f.ch.failSends(fmt.Errorf("%w: not connected", ErrDisconnected))

	err := f.ctrl.Start(context.Background())
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("expected ErrDisconnected, got %v", err)
	}
	s := f.ctrl.State()
	if s.Started || s.Phase != PhaseIdle || !s.StartEnabled || s.StartLabel != LabelStart {
		t.Errorf("failed start must leave state untouched, got %+v", s)
	}

	f.ch.failSends(nil)
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s := f.ctrl.State(); !s.Started || s.Phase != PhaseRunning || s.StartEnabled {
		t.Errorf("retry should start the session, got %+v", s)
	}
	if diff := cmp.Diff([]string{TypeStart}, f.ch.sentTypes()); diff != "" {
		t.Errorf("sent (-want +got):\n%s", diff)
	}
}

func TestUpdateTimeLeavesScrubBound(t *testing.T) {
	f := newFixture(t)
	if err := f.ctrl.Handle(mustEnvelope(t, TypeCompleted, 10.0)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := f.ctrl.Handle(mustEnvelope(t, TypeUpdateTime, 14.0)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if s := f.ctrl.State(); s.Cursor != 14 || s.MaxObserved != 10 {
		t.Fatalf("expected cursor 14 and bound 10, got %+v", s)
	}

	if err := f.ctrl.RequestReplay(context.Background(), 15); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if got := f.ctrl.State().Cursor; got != 10 {
		t.Errorf("scrub past the completed bound should clamp to 10, got %g", got)
	}
}

func TestCompletedEnablesContinue(t *testing.T) {
	f := newFixture(t)

	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.ctrl.Handle(mustEnvelope(t, TypeCompleted, 48.0)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	s := f.ctrl.State()
	if s.MaxObserved != 48 || !s.StartEnabled || s.StartLabel != LabelContinue {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestRequestReplayClamp(t *testing.T) {
	tests := []struct {
		name   string
		max    float64
		at     float64
		sent   bool
		wantAt float64
	}{
		{"within", 50, 20, true, 20},
		{"above max", 50, 80, true, 50},
		{"zero", 50, 0, false, 0},
		{"negative", 50, -3, false, 0},
		{"nothing observed", 0, 10, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.max > 0 {
				if err := f.ctrl.Handle(mustEnvelope(t, TypeCompleted, tt.max)); err != nil {
					t.Fatalf("handle: %v", err)
				}
			}
			if err := f.ctrl.RequestReplay(context.Background(), tt.at); err != nil {
				t.Fatalf("replay: %v", err)
			}
			if !tt.sent {
				if len(f.ch.sentTypes()) != 0 {
					t.Errorf("expected nothing sent, got %v", f.ch.sentTypes())
				}
				return
			}
			env := f.ch.lastSent()
			if env.Type != TypeRequestTimedata {
				t.Fatalf("expected %s, got %s", TypeRequestTimedata, env.Type)
			}
			var got float64
			if err := json.Unmarshal(env.Payload, &got); err != nil {
				t.Fatalf("payload: %v", err)
			}
			if got != tt.wantAt {
				t.Errorf("expected replay at %g, got %g", tt.wantAt, got)
			}
			if f.ctrl.State().Cursor != tt.wantAt {
				t.Errorf("expected cursor %g, got %g", tt.wantAt, f.ctrl.State().Cursor)
			}
		})
	}
}

func TestReplayLeavesRegistryAndLog(t *testing.T) {
	f := newFixture(t)

	mustHandle(t, f, TypeUpdatePlot, agents(true, "1", "2"))
	mustHandle(t, f, TypeUpdateLogs, eventsText(timeline.Event{Time: 5, Category: "A", Text: "x"}))
	mustHandle(t, f, TypeCompleted, 10.0)

	if err := f.ctrl.RequestReplay(context.Background(), 3); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if f.entities.Len() != 2 || f.events.Len() != 1 {
		t.Errorf("replay mutated state: entities %d events %d", f.entities.Len(), f.events.Len())
	}
	if v := f.obs.lastView(); v.Counts["A"] != 0 || v.Cursor != 3 {
		t.Errorf("expected view at cursor 3 without the event, got %+v", v)
	}
}

func mustHandle(t *testing.T, f *fixture, typ string, payload any) {
	t.Helper()
	if err := f.ctrl.Handle(mustEnvelope(t, typ, payload)); err != nil {
		t.Fatalf("handle %s: %v", typ, err)
	}
}

func TestEventBatchRecomputesView(t *testing.T) {
	f := newFixture(t)

	mustHandle(t, f, TypeUpdateTime, 2.0)
	mustHandle(t, f, TypeUpdateLogs, eventsText(
		timeline.Event{Time: 1, Category: "A", Text: "x"},
		timeline.Event{Time: 3, Category: "B", Text: "y"},
	))

	v := f.obs.lastView()
	if diff := cmp.Diff(map[string]int{"A": 1, "B": 0}, v.Counts); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}

	mustHandle(t, f, TypeUpdateTime, 3.0)
	v = f.obs.lastView()
	if diff := cmp.Diff([]string{"3 - y", "1 - x"}, v.Lines); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
}

func TestHandleErrors(t *testing.T) {
	f := newFixture(t)

	err := f.ctrl.Handle(Envelope{Type: TypeUpdatePlot, Payload: json.RawMessage(`{"oops":1}`)})
	if !errors.Is(err, ErrBadPayload) {
		t.Errorf("expected ErrBadPayload, got %v", err)
	}

	err = f.ctrl.Handle(mustEnvelope(t, TypeUpdatePlot, []map[string]any{{"type": "Merchant Manager", "activated": true}}))
	if !errors.Is(err, entity.ErrMalformedSnapshot) {
		t.Errorf("expected ErrMalformedSnapshot, got %v", err)
	}

	if err := f.ctrl.Handle(Envelope{Type: "something_new"}); err != nil {
		t.Errorf("unknown messages should be ignored, got %v", err)
	}

	if err := f.ctrl.Handle(Envelope{Type: TypeUpdateTime, Payload: json.RawMessage(`"soon"`)}); !errors.Is(err, ErrBadPayload) {
		t.Errorf("expected ErrBadPayload for bad time, got %v", err)
	}
}

func TestWeatherDispatch(t *testing.T) {
	f := newFixture(t)

	payload := []map[string]any{{"id": "r1", "min_lat": 0, "max_lat": 1, "min_lon": 0, "max_lon": 1, "category": 3}}
	mustHandle(t, f, TypeUpdateWeather, payload)
	mustHandle(t, f, TypeUpdateWeather, payload)
	if f.render.regions != 1 {
		t.Errorf("expected 1 region, got %d", f.render.regions)
	}
}

func TestRunProcessesInOrder(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f.ch.push(TypeUpdatePlot, agents(true, "1"))
	f.ch.in <- inbound{err: ErrDisconnected}
	f.ch.push(TypeUpdatePlot, agents(false, "1"))
	f.ch.push(TypeCompleted, 12.0)
	close(f.ch.in)

	if err := f.ctrl.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.render.creates != 1 || f.render.destroys != 1 {
		t.Errorf("expected 1 create and 1 destroy, got %d and %d", f.render.creates, f.render.destroys)
	}
	if f.obs.disconnectCount() != 1 {
		t.Errorf("expected 1 disconnect, got %d", f.obs.disconnectCount())
	}
	if s := f.ctrl.State(); !s.Connected || s.MaxObserved != 12 {
		t.Errorf("unexpected final state %+v", s)
	}
}

func TestRunHandlesActions(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.ctrl.Run(ctx) }()

	if !f.ctrl.Submit(Action{Kind: ActionStart}) {
		t.Fatal("submit failed")
	}
	deadline := time.After(2 * time.Second)
	for len(f.ch.sentTypes()) == 0 {
		select {
		case <-deadline:
			t.Fatal("start was not sent")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
