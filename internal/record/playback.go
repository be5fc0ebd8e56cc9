package record

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/san-kum/simwatch/internal/session"
)

// ReadAll loads every entry of a recording. path may be the recording
// directory or its session.jsonl file.
func ReadAll(path string) ([]Entry, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, sessionFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Playback is a session.Channel that replays the inbound side of a
// recording. Outbound envelopes are kept but go nowhere.
type Playback struct {
	entries []Entry
	speed   float64

	mu   sync.Mutex
	pos  int
	last time.Time
	hold bool
	sent []session.Envelope
}

// NewPlayback replays entries. speed scales the recorded gaps between
// messages; 0 replays as fast as possible.
func NewPlayback(entries []Entry, speed float64) *Playback {
	in := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Dir != DirOut {
			in = append(in, e)
		}
	}
	return &Playback{entries: in, speed: speed}
}

// Open reads a recording for playback.
func Open(path string, speed float64) (*Playback, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	return NewPlayback(entries, speed), nil
}

func (p *Playback) Send(ctx context.Context, env session.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, env)
	return nil
}

// Sent returns the envelopes sent so far.
func (p *Playback) Sent() []session.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]session.Envelope(nil), p.sent...)
}

// HoldOpen makes Receive block at the end of the recording until its
// context is done, instead of reporting session.ErrClosed.
func (p *Playback) HoldOpen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hold = true
}

// Receive returns the next inbound envelope, or session.ErrClosed at the end.
func (p *Playback) Receive(ctx context.Context) (session.Envelope, error) {
	p.mu.Lock()
	if p.pos >= len(p.entries) {
		hold := p.hold
		p.mu.Unlock()
		if hold {
			<-ctx.Done()
			return session.Envelope{}, ctx.Err()
		}
		return session.Envelope{}, session.ErrClosed
	}
	e := p.entries[p.pos]
	p.pos++
	var wait time.Duration
	if p.speed > 0 && !p.last.IsZero() && e.At.After(p.last) {
		wait = time.Duration(float64(e.At.Sub(p.last)) / p.speed)
	}
	p.last = e.At
	p.mu.Unlock()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return session.Envelope{}, ctx.Err()
		case <-time.After(wait):
		}
	}
	return e.Envelope, nil
}

// Remaining is the number of inbound envelopes not yet delivered.
func (p *Playback) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries) - p.pos
}
