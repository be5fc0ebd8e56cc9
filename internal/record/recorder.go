package record

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/san-kum/simwatch/internal/session"
)

// Direction of a recorded envelope.
const (
	DirIn  = "in"
	DirOut = "out"
)

// Entry is one line of session.jsonl.
type Entry struct {
	At       time.Time        `json:"at"`
	Dir      string           `json:"dir"`
	Envelope session.Envelope `json:"envelope"`
}

// Recorder is a session.Channel that tees every envelope into a recording.
type Recorder struct {
	inner session.Channel
	dir   string
	now   func() time.Time

	mu   sync.Mutex
	f    *os.File
	enc  *json.Encoder
	meta Metadata
}

// Start creates a new recording in s around inner.
func (s *Store) Start(url string, inner session.Channel) (*Recorder, error) {
	now := time.Now()
	meta := Metadata{ID: s.newID(now), URL: url, Started: now}
	dir := s.Dir(meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(dir, sessionFile))
	if err != nil {
		return nil, err
	}
	if err := writeMetadata(dir, meta); err != nil {
		f.Close()
		return nil, err
	}
	return &Recorder{inner: inner, dir: dir, now: time.Now, f: f, enc: json.NewEncoder(f), meta: meta}, nil
}

// ID is the recording id.
func (r *Recorder) ID() string { return r.meta.ID }

func (r *Recorder) write(dir string, env session.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enc == nil {
		return
	}
	if err := r.enc.Encode(Entry{At: r.now(), Dir: dir, Envelope: env}); err != nil {
		return
	}
	if dir == DirIn {
		r.meta.Inbound++
		if env.Type == session.TypeUpdateTime || env.Type == session.TypeCompleted {
			var t float64
			if json.Unmarshal(env.Payload, &t) == nil && t > r.meta.MaxTime {
				r.meta.MaxTime = t
			}
		}
	} else {
		r.meta.Outbound++
	}
}

func (r *Recorder) Send(ctx context.Context, env session.Envelope) error {
	r.write(DirOut, env)
	return r.inner.Send(ctx, env)
}

func (r *Recorder) Receive(ctx context.Context) (session.Envelope, error) {
	env, err := r.inner.Receive(ctx)
	if err == nil {
		r.write(DirIn, env)
	}
	return env, err
}

// Metadata returns the counters collected so far.
func (r *Recorder) Metadata() Metadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta
}

// Close finalises the metadata and closes the session file. The wrapped
// channel is left open.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	r.meta.Finished = r.now()
	err := writeMetadata(r.dir, r.meta)
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	r.f, r.enc = nil, nil
	return err
}
