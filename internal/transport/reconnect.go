package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/simwatch/internal/session"
)

// Reconnecting is a session.Channel that redials after a dropped connection.
// Each drop is reported once as session.ErrDisconnected; the next Receive
// redials, waiting RetryDelay between attempts, and resumes reading.
type Reconnecting struct {
	url  string
	opts Options
	log  *slog.Logger
	dial func(ctx context.Context, url string, opts Options) (*Conn, error)

	mu     sync.Mutex
	conn   *Conn
	closed bool
}

func NewReconnecting(url string, opts Options, log *slog.Logger) *Reconnecting {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconnecting{url: url, opts: opts, log: log.With("component", "transport"), dial: Dial}
}

// Connect dials once so callers can fail fast on a bad address.
func (r *Reconnecting) Connect(ctx context.Context) error {
	conn, err := r.dial(ctx, r.url, r.opts)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		conn.Close()
		return session.ErrClosed
	}
	r.conn = conn
	r.log.Info("connected", "url", r.url)
	return nil
}

func (r *Reconnecting) current() (*Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn, r.closed
}

// Send fails with session.ErrDisconnected while no connection is up. There is
// no outbound queue.
func (r *Reconnecting) Send(ctx context.Context, env session.Envelope) error {
	conn, closed := r.current()
	if closed {
		return session.ErrClosed
	}
	if conn == nil {
		return fmt.Errorf("%w: not connected", session.ErrDisconnected)
	}
	err := conn.Send(ctx, env)
	if err != nil {
		r.drop(conn)
	}
	return err
}

func (r *Reconnecting) Receive(ctx context.Context) (session.Envelope, error) {
	conn, err := r.ensure(ctx)
	if err != nil {
		return session.Envelope{}, err
	}
	env, err := conn.Receive(ctx)
	if err == nil || errors.Is(err, session.ErrBadPayload) || ctx.Err() != nil {
		return env, err
	}
	if _, closed := r.current(); closed {
		return session.Envelope{}, session.ErrClosed
	}
	r.drop(conn)
	r.log.Warn("connection lost", "url", r.url, "err", err)
	if errors.Is(err, session.ErrDisconnected) {
		return session.Envelope{}, err
	}
	return session.Envelope{}, fmt.Errorf("%w: %v", session.ErrDisconnected, err)
}

func (r *Reconnecting) ensure(ctx context.Context) (*Conn, error) {
	for attempt := 1; ; attempt++ {
		conn, closed := r.current()
		if closed {
			return nil, session.ErrClosed
		}
		if conn != nil {
			return conn, nil
		}
		err := r.Connect(ctx)
		if err == nil {
			continue
		}
		if errors.Is(err, session.ErrClosed) {
			return nil, err
		}
		r.log.Debug("redial failed", "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.opts.retryDelay()):
		}
	}
}

func (r *Reconnecting) drop(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == conn {
		r.conn = nil
		conn.ws.Close()
	}
}

// Close stops reconnecting and closes the live connection, if any.
func (r *Reconnecting) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.closed = true
	r.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}
