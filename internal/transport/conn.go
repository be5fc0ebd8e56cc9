// Package transport carries session envelopes over a websocket.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/simwatch/internal/session"
)

// Options tune dialing. The zero value is usable.
type Options struct {
	Header           http.Header
	HandshakeTimeout time.Duration
	RetryDelay       time.Duration
}

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultRetryDelay       = 2 * time.Second
)

func (o Options) handshakeTimeout() time.Duration {
	if o.HandshakeTimeout > 0 {
		return o.HandshakeTimeout
	}
	return defaultHandshakeTimeout
}

func (o Options) retryDelay() time.Duration {
	if o.RetryDelay > 0 {
		return o.RetryDelay
	}
	return defaultRetryDelay
}

// Conn is one websocket connection speaking JSON envelopes.
type Conn struct {
	ws  *websocket.Conn
	wmu sync.Mutex
}

// Dial opens a connection to url.
func Dial(ctx context.Context, url string, opts Options) (*Conn, error) {
	d := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.handshakeTimeout(),
	}
	ws, _, err := d.DialContext(ctx, url, opts.Header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Conn{ws: ws}, nil
}

// Send writes one envelope. Writes are serialised; gorilla allows a single
// concurrent writer.
func (c *Conn) Send(ctx context.Context, env session.Envelope) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if dl, ok := ctx.Deadline(); ok {
		c.ws.SetWriteDeadline(dl)
		defer c.ws.SetWriteDeadline(time.Time{})
	}
	if err := c.ws.WriteJSON(env); err != nil {
		return fmt.Errorf("%w: %v", session.ErrDisconnected, err)
	}
	return nil
}

// Receive blocks for the next envelope. Cancelling ctx unblocks the read.
func (c *Conn) Receive(ctx context.Context) (session.Envelope, error) {
	stop := context.AfterFunc(ctx, func() { c.ws.SetReadDeadline(time.Now()) })
	defer stop()

	var env session.Envelope
	err := c.ws.ReadJSON(&env)
	if err == nil {
		return env, nil
	}
	if ctx.Err() != nil {
		return session.Envelope{}, ctx.Err()
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return session.Envelope{}, fmt.Errorf("%w: %v", session.ErrClosed, err)
	}
	if isDecodeError(err) {
		// The frame was read but is not an envelope; the socket is fine.
		return session.Envelope{}, fmt.Errorf("%w: %v", session.ErrBadPayload, err)
	}
	return session.Envelope{}, fmt.Errorf("%w: %v", session.ErrDisconnected, err)
}

func isDecodeError(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ)
}

// Close sends a close frame and closes the socket.
func (c *Conn) Close() error {
	c.wmu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.wmu.Unlock()
	return c.ws.Close()
}
