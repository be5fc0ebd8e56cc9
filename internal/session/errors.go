package session

import "errors"

var (
	// ErrDisconnected is returned by a Channel whose connection dropped. The
	// channel may deliver messages again after reconnecting.
	ErrDisconnected = errors.New("session: channel disconnected")

	// ErrClosed is returned by a Channel that will deliver no more messages.
	ErrClosed = errors.New("session: channel closed")

	// ErrBadPayload indicates a message whose payload could not be decoded.
	ErrBadPayload = errors.New("session: bad payload")
)
