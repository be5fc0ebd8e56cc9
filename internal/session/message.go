package session

import (
	"context"
	"encoding/json"
)

// Inbound message types.
const (
	TypeUpdatePlot    = "update_plot"
	TypeUpdateLogs    = "update_logs"
	TypeUpdateTime    = "update_time"
	TypeCompleted     = "completed_simulation"
	TypeUpdateWeather = "update_weather"
)

// Outbound message types.
const (
	TypeStart           = "start"
	TypeRequestTimedata = "request_timestamp_data"
)

// Envelope is one message on the channel.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload into an envelope. A nil payload is omitted.
func NewEnvelope(typ string, payload any) (Envelope, error) {
	env := Envelope{Type: typ}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	env.Payload = data
	return env, nil
}

// Channel is the duplex link to the remote simulation.
type Channel interface {
	Send(ctx context.Context, env Envelope) error
	// Receive blocks until a message arrives. It returns ErrDisconnected for
	// a dropped connection that may recover and ErrClosed (or io.EOF) when
	// no more messages will come.
	Receive(ctx context.Context) (Envelope, error)
}
