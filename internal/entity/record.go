package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// AgentRecord is one agent as reported by a snapshot.
type AgentRecord struct {
	ID        string
	Kind      string
	Lat       float64
	Lon       float64
	Activated bool
	Mission   string
	Service   string
	Endurance float64
}

type wireRecord struct {
	AgentID   json.RawMessage `json:"agent_id"`
	Type      string          `json:"type"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Activated bool            `json:"activated"`
	Mission   string          `json:"mission"`
	Service   string          `json:"service"`
	Endurance float64         `json:"rem_endurance"`
}

// UnmarshalJSON accepts agent_id as a string or a number. A missing or null
// id decodes to the empty string and is rejected later by ApplySnapshot.
func (r *AgentRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := decodeID(w.AgentID)
	if err != nil {
		return err
	}
	*r = AgentRecord{
		ID:        id,
		Kind:      w.Type,
		Lat:       w.X,
		Lon:       w.Y,
		Activated: w.Activated,
		Mission:   w.Mission,
		Service:   w.Service,
		Endurance: w.Endurance,
	}
	return nil
}

func (r AgentRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{
		AgentID:   json.RawMessage(strconv.Quote(r.ID)),
		Type:      r.Kind,
		X:         r.Lat,
		Y:         r.Lon,
		Activated: r.Activated,
		Mission:   r.Mission,
		Service:   r.Service,
		Endurance: r.Endurance,
	})
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("agent_id: %w", err)
	}
	return n.String(), nil
}

// DecodeSnapshot parses an update_plot payload.
func DecodeSnapshot(data []byte) ([]AgentRecord, error) {
	var records []AgentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return records, nil
}

// Annotation is the hover text for a record.
func (r AgentRecord) Annotation() string {
	return fmt.Sprintf("%s - %s\non %s\nEndurance %.0f", r.Service, r.ID, r.Mission, math.Round(r.Endurance))
}
