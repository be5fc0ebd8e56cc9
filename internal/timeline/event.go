package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Event is one immutable historical fact.
type Event struct {
	Time     float64 `json:"time"`
	Category string  `json:"event_type"`
	Text     string  `json:"text"`
	Agent    string  `json:"agent_event_name,omitempty"`
	Attacker string  `json:"attacker_event_name,omitempty"`
}

// Line renders an event as a log line.
func (e Event) Line() string {
	return FormatTime(e.Time) + " - " + e.Text
}

// FormatTime prints t with the fewest digits that round-trip, so 1 prints
// as "1" and 2.5 as "2.5".
func FormatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// DecodeEvents parses an update_logs payload. The payload is normally a JSON
// string holding the event array; a bare array is accepted too.
func DecodeEvents(data []byte) ([]Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, fmt.Errorf("decode events text: %w", err)
		}
		data = []byte(text)
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}
