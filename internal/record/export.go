package record

import (
	"encoding/csv"
	"io"

	"github.com/san-kum/simwatch/internal/timeline"
)

// ExportEventsCSV writes events as time,event_type,text rows with a header.
func ExportEventsCSV(w io.Writer, events []timeline.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "event_type", "text", "agent", "attacker"}); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{timeline.FormatTime(e.Time), e.Category, e.Text, e.Agent, e.Attacker}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
