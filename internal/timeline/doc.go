// Package timeline stores simulation events and answers "what has happened
// by time T" queries for scrubbing through history.
//
// The [Log] is append-only. Every query recomputes from the full log so the
// cursor can move backward as freely as forward:
//
//	log := timeline.NewLog([]string{"Merchant Seized", "Merchant Destroyed"})
//	log.Append(events)
//	view := log.ViewAt(120)
//
// # Thread Safety
//
// A Log is safe for concurrent use. Appends and queries serialise on one lock.
package timeline
