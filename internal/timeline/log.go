package timeline

import (
	"slices"
	"sync"
)

// View is the state of the log at a cursor.
type View struct {
	Cursor float64
	Counts map[string]int
	Lines  []string
}

// Log is the append-only event store.
type Log struct {
	mu         sync.Mutex
	categories []string
	events     []Event
	maxTime    float64
}

// NewLog creates a log counting the given categories. The set comes from the
// deployment; other categories are stored but never counted.
func NewLog(categories []string) *Log {
	return &Log{categories: slices.Clone(categories)}
}

// Categories returns the counted categories in configured order.
func (l *Log) Categories() []string {
	return slices.Clone(l.categories)
}

// Append adds events. The stored order stays sorted by time, ties kept in
// arrival order.
func (l *Log) Append(events []Event) {
	if len(events) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.events)
	if n == 0 {
		l.maxTime = events[0].Time
	}
	l.events = append(l.events, events...)
	for _, e := range events {
		if e.Time > l.maxTime {
			l.maxTime = e.Time
		}
	}
	if n > 0 && l.events[n-1].Time <= l.events[n].Time && isSorted(l.events[n:]) {
		return
	}
	slices.SortStableFunc(l.events, func(a, b Event) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
}

func isSorted(es []Event) bool {
	for i := 1; i < len(es); i++ {
		if es[i].Time < es[i-1].Time {
			return false
		}
	}
	return true
}

// Len is the number of stored events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// MaxTime is the greatest event time seen, negative times included, or 0
// for an empty log.
func (l *Log) MaxTime() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxTime
}

// ViewAt counts and renders every event with Time <= cursor. Lines are most
// recent first.
func (l *Log) ViewAt(cursor float64) View {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := View{Cursor: cursor, Counts: l.zeroCounts()}
	upto := l.upto(cursor)
	v.Lines = make([]string, 0, upto)
	for i := upto - 1; i >= 0; i-- {
		e := l.events[i]
		if _, ok := v.Counts[e.Category]; ok {
			v.Counts[e.Category]++
		}
		v.Lines = append(v.Lines, e.Line())
	}
	return v
}

// Events returns a copy of every event with Time <= cursor in time order.
func (l *Log) Events(cursor float64) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events[:l.upto(cursor)])
}

// upto returns the number of leading events with Time <= cursor.
func (l *Log) upto(cursor float64) int {
	i, _ := slices.BinarySearchFunc(l.events, cursor, func(e Event, t float64) int {
		if e.Time <= t {
			return -1
		}
		return 1
	})
	return i
}

func (l *Log) zeroCounts() map[string]int {
	counts := make(map[string]int, len(l.categories))
	for _, c := range l.categories {
		counts[c] = 0
	}
	return counts
}
