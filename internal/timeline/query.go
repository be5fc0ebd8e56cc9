package timeline

import "slices"

// Related renders, most recent first, the events up to cursor whose target is
// one of targets and whose attacker is one of attackers.
func (l *Log) Related(cursor float64, attackers, targets []string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lines []string
	for i := l.upto(cursor) - 1; i >= 0; i-- {
		e := l.events[i]
		if slices.Contains(targets, e.Agent) && slices.Contains(attackers, e.Attacker) {
			lines = append(lines, e.Line())
		}
	}
	return lines
}

// CountsByPeriod counts configured categories per turn. Period i covers
// (bounds[i], bounds[i+1]], so len(bounds)-1 periods are returned.
func (l *Log) CountsByPeriod(bounds []float64) []map[string]int {
	if len(bounds) < 2 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]map[string]int, len(bounds)-1)
	for i := range out {
		out[i] = l.zeroCounts()
	}
	for _, e := range l.events {
		for i := range out {
			if e.Time > bounds[i] && e.Time <= bounds[i+1] {
				if _, ok := out[i][e.Category]; ok {
					out[i][e.Category]++
				}
				break
			}
		}
	}
	return out
}

// Series returns the cumulative number of events at buckets evenly spaced
// cursors over [0, cursor]. The last value equals the event count of
// ViewAt(cursor).
func (l *Log) Series(cursor float64, buckets int) []float64 {
	if buckets < 1 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]float64, buckets)
	for i := range out {
		at := cursor
		if buckets > 1 {
			at = cursor * float64(i) / float64(buckets-1)
		}
		out[i] = float64(l.upto(at))
	}
	return out
}
