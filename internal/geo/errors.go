package geo

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateBounds indicates a zero-width latitude or longitude range.
	ErrDegenerateBounds = errors.New("geo: degenerate bounds (zero-width range)")

	// ErrMalformedPolygon indicates a flat coordinate list of odd length.
	ErrMalformedPolygon = errors.New("geo: malformed polygon (odd coordinate count)")
)

// PolygonError ties a polygon failure to the geography item that caused it.
type PolygonError struct {
	Name    string
	Len     int
	Wrapped error
}

func (e *PolygonError) Error() string {
	return fmt.Sprintf("landmass %q (%d values): %v", e.Name, e.Len, e.Wrapped)
}

func (e *PolygonError) Unwrap() error {
	return e.Wrapped
}
