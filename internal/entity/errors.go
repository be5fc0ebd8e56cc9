package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSnapshot indicates a record without an id. The whole
	// snapshot is rejected.
	ErrMalformedSnapshot = errors.New("entity: malformed snapshot (record without id)")

	// ErrUnknownKind indicates a kind missing from the catalog.
	ErrUnknownKind = errors.New("entity: unknown kind")

	// ErrInvalidCatalog indicates a catalog entry that cannot be rendered.
	ErrInvalidCatalog = errors.New("entity: invalid catalog")
)

// TypeMismatchError reports a record whose kind differs from the kind the id
// was first seen with.
type TypeMismatchError struct {
	ID   string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("entity: id %s has kind %q, record says %q", e.ID, e.Want, e.Got)
}
