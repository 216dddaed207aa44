package docbolt

import (
	"errors"
	"fmt"

	"github.com/hupe1980/docbolt/store"
)

var (
	// ErrConflict is returned when a create collides with an existing
	// record identifier. The message is part of the adapter contract.
	ErrConflict = errors.New("Duplicate key")

	// ErrUnknownType is returned for operations on an unregistered record
	// type.
	ErrUnknownType = errors.New("unknown record type")

	// ErrNotConnected is returned for operations before Connect or after
	// Disconnect.
	ErrNotConnected = errors.New("adapter is not connected")

	// ErrConnected is returned when Connect is called twice.
	ErrConnected = errors.New("adapter is already connected")
)

// translateError maps store errors into the adapter's error kinds at the API
// boundary. Uniqueness violations become ErrConflict; everything else passes
// through unmodified.
//
// The original underlying error can be accessed via errors.Unwrap.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrUniqueViolated) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
