package store

import "errors"

var (
	// ErrUniqueViolated is returned when an insert collides with an existing
	// document identifier.
	ErrUniqueViolated = errors.New("unique _id constraint violated")

	// ErrClosed is returned for operations issued after Close.
	ErrClosed = errors.New("collection is closed")

	// ErrMissingID is returned when an inserted document carries no usable
	// identifier field.
	ErrMissingID = errors.New("document has no _id")
)
