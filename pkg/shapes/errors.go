package shapes

import "errors"

var (
	// ErrNotFound is returned when a target is not registered.
	ErrNotFound = errors.New("target not found")

	// ErrInvalidShape is returned when a shape source is empty or malformed.
	ErrInvalidShape = errors.New("invalid shape data")
)
