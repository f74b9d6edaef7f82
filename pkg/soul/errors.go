package soul

import "errors"

var (
	// ErrNotReady is returned when a request was buffered because shapes are
	// still loading. The request will be applied once the engine is ready.
	ErrNotReady = errors.New("soul: engine not ready, request buffered")

	// ErrUnknownState is returned for a state with no theme or target.
	ErrUnknownState = errors.New("soul: unknown state")

	// ErrAlreadyBooted is returned by a second call to Boot.
	ErrAlreadyBooted = errors.New("soul: already booted")
)
