package engine

import "errors"

var (
	// ErrSessionActive is returned by Start while a session is running or
	// paused. In-flight state is never silently reset.
	ErrSessionActive = errors.New("a playback session is already active")

	// ErrInvalidRange is returned for zero, inverted, or empty time ranges.
	ErrInvalidRange = errors.New("invalid playback range")

	// ErrUnknownSpeed is returned when a speed key is not in the catalog.
	ErrUnknownSpeed = errors.New("unknown speed tier")
)
