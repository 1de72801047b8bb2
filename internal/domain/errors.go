package domain

import "errors"

var (
	// ErrProviderUnavailable marks a failed call to a weather or geocoding provider.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMissingHour is returned when an hourly series has no row for the requested hour.
	ErrMissingHour = errors.New("requested hour not present in series")

	// ErrInvalidQuery wraps caller input that cannot be resolved (bad hour, missing date).
	ErrInvalidQuery = errors.New("invalid query")
)
