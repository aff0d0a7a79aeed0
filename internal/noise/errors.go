package noise

import "errors"

var (
	// ErrUnknownSampler indicates a sampler name with no registered constructor.
	ErrUnknownSampler = errors.New("noise: unknown sampler")

	// ErrInvalidCapacity indicates a cache capacity below one entry.
	ErrInvalidCapacity = errors.New("noise: cache capacity must be at least 1")

	// ErrInvalidPrecision indicates a rounding precision outside [0, MaxPrecision].
	ErrInvalidPrecision = errors.New("noise: precision out of range")
)
