package core

import "errors"

var (
	// ErrInvalidDimension is returned when a feature count is not positive.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrDimensionMismatch is returned when a dataset does not fit the weight vector.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidConfig is returned for non-positive budgets, trial counts and the like.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrRandomSource is returned when the random stream cannot produce usable values.
	ErrRandomSource = errors.New("random source failure")
)
