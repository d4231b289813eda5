package model

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a stage receives no customers.
	ErrEmptyDataset = errors.New("dataset has no customers")

	// ErrDimensionMismatch is returned when vectors disagree with the schema.
	ErrDimensionMismatch = errors.New("vector dimension does not match schema")
)

// InsufficientDataError is returned when there are fewer customers than
// requested clusters.
type InsufficientDataError struct {
	Customers int
	K         int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d customers for k=%d", e.Customers, e.K)
}

// DegenerateFeatureError is returned when no feature has any variance across
// the population.
type DegenerateFeatureError struct {
	Features []string
	cause    error
}

// NewDegenerateFeatureError returns a DegenerateFeatureError for the given
// constant features.
func NewDegenerateFeatureError(features []string, cause error) *DegenerateFeatureError {
	return &DegenerateFeatureError{Features: features, cause: cause}
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("degenerate features: all %d features are constant", len(e.Features))
}

func (e *DegenerateFeatureError) Unwrap() error { return e.cause }
