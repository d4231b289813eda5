package cohort

import (
	"fmt"

	"github.com/hupe1980/cohort/cluster"
	"github.com/hupe1980/cohort/feature"
	"github.com/hupe1980/cohort/model"
)

var (
	// ErrEmptyDataset is returned when no customer survives the join.
	ErrEmptyDataset = model.ErrEmptyDataset

	// ErrDimensionMismatch indicates vectors that disagree with the schema.
	ErrDimensionMismatch = model.ErrDimensionMismatch

	// ErrInvalidK is returned when k or kMax is not positive.
	ErrInvalidK = cluster.ErrInvalidK

	// ErrMissingAsOf is returned when no reference date is configured.
	ErrMissingAsOf = feature.ErrMissingAsOf
)

// InsufficientDataError is returned when there are fewer customers than
// requested clusters.
type InsufficientDataError = model.InsufficientDataError

// DegenerateFeatureError is returned when no feature has any variance.
type DegenerateFeatureError = model.DegenerateFeatureError

// StageError reports the pipeline stage a fatal error came from.
//
// The original underlying error can be accessed via errors.Unwrap, so
// errors.As matches the typed errors above through it.
type StageError struct {
	Stage Stage
	cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.cause)
}

func (e *StageError) Unwrap() error { return e.cause }
