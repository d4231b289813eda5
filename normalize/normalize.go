// Package normalize fits per-feature z-score statistics and applies them.
//
// Fit and Transform are separate so that a fitted Stats value can be stored
// (it is a plain, codec-friendly struct) and reapplied to new customers
// without refitting.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/cohort/feature"
	"github.com/hupe1980/cohort/model"
)

// zeroTolerance is the relative threshold under which a standard deviation
// is treated as zero.
const zeroTolerance = 1e-12

// FieldStats holds the fitted statistics of one feature.
type FieldStats struct {
	Name     string  `json:"name"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Constant bool    `json:"constant"`
}

// Stats holds the fitted statistics of every feature, in schema order.
type Stats struct {
	Fields []FieldStats `json:"fields"`
	// Count is the number of vectors the stats were fitted on.
	Count int `json:"count"`
}

// Schema returns the feature names of the stats.
func (s Stats) Schema() model.Schema {
	out := make(model.Schema, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Dimension returns the number of features.
func (s Stats) Dimension() int { return len(s.Fields) }

// ConstantFeatures returns the names of features without variance.
func (s Stats) ConstantFeatures() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Constant {
			out = append(out, f.Name)
		}
	}
	return out
}

// Degenerate reports whether every feature is constant.
func (s Stats) Degenerate() bool {
	for _, f := range s.Fields {
		if !f.Constant {
			return false
		}
	}
	return true
}

// Fit computes the mean and population standard deviation of every feature.
//
// A feature whose standard deviation is numerically zero is marked Constant.
// Fit returns a *model.DegenerateFeatureError when all features are constant;
// the returned Stats are still populated in that case.
func Fit(m *feature.Matrix) (Stats, error) {
	if m == nil || m.Len() == 0 {
		return Stats{}, model.ErrEmptyDataset
	}
	if err := m.Validate(); err != nil {
		return Stats{}, err
	}

	n := float64(m.Len())
	dim := m.Dimension()
	stats := Stats{Fields: make([]FieldStats, dim), Count: m.Len()}

	for j := 0; j < dim; j++ {
		var sum float64
		for _, row := range m.Rows {
			sum += row[j]
		}
		mean := sum / n

		// Two-pass variance avoids the cancellation of the naive formula.
		var ss float64
		for _, row := range m.Rows {
			d := row[j] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / n)

		stats.Fields[j] = FieldStats{
			Name:     m.Schema[j],
			Mean:     mean,
			StdDev:   std,
			Constant: std <= zeroTolerance*math.Max(1, math.Abs(mean)),
		}
	}

	if stats.Degenerate() {
		return stats, model.NewDegenerateFeatureError(stats.ConstantFeatures(), nil)
	}

	return stats, nil
}

// Transform returns the z-scored copy of values.
// Constant features transform to exactly 0.
func Transform(values []float64, stats Stats) ([]float64, error) {
	if len(values) != len(stats.Fields) {
		return nil, fmt.Errorf("%w: expected %d, got %d", model.ErrDimensionMismatch, len(stats.Fields), len(values))
	}
	out := make([]float64, len(values))
	for j, f := range stats.Fields {
		if f.Constant {
			continue
		}
		out[j] = (values[j] - f.Mean) / f.StdDev
	}
	return out, nil
}

// TransformMatrix returns a new matrix with every row transformed.
// The schema of m must match the stats.
func TransformMatrix(m *feature.Matrix, stats Stats) (*feature.Matrix, error) {
	if !m.Schema.Equal(stats.Schema()) {
		return nil, errors.Join(model.ErrDimensionMismatch, fmt.Errorf("schema %v does not match fitted schema %v", m.Schema, stats.Schema()))
	}
	out := &feature.Matrix{
		Schema: m.Schema,
		IDs:    m.IDs,
		Rows:   make([][]float64, m.Len()),
	}
	for i, row := range m.Rows {
		z, err := Transform(row, stats)
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", m.IDs[i], err)
		}
		out.Rows[i] = z
	}
	return out, nil
}

// FitTransform fits stats on m and transforms it in one step.
func FitTransform(m *feature.Matrix) (*feature.Matrix, Stats, error) {
	stats, err := Fit(m)
	if err != nil {
		return nil, stats, err
	}
	z, err := TransformMatrix(m, stats)
	if err != nil {
		return nil, stats, err
	}
	return z, stats, nil
}
