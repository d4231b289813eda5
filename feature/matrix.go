package feature

import (
	"slices"

	"github.com/hupe1980/cohort/model"
)

// Matrix is a dense feature matrix with one row per customer.
type Matrix struct {
	Schema model.Schema
	// IDs holds the customer of each row, in ascending order.
	IDs  []model.CustomerID
	Rows [][]float64
}

// Len returns the number of rows.
func (m *Matrix) Len() int { return len(m.Rows) }

// Dimension returns the number of features.
func (m *Matrix) Dimension() int { return len(m.Schema) }

// Vector returns the feature vector of row i. Values share memory with m.
func (m *Matrix) Vector(i int) model.FeatureVector {
	return model.FeatureVector{CustomerID: m.IDs[i], Values: m.Rows[i]}
}

// Column returns a copy of feature column j.
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		col[i] = row[j]
	}
	return col
}

// Index returns the row of the given customer, or -1.
func (m *Matrix) Index(id model.CustomerID) int {
	i, ok := slices.BinarySearch(m.IDs, id)
	if !ok {
		return -1
	}
	return i
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	rows := make([][]float64, len(m.Rows))
	for i, row := range m.Rows {
		rows[i] = slices.Clone(row)
	}
	return &Matrix{
		Schema: slices.Clone(m.Schema),
		IDs:    slices.Clone(m.IDs),
		Rows:   rows,
	}
}

// Validate checks that every row matches the schema dimension.
func (m *Matrix) Validate() error {
	if len(m.IDs) != len(m.Rows) {
		return model.ErrDimensionMismatch
	}
	for _, row := range m.Rows {
		if len(row) != len(m.Schema) {
			return model.ErrDimensionMismatch
		}
	}
	return nil
}
