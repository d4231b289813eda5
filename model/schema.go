package model

import "strings"

// Base feature names, in schema order.
const (
	FeatureTenure                  = "Tenure"
	FeatureTotalSpent              = "TotalSpent"
	FeatureAverageTransactionValue = "AverageTransactionValue"
	FeatureFrequency               = "Frequency"
	FeatureRecency                 = "Recency"
)

// CategoryFeaturePrefix prefixes the per-category mix features.
const CategoryFeaturePrefix = "Category:"

// BaseFeatures is the fixed leading part of every schema.
var BaseFeatures = []string{
	FeatureTenure,
	FeatureTotalSpent,
	FeatureAverageTransactionValue,
	FeatureFrequency,
	FeatureRecency,
}

// Schema is the ordered list of feature names of a run.
// Every FeatureVector of the run has exactly len(Schema) values.
type Schema []string

// NewSchema returns the base schema followed by one feature per category.
// Categories must already be sorted and unique.
func NewSchema(categories []string) Schema {
	s := make(Schema, 0, len(BaseFeatures)+len(categories))
	s = append(s, BaseFeatures...)
	for _, c := range categories {
		s = append(s, CategoryFeaturePrefix+c)
	}
	return s
}

// Dimension returns the number of features.
func (s Schema) Dimension() int { return len(s) }

// Index returns the position of the named feature, or -1.
func (s Schema) Index(name string) int {
	for i, n := range s {
		if n == name {
			return i
		}
	}
	return -1
}

// Categories returns the category names encoded in the schema, in order.
func (s Schema) Categories() []string {
	var out []string
	for _, n := range s {
		if c, ok := strings.CutPrefix(n, CategoryFeaturePrefix); ok {
			out = append(out, c)
		}
	}
	return out
}

// Equal reports whether both schemas have the same names in the same order.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
