package feature

import (
	"errors"
	"math"
	"time"

	"github.com/hupe1980/cohort/model"
)

// DefaultRecencySentinel is the recency, in days, of a customer without any
// dated transaction.
const DefaultRecencySentinel = 3650

// ErrMissingAsOf is returned when Build is called without a reference time.
var ErrMissingAsOf = errors.New("as-of reference time is required")

// CategoryMix selects how per-category features are derived.
type CategoryMix int

const (
	// CategoryMixNone disables category features.
	CategoryMixNone CategoryMix = iota
	// CategoryMixCounts adds per-category transaction counts.
	CategoryMixCounts
	// CategoryMixProportions adds per-category transaction shares.
	CategoryMixProportions
)

func (c CategoryMix) String() string {
	switch c {
	case CategoryMixNone:
		return "none"
	case CategoryMixCounts:
		return "counts"
	case CategoryMixProportions:
		return "proportions"
	default:
		return "unknown"
	}
}

// ParseCategoryMix parses the names produced by CategoryMix.String.
func ParseCategoryMix(s string) (CategoryMix, bool) {
	switch s {
	case "", "none":
		return CategoryMixNone, true
	case "counts":
		return CategoryMixCounts, true
	case "proportions":
		return CategoryMixProportions, true
	default:
		return CategoryMixNone, false
	}
}

// Options configures Build.
type Options struct {
	// AsOf is the reference time for tenure and recency. Required.
	AsOf time.Time
	// RecencySentinel is used for customers without a dated transaction.
	// Zero means DefaultRecencySentinel.
	RecencySentinel float64
	// CategoryMix selects the optional category features.
	CategoryMix CategoryMix
	// ExcludeInactive drops customers without transactions.
	ExcludeInactive bool
}

// DefaultOptions returns the default options for the given reference time.
func DefaultOptions(asOf time.Time) Options {
	return Options{
		AsOf:            asOf,
		RecencySentinel: DefaultRecencySentinel,
		CategoryMix:     CategoryMixNone,
	}
}

// Build aggregates the joined view into one feature vector per customer.
func Build(j *Joined, opts Options) (*Matrix, model.Warnings, error) {
	var warnings model.Warnings

	if opts.AsOf.IsZero() {
		return nil, warnings, ErrMissingAsOf
	}
	if opts.RecencySentinel == 0 {
		opts.RecencySentinel = DefaultRecencySentinel
	}

	var categories []string
	if opts.CategoryMix != CategoryMixNone {
		categories = j.Categories
	}
	schema := model.NewSchema(categories)
	catIndex := make(map[string]int, len(categories))
	for i, c := range categories {
		catIndex[c] = len(model.BaseFeatures) + i
	}

	m := &Matrix{
		Schema: schema,
		IDs:    make([]model.CustomerID, 0, len(j.Customers)),
		Rows:   make([][]float64, 0, len(j.Customers)),
	}

	for _, c := range j.Customers {
		txs := j.Transactions[c.ID]
		if opts.ExcludeInactive && len(txs) == 0 {
			continue
		}

		row := make([]float64, schema.Dimension())

		if c.SignupDate.IsZero() {
			warnings.Add(model.WarningMissingValue, string(c.ID), "signup date missing, tenure set to 0")
		} else {
			row[0] = daysBetween(c.SignupDate, opts.AsOf)
		}

		var (
			total  float64
			latest time.Time
		)
		for _, tx := range txs {
			total += tx.TotalValue
			if !tx.Date.IsZero() && tx.Date.After(latest) {
				latest = tx.Date
			}
			if idx, ok := catIndex[tx.Category]; ok {
				row[idx]++
			}
		}

		count := float64(len(txs))
		row[1] = total
		if count > 0 {
			row[2] = total / count
		}
		row[3] = count
		if latest.IsZero() {
			row[4] = opts.RecencySentinel
		} else {
			row[4] = daysBetween(latest, opts.AsOf)
		}

		if opts.CategoryMix == CategoryMixProportions && count > 0 {
			for _, idx := range catIndex {
				row[idx] /= count
			}
		}

		m.IDs = append(m.IDs, c.ID)
		m.Rows = append(m.Rows, row)
	}

	if m.Len() == 0 {
		return nil, warnings, model.ErrEmptyDataset
	}

	return m, warnings, nil
}

// daysBetween returns the whole days from a to b, floored.
func daysBetween(a, b time.Time) float64 {
	return math.Floor(b.Sub(a).Hours() / 24)
}
