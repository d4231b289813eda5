package source

import (
	"log/slog"
	"sort"
	"time"

	"github.com/hupe1980/cohort/model"
)

// Summary describes a snapshot: sizes, missing values and value ranges.
type Summary struct {
	Customers    int
	Products     int
	Transactions int

	MissingRegion     int
	MissingSignupDate int
	MissingCategory   int
	MissingPrice      int
	MissingTotalValue int
	MissingDate       int

	// Regions and Categories hold the distinct non-empty values, sorted.
	Regions    []string
	Categories []string

	FirstTransaction time.Time
	LastTransaction  time.Time
	Revenue          float64
}

// Summarize computes the Summary of ds.
func Summarize(ds model.Dataset) Summary {
	s := Summary{
		Customers:    len(ds.Customers),
		Products:     len(ds.Products),
		Transactions: len(ds.Transactions),
	}

	regions := make(map[string]struct{})
	for _, c := range ds.Customers {
		if c.Region == "" {
			s.MissingRegion++
		} else {
			regions[c.Region] = struct{}{}
		}
		if c.SignupDate.IsZero() {
			s.MissingSignupDate++
		}
	}

	categories := make(map[string]struct{})
	for _, p := range ds.Products {
		if p.Category == "" {
			s.MissingCategory++
		} else {
			categories[p.Category] = struct{}{}
		}
		if p.Price == nil {
			s.MissingPrice++
		}
	}

	for _, t := range ds.Transactions {
		if t.TotalValue == nil {
			s.MissingTotalValue++
		} else {
			s.Revenue += *t.TotalValue
		}
		if t.Date.IsZero() {
			s.MissingDate++
			continue
		}
		if s.FirstTransaction.IsZero() || t.Date.Before(s.FirstTransaction) {
			s.FirstTransaction = t.Date
		}
		if t.Date.After(s.LastTransaction) {
			s.LastTransaction = t.Date
		}
	}

	s.Regions = sortedKeys(regions)
	s.Categories = sortedKeys(categories)
	return s
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("customers", s.Customers),
		slog.Int("products", s.Products),
		slog.Int("transactions", s.Transactions),
		slog.Int("missing_region", s.MissingRegion),
		slog.Int("missing_signup_date", s.MissingSignupDate),
		slog.Int("missing_category", s.MissingCategory),
		slog.Int("missing_price", s.MissingPrice),
		slog.Int("missing_total_value", s.MissingTotalValue),
		slog.Int("missing_date", s.MissingDate),
		slog.Any("regions", s.Regions),
		slog.Any("categories", s.Categories),
		slog.Time("first_transaction", s.FirstTransaction),
		slog.Time("last_transaction", s.LastTransaction),
		slog.Float64("revenue", s.Revenue),
	)
}
