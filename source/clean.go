package source

import (
	"fmt"
	"strconv"

	"github.com/hupe1980/cohort/model"
)

// Fill selects how missing transaction values are resolved.
type Fill int

const (
	// FillMean replaces a missing TotalValue with the mean of the present ones.
	FillMean Fill = iota
	// FillNone leaves TotalValue missing.
	FillNone
)

func (f Fill) String() string {
	switch f {
	case FillMean:
		return "mean"
	case FillNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseFill parses the names produced by Fill.String.
func ParseFill(s string) (Fill, error) {
	switch s {
	case "", "mean":
		return FillMean, nil
	case "none":
		return FillNone, nil
	default:
		return FillMean, fmt.Errorf("unknown fill %q", s)
	}
}

// CleanPolicy describes the input cleaning applied before joining.
type CleanPolicy struct {
	// FillRegion replaces a missing Region with model.UnknownCategory.
	FillRegion bool
	// DropUnpriced removes products without a price. Their transactions
	// are later dropped by the join.
	DropUnpriced bool
	// TotalValue resolves missing transaction values.
	TotalValue Fill
	// DropDuplicates removes rows that are identical in every field.
	DropDuplicates bool
}

// DefaultCleanPolicy returns the policy of the reference analysis.
func DefaultCleanPolicy() CleanPolicy {
	return CleanPolicy{
		FillRegion:     true,
		DropUnpriced:   true,
		TotalValue:     FillMean,
		DropDuplicates: true,
	}
}

// Clean applies p to ds and returns the cleaned copy. ds is not modified.
// Every change is reported as a warning.
func Clean(ds model.Dataset, p CleanPolicy) (model.Dataset, model.Warnings) {
	var w model.Warnings

	customers, products, txs := ds.Customers, ds.Products, ds.Transactions
	if p.DropDuplicates {
		customers = dedupe(customers, customerKey, func(c model.Customer) string { return string(c.ID) }, &w)
		products = dedupe(products, productKey, func(p model.Product) string { return string(p.ID) }, &w)
		txs = dedupe(txs, transactionKey, func(t model.Transaction) string { return string(t.ID) }, &w)
	}

	out := model.Dataset{
		Customers:    make([]model.Customer, 0, len(customers)),
		Products:     make([]model.Product, 0, len(products)),
		Transactions: make([]model.Transaction, 0, len(txs)),
	}

	for _, c := range customers {
		if p.FillRegion && c.Region == "" {
			c.Region = model.UnknownCategory
			w.Add(model.WarningMissingValue, string(c.ID), "region filled with %q", model.UnknownCategory)
		}
		out.Customers = append(out.Customers, c)
	}

	for _, pr := range products {
		if p.DropUnpriced && pr.Price == nil {
			w.Add(model.WarningMissingValue, string(pr.ID), "product dropped: missing price")
			continue
		}
		out.Products = append(out.Products, pr)
	}

	var fill *float64
	if p.TotalValue == FillMean {
		fill = meanTotalValue(txs)
	}
	for _, t := range txs {
		if t.TotalValue == nil && fill != nil {
			t.TotalValue = model.Float64(*fill)
			w.Add(model.WarningMissingValue, string(t.ID), "total value filled with mean %.4f", *fill)
		}
		out.Transactions = append(out.Transactions, t)
	}

	return out, w
}

func meanTotalValue(txs []model.Transaction) *float64 {
	var sum float64
	var n int
	for _, t := range txs {
		if t.TotalValue != nil {
			sum += *t.TotalValue
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// dedupe keeps the first of every group of rows with the same key.
func dedupe[T any](rows []T, key func(T) string, subject func(T) string, w *model.Warnings) []T {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, dup := seen[k]; dup {
			w.Add(model.WarningDuplicate, subject(r), "exact duplicate row removed")
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func optional(v *float64) string {
	if v == nil {
		return "<nil>"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func customerKey(c model.Customer) string {
	return fmt.Sprintf("%s\x00%s\x00%d", c.ID, c.Region, c.SignupDate.UnixNano())
}

func productKey(p model.Product) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s", p.ID, p.Name, p.Category, optional(p.Price))
}

func transactionKey(t model.Transaction) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%d\x00%s\x00%d",
		t.ID, t.CustomerID, t.ProductID, t.Quantity, optional(t.TotalValue), t.Date.UnixNano())
}
