package feature

import (
	"math"
	"sort"

	"github.com/hupe1980/cohort/model"
)

// Joined is the denormalized per-customer transaction view.
type Joined struct {
	// Customers is deduplicated, ordered by ascending ID, with missing
	// regions resolved to model.UnknownCategory.
	Customers []model.Customer
	// Transactions maps every customer to its enriched transactions
	// (possibly empty), ordered by date then transaction ID.
	Transactions map[model.CustomerID][]model.EnrichedTransaction
	// Categories holds the distinct categories of the joinable product
	// catalog, in ascending order.
	Categories []string
	// Dropped is the number of transactions dropped for referential integrity.
	Dropped int
}

// Join joins customers, transactions and products.
//
// Transactions referencing an unknown customer, an unknown product or a
// product without a price are dropped with a ReferentialIntegrity warning.
// Duplicate keys keep their first occurrence.
func Join(ds model.Dataset) (*Joined, model.Warnings) {
	var warnings model.Warnings

	products := make(map[model.ProductID]model.Product, len(ds.Products))
	unpriced := make(map[model.ProductID]struct{})
	categorySet := make(map[string]struct{})

	for _, p := range ds.Products {
		if _, ok := products[p.ID]; ok {
			warnings.Add(model.WarningDuplicate, string(p.ID), "duplicate product dropped")
			continue
		}
		if _, ok := unpriced[p.ID]; ok {
			warnings.Add(model.WarningDuplicate, string(p.ID), "duplicate product dropped")
			continue
		}
		if p.Price == nil {
			unpriced[p.ID] = struct{}{}
			continue
		}
		if p.Category == "" {
			warnings.Add(model.WarningMissingValue, string(p.ID), "category missing, using %q", model.UnknownCategory)
			p.Category = model.UnknownCategory
		}
		products[p.ID] = p
		categorySet[p.Category] = struct{}{}
	}

	customers := make([]model.Customer, 0, len(ds.Customers))
	known := make(map[model.CustomerID]struct{}, len(ds.Customers))
	for _, c := range ds.Customers {
		if _, ok := known[c.ID]; ok {
			warnings.Add(model.WarningDuplicate, string(c.ID), "duplicate customer dropped")
			continue
		}
		known[c.ID] = struct{}{}
		if c.Region == "" {
			warnings.Add(model.WarningMissingValue, string(c.ID), "region missing, using %q", model.UnknownCategory)
			c.Region = model.UnknownCategory
		}
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })

	joined := &Joined{
		Customers:    customers,
		Transactions: make(map[model.CustomerID][]model.EnrichedTransaction, len(customers)),
	}
	for _, c := range customers {
		joined.Transactions[c.ID] = nil
	}

	seen := make(map[model.TransactionID]struct{}, len(ds.Transactions))
	for _, tx := range ds.Transactions {
		if _, ok := seen[tx.ID]; ok {
			warnings.Add(model.WarningDuplicate, string(tx.ID), "duplicate transaction dropped")
			continue
		}
		seen[tx.ID] = struct{}{}

		p, ok := products[tx.ProductID]
		if !ok {
			joined.Dropped++
			if _, missingPrice := unpriced[tx.ProductID]; missingPrice {
				warnings.Add(model.WarningReferentialIntegrity, string(tx.ID), "product %q has no price", tx.ProductID)
			} else {
				warnings.Add(model.WarningReferentialIntegrity, string(tx.ID), "unknown product %q", tx.ProductID)
			}
			continue
		}
		if _, ok := known[tx.CustomerID]; !ok {
			joined.Dropped++
			warnings.Add(model.WarningReferentialIntegrity, string(tx.ID), "unknown customer %q", tx.CustomerID)
			continue
		}

		value := 0.0
		switch {
		case tx.TotalValue == nil:
			warnings.Add(model.WarningMissingValue, string(tx.ID), "total value missing, using 0")
		case math.IsNaN(*tx.TotalValue) || math.IsInf(*tx.TotalValue, 0):
			warnings.Add(model.WarningMissingValue, string(tx.ID), "total value not finite, using 0")
		default:
			value = *tx.TotalValue
		}

		joined.Transactions[tx.CustomerID] = append(joined.Transactions[tx.CustomerID], model.EnrichedTransaction{
			ID:         tx.ID,
			ProductID:  tx.ProductID,
			Quantity:   tx.Quantity,
			TotalValue: value,
			Date:       tx.Date,
			Category:   p.Category,
			Price:      *p.Price,
		})
	}

	for id, txs := range joined.Transactions {
		sort.Slice(txs, func(i, j int) bool {
			if !txs[i].Date.Equal(txs[j].Date) {
				return txs[i].Date.Before(txs[j].Date)
			}
			return txs[i].ID < txs[j].ID
		})
		joined.Transactions[id] = txs
	}

	joined.Categories = make([]string, 0, len(categorySet))
	for c := range categorySet {
		joined.Categories = append(joined.Categories, c)
	}
	sort.Strings(joined.Categories)

	return joined, warnings
}
