package model

import (
	"fmt"
	"time"
)

// CustomerID is the unique key of a customer.
type CustomerID string

// ProductID is the unique key of a product.
type ProductID string

// TransactionID identifies a single transaction.
type TransactionID string

// UnknownCategory replaces missing categorical values (region, category).
const UnknownCategory = "Unknown"

// Customer is an immutable customer record.
type Customer struct {
	ID     CustomerID
	Region string
	// SignupDate is the zero time when missing.
	SignupDate time.Time
}

// Transaction is an immutable transaction record.
type Transaction struct {
	ID         TransactionID
	CustomerID CustomerID
	ProductID  ProductID
	Quantity   int
	// TotalValue is nil when missing.
	TotalValue *float64
	// Date is the zero time when missing.
	Date time.Time
}

// Product is an immutable product record.
type Product struct {
	ID       ProductID
	Name     string
	Category string
	// Price is nil when missing.
	Price *float64
}

// Dataset is one full snapshot of the three record collections.
type Dataset struct {
	Customers    []Customer
	Transactions []Transaction
	Products     []Product
}

// String returns a short summary of the dataset sizes.
func (d Dataset) String() string {
	return fmt.Sprintf("Dataset(customers=%d, transactions=%d, products=%d)",
		len(d.Customers), len(d.Transactions), len(d.Products))
}

// EnrichedTransaction is a transaction joined with its product.
// TotalValue is always resolved (missing values become 0).
type EnrichedTransaction struct {
	ID         TransactionID
	ProductID  ProductID
	Quantity   int
	TotalValue float64
	Date       time.Time
	Category   string
	Price      float64
}

// FeatureVector holds one customer's feature values in schema order.
type FeatureVector struct {
	CustomerID CustomerID
	Values     []float64
}

// Float64 returns a pointer to v. Useful for populating optional fields.
func Float64(v float64) *float64 {
	return &v
}
