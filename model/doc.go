// Package model defines the record and result types shared by every stage of
// the cohort pipeline.
//
// # Input Records
//
//   - Customer: CustomerID, Region, SignupDate
//   - Transaction: TransactionID, CustomerID, ProductID, Quantity, TotalValue, Date
//   - Product: ProductID, Name, Category, Price
//
// Missing input values are represented explicitly: a zero time.Time for
// dates, an empty string for categorical fields and a nil pointer for
// numeric fields. The core never turns a missing value into NaN.
//
// # Derived Types
//
//   - EnrichedTransaction: a transaction joined with its product
//   - Schema: the ordered, fixed set of feature names of a run
//   - FeatureVector: one customer's values in schema order
//
// # Diagnostics
//
//   - Warning / Warnings: non-fatal data-quality findings collected during a run
//   - InsufficientDataError, DegenerateFeatureError: fatal conditions
package model
