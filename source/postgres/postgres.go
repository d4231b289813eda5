package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cohort/model"
)

// Tables names the three input tables. Names may be schema-qualified
// ("sales.customers").
type Tables struct {
	Customers    string `yaml:"customers"`
	Products     string `yaml:"products"`
	Transactions string `yaml:"transactions"`
}

// DefaultTables returns the conventional table names.
func DefaultTables() Tables {
	return Tables{
		Customers:    "customers",
		Products:     "products",
		Transactions: "transactions",
	}
}

// Options configures the connection pool.
type Options struct {
	Tables          Tables
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultOptions returns pool settings suited to a batch read.
func DefaultOptions() Options {
	return Options{
		Tables:          DefaultTables(),
		MaxOpenConns:    3,
		MaxIdleConns:    3,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Source loads datasets from PostgreSQL.
type Source struct {
	db     *sqlx.DB
	tables Tables
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, opts Options) (*Source, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	return New(db, opts.Tables), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB, tables Tables) *Source {
	return &Source{db: db, tables: tables}
}

// Close closes the underlying connection pool.
func (s *Source) Close() error {
	return s.db.Close()
}

type customerRow struct {
	ID         string         `db:"customer_id"`
	Region     sql.NullString `db:"region"`
	SignupDate sql.NullTime   `db:"signup_date"`
}

type productRow struct {
	ID       string          `db:"product_id"`
	Name     sql.NullString  `db:"product_name"`
	Category sql.NullString  `db:"category"`
	Price    sql.NullFloat64 `db:"price"`
}

type transactionRow struct {
	ID         string          `db:"transaction_id"`
	CustomerID string          `db:"customer_id"`
	ProductID  string          `db:"product_id"`
	Date       sql.NullTime    `db:"transaction_date"`
	Quantity   sql.NullInt64   `db:"quantity"`
	TotalValue sql.NullFloat64 `db:"total_value"`
}

// Load reads the three tables concurrently, each ordered by its key.
func (s *Source) Load(ctx context.Context) (model.Dataset, error) {
	var (
		customers    []customerRow
		products     []productRow
		transactions []transactionRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := fmt.Sprintf(`SELECT customer_id, region, signup_date FROM %s ORDER BY customer_id`,
			quoteTable(s.tables.Customers))
		return s.selectRows(gctx, &customers, q, s.tables.Customers)
	})
	g.Go(func() error {
		q := fmt.Sprintf(`SELECT product_id, product_name, category, price FROM %s ORDER BY product_id`,
			quoteTable(s.tables.Products))
		return s.selectRows(gctx, &products, q, s.tables.Products)
	})
	g.Go(func() error {
		q := fmt.Sprintf(`SELECT transaction_id, customer_id, product_id, transaction_date, quantity, total_value
FROM %s ORDER BY transaction_id`, quoteTable(s.tables.Transactions))
		return s.selectRows(gctx, &transactions, q, s.tables.Transactions)
	})
	if err := g.Wait(); err != nil {
		return model.Dataset{}, err
	}

	return model.Dataset{
		Customers:    toCustomers(customers),
		Products:     toProducts(products),
		Transactions: toTransactions(transactions),
	}, nil
}

func (s *Source) selectRows(ctx context.Context, dest any, query, table string) error {
	if err := s.db.SelectContext(ctx, dest, query); err != nil {
		return fmt.Errorf("read %s: %w", table, err)
	}
	return nil
}

// quoteTable quotes every dot-separated part of name.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func nullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return model.Float64(f.Float64)
}

func toCustomers(rows []customerRow) []model.Customer {
	out := make([]model.Customer, len(rows))
	for i, r := range rows {
		out[i] = model.Customer{
			ID:         model.CustomerID(r.ID),
			Region:     r.Region.String,
			SignupDate: nullTime(r.SignupDate),
		}
	}
	return out
}

func toProducts(rows []productRow) []model.Product {
	out := make([]model.Product, len(rows))
	for i, r := range rows {
		out[i] = model.Product{
			ID:       model.ProductID(r.ID),
			Name:     r.Name.String,
			Category: r.Category.String,
			Price:    nullFloat(r.Price),
		}
	}
	return out
}

func toTransactions(rows []transactionRow) []model.Transaction {
	out := make([]model.Transaction, len(rows))
	for i, r := range rows {
		out[i] = model.Transaction{
			ID:         model.TransactionID(r.ID),
			CustomerID: model.CustomerID(r.CustomerID),
			ProductID:  model.ProductID(r.ProductID),
			Quantity:   int(r.Quantity.Int64),
			TotalValue: nullFloat(r.TotalValue),
			Date:       nullTime(r.Date),
		}
	}
	return out
}
