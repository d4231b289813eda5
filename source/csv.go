package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cohort/blobstore"
	"github.com/hupe1980/cohort/internal/compress"
	"github.com/hupe1980/cohort/model"
	"github.com/hupe1980/cohort/resource"
)

// Column names of the input contract.
const (
	ColCustomerID      = "CustomerID"
	ColRegion          = "Region"
	ColSignupDate      = "SignupDate"
	ColTransactionID   = "TransactionID"
	ColProductID       = "ProductID"
	ColTransactionDate = "TransactionDate"
	ColQuantity        = "Quantity"
	ColTotalValue      = "TotalValue"
	ColProductName     = "ProductName"
	ColCategory        = "Category"
	ColPrice           = "Price"
)

// DateLayouts are the accepted date formats, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
}

// MissingColumnError is returned when a required header is absent.
type MissingColumnError struct {
	File   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.File, e.Column)
}

// ParseError is returned for a malformed non-empty cell.
type ParseError struct {
	File   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: column %s: cannot parse %q: %v", e.File, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrInvalidDate is wrapped by ParseError for unrecognized dates.
var ErrInvalidDate = errors.New("unrecognized date format")

// ErrNonFinite is wrapped by ParseError for infinite numeric cells.
var ErrNonFinite = errors.New("non-finite number")

// Files names the three input blobs. A ".zst" or ".lz4" suffix selects
// decompression.
type Files struct {
	Customers    string `yaml:"customers"`
	Products     string `yaml:"products"`
	Transactions string `yaml:"transactions"`
}

// DefaultFiles returns the conventional file names.
func DefaultFiles() Files {
	return Files{
		Customers:    "Customers.csv",
		Products:     "Products.csv",
		Transactions: "Transactions.csv",
	}
}

// Loader reads a snapshot from a Store.
type Loader struct {
	Store blobstore.Store
	Files Files
	// Controller throttles input bytes. Nil means unlimited.
	Controller *resource.Controller
}

// NewLoader returns a Loader reading the default file names from store.
func NewLoader(store blobstore.Store) *Loader {
	return &Loader{Store: store, Files: DefaultFiles()}
}

// Load reads the three files concurrently.
func (l *Loader) Load(ctx context.Context) (model.Dataset, error) {
	var ds model.Dataset

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return l.read(gctx, l.Files.Customers, func(r io.Reader) (err error) {
			ds.Customers, err = ParseCustomers(r, l.Files.Customers)
			return err
		})
	})
	g.Go(func() error {
		return l.read(gctx, l.Files.Products, func(r io.Reader) (err error) {
			ds.Products, err = ParseProducts(r, l.Files.Products)
			return err
		})
	})
	g.Go(func() error {
		return l.read(gctx, l.Files.Transactions, func(r io.Reader) (err error) {
			ds.Transactions, err = ParseTransactions(r, l.Files.Transactions)
			return err
		})
	})

	if err := g.Wait(); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

func (l *Loader) read(ctx context.Context, name string, parse func(io.Reader) error) error {
	blob, err := l.Store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer blob.Close()

	var r io.Reader = blobstore.NewReader(ctx, blob)
	if l.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, l.Controller)
	}

	rc, err := compress.NewReader(r, compress.FromName(name))
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	return parse(rc)
}

// table is a header-indexed CSV reader.
type table struct {
	file string
	r    *csv.Reader
	cols map[string]int
	row  []string
	line int
}

func newTable(r io.Reader, file string, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", file)
		}
		return nil, fmt.Errorf("%s: read header: %w", file, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, &MissingColumnError{File: file, Column: c}
		}
	}

	return &table{file: file, r: cr, cols: cols, line: 1}, nil
}

// next advances to the next non-blank row. It returns false at EOF.
func (t *table) next() (bool, error) {
	for {
		row, err := t.r.Read()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%s: %w", t.file, err)
		}
		t.line, _ = t.r.FieldPos(0)
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		t.row = row
		return true, nil
	}
}

// get returns the trimmed cell of the named column ("" when absent).
func (t *table) get(col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(t.row) {
		return ""
	}
	return strings.TrimSpace(t.row[i])
}

func (t *table) parseErr(col, val string, err error) error {
	return &ParseError{File: t.file, Line: t.line, Column: col, Value: val, Err: err}
}

func (t *table) number(col string) (*float64, error) {
	v := t.get(col)
	if v == "" || strings.EqualFold(v, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, t.parseErr(col, v, err)
	}
	if math.IsInf(f, 0) {
		return nil, t.parseErr(col, v, ErrNonFinite)
	}
	return &f, nil
}

func (t *table) integer(col string) (int, error) {
	v := t.get(col)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Quantities exported as floats ("2.0").
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, t.parseErr(col, v, err)
		}
		n = int(f)
	}
	return n, nil
}

func (t *table) date(col string) (time.Time, error) {
	v := t.get(col)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := ParseDate(v)
	if err != nil {
		return time.Time{}, t.parseErr(col, v, err)
	}
	return d, nil
}

// ParseDate parses v with the first matching layout of DateLayouts.
// Dates without zone are interpreted as UTC.
func ParseDate(v string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseCustomers reads customer records. file names the input in errors.
func ParseCustomers(r io.Reader, file string) ([]model.Customer, error) {
	t, err := newTable(r, file, ColCustomerID)
	if err != nil {
		return nil, err
	}

	var out []model.Customer
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}

		signup, err := t.date(ColSignupDate)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Customer{
			ID:         model.CustomerID(t.get(ColCustomerID)),
			Region:     t.get(ColRegion),
			SignupDate: signup,
		})
	}
}

// ParseProducts reads product records.
func ParseProducts(r io.Reader, file string) ([]model.Product, error) {
	t, err := newTable(r, file, ColProductID)
	if err != nil {
		return nil, err
	}

	var out []model.Product
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}

		price, err := t.number(ColPrice)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Product{
			ID:       model.ProductID(t.get(ColProductID)),
			Name:     t.get(ColProductName),
			Category: t.get(ColCategory),
			Price:    price,
		})
	}
}

// ParseTransactions reads transaction records.
func ParseTransactions(r io.Reader, file string) ([]model.Transaction, error) {
	t, err := newTable(r, file, ColTransactionID, ColCustomerID, ColProductID)
	if err != nil {
		return nil, err
	}

	var out []model.Transaction
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}

		qty, err := t.integer(ColQuantity)
		if err != nil {
			return nil, err
		}
		total, err := t.number(ColTotalValue)
		if err != nil {
			return nil, err
		}
		date, err := t.date(ColTransactionDate)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Transaction{
			ID:         model.TransactionID(t.get(ColTransactionID)),
			CustomerID: model.CustomerID(t.get(ColCustomerID)),
			ProductID:  model.ProductID(t.get(ColProductID)),
			Quantity:   qty,
			TotalValue: total,
			Date:       date,
		})
	}
}

// Reader loads one dataset snapshot.
type Reader interface {
	Load(ctx context.Context) (model.Dataset, error)
}

var _ Reader = (*Loader)(nil)
