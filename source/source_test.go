package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cohort/blobstore"
	"github.com/hupe1980/cohort/internal/compress"
	"github.com/hupe1980/cohort/model"
	"github.com/hupe1980/cohort/resource"
)

const customersCSV = `CustomerID,CustomerName,Region,SignupDate
C0001,Lawrence Carroll,South America,2022-07-10
C0002,Elizabeth Lutz,,2022-02-13 10:30:00
C0003,Michael Rivera,Europe,
C0004,Kathleen Rodriguez,Asia,10/31/2022
`

const productsCSV = `ProductID,ProductName,Category,Price
P001,ActiveWear Biography,Books,169.30
P002,ActiveWear Smartwatch,Electronics,
P003,ComfortLiving Rug,,41.18
`

const transactionsCSV = `TransactionID,CustomerID,ProductID,TransactionDate,Quantity,TotalValue,Price
T00001,C0001,P001,2024-08-25T12:38:23Z,1,169.30,169.30
T00002,C0001,P003,2024-05-27 22:23:54,2,,41.18
T00003,C0004,P002,,3,300.5,100.17
`

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseCustomers(t *testing.T) {
	customers, err := ParseCustomers(strings.NewReader(customersCSV), "Customers.csv")
	require.NoError(t, err)
	require.Len(t, customers, 4)

	assert.Equal(t, model.Customer{
		ID:         "C0001",
		Region:     "South America",
		SignupDate: time.Date(2022, 7, 10, 0, 0, 0, 0, time.UTC),
	}, customers[0])
	assert.Empty(t, customers[1].Region)
	assert.Equal(t, time.Date(2022, 2, 13, 10, 30, 0, 0, time.UTC), customers[1].SignupDate)
	assert.True(t, customers[2].SignupDate.IsZero())
	assert.Equal(t, time.Date(2022, 10, 31, 0, 0, 0, 0, time.UTC), customers[3].SignupDate)
}

func TestParseProducts(t *testing.T) {
	products, err := ParseProducts(strings.NewReader(productsCSV), "Products.csv")
	require.NoError(t, err)
	require.Len(t, products, 3)

	require.NotNil(t, products[0].Price)
	assert.Equal(t, 169.30, *products[0].Price)
	assert.Equal(t, "ActiveWear Biography", products[0].Name)
	assert.Nil(t, products[1].Price)
	assert.Empty(t, products[2].Category)
}

func TestParseTransactions(t *testing.T) {
	txs, err := ParseTransactions(strings.NewReader(transactionsCSV), "Transactions.csv")
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, time.Date(2024, 8, 25, 12, 38, 23, 0, time.UTC), txs[0].Date)
	assert.Equal(t, 2, txs[1].Quantity)
	assert.Nil(t, txs[1].TotalValue)
	assert.True(t, txs[2].Date.IsZero())
	assert.Equal(t, 300.5, *txs[2].TotalValue)
}

func TestParse_Errors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		_, err := ParseTransactions(strings.NewReader("TransactionID,CustomerID\nT1,C1\n"), "Transactions.csv")
		var target *MissingColumnError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, ColProductID, target.Column)
	})

	t.Run("bad number", func(t *testing.T) {
		_, err := ParseProducts(strings.NewReader("ProductID,Price\nP1,1.0\nP2,abc\n"), "Products.csv")
		var target *ParseError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, 3, target.Line)
		assert.Equal(t, ColPrice, target.Column)
		assert.Equal(t, "abc", target.Value)
	})

	t.Run("infinite number", func(t *testing.T) {
		for _, v := range []string{"inf", "+Inf", "-Infinity"} {
			_, err := ParseTransactions(strings.NewReader("TransactionID,CustomerID,ProductID,TotalValue\nT1,C1,P1,"+v+"\n"), "Transactions.csv")
			var target *ParseError
			require.True(t, errors.As(err, &target), v)
			assert.Equal(t, ColTotalValue, target.Column)
			assert.ErrorIs(t, err, ErrNonFinite)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := ParseCustomers(strings.NewReader("CustomerID,SignupDate\nC1,yesterday\n"), "Customers.csv")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ParseCustomers(strings.NewReader(""), "Customers.csv")
		assert.Error(t, err)
	})

	t.Run("float quantity", func(t *testing.T) {
		txs, err := ParseTransactions(strings.NewReader("TransactionID,CustomerID,ProductID,Quantity\nT1,C1,P1,2.0\n"), "t.csv")
		require.NoError(t, err)
		assert.Equal(t, 2, txs[0].Quantity)

		_, err = ParseTransactions(strings.NewReader("TransactionID,CustomerID,ProductID,Quantity\nT1,C1,P1,2.5\n"), "t.csv")
		assert.Error(t, err)
	})
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	compressed, err := compress.Compress([]byte(transactionsCSV), compress.ZSTD)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "Customers.csv", []byte(customersCSV)))
	require.NoError(t, store.Put(ctx, "Products.csv", []byte(productsCSV)))
	require.NoError(t, store.Put(ctx, "Transactions.csv.zst", compressed))

	loader := NewLoader(store)
	loader.Files.Transactions = "Transactions.csv.zst"
	loader.Controller = resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})

	ds, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Customers, 4)
	assert.Len(t, ds.Products, 3)
	assert.Len(t, ds.Transactions, 3)

	loader.Files.Products = "missing.csv"
	_, err = loader.Load(ctx)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestClean(t *testing.T) {
	ds := model.Dataset{
		Customers: []model.Customer{
			{ID: "C1", Region: "Europe"},
			{ID: "C2"},
			{ID: "C1", Region: "Europe"},
		},
		Products: []model.Product{
			{ID: "P1", Category: "Books", Price: model.Float64(10)},
			{ID: "P2", Category: "Books"},
		},
		Transactions: []model.Transaction{
			{ID: "T1", CustomerID: "C1", ProductID: "P1", TotalValue: model.Float64(10)},
			{ID: "T2", CustomerID: "C1", ProductID: "P1", TotalValue: model.Float64(30)},
			{ID: "T3", CustomerID: "C2", ProductID: "P1"},
			{ID: "T1", CustomerID: "C1", ProductID: "P1", TotalValue: model.Float64(10)},
		},
	}

	out, w := Clean(ds, DefaultCleanPolicy())

	require.Len(t, out.Customers, 2)
	assert.Equal(t, model.UnknownCategory, out.Customers[1].Region)
	assert.Empty(t, ds.Customers[1].Region, "input is not modified")

	require.Len(t, out.Products, 1)
	assert.Equal(t, model.ProductID("P1"), out.Products[0].ID)

	require.Len(t, out.Transactions, 3)
	require.NotNil(t, out.Transactions[2].TotalValue)
	assert.InDelta(t, 20.0, *out.Transactions[2].TotalValue, 1e-12)
	assert.Nil(t, ds.Transactions[2].TotalValue)

	assert.Equal(t, 2, w.Count(model.WarningDuplicate))
	assert.Equal(t, 3, w.Count(model.WarningMissingValue))

	none := DefaultCleanPolicy()
	none.TotalValue = FillNone
	none.DropDuplicates = false
	out, _ = Clean(ds, none)
	assert.Nil(t, out.Transactions[2].TotalValue)
	assert.Len(t, out.Transactions, 4)
}

func TestParseFill(t *testing.T) {
	for _, f := range []Fill{FillMean, FillNone} {
		got, err := ParseFill(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFill("median")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	customers, err := ParseCustomers(strings.NewReader(customersCSV), "c")
	require.NoError(t, err)
	products, err := ParseProducts(strings.NewReader(productsCSV), "p")
	require.NoError(t, err)
	txs, err := ParseTransactions(strings.NewReader(transactionsCSV), "t")
	require.NoError(t, err)

	s := Summarize(model.Dataset{Customers: customers, Products: products, Transactions: txs})

	assert.Equal(t, 4, s.Customers)
	assert.Equal(t, 1, s.MissingRegion)
	assert.Equal(t, 1, s.MissingSignupDate)
	assert.Equal(t, 1, s.MissingCategory)
	assert.Equal(t, 1, s.MissingPrice)
	assert.Equal(t, 1, s.MissingTotalValue)
	assert.Equal(t, 1, s.MissingDate)
	assert.Equal(t, []string{"Asia", "Europe", "South America"}, s.Regions)
	assert.Equal(t, []string{"Books", "Electronics"}, s.Categories)
	assert.Equal(t, date(t, "2024-05-27 22:23:54"), s.FirstTransaction)
	assert.Equal(t, date(t, "2024-08-25T12:38:23Z"), s.LastTransaction)
	assert.InDelta(t, 469.8, s.Revenue, 1e-9)
	assert.Equal(t, "Group", slogKind(s))
}

func slogKind(s Summary) string {
	return s.LogValue().Kind().String()
}
