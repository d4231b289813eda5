package feature

import (
	"math"
	"testing"
	"time"

	"github.com/hupe1980/cohort/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixture() model.Dataset {
	return model.Dataset{
		Customers: []model.Customer{
			{ID: "C0003", Region: "Europe", SignupDate: date("2023-01-01")},
			{ID: "C0001", Region: "Asia", SignupDate: date("2022-01-01")},
			{ID: "C0002", Region: "", SignupDate: date("2024-06-01")}, // no transactions
			{ID: "C0001", Region: "Dup", SignupDate: date("2020-01-01")},
		},
		Products: []model.Product{
			{ID: "P1", Name: "Book", Category: "Books", Price: model.Float64(10)},
			{ID: "P2", Name: "Phone", Category: "Electronics", Price: model.Float64(300)},
			{ID: "P3", Name: "Ghost", Category: "Books"}, // missing price
		},
		Transactions: []model.Transaction{
			{ID: "T1", CustomerID: "C0001", ProductID: "P1", Quantity: 2, TotalValue: model.Float64(20), Date: date("2024-12-01")},
			{ID: "T2", CustomerID: "C0001", ProductID: "P2", Quantity: 1, TotalValue: model.Float64(300), Date: date("2024-12-21")},
			{ID: "T3", CustomerID: "C0003", ProductID: "P2", Quantity: 1, TotalValue: nil, Date: date("2024-11-01")},
			{ID: "T4", CustomerID: "C9999", ProductID: "P1", Quantity: 1, TotalValue: model.Float64(10), Date: date("2024-11-01")},
			{ID: "T5", CustomerID: "C0003", ProductID: "P404", Quantity: 1, TotalValue: model.Float64(10), Date: date("2024-11-01")},
			{ID: "T6", CustomerID: "C0003", ProductID: "P3", Quantity: 1, TotalValue: model.Float64(10), Date: date("2024-11-01")},
			{ID: "T1", CustomerID: "C0001", ProductID: "P1", Quantity: 2, TotalValue: model.Float64(20), Date: date("2024-12-01")},
		},
	}
}

func TestJoin(t *testing.T) {
	j, w := Join(fixture())

	t.Run("Customers", func(t *testing.T) {
		require.Len(t, j.Customers, 3)
		assert.Equal(t, model.CustomerID("C0001"), j.Customers[0].ID)
		assert.Equal(t, "Asia", j.Customers[0].Region, "first occurrence wins")
		assert.Equal(t, model.CustomerID("C0002"), j.Customers[1].ID)
		assert.Equal(t, model.UnknownCategory, j.Customers[1].Region)
	})

	t.Run("Transactions", func(t *testing.T) {
		require.Len(t, j.Transactions["C0001"], 2)
		assert.Equal(t, "Books", j.Transactions["C0001"][0].Category)
		assert.Equal(t, 10.0, j.Transactions["C0001"][0].Price)
		assert.Empty(t, j.Transactions["C0002"])
		_, present := j.Transactions["C0002"]
		assert.True(t, present, "customers without transactions keep an entry")

		require.Len(t, j.Transactions["C0003"], 1)
		assert.Equal(t, 0.0, j.Transactions["C0003"][0].TotalValue)
	})

	t.Run("Warnings", func(t *testing.T) {
		assert.Equal(t, 3, j.Dropped)
		assert.Equal(t, 3, w.Count(model.WarningReferentialIntegrity))
		assert.Equal(t, 2, w.Count(model.WarningDuplicate))
		assert.Equal(t, 2, w.Count(model.WarningMissingValue))
	})

	t.Run("Categories", func(t *testing.T) {
		assert.Equal(t, []string{"Books", "Electronics"}, j.Categories)
	})
}

func TestJoin_NonFiniteTotalValue(t *testing.T) {
	ds := model.Dataset{
		Customers: []model.Customer{{ID: "C0001", Region: "Asia"}},
		Products:  []model.Product{{ID: "P1", Category: "Books", Price: model.Float64(10)}},
		Transactions: []model.Transaction{
			{ID: "T1", CustomerID: "C0001", ProductID: "P1", Quantity: 1, TotalValue: model.Float64(math.Inf(1)), Date: date("2024-12-01")},
			{ID: "T2", CustomerID: "C0001", ProductID: "P1", Quantity: 1, TotalValue: model.Float64(math.NaN()), Date: date("2024-12-02")},
			{ID: "T3", CustomerID: "C0001", ProductID: "P1", Quantity: 1, TotalValue: model.Float64(30), Date: date("2024-12-03")},
		},
	}

	j, w := Join(ds)
	require.Len(t, j.Transactions["C0001"], 3)
	assert.Equal(t, 0.0, j.Transactions["C0001"][0].TotalValue)
	assert.Equal(t, 0.0, j.Transactions["C0001"][1].TotalValue)
	assert.Equal(t, 2, w.Count(model.WarningMissingValue))

	m, _, err := Build(j, DefaultOptions(date("2025-01-01")))
	require.NoError(t, err)
	for _, row := range m.Rows {
		for _, v := range row {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
}

func TestBuild(t *testing.T) {
	asOf := date("2025-01-01")
	j, _ := Join(fixture())

	t.Run("BaseFeatures", func(t *testing.T) {
		m, _, err := Build(j, DefaultOptions(asOf))
		require.NoError(t, err)
		require.NoError(t, m.Validate())
		require.Equal(t, 3, m.Len())
		assert.Equal(t, model.Schema(model.BaseFeatures), m.Schema)

		c1 := m.Rows[m.Index("C0001")]
		assert.Equal(t, 1096.0, c1[0]) // 2022-01-01 .. 2025-01-01
		assert.Equal(t, 320.0, c1[1])
		assert.Equal(t, 160.0, c1[2])
		assert.Equal(t, 2.0, c1[3])
		assert.Equal(t, 11.0, c1[4])
	})

	t.Run("ZeroTransactionCustomer", func(t *testing.T) {
		m, _, err := Build(j, DefaultOptions(asOf))
		require.NoError(t, err)

		i := m.Index("C0002")
		require.GreaterOrEqual(t, i, 0, "inactive customers are kept")
		row := m.Rows[i]
		assert.Equal(t, 0.0, row[1])
		assert.Equal(t, 0.0, row[2])
		assert.Equal(t, 0.0, row[3])
		assert.Equal(t, float64(DefaultRecencySentinel), row[4])
	})

	t.Run("ZeroSentinelUsesDefault", func(t *testing.T) {
		m, _, err := Build(j, Options{AsOf: asOf})
		require.NoError(t, err)
		assert.Equal(t, float64(DefaultRecencySentinel), m.Rows[m.Index("C0002")][4])
		assert.Equal(t, 11.0, m.Rows[m.Index("C0001")][4])
	})

	t.Run("NoUndefinedValues", func(t *testing.T) {
		opts := DefaultOptions(asOf)
		opts.CategoryMix = CategoryMixProportions
		m, _, err := Build(j, opts)
		require.NoError(t, err)
		for _, row := range m.Rows {
			require.Len(t, row, m.Dimension())
			for _, v := range row {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		}
	})

	t.Run("CategoryCounts", func(t *testing.T) {
		opts := DefaultOptions(asOf)
		opts.CategoryMix = CategoryMixCounts
		m, _, err := Build(j, opts)
		require.NoError(t, err)
		assert.Equal(t, 7, m.Dimension())

		c1 := m.Rows[m.Index("C0001")]
		assert.Equal(t, 1.0, c1[m.Schema.Index("Category:Books")])
		assert.Equal(t, 1.0, c1[m.Schema.Index("Category:Electronics")])
	})

	t.Run("CategoryProportions", func(t *testing.T) {
		opts := DefaultOptions(asOf)
		opts.CategoryMix = CategoryMixProportions
		m, _, err := Build(j, opts)
		require.NoError(t, err)

		c1 := m.Rows[m.Index("C0001")]
		assert.Equal(t, 0.5, c1[m.Schema.Index("Category:Books")])
		c2 := m.Rows[m.Index("C0002")]
		assert.Equal(t, 0.0, c2[m.Schema.Index("Category:Books")])
	})

	t.Run("ExcludeInactive", func(t *testing.T) {
		opts := DefaultOptions(asOf)
		opts.ExcludeInactive = true
		m, _, err := Build(j, opts)
		require.NoError(t, err)
		assert.Equal(t, -1, m.Index("C0002"))
		assert.Equal(t, 2, m.Len())
	})

	t.Run("MissingSignupDate", func(t *testing.T) {
		jj, _ := Join(model.Dataset{Customers: []model.Customer{{ID: "X", Region: "EU"}}})
		m, w, err := Build(jj, DefaultOptions(asOf))
		require.NoError(t, err)
		assert.Equal(t, 0.0, m.Rows[0][0])
		assert.Equal(t, 1, w.Count(model.WarningMissingValue))
	})

	t.Run("Errors", func(t *testing.T) {
		_, _, err := Build(j, Options{})
		assert.ErrorIs(t, err, ErrMissingAsOf)

		empty, _ := Join(model.Dataset{})
		_, _, err = Build(empty, DefaultOptions(asOf))
		assert.ErrorIs(t, err, model.ErrEmptyDataset)
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, _, err := Build(j, DefaultOptions(asOf))
		require.NoError(t, err)
		ds := fixture()
		// Reverse transaction order; output must not change.
		for l, r := 0, len(ds.Transactions)-1; l < r; l, r = l+1, r-1 {
			ds.Transactions[l], ds.Transactions[r] = ds.Transactions[r], ds.Transactions[l]
		}
		j2, _ := Join(ds)
		b, _, err := Build(j2, DefaultOptions(asOf))
		require.NoError(t, err)
		assert.Equal(t, a.Rows, b.Rows)
	})
}

func TestMatrix(t *testing.T) {
	m := &Matrix{
		Schema: model.Schema{"a", "b"},
		IDs:    []model.CustomerID{"A", "B"},
		Rows:   [][]float64{{1, 2}, {3, 4}},
	}
	assert.Equal(t, []float64{1, 3}, m.Column(0))
	assert.Equal(t, 1, m.Index("B"))
	assert.Equal(t, model.CustomerID("A"), m.Vector(0).CustomerID)

	c := m.Clone()
	c.Rows[0][0] = 99
	assert.Equal(t, 1.0, m.Rows[0][0])

	m.Rows[1] = []float64{1}
	assert.ErrorIs(t, m.Validate(), model.ErrDimensionMismatch)
}

func TestParseCategoryMix(t *testing.T) {
	for _, mix := range []CategoryMix{CategoryMixNone, CategoryMixCounts, CategoryMixProportions} {
		got, ok := ParseCategoryMix(mix.String())
		assert.True(t, ok)
		assert.Equal(t, mix, got)
	}
	_, ok := ParseCategoryMix("bogus")
	assert.False(t, ok)
}
