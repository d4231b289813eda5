package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/cohort/model"
)

// RNG wraps a seeded random number generator.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.NormFloat64()
		}
		vectors[i] = vec
	}

	return vectors
}

// Blobs generates perCenter points around every center with Gaussian noise
// of the given spread. Points are grouped by center, in center order.
func (r *RNG) Blobs(centers [][]float64, perCenter int, spread float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float64, 0, len(centers)*perCenter)
	for _, c := range centers {
		for range perCenter {
			vec := make([]float64, len(c))
			for j := range c {
				vec[j] = c[j] + r.rand.NormFloat64()*spread
			}
			vectors = append(vectors, vec)
		}
	}

	return vectors
}

// DatasetOptions controls the shape of a synthetic dataset.
type DatasetOptions struct {
	Customers int
	Products  int
	// MaxTransactions bounds the number of transactions per customer.
	// Every fifth customer gets none.
	MaxTransactions int
	Categories      []string
	Regions         []string
	AsOf            time.Time
}

func (o DatasetOptions) withDefaults() DatasetOptions {
	if o.Customers <= 0 {
		o.Customers = 100
	}
	if o.Products <= 0 {
		o.Products = 20
	}
	if o.MaxTransactions <= 0 {
		o.MaxTransactions = 10
	}
	if len(o.Categories) == 0 {
		o.Categories = []string{"Books", "Clothing", "Electronics", "Home Decor"}
	}
	if len(o.Regions) == 0 {
		o.Regions = []string{"Asia", "Europe", "North America", "South America"}
	}
	if o.AsOf.IsZero() {
		o.AsOf = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return o
}

// CustomerID formats the synthetic ID of customer i.
func CustomerID(i int) model.CustomerID {
	return model.CustomerID(fmt.Sprintf("C%04d", i+1))
}

// ProductID formats the synthetic ID of product i.
func ProductID(i int) model.ProductID {
	return model.ProductID(fmt.Sprintf("P%03d", i+1))
}

// Dataset generates a referentially consistent dataset. All dates lie in the
// two years before opts.AsOf.
func (r *RNG) Dataset(opts DatasetOptions) model.Dataset {
	opts = opts.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	day := 24 * time.Hour
	var ds model.Dataset

	for i := range opts.Products {
		price := math.Round((5+r.rand.Float64()*495)*100) / 100
		ds.Products = append(ds.Products, model.Product{
			ID:       ProductID(i),
			Name:     fmt.Sprintf("Product %d", i+1),
			Category: opts.Categories[i%len(opts.Categories)],
			Price:    model.Float64(price),
		})
	}

	txn := 0
	for i := range opts.Customers {
		id := CustomerID(i)
		signup := opts.AsOf.Add(-time.Duration(365+r.rand.Intn(365)) * day)
		ds.Customers = append(ds.Customers, model.Customer{
			ID:         id,
			Region:     opts.Regions[r.rand.Intn(len(opts.Regions))],
			SignupDate: signup,
		})

		if i%5 == 4 {
			continue
		}

		count := 1 + r.rand.Intn(opts.MaxTransactions)
		for range count {
			txn++
			p := ds.Products[r.rand.Intn(len(ds.Products))]
			qty := 1 + r.rand.Intn(4)
			ds.Transactions = append(ds.Transactions, model.Transaction{
				ID:         model.TransactionID(fmt.Sprintf("T%05d", txn)),
				CustomerID: id,
				ProductID:  p.ID,
				Quantity:   qty,
				TotalValue: model.Float64(*p.Price * float64(qty)),
				Date:       opts.AsOf.Add(-time.Duration(r.rand.Intn(365)) * day),
			})
		}
	}

	return ds
}
