package similarity

import (
	"context"

	"github.com/hupe1980/cohort/model"
	"github.com/hupe1980/cohort/queue"
)

// DefaultTopN is the default number of neighbors per customer.
const DefaultTopN = 3

// DefaultSubset is the default number of customers that get a lookalike list.
const DefaultSubset = 20

// Neighbor is one ranked lookalike.
type Neighbor struct {
	ID    model.CustomerID `json:"id"`
	Score float64          `json:"score"`
}

// Lookalike is the ranked neighbor list of one customer.
type Lookalike struct {
	CustomerID model.CustomerID `json:"customer_id"`
	Neighbors  []Neighbor       `json:"neighbors"`
}

// before reports whether a ranks ahead of b: higher score first, then the
// smaller customer ID.
func before(a, b Neighbor) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

// TopN ranks every customer other than the one of block row i and returns
// the first n. ids holds the customer of every population row. The result
// has min(n, population-1) entries.
func TopN(b *Block, i int, ids []model.CustomerID, n int) []Neighbor {
	if n <= 0 {
		n = DefaultTopN
	}
	self := b.Rows[i]
	n = min(n, b.N-1)
	if n <= 0 {
		return []Neighbor{}
	}

	q := queue.NewBounded(n, before)
	for j, score := range b.Row(i) {
		if j == self {
			continue
		}
		q.Offer(Neighbor{ID: ids[j], Score: score})
	}

	return q.Sorted()
}

// Lookalikes returns the top-n lookalikes of the first subset customers in
// row order, ranked against the whole population. subset <= 0 or larger than
// the population means every customer; n <= 0 means DefaultTopN.
func Lookalikes(ctx context.Context, vectors [][]float64, ids []model.CustomerID, subset, n int, opts Options) ([]Lookalike, error) {
	if len(ids) != len(vectors) {
		return nil, model.ErrDimensionMismatch
	}
	if err := validate(vectors); err != nil {
		return nil, err
	}

	total := len(vectors)
	if subset > 0 && subset < total {
		total = subset
	}
	batch := opts.BatchRows
	if batch <= 0 || batch > total {
		batch = total
	}

	out := make([]Lookalike, 0, total)
	for lo := 0; lo < total; lo += batch {
		hi := min(lo+batch, total)
		rows := make([]int, hi-lo)
		for i := range rows {
			rows[i] = lo + i
		}

		b, err := Compute(ctx, vectors, rows, opts)
		if err != nil {
			return nil, err
		}
		for i, p := range rows {
			out = append(out, Lookalike{
				CustomerID: ids[p],
				Neighbors:  TopN(b, i, ids, n),
			})
		}
		b.Release()
	}

	return out, nil
}
