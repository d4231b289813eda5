package similarity

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cohort/distance"
	"github.com/hupe1980/cohort/model"
	"github.com/hupe1980/cohort/resource"
)

// rowsPerTask is the number of block rows computed by one task.
const rowsPerTask = 32

// Options configures similarity computation.
type Options struct {
	// Workers bounds the parallelism. Defaults to the controller's worker
	// bound (runtime.GOMAXPROCS(0) without a controller).
	Workers int
	// Controller reserves block memory. Nil means unlimited.
	Controller *resource.Controller
	// BatchRows limits how many rows Lookalikes materializes at once.
	// 0 computes a single block.
	BatchRows int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return o.Controller.Workers()
}

// Block holds the cosine similarity of a set of rows against the whole
// population, row-major.
type Block struct {
	// Rows holds the population index of every block row.
	Rows []int
	// N is the population size.
	N      int
	Scores []float64

	rc      *resource.Controller
	bytes   int64
	release sync.Once
}

// Row returns the scores of block row i. The slice shares memory with b.
func (b *Block) Row(i int) []float64 {
	return b.Scores[i*b.N : (i+1)*b.N]
}

// At returns the similarity between block row i and population row j.
func (b *Block) At(i, j int) float64 {
	return b.Scores[i*b.N+j]
}

// Release returns the block memory to the controller. The block must not be
// used afterwards. Release is idempotent.
func (b *Block) Release() {
	b.release.Do(func() {
		b.rc.ReleaseMemory(b.bytes)
		b.Scores = nil
	})
}

// BlockBytes returns the memory a block of rows×n scores needs.
func BlockBytes(rows, n int) int64 {
	return 8 * int64(rows) * int64(n)
}

// Compute returns the cosine similarity of the given rows against every
// vector. A nil rows computes the full n×n matrix.
//
// The self entry of a row is exactly 1, or 0 for a zero vector. The full
// matrix is symmetric bit for bit.
func Compute(ctx context.Context, vectors [][]float64, rows []int, opts Options) (*Block, error) {
	n := len(vectors)
	if err := validate(vectors); err != nil {
		return nil, err
	}

	if rows == nil {
		rows = make([]int, n)
		for i := range rows {
			rows[i] = i
		}
	}
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("row %d out of range [0, %d)", r, n)
		}
	}

	bytes := BlockBytes(len(rows), n)
	if err := opts.Controller.AcquireMemory(ctx, bytes); err != nil {
		return nil, fmt.Errorf("reserve similarity block: %w", err)
	}

	b := &Block{
		Rows:   rows,
		N:      n,
		Scores: make([]float64, len(rows)*n),
		rc:     opts.Controller,
		bytes:  bytes,
	}

	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = distance.Norm(v)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for lo := 0; lo < len(rows); lo += rowsPerTask {
		hi := min(lo+rowsPerTask, len(rows))
		g.Go(func() error {
			// Bounded by the controller in addition to the group limit.
			if err := opts.Controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer opts.Controller.ReleaseWorker()

			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := rows[i]
				out := b.Row(i)
				for j, v := range vectors {
					if j == p {
						if norms[p] > 0 {
							out[j] = 1
						}
						continue
					}
					out[j] = distance.CosineWithNorms(vectors[p], v, norms[p], norms[j])
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		b.Release()
		return nil, err
	}

	return b, nil
}

func validate(vectors [][]float64) error {
	if len(vectors) == 0 {
		return model.ErrEmptyDataset
	}
	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return model.ErrDimensionMismatch
		}
	}
	return nil
}
