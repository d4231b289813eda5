package cluster

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cohort/distance"
	"github.com/hupe1980/cohort/model"
)

// Model is a fitted k-means model. It is a plain value: it can be encoded,
// compared and reused across processes.
type Model struct {
	K         int         `json:"k"`
	Centroids [][]float64 `json:"centroids"`
	// Assignments maps every input row to a cluster index in [0, K).
	Assignments []int   `json:"assignments"`
	Inertia     float64 `json:"inertia"`
	// Iterations is the number of completed update steps.
	Iterations int   `json:"iterations"`
	Converged  bool  `json:"converged"`
	Seed       int64 `json:"seed"`
}

// Sizes returns the number of members of every cluster.
func (m *Model) Sizes() []int {
	sizes := make([]int, m.K)
	for _, c := range m.Assignments {
		sizes[c]++
	}
	return sizes
}

// Members returns the rows assigned to cluster c.
func (m *Model) Members(c int) *roaring.Bitmap {
	bm := roaring.New()
	for i, a := range m.Assignments {
		if a == c {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Membership returns the member set of every cluster.
func (m *Model) Membership() []*roaring.Bitmap {
	out := make([]*roaring.Bitmap, m.K)
	for c := range out {
		out[c] = roaring.New()
	}
	for i, a := range m.Assignments {
		out[a].Add(uint32(i))
	}
	return out
}

// Predict returns the nearest centroid of v (ties to the lowest index).
func (m *Model) Predict(v []float64) (int, error) {
	if len(m.Centroids) == 0 {
		return -1, ErrInvalidK
	}
	if len(v) != len(m.Centroids[0]) {
		return -1, model.ErrDimensionMismatch
	}
	c, _ := nearest(v, m.Centroids)
	return c, nil
}

// Fit clusters vectors into cfg.K clusters using Lloyd's algorithm.
//
// It returns *model.InsufficientDataError when there are fewer vectors than
// clusters and *model.DegenerateFeatureError when no dimension has any
// variance. Hitting cfg.MaxIter is not an error: the model is returned with
// Converged set to false.
func Fit(ctx context.Context, vectors [][]float64, cfg Config) (*Model, error) {
	if cfg.K < 1 {
		return nil, ErrInvalidK
	}
	if err := validate(vectors, cfg.K); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	rng := newRNG(cfg.Seed)

	var centroids [][]float64
	switch cfg.Init {
	case InitRandom:
		centroids = initRandom(vectors, cfg.K, rng)
	case InitKMeansPlusPlus:
		centroids = initKMeansPlusPlus(vectors, cfg.K, rng)
	default:
		return nil, fmt.Errorf("unsupported init method: %v", cfg.Init)
	}

	return lloyd(ctx, vectors, centroids, cfg)
}

// validate checks the shared preconditions of Fit and Sweep.
func validate(vectors [][]float64, k int) error {
	if len(vectors) < k {
		return &model.InsufficientDataError{Customers: len(vectors), K: k}
	}
	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return model.ErrDimensionMismatch
		}
	}
	for j := 0; j < dim; j++ {
		for _, v := range vectors[1:] {
			if v[j] != vectors[0][j] {
				return nil
			}
		}
	}
	names := make([]string, dim)
	for j := range names {
		names[j] = fmt.Sprintf("dim%d", j)
	}
	return model.NewDegenerateFeatureError(names, nil)
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// initRandom picks k distinct rows.
func initRandom(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(vectors))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = slices.Clone(vectors[perm[i]])
	}
	return centroids
}

// initKMeansPlusPlus picks k rows with D² sampling.
func initKMeansPlusPlus(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(vectors)
	chosen := make([]bool, n)

	first := rng.IntN(n)
	chosen[first] = true
	centroids := [][]float64{slices.Clone(vectors[first])}

	d2 := make([]float64, n)
	for i, v := range vectors {
		d2[i] = distance.SquaredL2(v, centroids[0])
	}

	for len(centroids) < k {
		idx := sampleD2(d2, chosen, rng)
		chosen[idx] = true
		c := slices.Clone(vectors[idx])
		centroids = append(centroids, c)
		for i, v := range vectors {
			if d := distance.SquaredL2(v, c); d < d2[i] {
				d2[i] = d
			}
		}
	}

	return centroids
}

// extendKMeansPlusPlus returns centroids plus one row drawn with D² sampling
// relative to the existing centroids.
func extendKMeansPlusPlus(vectors [][]float64, centroids [][]float64, rng *rand.Rand) [][]float64 {
	d2 := make([]float64, len(vectors))
	for i, v := range vectors {
		_, d2[i] = nearest(v, centroids)
	}
	idx := sampleD2(d2, nil, rng)

	out := make([][]float64, 0, len(centroids)+1)
	for _, c := range centroids {
		out = append(out, slices.Clone(c))
	}
	return append(out, slices.Clone(vectors[idx]))
}

// sampleD2 draws a row with probability proportional to d2. When all d2 are
// zero it returns the lowest row not marked in chosen (chosen may be nil).
func sampleD2(d2 []float64, chosen []bool, rng *rand.Rand) int {
	var sum float64
	for _, d := range d2 {
		sum += d
	}
	if sum > 0 {
		u := rng.Float64() * sum
		var cum float64
		for i, d := range d2 {
			cum += d
			if cum > u {
				return i
			}
		}
		// Rounding left u at the very end of the distribution.
		for i := len(d2) - 1; i >= 0; i-- {
			if d2[i] > 0 {
				return i
			}
		}
	}
	for i := range d2 {
		if chosen == nil || !chosen[i] {
			return i
		}
	}
	return 0
}

// nearest returns the index of and squared distance to the closest centroid.
// Ties resolve to the lowest index.
func nearest(v []float64, centroids [][]float64) (int, float64) {
	best := 0
	bestDist := distance.SquaredL2(v, centroids[0])
	for j := 1; j < len(centroids); j++ {
		if d := distance.SquaredL2(v, centroids[j]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

// lloyd iterates assignment and update steps from the given centroids.
func lloyd(ctx context.Context, vectors [][]float64, centroids [][]float64, cfg Config) (*Model, error) {
	n := len(vectors)
	m := &Model{
		K:           len(centroids),
		Centroids:   centroids,
		Assignments: make([]int, n),
		Seed:        cfg.Seed,
	}
	for i := range m.Assignments {
		m.Assignments[i] = -1
	}

	if _, err := assignStep(ctx, vectors, m.Centroids, m.Assignments, cfg.Workers); err != nil {
		return nil, err
	}

	for iter := 1; iter <= cfg.MaxIter; iter++ {
		if err := updateStep(ctx, vectors, m.Centroids, m.Assignments, cfg.Workers); err != nil {
			return nil, err
		}
		changed, err := assignStep(ctx, vectors, m.Centroids, m.Assignments, cfg.Workers)
		if err != nil {
			return nil, err
		}
		m.Iterations = iter
		if !changed {
			m.Converged = true
			break
		}
	}

	m.Inertia = inertia(vectors, m.Centroids, m.Assignments)
	return m, nil
}

func numChunks(n int) int {
	return (n + chunkSize - 1) / chunkSize
}

func chunkBounds(c, n int) (int, int) {
	lo := c * chunkSize
	return lo, min(lo+chunkSize, n)
}

// assignStep moves every row to its nearest centroid and reports whether any
// membership changed. Chunks write disjoint parts of assignments.
func assignStep(ctx context.Context, vectors [][]float64, centroids [][]float64, assignments []int, workers int) (bool, error) {
	chunks := numChunks(len(vectors))
	changed := make([]bool, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for c := 0; c < chunks; c++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lo, hi := chunkBounds(c, len(vectors))
			for i := lo; i < hi; i++ {
				best, _ := nearest(vectors[i], centroids)
				if assignments[i] != best {
					assignments[i] = best
					changed[c] = true
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return false, err
	}

	return slices.Contains(changed, true), nil
}

// updateStep recomputes every centroid as the mean of its members.
// Partial sums are computed per chunk and merged in chunk order. A centroid
// without members keeps its position.
func updateStep(ctx context.Context, vectors [][]float64, centroids [][]float64, assignments []int, workers int) error {
	k := len(centroids)
	dim := len(centroids[0])
	chunks := numChunks(len(vectors))

	sums := make([][]float64, chunks)
	counts := make([][]int, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for c := 0; c < chunks; c++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := make([]float64, k*dim)
			cnt := make([]int, k)
			lo, hi := chunkBounds(c, len(vectors))
			for i := lo; i < hi; i++ {
				a := assignments[i]
				cnt[a]++
				for d, x := range vectors[i] {
					s[a*dim+d] += x
				}
			}
			sums[c], counts[c] = s, cnt
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	total := make([]float64, k*dim)
	count := make([]int, k)
	for c := 0; c < chunks; c++ {
		for i, v := range sums[c] {
			total[i] += v
		}
		for j, v := range counts[c] {
			count[j] += v
		}
	}

	for j := 0; j < k; j++ {
		if count[j] == 0 {
			continue
		}
		for d := 0; d < dim; d++ {
			centroids[j][d] = total[j*dim+d] / float64(count[j])
		}
	}

	return nil
}

// inertia returns the sum of squared distances to the assigned centroids.
func inertia(vectors [][]float64, centroids [][]float64, assignments []int) float64 {
	var sum float64
	for i, v := range vectors {
		sum += distance.SquaredL2(v, centroids[assignments[i]])
	}
	return sum
}
