package cluster

import (
	"context"
)

// ElbowPoint is one entry of the elbow series.
type ElbowPoint struct {
	K          int     `json:"k"`
	Inertia    float64 `json:"inertia"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
}

// Sweep fits k-means for every k in [1, kMax] and returns the elbow series
// together with the fitted models, both indexed by k-1.
//
// kMax is clamped to the number of vectors. The run for k starts from the
// centroids of the run for k-1 plus one centroid drawn with D² sampling, so
// the inertia series is non-increasing. A single random stream seeded with
// cfg.Seed drives the whole sweep; cfg.K and cfg.Init are ignored.
func Sweep(ctx context.Context, vectors [][]float64, kMax int, cfg Config) ([]ElbowPoint, []*Model, error) {
	if kMax < 1 {
		return nil, nil, ErrInvalidK
	}
	if err := validate(vectors, 1); err != nil {
		return nil, nil, err
	}
	kMax = min(kMax, len(vectors))
	cfg = cfg.withDefaults()

	rng := newRNG(cfg.Seed)

	series := make([]ElbowPoint, 0, kMax)
	models := make([]*Model, 0, kMax)

	centroids := initKMeansPlusPlus(vectors, 1, rng)
	for k := 1; k <= kMax; k++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if k > 1 {
			centroids = extendKMeansPlusPlus(vectors, models[k-2].Centroids, rng)
		}

		m, err := lloyd(ctx, vectors, centroids, cfg)
		if err != nil {
			return nil, nil, err
		}

		models = append(models, m)
		series = append(series, ElbowPoint{
			K:          k,
			Inertia:    m.Inertia,
			Iterations: m.Iterations,
			Converged:  m.Converged,
		})
	}

	return series, models, nil
}
