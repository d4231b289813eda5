package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cohort/testutil"
)

func TestSweep(t *testing.T) {
	rng := testutil.NewRNG(99)
	vectors := rng.GaussianVectors(300, 3)

	series, models, err := Sweep(context.Background(), vectors, 10, DefaultConfig(0))
	require.NoError(t, err)
	require.Len(t, series, 10)
	require.Len(t, models, 10)

	for i, p := range series {
		assert.Equal(t, i+1, p.K)
		assert.Equal(t, p.K, models[i].K)
		assert.Equal(t, p.Inertia, models[i].Inertia)
		if i > 0 {
			assert.LessOrEqual(t, p.Inertia, series[i-1].Inertia, "k=%d", p.K)
		}
	}

	assert.Equal(t, 1, series[0].Iterations)
	assert.True(t, series[0].Converged)
}

func TestSweep_Deterministic(t *testing.T) {
	rng := testutil.NewRNG(7)
	vectors := rng.GaussianVectors(500, 2)

	a, _, err := Sweep(context.Background(), vectors, 6, DefaultConfig(0))
	require.NoError(t, err)
	b, _, err := Sweep(context.Background(), vectors, 6, DefaultConfig(0))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSweep_ClampsToPopulation(t *testing.T) {
	vectors := [][]float64{{0}, {1}, {5}}

	series, _, err := Sweep(context.Background(), vectors, 10, DefaultConfig(0))
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, 0.0, series[2].Inertia)
}

func TestSweep_Errors(t *testing.T) {
	_, _, err := Sweep(context.Background(), [][]float64{{1}}, 0, DefaultConfig(0))
	assert.ErrorIs(t, err, ErrInvalidK)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = Sweep(ctx, [][]float64{{1}, {2}}, 2, DefaultConfig(0))
	assert.ErrorIs(t, err, context.Canceled)
}
