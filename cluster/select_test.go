package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(inertia ...float64) []ElbowPoint {
	out := make([]ElbowPoint, len(inertia))
	for i, v := range inertia {
		out[i] = ElbowPoint{K: i + 1, Inertia: v}
	}
	return out
}

func TestSelectors(t *testing.T) {
	tests := []struct {
		name     string
		selector Selector
		series   []ElbowPoint
		want     int
	}{
		{"second difference", MaxSecondDifference{}, series(100, 40, 20, 15, 12), 2},
		{"second difference ties to smaller k", MaxSecondDifference{}, series(30, 20, 10, 0), 2},
		{"second difference short series", MaxSecondDifference{}, series(10, 5), 2},
		{"second difference later knee", MaxSecondDifference{}, series(100, 90, 80, 20, 18, 17), 4},
		{"chord distance", MaxChordDistance{}, series(100, 40, 20, 15, 12), 2},
		{"chord distance flat", MaxChordDistance{}, series(5, 5, 5), 1},
		{"chord distance short series", MaxChordDistance{}, series(10), 1},
		{"fixed", Fixed{K: 4}, series(10, 5, 1), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.selector.Select(tt.series)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectors_Errors(t *testing.T) {
	_, err := MaxSecondDifference{}.Select(nil)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = MaxChordDistance{}.Select(nil)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = Fixed{}.Select(series(1))
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestParseSelector(t *testing.T) {
	s, err := ParseSelector("", 0)
	require.NoError(t, err)
	assert.Equal(t, "second-difference", s.String())

	s, err = ParseSelector("chord-distance", 0)
	require.NoError(t, err)
	assert.IsType(t, MaxChordDistance{}, s)

	s, err = ParseSelector("fixed", 4)
	require.NoError(t, err)
	assert.Equal(t, "fixed(4)", s.String())

	_, err = ParseSelector("fixed", 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = ParseSelector("silhouette", 0)
	assert.Error(t, err)
}
