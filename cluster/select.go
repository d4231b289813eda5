package cluster

import (
	"fmt"
	"math"
)

// Selector picks k from an elbow series ordered by ascending K.
type Selector interface {
	Select(series []ElbowPoint) (int, error)
	String() string
}

// ErrEmptySeries is returned when a selector receives no points.
var ErrEmptySeries = fmt.Errorf("elbow series is empty")

// MaxSecondDifference picks the interior k with the largest discrete second
// difference I[k-1] - 2*I[k] + I[k+1]. Ties resolve to the smaller k. With
// fewer than three points the largest k is returned.
type MaxSecondDifference struct{}

func (MaxSecondDifference) String() string { return "second-difference" }

// Select implements Selector.
func (MaxSecondDifference) Select(series []ElbowPoint) (int, error) {
	if len(series) == 0 {
		return 0, ErrEmptySeries
	}
	if len(series) < 3 {
		return series[len(series)-1].K, nil
	}

	best := series[1].K
	bestScore := math.Inf(-1)
	for i := 1; i < len(series)-1; i++ {
		score := series[i-1].Inertia - 2*series[i].Inertia + series[i+1].Inertia
		if score > bestScore {
			best, bestScore = series[i].K, score
		}
	}
	return best, nil
}

// MaxChordDistance picks the k whose normalized point lies farthest below the
// chord between the first and last point of the series. Ties resolve to the
// smaller k.
type MaxChordDistance struct{}

func (MaxChordDistance) String() string { return "chord-distance" }

// Select implements Selector.
func (MaxChordDistance) Select(series []ElbowPoint) (int, error) {
	if len(series) == 0 {
		return 0, ErrEmptySeries
	}
	if len(series) < 3 {
		return series[len(series)-1].K, nil
	}

	first, last := series[0], series[len(series)-1]
	spanK := float64(last.K - first.K)
	spanI := first.Inertia - last.Inertia
	if spanK <= 0 || spanI <= 0 {
		return first.K, nil
	}

	best := first.K
	bestDist := math.Inf(-1)
	for _, p := range series {
		x := float64(p.K-first.K) / spanK
		y := (p.Inertia - last.Inertia) / spanI
		if d := (1 - x) - y; d > bestDist {
			best, bestDist = p.K, d
		}
	}
	return best, nil
}

// Fixed always selects K.
type Fixed struct {
	K int
}

func (f Fixed) String() string { return fmt.Sprintf("fixed(%d)", f.K) }

// Select implements Selector. It does not require K to be part of the series.
func (f Fixed) Select(_ []ElbowPoint) (int, error) {
	if f.K < 1 {
		return 0, ErrInvalidK
	}
	return f.K, nil
}

// ParseSelector returns the selector with the given name. k is used by the
// "fixed" selector only.
func ParseSelector(name string, k int) (Selector, error) {
	switch name {
	case "", "second-difference":
		return MaxSecondDifference{}, nil
	case "chord-distance":
		return MaxChordDistance{}, nil
	case "fixed":
		if k < 1 {
			return nil, ErrInvalidK
		}
		return Fixed{K: k}, nil
	default:
		return nil, fmt.Errorf("unknown selector %q", name)
	}
}
