package cluster

import (
	"github.com/hupe1980/cohort/feature"
	"github.com/hupe1980/cohort/model"
)

// ClusterProfile summarizes one cluster in raw feature units.
type ClusterProfile struct {
	Cluster int       `json:"cluster"`
	Size    int       `json:"size"`
	Means   []float64 `json:"means"`
}

// Profile returns the per-cluster size and mean raw feature values.
// raw must hold the unnormalized rows the model was fitted on, in the same
// order. Empty clusters get zero means.
func Profile(m *Model, raw *feature.Matrix) ([]ClusterProfile, error) {
	if raw.Len() != len(m.Assignments) {
		return nil, model.ErrDimensionMismatch
	}

	dim := raw.Dimension()
	out := make([]ClusterProfile, m.K)
	for c, members := range m.Membership() {
		p := ClusterProfile{
			Cluster: c,
			Size:    int(members.GetCardinality()),
			Means:   make([]float64, dim),
		}

		it := members.Iterator()
		for it.HasNext() {
			row := raw.Rows[it.Next()]
			if len(row) != dim {
				return nil, model.ErrDimensionMismatch
			}
			for j, v := range row {
				p.Means[j] += v
			}
		}
		if p.Size > 0 {
			for j := range p.Means {
				p.Means[j] /= float64(p.Size)
			}
		}

		out[c] = p
	}

	return out, nil
}
