package cohort

// Stage identifies a step of the pipeline.
type Stage int

// Pipeline stages, in execution order.
const (
	StageJoin Stage = iota
	StageFeatures
	StageNormalize
	StageCluster
	StageSimilarity
	StageProfile
)

func (s Stage) String() string {
	switch s {
	case StageJoin:
		return "join"
	case StageFeatures:
		return "features"
	case StageNormalize:
		return "normalize"
	case StageCluster:
		return "cluster"
	case StageSimilarity:
		return "similarity"
	case StageProfile:
		return "profile"
	default:
		return "unknown"
	}
}
