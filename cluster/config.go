package cluster

import (
	"errors"
	"runtime"
)

// DefaultMaxIter is the default iteration cap.
const DefaultMaxIter = 300

// DefaultSeed is the default initialization seed.
const DefaultSeed = 42

// chunkSize is the number of rows per assignment/reduction task.
const chunkSize = 512

// ErrInvalidK is returned when k is not positive.
var ErrInvalidK = errors.New("k must be positive")

// InitMethod selects the centroid initialization strategy.
type InitMethod int

const (
	// InitKMeansPlusPlus spreads initial centroids with D² sampling.
	InitKMeansPlusPlus InitMethod = iota
	// InitRandom picks k distinct rows uniformly.
	InitRandom
)

func (m InitMethod) String() string {
	switch m {
	case InitKMeansPlusPlus:
		return "kmeans++"
	case InitRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParseInitMethod parses the names produced by InitMethod.String.
func ParseInitMethod(s string) (InitMethod, bool) {
	switch s {
	case "", "kmeans++":
		return InitKMeansPlusPlus, true
	case "random":
		return InitRandom, true
	default:
		return InitKMeansPlusPlus, false
	}
}

// Config configures a k-means run.
type Config struct {
	// K is the number of clusters (ignored by Sweep).
	K int
	// MaxIter caps the number of update steps. Defaults to DefaultMaxIter.
	MaxIter int
	// Seed drives initialization.
	Seed int64
	// Init selects the initialization strategy.
	Init InitMethod
	// Workers bounds the parallelism of the assignment step.
	// Defaults to runtime.GOMAXPROCS(0).
	Workers int
}

// DefaultConfig returns the default configuration for k clusters.
func DefaultConfig(k int) Config {
	return Config{
		K:       k,
		MaxIter: DefaultMaxIter,
		Seed:    DefaultSeed,
		Init:    InitKMeansPlusPlus,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}
