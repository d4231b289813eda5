package cohort

import (
	"log/slog"
	"time"

	"github.com/hupe1980/cohort/cluster"
	"github.com/hupe1980/cohort/feature"
	"github.com/hupe1980/cohort/resource"
	"github.com/hupe1980/cohort/similarity"
)

// DefaultKMax is the largest k of the default elbow sweep.
const DefaultKMax = 10

type options struct {
	features         feature.Options
	cluster          cluster.Config
	kMax             int
	selector         cluster.Selector
	lookalikes       bool
	subset           int
	topN             int
	batchRows        int
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Pipeline.
type Option func(*options)

// WithAsOf sets the reference date for tenure and recency. Required unless
// WithFeatureOptions supplies it.
func WithAsOf(asOf time.Time) Option {
	return func(o *options) {
		o.features.AsOf = asOf
	}
}

// WithFeatureOptions replaces the feature builder options.
func WithFeatureOptions(opts feature.Options) Option {
	return func(o *options) {
		o.features = opts
	}
}

// WithClusterConfig replaces the k-means configuration. Its K is ignored;
// k comes from the sweep and the selector.
func WithClusterConfig(cfg cluster.Config) Option {
	return func(o *options) {
		o.cluster = cfg
	}
}

// WithSeed sets the k-means initialization seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.cluster.Seed = seed
	}
}

// WithKMax sets the largest k of the elbow sweep. It is clamped to the
// number of customers.
func WithKMax(kMax int) Option {
	return func(o *options) {
		o.kMax = kMax
	}
}

// WithSelector sets the policy that picks k from the elbow series.
// If nil is passed, cluster.MaxSecondDifference is used.
func WithSelector(s cluster.Selector) Option {
	return func(o *options) {
		if s == nil {
			s = cluster.MaxSecondDifference{}
		}
		o.selector = s
	}
}

// WithLookalikes configures lookalike generation for the first subset
// customers (0 means all) with n neighbors each.
func WithLookalikes(subset, n int) Option {
	return func(o *options) {
		o.lookalikes = true
		o.subset = subset
		o.topN = n
	}
}

// WithoutLookalikes disables the similarity stage.
func WithoutLookalikes() Option {
	return func(o *options) {
		o.lookalikes = false
	}
}

// WithSimilarityBatchRows bounds how many similarity rows are held in
// memory at once. 0 computes all requested rows in one block.
func WithSimilarityBatchRows(rows int) Option {
	return func(o *options) {
		o.batchRows = rows
	}
}

// WithResourceController bounds memory and workers of the compute stages.
//
// Example:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 512 << 20})
//	p, _ := cohort.New(cohort.WithAsOf(asOf), cohort.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &cohort.BasicMetricsCollector{}
//	p, _ := cohort.New(cohort.WithAsOf(asOf), cohort.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.RunCount, stats.RunAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := cohort.NewJSONLogger(slog.LevelInfo)
//	p, _ := cohort.New(cohort.WithAsOf(asOf), cohort.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		features:         feature.DefaultOptions(time.Time{}),
		cluster:          cluster.DefaultConfig(0),
		kMax:             DefaultKMax,
		selector:         cluster.MaxSecondDifference{},
		lookalikes:       true,
		subset:           similarity.DefaultSubset,
		topN:             similarity.DefaultTopN,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
