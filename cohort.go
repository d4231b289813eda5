package cohort

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cohort/cluster"
	"github.com/hupe1980/cohort/export"
	"github.com/hupe1980/cohort/feature"
	"github.com/hupe1980/cohort/model"
	"github.com/hupe1980/cohort/normalize"
	"github.com/hupe1980/cohort/similarity"
)

// Result holds everything a run produces.
type Result struct {
	// RunID uniquely identifies the run in logs and exported artifacts.
	RunID string
	// Schema names the feature columns.
	Schema model.Schema
	// Features holds the raw feature rows, ordered by ascending customer ID.
	Features *feature.Matrix
	// Normalized holds the standardized rows in the same order.
	Normalized *feature.Matrix
	Stats      normalize.Stats
	Elbow      []cluster.ElbowPoint
	// Selector names the policy that chose ChosenK.
	Selector string
	ChosenK  int
	Model    *cluster.Model
	Profile  []cluster.ClusterProfile
	// Lookalikes is empty when lookalike generation is disabled.
	Lookalikes []similarity.Lookalike
	Warnings   model.Warnings
}

// IDs returns the customer of every row.
func (r *Result) IDs() []model.CustomerID {
	if r.Features == nil {
		return nil
	}
	return r.Features.IDs
}

// Assignments returns the cluster of every customer.
func (r *Result) Assignments() map[model.CustomerID]int {
	out := make(map[model.CustomerID]int, len(r.Model.Assignments))
	for i, id := range r.IDs() {
		out[id] = r.Model.Assignments[i]
	}
	return out
}

// Artifacts returns the exportable view of r.
func (r *Result) Artifacts() *export.Artifacts {
	return &export.Artifacts{
		RunID:      r.RunID,
		Schema:     r.Schema,
		IDs:        r.IDs(),
		Stats:      r.Stats,
		Selector:   r.Selector,
		Model:      r.Model,
		Elbow:      r.Elbow,
		Profile:    r.Profile,
		Lookalikes: r.Lookalikes,
		Warnings:   r.Warnings,
	}
}

// Pipeline runs the segmentation. It is safe for concurrent use; every Run
// is independent.
type Pipeline struct {
	opts options
}

// New returns a Pipeline. The reference date is required.
func New(optFns ...Option) (*Pipeline, error) {
	o := applyOptions(optFns)
	if o.features.AsOf.IsZero() {
		return nil, ErrMissingAsOf
	}
	if o.kMax < 1 {
		return nil, ErrInvalidK
	}
	if o.cluster.Workers <= 0 && o.controller != nil {
		o.cluster.Workers = o.controller.Workers()
	}
	return &Pipeline{opts: o}, nil
}

// Run executes join, feature building and normalization, then clustering
// and lookalike ranking concurrently, and finally profiles the clusters.
//
// Fatal errors are returned as *StageError; no partial result is returned.
func (p *Pipeline) Run(ctx context.Context, ds model.Dataset) (*Result, error) {
	start := time.Now()

	res := &Result{
		RunID:    uuid.NewString(),
		Selector: p.opts.selector.String(),
	}
	log := p.opts.logger.WithRunID(res.RunID)
	log.InfoContext(ctx, "run started",
		"dataset", ds.String(),
		"as_of", p.opts.features.AsOf.Format(time.DateOnly),
		"k_max", p.opts.kMax,
		"selector", res.Selector,
	)

	err := p.run(ctx, log, res, ds)
	duration := time.Since(start)

	p.opts.metricsCollector.RecordRun(len(res.IDs()), duration, err)
	log.LogRun(ctx, res, duration, err)
	if err != nil {
		return nil, err
	}
	log.LogWarnings(ctx, res.Warnings)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, log *Logger, res *Result, ds model.Dataset) error {
	var joined *feature.Joined
	err := p.stage(ctx, log, StageJoin, func(context.Context) error {
		j, w := feature.Join(ds)
		res.Warnings.Merge(w)
		if len(j.Customers) == 0 {
			return ErrEmptyDataset
		}
		if j.Dropped > 0 {
			log.WarnContext(ctx, "transactions dropped", "count", j.Dropped)
		}
		joined = j
		return nil
	})
	if err != nil {
		return err
	}

	err = p.stage(ctx, log, StageFeatures, func(context.Context) error {
		m, w, err := feature.Build(joined, p.opts.features)
		res.Warnings.Merge(w)
		if err != nil {
			return err
		}
		res.Features = m
		res.Schema = m.Schema
		return nil
	})
	if err != nil {
		return err
	}

	err = p.stage(ctx, log, StageNormalize, func(ctx context.Context) error {
		z, stats, err := normalize.FitTransform(res.Features)
		if err != nil {
			return err
		}
		if constant := stats.ConstantFeatures(); len(constant) > 0 {
			log.InfoContext(ctx, "constant features map to zero", "features", constant)
		}
		res.Normalized = z
		res.Stats = stats
		return nil
	})
	if err != nil {
		return err
	}

	// Clustering and similarity only read the normalized matrix.
	var clusterWarnings model.Warnings
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.stage(gctx, log, StageCluster, func(ctx context.Context) error {
			w, err := p.fitClusters(ctx, log, res)
			clusterWarnings = w
			return err
		})
	})
	if p.opts.lookalikes {
		g.Go(func() error {
			return p.stage(gctx, log, StageSimilarity, func(ctx context.Context) error {
				l, err := similarity.Lookalikes(ctx, res.Normalized.Rows, res.Normalized.IDs,
					p.opts.subset, p.opts.topN, similarity.Options{
						Workers:    p.opts.cluster.Workers,
						Controller: p.opts.controller,
						BatchRows:  p.opts.batchRows,
					})
				if err != nil {
					return err
				}
				res.Lookalikes = l
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	res.Warnings.Merge(clusterWarnings)

	return p.stage(ctx, log, StageProfile, func(context.Context) error {
		profile, err := cluster.Profile(res.Model, res.Features)
		if err != nil {
			return err
		}
		res.Profile = profile
		return nil
	})
}

// fitClusters sweeps k, selects one and stores the elbow series and the
// chosen model in res.
func (p *Pipeline) fitClusters(ctx context.Context, log *Logger, res *Result) (model.Warnings, error) {
	var warnings model.Warnings
	vectors := res.Normalized.Rows

	start := time.Now()
	elbow, models, err := cluster.Sweep(ctx, vectors, p.opts.kMax, p.opts.cluster)
	if err != nil {
		return warnings, err
	}
	iterations := 0
	for _, e := range elbow {
		iterations += e.Iterations
		if !e.Converged {
			warnings.Add(model.WarningNonConvergence, fmt.Sprintf("k=%d", e.K),
				"no convergence after %d iterations", e.Iterations)
		}
	}
	p.opts.metricsCollector.RecordSweep(len(elbow), iterations, time.Since(start))

	k, err := p.opts.selector.Select(elbow)
	if err != nil {
		return warnings, fmt.Errorf("select k: %w", err)
	}
	log.LogSweep(ctx, elbow, p.opts.selector, k)

	var m *cluster.Model
	if k <= len(models) {
		m = models[k-1]
	} else {
		// A fixed k beyond the sweep.
		cfg := p.opts.cluster
		cfg.K = k
		m, err = cluster.Fit(ctx, vectors, cfg)
		if err != nil {
			return warnings, err
		}
		if !m.Converged {
			warnings.Add(model.WarningNonConvergence, fmt.Sprintf("k=%d", k),
				"no convergence after %d iterations", m.Iterations)
		}
	}

	res.Elbow = elbow
	res.ChosenK = k
	res.Model = m
	return warnings, nil
}

// stage runs fn, records its duration and wraps a failure in *StageError.
func (p *Pipeline) stage(ctx context.Context, log *Logger, s Stage, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	p.opts.metricsCollector.RecordStage(s, duration, err)
	log.LogStage(ctx, s, duration, err)
	if err != nil {
		return &StageError{Stage: s, cause: err}
	}
	return nil
}
