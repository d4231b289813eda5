package cohort

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordStage is called after each pipeline stage.
	// err is nil if the stage succeeded.
	RecordStage(stage Stage, duration time.Duration, err error)

	// RecordSweep is called after the elbow sweep with the number of
	// fitted k values and the total number of update steps.
	RecordSweep(points, iterations int, duration time.Duration)

	// RecordRun is called after each run with the number of customers
	// that entered the feature stage.
	RecordRun(customers int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStage(Stage, time.Duration, error) {}
func (NoopMetricsCollector) RecordSweep(int, int, time.Duration)     {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)     {}

const numStages = int(StageProfile) + 1

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StageCount      [numStages]atomic.Int64
	StageErrors     [numStages]atomic.Int64
	StageTotalNanos [numStages]atomic.Int64
	SweepCount      atomic.Int64
	SweepPoints     atomic.Int64
	SweepIterations atomic.Int64
	RunCount        atomic.Int64
	RunErrors       atomic.Int64
	RunCustomers    atomic.Int64
	RunTotalNanos   atomic.Int64
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(stage Stage, duration time.Duration, err error) {
	if stage < 0 || int(stage) >= numStages {
		return
	}
	b.StageCount[stage].Add(1)
	b.StageTotalNanos[stage].Add(duration.Nanoseconds())
	if err != nil {
		b.StageErrors[stage].Add(1)
	}
}

// RecordSweep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSweep(points, iterations int, _ time.Duration) {
	b.SweepCount.Add(1)
	b.SweepPoints.Add(int64(points))
	b.SweepIterations.Add(int64(iterations))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(customers int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunCustomers.Add(int64(customers))
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		Stages:          make(map[Stage]StageStats, numStages),
		SweepCount:      b.SweepCount.Load(),
		SweepPoints:     b.SweepPoints.Load(),
		SweepIterations: b.SweepIterations.Load(),
		RunCount:        b.RunCount.Load(),
		RunErrors:       b.RunErrors.Load(),
		RunCustomers:    b.RunCustomers.Load(),
		RunAvgNanos:     avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
	}
	for i := range numStages {
		count := b.StageCount[i].Load()
		if count == 0 {
			continue
		}
		s.Stages[Stage(i)] = StageStats{
			Count:    count,
			Errors:   b.StageErrors[i].Load(),
			AvgNanos: avg(b.StageTotalNanos[i].Load(), count),
		}
	}
	return s
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// StageStats is a snapshot of the metrics of one stage.
type StageStats struct {
	Count    int64
	Errors   int64
	AvgNanos int64
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Stages          map[Stage]StageStats
	SweepCount      int64
	SweepPoints     int64
	SweepIterations int64
	RunCount        int64
	RunErrors       int64
	RunCustomers    int64
	RunAvgNanos     int64
}
