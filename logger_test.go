package cohort

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cohort/cluster"
	"github.com/hupe1980/cohort/model"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		WithRunID("r1").
		WithStage(StageCluster).
		WithK(3)

	l.LogStage(ctx, StageCluster, time.Millisecond, nil)
	l.LogSweep(ctx, []cluster.ElbowPoint{{K: 1, Inertia: 2, Iterations: 1, Converged: true}}, cluster.MaxSecondDifference{}, 1)

	var w model.Warnings
	w.Add(model.WarningDuplicate, "C1", "duplicate customer dropped")
	w.Add(model.WarningDuplicate, "C2", "duplicate customer dropped")
	l.LogWarnings(ctx, w)

	out := buf.String()
	assert.Contains(t, out, "run_id=r1")
	assert.Contains(t, out, "stage=cluster")
	assert.Contains(t, out, `msg="stage completed"`)
	assert.Contains(t, out, "selector=second-difference")
	assert.Contains(t, out, "kind=Duplicate count=2")
	assert.Equal(t, 2, strings.Count(out, `msg=warning`))
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError+100))
	l.LogRun(context.Background(), nil, time.Second, assert.AnError)
}

func TestMetricsCollectors(t *testing.T) {
	var _ MetricsCollector = NoopMetricsCollector{}

	m := &BasicMetricsCollector{}
	m.RecordStage(StageJoin, 2*time.Millisecond, nil)
	m.RecordStage(StageJoin, 4*time.Millisecond, assert.AnError)
	m.RecordStage(Stage(99), time.Second, nil)
	m.RecordRun(10, time.Second, nil)

	s := m.GetStats()
	assert.Equal(t, StageStats{Count: 2, Errors: 1, AvgNanos: int64(3 * time.Millisecond)}, s.Stages[StageJoin])
	assert.NotContains(t, s.Stages, StageProfile)
	assert.Equal(t, int64(time.Second), s.RunAvgNanos)
}
