package cohort

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/cohort/cluster"
	"github.com/hupe1980/cohort/model"
)

// Logger wraps slog.Logger with pipeline-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// ParseLevel parses "debug", "info", "warn" or "error" (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	return level, err
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithStage adds a stage field to the logger.
func (l *Logger) WithStage(stage Stage) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", stage.String()),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// LogStage logs the completion of a pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage Stage, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stage failed",
			"stage", stage.String(),
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "stage completed",
			"stage", stage.String(),
			"duration", duration,
		)
	}
}

// LogSweep logs the elbow series and the selected k.
func (l *Logger) LogSweep(ctx context.Context, elbow []cluster.ElbowPoint, selector cluster.Selector, chosen int) {
	for _, p := range elbow {
		l.DebugContext(ctx, "elbow point",
			"k", p.K,
			"inertia", p.Inertia,
			"iterations", p.Iterations,
			"converged", p.Converged,
		)
	}
	l.InfoContext(ctx, "k selected",
		"k", chosen,
		"selector", selector.String(),
		"k_max", len(elbow),
	)
}

// LogWarnings logs one summary line per warning kind. Individual warnings
// are logged at debug level.
func (l *Logger) LogWarnings(ctx context.Context, w model.Warnings) {
	if !l.Enabled(ctx, slog.LevelWarn) {
		return
	}
	counts := w.Counts()
	for _, kind := range w.Kinds() {
		l.WarnContext(ctx, "data quality warnings",
			"kind", kind.String(),
			"count", counts[kind],
		)
	}
	if l.Enabled(ctx, slog.LevelDebug) {
		for _, it := range w.Items() {
			l.DebugContext(ctx, "warning",
				"kind", it.Kind.String(),
				"subject", it.Subject,
				"detail", it.Detail,
			)
		}
	}
}

// LogRun logs the outcome of a run.
func (l *Logger) LogRun(ctx context.Context, res *Result, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"duration", duration,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"customers", len(res.IDs()),
		"features", len(res.Schema),
		"k", res.ChosenK,
		"inertia", res.Model.Inertia,
		"converged", res.Model.Converged,
		"lookalikes", len(res.Lookalikes),
		"warnings", res.Warnings.Len(),
		"duration", duration,
	)
}
