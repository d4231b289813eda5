// Command cohort segments customers from a transaction snapshot and writes
// cluster profiles, assignments, the elbow series and lookalikes.
//
// Usage:
//
//	cohort [-config cohort.yaml] [-as-of 2025-01-01] [-k 4] [-env .env]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hupe1980/cohort"
	"github.com/hupe1980/cohort/config"
	"github.com/hupe1980/cohort/export"
	"github.com/hupe1980/cohort/resource"
	"github.com/hupe1980/cohort/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "cohort: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cohort", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file (optional; uses ./cohort.yaml or ~/.config/cohort/config.yaml if not provided)")
	asOf := fs.String("as-of", "", "Reference date YYYY-MM-DD (overrides features.as_of)")
	k := fs.Int("k", 0, "Use a fixed number of clusters instead of the elbow selection")
	envPath := fs.String("env", ".env", "dotenv file with credentials (ignored if missing)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", *envPath, err)
	}

	var (
		cfg *config.Config
		err error
	)
	if *cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(*cfgPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *asOf != "" {
		cfg.Features.AsOf = *asOf
	}
	if *k > 0 {
		cfg.Cluster.Selector = "fixed"
		cfg.Cluster.K = *k
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	rc := resource.NewController(cfg.ResourceConfig())

	reader, closeReader, err := openReader(ctx, cfg, rc)
	if err != nil {
		return err
	}
	defer closeReader()

	ds, err := reader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.InfoContext(ctx, "dataset loaded", "summary", source.Summarize(ds))

	policy, _ := cfg.CleanPolicy()
	ds, cleanWarnings := source.Clean(ds, policy)
	if cleanWarnings.Len() > 0 {
		logger.InfoContext(ctx, "dataset cleaned", "changes", cleanWarnings.Len())
	}

	pipeline, err := newPipeline(cfg, logger, rc)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(ctx, ds)
	if err != nil {
		return err
	}

	out, err := openStore(ctx, cfg.Output.StoreConfig)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	exportOpts, _ := cfg.ExportOptions()

	artifacts := res.Artifacts()
	cleanWarnings.Merge(artifacts.Warnings)
	artifacts.Warnings = cleanWarnings

	names, err := export.NewWriter(out, exportOpts).Write(ctx, artifacts)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.InfoContext(ctx, "results written",
		"output", cfg.Output.Type,
		"files", names,
		"peak_memory_bytes", rc.PeakMemoryUsage(),
	)
	return nil
}

func newLogger(c config.LogConfig) (*cohort.Logger, error) {
	level, err := cohort.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	switch c.Format {
	case "json":
		return cohort.NewJSONLogger(level), nil
	case "text", "":
		return cohort.NewTextLogger(level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
}

func newPipeline(cfg *config.Config, logger *cohort.Logger, rc *resource.Controller) (*cohort.Pipeline, error) {
	featureOpts, err := cfg.FeatureOptions()
	if err != nil {
		return nil, err
	}
	clusterCfg, err := cfg.ClusterConfig()
	if err != nil {
		return nil, err
	}
	selector, err := cfg.Selector()
	if err != nil {
		return nil, err
	}

	opts := []cohort.Option{
		cohort.WithFeatureOptions(featureOpts),
		cohort.WithClusterConfig(clusterCfg),
		cohort.WithKMax(cfg.Cluster.KMax),
		cohort.WithSelector(selector),
		cohort.WithResourceController(rc),
		cohort.WithLogger(logger),
		cohort.WithSimilarityBatchRows(cfg.Lookalikes.BatchRows),
	}
	if cfg.Lookalikes.Enabled {
		opts = append(opts, cohort.WithLookalikes(cfg.Lookalikes.Subset, cfg.Lookalikes.TopN))
	} else {
		opts = append(opts, cohort.WithoutLookalikes())
	}
	return cohort.New(opts...)
}
