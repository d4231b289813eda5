// Package config holds the YAML configuration of the cohort command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/cohort/cluster"
	"github.com/hupe1980/cohort/codec"
	"github.com/hupe1980/cohort/export"
	"github.com/hupe1980/cohort/feature"
	"github.com/hupe1980/cohort/internal/compress"
	"github.com/hupe1980/cohort/resource"
	"github.com/hupe1980/cohort/similarity"
	"github.com/hupe1980/cohort/source"
	"github.com/hupe1980/cohort/source/postgres"
)

// DateLayout is the format of AsOf.
const DateLayout = "2006-01-02"

// Store types.
const (
	StoreLocal    = "local"
	StoreS3       = "s3"
	StoreMinIO    = "minio"
	StorePostgres = "postgres"
)

// ErrMissingAsOf is returned when no reference date is configured.
var ErrMissingAsOf = errors.New("config: features.as_of is required")

// S3Config locates an S3 bucket. Credentials come from the default AWS
// chain.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// MinIOConfig locates a MinIO bucket. Credentials are read from the named
// environment variables.
type MinIOConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Secure       bool   `yaml:"secure"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
}

// PostgresConfig locates the input tables. The DSN is read from DSNEnv.
type PostgresConfig struct {
	DSNEnv string          `yaml:"dsn_env"`
	Tables postgres.Tables `yaml:"tables"`
}

// StoreConfig selects a blob store.
type StoreConfig struct {
	Type  string       `yaml:"type"`
	Path  string       `yaml:"path"`
	S3    *S3Config    `yaml:"s3,omitempty"`
	MinIO *MinIOConfig `yaml:"minio,omitempty"`
}

// InputConfig selects where the snapshot is read from.
type InputConfig struct {
	StoreConfig `yaml:",inline"`
	Files       source.Files    `yaml:"files"`
	Postgres    *PostgresConfig `yaml:"postgres,omitempty"`
}

// OutputConfig selects where results are written.
type OutputConfig struct {
	StoreConfig `yaml:",inline"`
	Prefix      string `yaml:"prefix"`
	Compression string `yaml:"compression"`
	Precision   int    `yaml:"precision"`
	Codec       string `yaml:"codec"`
}

// CleanConfig configures input cleaning.
type CleanConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TotalValue string `yaml:"total_value"`
}

// FeatureConfig configures the feature builder.
type FeatureConfig struct {
	AsOf            string  `yaml:"as_of"`
	RecencySentinel float64 `yaml:"recency_sentinel"`
	CategoryMix     string  `yaml:"category_mix"`
	ExcludeInactive bool    `yaml:"exclude_inactive"`
}

// ClusterConfig configures the sweep and the k selection.
type ClusterConfig struct {
	KMax     int    `yaml:"k_max"`
	Selector string `yaml:"selector"`
	// K is used by the "fixed" selector.
	K       int    `yaml:"k"`
	MaxIter int    `yaml:"max_iter"`
	Seed    int64  `yaml:"seed"`
	Init    string `yaml:"init"`
}

// LookalikeConfig configures lookalike generation.
type LookalikeConfig struct {
	Enabled   bool `yaml:"enabled"`
	Subset    int  `yaml:"subset"`
	TopN      int  `yaml:"top_n"`
	BatchRows int  `yaml:"batch_rows"`
}

// ResourceConfig bounds memory, workers and input throughput.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	MaxWorkers         int64 `yaml:"max_workers"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`
}

// LogConfig selects the log level and format ("text" or "json").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration.
type Config struct {
	Input      InputConfig     `yaml:"input"`
	Output     OutputConfig    `yaml:"output"`
	Clean      CleanConfig     `yaml:"clean"`
	Features   FeatureConfig   `yaml:"features"`
	Cluster    ClusterConfig   `yaml:"cluster"`
	Lookalikes LookalikeConfig `yaml:"lookalikes"`
	Resources  ResourceConfig  `yaml:"resources"`
	Log        LogConfig       `yaml:"log"`
}

// Default returns the configuration of the reference analysis: local input
// in the working directory, output to ./out, k swept up to 10.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			StoreConfig: StoreConfig{Type: StoreLocal, Path: "."},
			Files:       source.DefaultFiles(),
		},
		Output: OutputConfig{
			StoreConfig: StoreConfig{Type: StoreLocal, Path: "out"},
			Compression: "none",
			Precision:   export.DefaultPrecision,
			Codec:       codec.Default.Name(),
		},
		Clean: CleanConfig{Enabled: true, TotalValue: source.FillMean.String()},
		Features: FeatureConfig{
			RecencySentinel: feature.DefaultRecencySentinel,
			CategoryMix:     feature.CategoryMixNone.String(),
		},
		Cluster: ClusterConfig{
			KMax:     10,
			Selector: cluster.MaxSecondDifference{}.String(),
			K:        4,
			MaxIter:  cluster.DefaultMaxIter,
			Seed:     cluster.DefaultSeed,
			Init:     cluster.InitKMeansPlusPlus.String(),
		},
		Lookalikes: LookalikeConfig{
			Enabled: true,
			Subset:  similarity.DefaultSubset,
			TopN:    similarity.DefaultTopN,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a config from path. Keys missing from the file keep their
// defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./cohort.yaml first, then ~/.config/cohort/config.yaml.
// If neither exists, it writes the defaults to the user path and returns
// them.
func LoadDefault() (*Config, string, error) {
	cwdPath := "cohort.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cohort", "config.yaml"), nil
}

// applyDefaults fills zero values that an explicit empty key may leave.
func applyDefaults(cfg *Config) {
	if cfg.Input.Type == "" {
		cfg.Input.Type = StoreLocal
	}
	if cfg.Output.Type == "" {
		cfg.Output.Type = StoreLocal
	}
	if cfg.Cluster.KMax == 0 {
		cfg.Cluster.KMax = 10
	}
	if cfg.Cluster.MaxIter == 0 {
		cfg.Cluster.MaxIter = cluster.DefaultMaxIter
	}
	if cfg.Features.RecencySentinel == 0 {
		cfg.Features.RecencySentinel = feature.DefaultRecencySentinel
	}
	if cfg.Lookalikes.TopN == 0 {
		cfg.Lookalikes.TopN = similarity.DefaultTopN
	}
	if cfg.Input.MinIO != nil {
		minioDefaults(cfg.Input.MinIO)
	}
	if cfg.Output.MinIO != nil {
		minioDefaults(cfg.Output.MinIO)
	}
	if cfg.Input.Postgres != nil {
		if cfg.Input.Postgres.DSNEnv == "" {
			cfg.Input.Postgres.DSNEnv = "COHORT_PG_DSN"
		}
		if cfg.Input.Postgres.Tables == (postgres.Tables{}) {
			cfg.Input.Postgres.Tables = postgres.DefaultTables()
		}
	}
}

func minioDefaults(m *MinIOConfig) {
	if m.AccessKeyEnv == "" {
		m.AccessKeyEnv = "MINIO_ACCESS_KEY"
	}
	if m.SecretKeyEnv == "" {
		m.SecretKeyEnv = "MINIO_SECRET_KEY"
	}
}

// Validate checks store types and every named policy.
func (c *Config) Validate() error {
	switch c.Input.Type {
	case StoreLocal, StoreS3, StoreMinIO, StorePostgres:
	default:
		return fmt.Errorf("config: unknown input type %q", c.Input.Type)
	}
	switch c.Output.Type {
	case StoreLocal, StoreS3, StoreMinIO:
	default:
		return fmt.Errorf("config: unknown output type %q", c.Output.Type)
	}
	if err := c.Input.StoreConfig.validate("input"); err != nil {
		return err
	}
	if err := c.Output.StoreConfig.validate("output"); err != nil {
		return err
	}
	if c.Input.Type == StorePostgres && c.Input.Postgres == nil {
		return errors.New("config: input.postgres is required for type postgres")
	}

	if _, err := c.FeatureOptions(); err != nil {
		return err
	}
	if _, err := c.ClusterConfig(); err != nil {
		return err
	}
	if _, err := c.Selector(); err != nil {
		return err
	}
	if _, err := c.CleanPolicy(); err != nil {
		return err
	}
	if _, err := c.ExportOptions(); err != nil {
		return err
	}
	if c.Cluster.KMax < 1 {
		return fmt.Errorf("config: cluster.k_max: %w", cluster.ErrInvalidK)
	}
	return nil
}

func (s StoreConfig) validate(name string) error {
	switch s.Type {
	case StoreS3:
		if s.S3 == nil || s.S3.Bucket == "" {
			return fmt.Errorf("config: %s.s3.bucket is required", name)
		}
	case StoreMinIO:
		if s.MinIO == nil || s.MinIO.Bucket == "" || s.MinIO.Endpoint == "" {
			return fmt.Errorf("config: %s.minio.endpoint and bucket are required", name)
		}
	}
	return nil
}

// FeatureOptions converts the feature section.
func (c *Config) FeatureOptions() (feature.Options, error) {
	if c.Features.AsOf == "" {
		return feature.Options{}, ErrMissingAsOf
	}
	asOf, err := time.Parse(DateLayout, c.Features.AsOf)
	if err != nil {
		return feature.Options{}, fmt.Errorf("config: features.as_of: %w", err)
	}
	mix, ok := feature.ParseCategoryMix(c.Features.CategoryMix)
	if !ok {
		return feature.Options{}, fmt.Errorf("config: unknown category_mix %q", c.Features.CategoryMix)
	}

	opts := feature.DefaultOptions(asOf)
	opts.RecencySentinel = c.Features.RecencySentinel
	opts.CategoryMix = mix
	opts.ExcludeInactive = c.Features.ExcludeInactive
	return opts, nil
}

// ClusterConfig converts the cluster section. K is left 0; the sweep sets
// it per run.
func (c *Config) ClusterConfig() (cluster.Config, error) {
	method, ok := cluster.ParseInitMethod(c.Cluster.Init)
	if !ok {
		return cluster.Config{}, fmt.Errorf("config: unknown init %q", c.Cluster.Init)
	}
	cfg := cluster.DefaultConfig(0)
	cfg.MaxIter = c.Cluster.MaxIter
	cfg.Seed = c.Cluster.Seed
	cfg.Init = method
	cfg.Workers = int(c.Resources.MaxWorkers)
	return cfg, nil
}

// Selector returns the configured k selection policy.
func (c *Config) Selector() (cluster.Selector, error) {
	s, err := cluster.ParseSelector(c.Cluster.Selector, c.Cluster.K)
	if err != nil {
		return nil, fmt.Errorf("config: cluster.selector: %w", err)
	}
	return s, nil
}

// CleanPolicy converts the clean section. A disabled section yields the
// zero policy, which changes nothing except filling no values.
func (c *Config) CleanPolicy() (source.CleanPolicy, error) {
	fill, err := source.ParseFill(c.Clean.TotalValue)
	if err != nil {
		return source.CleanPolicy{}, fmt.Errorf("config: clean.total_value: %w", err)
	}
	if !c.Clean.Enabled {
		return source.CleanPolicy{TotalValue: source.FillNone}, nil
	}
	p := source.DefaultCleanPolicy()
	p.TotalValue = fill
	return p, nil
}

// ResourceConfig converts the resources section.
func (c *Config) ResourceConfig() resource.Config {
	return resource.Config{
		MemoryLimitBytes:   c.Resources.MemoryLimitBytes,
		MaxWorkers:         c.Resources.MaxWorkers,
		IOLimitBytesPerSec: c.Resources.IOLimitBytesPerSec,
	}
}

// ExportOptions converts the output section.
func (c *Config) ExportOptions() (export.Options, error) {
	t, err := compress.ParseType(c.Output.Compression)
	if err != nil {
		return export.Options{}, fmt.Errorf("config: output.compression: %w", err)
	}
	cd, ok := codec.ByName(c.Output.Codec)
	if !ok {
		return export.Options{}, fmt.Errorf("config: unknown output.codec %q", c.Output.Codec)
	}
	return export.Options{
		Prefix:      c.Output.Prefix,
		Compression: t,
		Precision:   c.Output.Precision,
		Codec:       cd,
	}, nil
}
