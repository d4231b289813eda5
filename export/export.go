package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cohort/blobstore"
	"github.com/hupe1980/cohort/cluster"
	"github.com/hupe1980/cohort/codec"
	"github.com/hupe1980/cohort/internal/compress"
	"github.com/hupe1980/cohort/model"
	"github.com/hupe1980/cohort/normalize"
	"github.com/hupe1980/cohort/similarity"
)

// Output names, before the compression suffix.
const (
	ProfileFile       = "cluster_profile.csv"
	AssignmentsFile   = "cluster_assignments.csv"
	ElbowFile         = "elbow.csv"
	LookalikesFile    = "lookalikes.csv"
	WarningsFile      = "warnings.csv"
	NormalizationFile = "normalization.json"
	ModelFile         = "cluster_model.json"
)

// ErrMissingModel is returned by Write when Artifacts carries no model.
var ErrMissingModel = errors.New("export: missing cluster model")

// Artifacts is everything a run exports.
type Artifacts struct {
	RunID string
	// Schema names the raw feature columns.
	Schema model.Schema
	// IDs is the row order of Model.Assignments.
	IDs        []model.CustomerID
	Stats      normalize.Stats
	Selector   string
	Model      *cluster.Model
	Elbow      []cluster.ElbowPoint
	Profile    []cluster.ClusterProfile
	Lookalikes []similarity.Lookalike
	Warnings   model.Warnings
}

// ModelDocument is the content of cluster_model.json.
type ModelDocument struct {
	RunID    string               `json:"run_id"`
	Selector string               `json:"selector"`
	Schema   model.Schema         `json:"schema"`
	Elbow    []cluster.ElbowPoint `json:"elbow"`
	Model    *cluster.Model       `json:"model"`
}

// Options configures a Writer.
type Options struct {
	// Prefix is prepended to every output name ("run-1/").
	Prefix string
	// Compression is applied to every output; its suffix is appended to
	// the name.
	Compression compress.Type
	// Precision is the number of decimals of similarity scores.
	Precision int
	// Codec encodes the JSON documents. Nil uses codec.Default.
	Codec codec.Codec
}

// DefaultOptions returns uncompressed output with 4-decimal scores.
func DefaultOptions() Options {
	return Options{Precision: DefaultPrecision, Codec: codec.Default}
}

// Writer writes Artifacts to a Store.
type Writer struct {
	store blobstore.Store
	opts  Options
}

// NewWriter returns a Writer for store.
func NewWriter(store blobstore.Store, opts Options) *Writer {
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	return &Writer{store: store, opts: opts}
}

// Name returns the full blob name of the output file.
func (w *Writer) Name(file string) string {
	name := file + w.opts.Compression.Extension()
	if w.opts.Prefix != "" {
		name = path.Join(w.opts.Prefix, name)
	}
	return name
}

// Write writes every output and returns the blob names in a fixed order.
// Tables without content (no lookalikes requested) are still written with
// their header.
func (w *Writer) Write(ctx context.Context, a *Artifacts) ([]string, error) {
	if a.Model == nil {
		return nil, ErrMissingModel
	}

	outputs := []struct {
		file   string
		encode func(io.Writer) error
	}{
		{ProfileFile, func(b io.Writer) error { return WriteProfile(b, a.Schema, a.Profile) }},
		{AssignmentsFile, func(b io.Writer) error { return WriteAssignments(b, a.IDs, a.Model) }},
		{ElbowFile, func(b io.Writer) error { return WriteElbow(b, a.Elbow) }},
		{LookalikesFile, func(b io.Writer) error { return WriteLookalikes(b, a.Lookalikes, w.opts.Precision) }},
		{WarningsFile, func(b io.Writer) error { return WriteWarnings(b, a.Warnings) }},
		{NormalizationFile, func(b io.Writer) error { return w.encodeJSON(b, a.Stats) }},
		{ModelFile, func(b io.Writer) error {
			return w.encodeJSON(b, ModelDocument{
				RunID:    a.RunID,
				Selector: a.Selector,
				Schema:   a.Schema,
				Elbow:    a.Elbow,
				Model:    a.Model,
			})
		}},
	}

	names := make([]string, len(outputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, o := range outputs {
		names[i] = w.Name(o.file)
		g.Go(func() error {
			var buf bytes.Buffer
			if err := o.encode(&buf); err != nil {
				return fmt.Errorf("encode %s: %w", o.file, err)
			}
			return w.put(gctx, names[i], buf.Bytes())
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

func (w *Writer) encodeJSON(b io.Writer, v any) error {
	data, err := codec.MarshalPretty(w.opts.Codec, v)
	if err != nil {
		return err
	}
	_, err = b.Write(append(data, '\n'))
	return err
}

func (w *Writer) put(ctx context.Context, name string, data []byte) error {
	out, err := compress.Compress(data, compress.FromName(name))
	if err != nil {
		return fmt.Errorf("compress %s: %w", name, err)
	}
	if err := w.store.Put(ctx, name, out); err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}

// ReadModel decodes a cluster_model.json document written by Write.
func ReadModel(ctx context.Context, store blobstore.Store, name string, c codec.Codec) (*ModelDocument, error) {
	var doc ModelDocument
	if err := readJSON(ctx, store, name, c, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadStats decodes a normalization.json document written by Write.
func ReadStats(ctx context.Context, store blobstore.Store, name string, c codec.Codec) (normalize.Stats, error) {
	var stats normalize.Stats
	err := readJSON(ctx, store, name, c, &stats)
	return stats, err
}

func readJSON(ctx context.Context, store blobstore.Store, name string, c codec.Codec, v any) error {
	if c == nil {
		c = codec.Default
	}
	raw, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	data, err := compress.Decompress(raw, compress.FromName(name))
	if err != nil {
		return fmt.Errorf("decompress %s: %w", name, err)
	}
	if err := c.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
