package fareline

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/crimson-sun/fareline/internal/archive"
	"github.com/crimson-sun/fareline/internal/engine"
	"github.com/crimson-sun/fareline/internal/engine/audit"
	"github.com/crimson-sun/fareline/internal/engine/canonical"
	"github.com/crimson-sun/fareline/internal/engine/classifier"
	"github.com/crimson-sun/fareline/internal/engine/dedup"
	"github.com/crimson-sun/fareline/internal/engine/taxonomy"
	"github.com/crimson-sun/fareline/internal/model"
	"github.com/crimson-sun/fareline/internal/output"
	"github.com/crimson-sun/fareline/internal/pipeline"
)

// ErrArchiveRead is returned when the archive is not a JSON array.
var ErrArchiveRead = pipeline.ErrArchiveRead

// Fareline is a fare archive normalizer. Safe for concurrent use.
type Fareline struct {
	opts       options
	classifier *classifier.Classifier
	engine     *engine.Engine
	reporter   *audit.Reporter
	taxonomy   *taxonomy.Taxonomy
	canonOpts  canonical.Options
}

// New creates a Fareline instance.
func New(opts ...Option) (*Fareline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		return nil, errors.Newf("fareline: workers must be at least 1, got %d", o.workers)
	}

	tax := taxonomy.Default()
	cls := classifier.NewDefault()
	canonOpts := canonical.Options{LiveSnapshot: o.liveSnapshot, Now: o.now}

	return &Fareline{
		opts:       o,
		classifier: cls,
		engine:     engine.New(cls, canonical.New(canonOpts)),
		reporter:   audit.New(tax),
		taxonomy:   tax,
		canonOpts:  canonOpts,
	}, nil
}

// Classify returns the variant tag of a single archive entry, or Unknown.
func (f *Fareline) Classify(entry []byte) string {
	return string(f.classifier.Classify(model.RawEntry(entry)))
}

// Normalize runs a full pass over archive, a JSON array of entries. Nothing
// is written anywhere; the artifacts are returned.
func (f *Fareline) Normalize(ctx context.Context, archiveJSON []byte) (Result, error) {
	var out memoryOutput
	p := pipeline.New(
		archive.NewReaderSource(bytes.NewReader(archiveJSON), "archive"),
		f.engine, f.reporter, &out, f.pipelineOptions()...,
	)
	if _, err := p.Run(ctx); err != nil {
		return Result{}, errors.Wrap(err, "fareline")
	}

	res := Result{
		Records:     make([]Record, len(out.artifacts.Canonical)),
		Quarantined: make([]Quarantined, len(out.artifacts.Quarantine)),
		Audit:       auditFromSummary(out.artifacts.Audit),
	}
	for i, r := range out.artifacts.Canonical {
		res.Records[i] = recordFromCanonical(r)
	}
	for i, q := range out.artifacts.Quarantine {
		res.Quarantined[i] = Quarantined{Index: q.Index, Sample: q.Sample, Reason: q.Reason}
	}
	return res, nil
}

func (f *Fareline) pipelineOptions() []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithWorkers(f.opts.workers),
		pipeline.WithClock(f.opts.now),
		pipeline.WithLogger(zap.NewNop()),
	}
	if f.opts.dedupe {
		opts = append(opts, pipeline.WithDedupe(dedup.New(dedup.Config{})))
	}
	if f.opts.repair {
		opts = append(opts, pipeline.WithRepair(f.canonOpts))
	}
	return opts
}

// memoryOutput keeps the committed artifacts in memory.
type memoryOutput struct {
	artifacts output.Artifacts
}

func (m *memoryOutput) Commit(_ context.Context, a output.Artifacts) error {
	m.artifacts = a
	return nil
}
