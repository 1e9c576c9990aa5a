// Package pipeline runs one normalization pass over the archive: load,
// classify and canonicalize, quarantine, optional repair and dedupe, audit,
// then commit all three artifacts together.
package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crimson-sun/fareline/internal/archive"
	"github.com/crimson-sun/fareline/internal/engine"
	"github.com/crimson-sun/fareline/internal/engine/audit"
	"github.com/crimson-sun/fareline/internal/engine/canonical"
	"github.com/crimson-sun/fareline/internal/engine/dedup"
	"github.com/crimson-sun/fareline/internal/engine/quarantine"
	"github.com/crimson-sun/fareline/internal/model"
	"github.com/crimson-sun/fareline/internal/output"
)

var (
	// ErrArchiveRead marks a run that failed before processing; nothing
	// was written.
	ErrArchiveRead = archive.ErrRead
	// ErrOutputWrite marks a run whose artifacts could not be committed;
	// previous artifacts are untouched.
	ErrOutputWrite = output.ErrWrite
)

// Recorder receives the audit of every committed run.
type Recorder interface {
	Record(ctx context.Context, s model.AuditSummary) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDedupe enables the dedupe pass.
func WithDedupe(d *dedup.Deduplicator) Option {
	return func(p *Pipeline) { p.dedup = d }
}

// WithRepair enables the repair pass over quarantined entries, canonicalizing
// with opts.
func WithRepair(opts canonical.Options) Option {
	return func(p *Pipeline) {
		p.repair = true
		p.repairOpts = opts
	}
}

// WithWorkers sets how many entries are processed concurrently. Default: 1.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithHistory records each committed run to r. Recording failures are
// logged and never fail the run.
func WithHistory(r Recorder) Option {
	return func(p *Pipeline) { p.history = r }
}

// WithLogger sets the logger. Default: the zap global at Run time.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithClock overrides the audit generation time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline connects an archive source, the engine, the audit reporter and
// an output.
type Pipeline struct {
	source   archive.Source
	engine   *engine.Engine
	reporter *audit.Reporter
	output   output.Output

	dedup      *dedup.Deduplicator
	repair     bool
	repairOpts canonical.Options
	workers    int
	history    Recorder
	log        *zap.Logger
	now        func() time.Time
}

// New creates a Pipeline from the given components.
func New(src archive.Source, eng *engine.Engine, rep *audit.Reporter, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   src,
		engine:   eng,
		reporter: rep,
		output:   out,
		workers:  1,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes a committed run.
type Result struct {
	RunID     string
	Artifacts output.Artifacts
}

// Summary returns the run's audit.
func (r Result) Summary() model.AuditSummary {
	return r.Artifacts.Audit
}

// Run performs one full pass. Either all three artifacts are committed or
// none are: a read failure stops before processing, and a commit failure
// leaves the previous artifacts in place.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	log := p.log
	if log == nil {
		log = zap.L()
	}
	log = log.With(zap.String("run_id", runID))

	raws, err := p.source.Load(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "pipeline load")
	}
	entries := model.Index(raws)
	log.Info("archive loaded", zap.String("archive", p.source.Location()), zap.Int("entries", len(entries)))

	outcomes, err := p.engine.ProcessBatch(ctx, entries, p.workers)
	if err != nil {
		return Result{}, errors.Wrap(err, "pipeline process")
	}

	tags := make([]model.VariantTag, len(entries))
	collector := quarantine.NewCollector()
	var records []model.CanonicalRecord
	for _, o := range outcomes {
		tags[o.Index] = o.Tag
		if !o.Quarantined() {
			records = append(records, o.Records...)
			continue
		}
		reason := model.ReasonUnknownVariant
		if o.Err != nil {
			reason = o.Err.Error()
		}
		collector.Add(o.Index, entries[o.Index].Raw, reason)
		log.Debug("entry quarantined", zap.Int("index", o.Index), zap.Stringer("tag", o.Tag), zap.String("reason", reason))
	}
	quarantined := collector.Snapshot()

	var repaired []model.CanonicalRecord
	if p.repair && len(quarantined) > 0 {
		repaired = quarantine.Repair(quarantined, p.repairOpts)
		records = append(records, repaired...)
		log.Info("repair pass", zap.Int("quarantined", len(quarantined)), zap.Int("recovered_records", len(repaired)))
	}

	removed := 0
	if p.dedup != nil {
		before := len(records)
		records = p.dedup.DeduplicateBatch(records)
		removed = before - len(records)
	}

	summary := p.reporter.Summarize(audit.Input{
		RunID:             runID,
		Generated:         p.now(),
		Tags:              tags,
		Records:           records,
		Quarantined:       len(quarantined),
		Repaired:          len(repaired),
		DuplicatesRemoved: removed,
	})
	for tag, n := range summary.CountsByTag {
		log.Debug("variant count", zap.Stringer("tag", tag), zap.Int("count", n))
	}

	artifacts := output.Artifacts{
		Canonical:  records,
		Quarantine: quarantined,
		Audit:      summary,
	}.Normalized()
	if err := p.output.Commit(ctx, artifacts); err != nil {
		return Result{}, errors.Wrap(err, "pipeline commit")
	}
	log.Info("run committed",
		zap.Int("total_raw", summary.Meta.TotalRaw),
		zap.Int("total_normalized", summary.Meta.TotalNormalized),
		zap.Int("total_quarantined", summary.Meta.TotalQuarantined),
		zap.Int("duplicates_removed", removed),
	)

	if p.history != nil {
		if err := p.history.Record(ctx, summary); err != nil {
			log.Warn("history record failed", zap.Error(err))
		}
	}
	return Result{RunID: runID, Artifacts: artifacts}, nil
}
