package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/fareline/internal/engine/canonical"
	"github.com/crimson-sun/fareline/internal/engine/classifier"
	"github.com/crimson-sun/fareline/internal/model"
)

// Outcome is the result of processing one archive entry. Err is set when a
// classified entry failed to canonicalize; Records is then empty.
type Outcome struct {
	Index   int
	Tag     model.VariantTag
	Records []model.CanonicalRecord
	Err     error
}

// Quarantined reports whether the entry must go to quarantine.
func (o Outcome) Quarantined() bool {
	return o.Tag == model.TagUnknown || o.Err != nil
}

// Engine orchestrates the classify → canonicalize step for each entry.
type Engine struct {
	classifier    *classifier.Classifier
	canonicalizer *canonical.Canonicalizer
}

// New creates an Engine with the provided components.
func New(cls *classifier.Classifier, can *canonical.Canonicalizer) *Engine {
	return &Engine{
		classifier:    cls,
		canonicalizer: can,
	}
}

// Process classifies and canonicalizes a single entry. It has no side effects.
func (e *Engine) Process(entry model.IndexedEntry) Outcome {
	out := Outcome{Index: entry.Index, Tag: e.classifier.Classify(entry.Raw)}
	if out.Tag == model.TagUnknown {
		return out
	}
	out.Records, out.Err = e.canonicalizer.Canonicalize(entry.Index, out.Tag, entry.Raw)
	return out
}

// ProcessBatch processes entries and returns outcomes in input order. With
// workers > 1 entries are processed concurrently; the result is identical to
// the sequential path. Only context cancellation produces an error.
func (e *Engine) ProcessBatch(ctx context.Context, entries []model.IndexedEntry, workers int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(entries))
	if workers <= 1 {
		for i, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = e.Process(entry)
		}
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.Process(entry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
