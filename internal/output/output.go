package output

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/crimson-sun/fareline/internal/model"
)

// ErrWrite marks a failure to persist artifacts. It is always fatal.
var ErrWrite = errors.New("output write failed")

// Artifacts are the three datasets a run produces. Each is a full
// replacement of the previous run's output.
type Artifacts struct {
	Canonical  []model.CanonicalRecord
	Quarantine []model.QuarantinedEntry
	Audit      model.AuditSummary
}

// Normalized returns a copy whose slices are non-nil, so empty datasets
// serialize as [] rather than null.
func (a Artifacts) Normalized() Artifacts {
	if a.Canonical == nil {
		a.Canonical = []model.CanonicalRecord{}
	}
	if a.Quarantine == nil {
		a.Quarantine = []model.QuarantinedEntry{}
	}
	return a
}

// Output defines the interface for artifact destinations.
type Output interface {
	// Commit persists all artifacts or, on error, none of them.
	Commit(ctx context.Context, a Artifacts) error
}
