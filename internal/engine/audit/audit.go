// Package audit tallies a normalization run into an AuditSummary and renders
// it for operators.
package audit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"github.com/crimson-sun/fareline/internal/engine/taxonomy"
	"github.com/crimson-sun/fareline/internal/model"
)

// Input is everything a run knows when it closes.
type Input struct {
	RunID     string
	Generated time.Time
	// Tags holds the classification of every raw entry, by archive index.
	Tags              []model.VariantTag
	Records           []model.CanonicalRecord
	Quarantined       int
	Repaired          int
	DuplicatesRemoved int
}

// Reporter builds audit summaries against a variant catalog.
type Reporter struct {
	tax *taxonomy.Taxonomy
}

// New creates a Reporter over tax.
func New(tax *taxonomy.Taxonomy) *Reporter {
	return &Reporter{tax: tax}
}

// Summarize tallies in. Every catalog tag and unknown appear in CountsByTag,
// zero-filled. Inputs are read, never modified.
func (r *Reporter) Summarize(in Input) model.AuditSummary {
	counts := make(map[model.VariantTag]int, len(in.Tags))
	for _, tag := range r.tax.Tags() {
		counts[tag] = 0
	}
	for _, tag := range in.Tags {
		counts[tag]++
	}
	return model.AuditSummary{
		Meta: model.AuditMeta{
			Generated:         in.Generated.UTC(),
			RunID:             in.RunID,
			TotalRaw:          len(in.Tags),
			TotalNormalized:   len(in.Records),
			TotalQuarantined:  in.Quarantined,
			TotalRepaired:     in.Repaired,
			DuplicatesRemoved: in.DuplicatesRemoved,
			CoercionFailures:  CoercionFailures(in.Records),
		},
		CountsByTag: counts,
	}
}

// CoercionFailures counts field coercion failures recorded across records.
func CoercionFailures(records []model.CanonicalRecord) int {
	n := 0
	for _, rec := range records {
		switch f := rec.Extra[model.ExtraCoercionFailures].(type) {
		case []string:
			n += len(f)
		case []any:
			n += len(f)
		}
	}
	return n
}

// Breakdown renders s as a table: one row per tag in generation order, then
// tags outside the catalog, then run totals.
func (r *Reporter) Breakdown(s model.AuditSummary) (string, error) {
	data := pterm.TableData{{"variant", "entries"}}
	listed := make(map[model.VariantTag]bool)
	for _, tag := range r.tax.Tags() {
		listed[tag] = true
		data = append(data, []string{string(tag), strconv.Itoa(s.CountsByTag[tag])})
	}
	var extra []string
	for tag := range s.CountsByTag {
		if !listed[tag] {
			extra = append(extra, string(tag))
		}
	}
	sort.Strings(extra)
	for _, tag := range extra {
		data = append(data, []string{tag, strconv.Itoa(s.CountsByTag[model.VariantTag(tag)])})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Wrap(err, "audit: render table")
	}

	var b strings.Builder
	b.WriteString(table)
	b.WriteString("\n")
	fmt.Fprintf(&b, "raw entries:        %d\n", s.Meta.TotalRaw)
	fmt.Fprintf(&b, "canonical records:  %d\n", s.Meta.TotalNormalized)
	fmt.Fprintf(&b, "quarantined:        %d\n", s.Meta.TotalQuarantined)
	fmt.Fprintf(&b, "repaired records:   %d\n", s.Meta.TotalRepaired)
	fmt.Fprintf(&b, "duplicates removed: %d\n", s.Meta.DuplicatesRemoved)
	fmt.Fprintf(&b, "coercion failures:  %d\n", s.Meta.CoercionFailures)
	return b.String(), nil
}
