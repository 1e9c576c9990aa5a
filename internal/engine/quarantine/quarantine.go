// Package quarantine holds entries that could not be normalized, keeping
// them verbatim so nothing is dropped.
package quarantine

import (
	"sort"

	"github.com/crimson-sun/fareline/internal/model"
)

// Collector accumulates quarantined entries for one run.
type Collector struct {
	entries []model.QuarantinedEntry
	seen    map[int]bool
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[int]bool)}
}

// Add quarantines the entry at index. Adding an index twice keeps the first
// reason, so every entry appears exactly once.
func (c *Collector) Add(index int, sample model.RawEntry, reason string) {
	if c.seen[index] {
		return
	}
	c.seen[index] = true
	c.entries = append(c.entries, model.QuarantinedEntry{
		Index:  index,
		Sample: sample,
		Reason: reason,
	})
}

// Len returns the number of quarantined entries.
func (c *Collector) Len() int {
	return len(c.entries)
}

// Snapshot returns the quarantined entries ordered by index. The result is
// never nil, so it serializes as an empty JSON array.
func (c *Collector) Snapshot() []model.QuarantinedEntry {
	out := make([]model.QuarantinedEntry, len(c.entries))
	copy(out, c.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
