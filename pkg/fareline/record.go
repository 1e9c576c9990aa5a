package fareline

import (
	"encoding/json"
	"time"

	"github.com/crimson-sun/fareline/internal/model"
)

// Record is one normalized fare observation.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Record struct {
	Route       *string        `json:"route"`       // "ORIGIN → DEST" or "ORIGIN ⇄ DEST"
	Origin      *string        `json:"origin"`      // nil when not recoverable
	Destination *string        `json:"destination"` // nil when not recoverable
	Price       *float64       `json:"price"`       // finite or nil
	Timestamp   *time.Time     `json:"timestamp"`   // observation time, UTC
	Compliance  string         `json:"compliance"`  // meets, does_not_meet, unknown
	Threshold   *float64       `json:"threshold"`
	Source      *string        `json:"source"`
	Extra       map[string]any `json:"extra"` // variant, source_index, travel details
}

// Quarantined is an entry that could not be normalized, kept verbatim.
type Quarantined struct {
	Index  int             `json:"index"`
	Sample json.RawMessage `json:"sample"`
	Reason string          `json:"reason,omitempty"`
}

// Audit summarizes a run.
type Audit struct {
	Generated         time.Time      `json:"generated"`
	RunID             string         `json:"run_id"`
	TotalRaw          int            `json:"total_raw"`
	TotalNormalized   int            `json:"total_normalized"`
	TotalQuarantined  int            `json:"total_quarantined"`
	TotalRepaired     int            `json:"total_repaired"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	CoercionFailures  int            `json:"coercion_failures"`
	CountsByTag       map[string]int `json:"counts_by_tag"`
}

// Result holds everything one Normalize call produced.
type Result struct {
	Records     []Record
	Quarantined []Quarantined
	Audit       Audit
}

func recordFromCanonical(r model.CanonicalRecord) Record {
	return Record{
		Route:       r.Route,
		Origin:      r.Origin,
		Destination: r.Destination,
		Price:       r.Price,
		Timestamp:   r.Timestamp,
		Compliance:  string(r.Compliance),
		Threshold:   r.Threshold,
		Source:      r.Source,
		Extra:       r.Extra,
	}
}

func auditFromSummary(s model.AuditSummary) Audit {
	counts := make(map[string]int, len(s.CountsByTag))
	for tag, n := range s.CountsByTag {
		counts[string(tag)] = n
	}
	return Audit{
		Generated:         s.Meta.Generated,
		RunID:             s.Meta.RunID,
		TotalRaw:          s.Meta.TotalRaw,
		TotalNormalized:   s.Meta.TotalNormalized,
		TotalQuarantined:  s.Meta.TotalQuarantined,
		TotalRepaired:     s.Meta.TotalRepaired,
		DuplicatesRemoved: s.Meta.DuplicatesRemoved,
		CoercionFailures:  s.Meta.CoercionFailures,
		CountsByTag:       counts,
	}
}
