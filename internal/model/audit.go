package model

import "time"

// AuditMeta carries run-level totals.
type AuditMeta struct {
	Generated         time.Time `json:"generated"`
	RunID             string    `json:"run_id,omitempty"`
	TotalRaw          int       `json:"total_raw"`
	TotalNormalized   int       `json:"total_normalized"`
	TotalQuarantined  int       `json:"total_quarantined"`
	TotalRepaired     int       `json:"total_repaired"`
	DuplicatesRemoved int       `json:"duplicates_removed"`
	CoercionFailures  int       `json:"coercion_failures"`
}

// AuditSummary is regenerated wholesale on every run.
type AuditSummary struct {
	Meta        AuditMeta          `json:"meta"`
	CountsByTag map[VariantTag]int `json:"counts_by_tag"`
}
