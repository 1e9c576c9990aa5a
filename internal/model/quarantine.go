package model

// Reasons recorded on quarantined entries.
const (
	ReasonUnknownVariant = "unknown_variant"
)

// QuarantinedEntry holds an entry that could not be normalized, verbatim.
type QuarantinedEntry struct {
	Index  int      `json:"index"`
	Sample RawEntry `json:"sample"`
	Reason string   `json:"reason,omitempty"`
}
