package model

import "encoding/json"

// RawEntry is one undiscriminated element of the archive's top-level array,
// kept as the verbatim bytes it was read with.
type RawEntry = json.RawMessage

// IndexedEntry pairs a raw entry with its position in the archive.
type IndexedEntry struct {
	Index int
	Raw   RawEntry
}

// Index wraps a slice of raw entries with their archive positions.
func Index(entries []RawEntry) []IndexedEntry {
	out := make([]IndexedEntry, len(entries))
	for i, e := range entries {
		out[i] = IndexedEntry{Index: i, Raw: e}
	}
	return out
}
