package model

// VariantTag is the structural classification label of a raw entry.
type VariantTag string

// Known variants, oldest schema generation first.
const (
	TagGroupedBatch      VariantTag = "grouped_batch"
	TagLegacySummary     VariantTag = "legacy_summary"
	TagLegacyModernPrice VariantTag = "legacy_modern_price"
	TagFlatFareTable     VariantTag = "flat_fare_table"
	TagRoundTripSummary  VariantTag = "round_trip_summary"
	TagGenericResults    VariantTag = "generic_results"
	TagRichDashboard     VariantTag = "rich_dashboard"
	TagUnknown           VariantTag = "unknown"
)

// KnownTags returns every known tag in generation order, excluding TagUnknown.
func KnownTags() []VariantTag {
	return []VariantTag{
		TagGroupedBatch,
		TagLegacySummary,
		TagLegacyModernPrice,
		TagFlatFareTable,
		TagRoundTripSummary,
		TagGenericResults,
		TagRichDashboard,
	}
}

// IsKnown reports whether t is one of the known variant tags.
func (t VariantTag) IsKnown() bool {
	for _, k := range KnownTags() {
		if t == k {
			return true
		}
	}
	return false
}

func (t VariantTag) String() string { return string(t) }
