package taxonomy

import "github.com/crimson-sun/fareline/internal/model"

// DefaultVariants returns the archive generations observed so far, oldest first.
func DefaultVariants() []Variant {
	return []Variant{
		{Tag: model.TagGroupedBatch, Desc: "Batch of sub-blocks, each with meta and a results list"},
		{Tag: model.TagLegacySummary, Desc: "meta.generado with a route summary"},
		{Tag: model.TagLegacyModernPrice, Desc: "Route summary with thresholds and lowest prices"},
		{Tag: model.TagFlatFareTable, Desc: "Origin/currency meta with a destination-by-carrier table"},
		{Tag: model.TagRoundTripSummary, Desc: "Summary items with outbound and return legs"},
		{Tag: model.TagGenericResults, Desc: "meta with a plain results list"},
		{Tag: model.TagRichDashboard, Desc: "Titled dashboard with timezone or details bag"},
	}
}

// Default returns the taxonomy built from DefaultVariants.
func Default() *Taxonomy {
	t, err := New(DefaultVariants())
	if err != nil {
		panic(err)
	}
	return t
}
