package classifier

import (
	"github.com/tidwall/gjson"

	"github.com/crimson-sun/fareline/internal/engine/fields"
	"github.com/crimson-sun/fareline/internal/model"
)

// DefaultRules returns the rule chain for every known archive generation.
// Order matters: grouped batches are the only array-shaped entries, the rich
// dashboard is a superset of the summary shapes, and the legacy split must
// come after the richer summary variants.
func DefaultRules() []Rule {
	return []Rule{
		{Tag: model.TagGroupedBatch, Match: IsGroupedBatch},
		{Tag: model.TagRichDashboard, Match: IsRichDashboard},
		{Tag: model.TagRoundTripSummary, Match: IsRoundTripSummary},
		{Tag: model.TagFlatFareTable, Match: IsFlatFareTable},
		{Tag: model.TagLegacyModernPrice, Match: IsLegacyModernPrice},
		{Tag: model.TagLegacySummary, Match: IsLegacySummary},
		{Tag: model.TagGenericResults, Match: IsGenericResults},
	}
}

// IsGroupedBatch matches a non-empty array whose every element is a sub-block
// with its own meta object and results array.
func IsGroupedBatch(doc gjson.Result) bool {
	if !doc.IsArray() {
		return false
	}
	blocks := doc.Array()
	if len(blocks) == 0 {
		return false
	}
	for _, b := range blocks {
		if _, ok := fields.Object(b, fields.Meta); !ok {
			return false
		}
		if _, ok := fields.Array(b, fields.Results); !ok {
			return false
		}
	}
	return true
}

// IsRichDashboard matches a meta with a title plus a timezone hint or a
// details bag.
func IsRichDashboard(doc gjson.Result) bool {
	meta, ok := fields.Object(doc, fields.Meta)
	if !ok || !fields.Has(meta, fields.Title) {
		return false
	}
	if fields.Has(meta, fields.Timezone) {
		return true
	}
	if _, ok := fields.Object(meta, fields.Details); ok {
		return true
	}
	_, ok = fields.Object(doc, fields.Details)
	return ok
}

// IsRoundTripSummary matches summary items carrying both outbound and return legs.
func IsRoundTripSummary(doc gjson.Result) bool {
	return summaryItemHas(doc, func(item gjson.Result) bool {
		return fields.Has(item, fields.Outbound) && fields.Has(item, fields.Return)
	})
}

// IsFlatFareTable matches a meta with origin or currency hints and summary
// items keyed by destination and carrier.
func IsFlatFareTable(doc gjson.Result) bool {
	meta, ok := fields.Object(doc, fields.Meta)
	if !ok || !(fields.Has(meta, fields.Origin) || fields.Has(meta, fields.Currency)) {
		return false
	}
	return summaryItemHas(doc, func(item gjson.Result) bool {
		return fields.Has(item, fields.Destination) && fields.Has(item, fields.Carrier)
	})
}

// IsLegacyModernPrice matches the legacy route summary once thresholds and
// lowest prices were tracked per item.
func IsLegacyModernPrice(doc gjson.Result) bool {
	return isLegacy(doc) && summaryItemHas(doc, func(item gjson.Result) bool {
		return fields.Has(item, fields.ModernPrice)
	})
}

// IsLegacySummary matches meta.generated plus summary items with a route.
func IsLegacySummary(doc gjson.Result) bool {
	return isLegacy(doc)
}

// IsGenericResults matches a meta object and a results array with no summary.
func IsGenericResults(doc gjson.Result) bool {
	if _, ok := fields.Object(doc, fields.Meta); !ok {
		return false
	}
	if fields.Has(doc, fields.Summary) {
		return false
	}
	_, ok := fields.Array(doc, fields.Results)
	return ok
}

func isLegacy(doc gjson.Result) bool {
	meta, ok := fields.Object(doc, fields.Meta)
	if !ok || !fields.Has(meta, fields.Generated) {
		return false
	}
	return summaryItemHas(doc, func(item gjson.Result) bool {
		return fields.Has(item, fields.Route)
	})
}

// summaryItemHas reports whether doc has a meta object and a summary array
// with at least one object item satisfying pred.
func summaryItemHas(doc gjson.Result, pred func(gjson.Result) bool) bool {
	if _, ok := fields.Object(doc, fields.Meta); !ok {
		return false
	}
	summary, ok := fields.Array(doc, fields.Summary)
	if !ok {
		return false
	}
	for _, item := range summary.Array() {
		if item.IsObject() && pred(item) {
			return true
		}
	}
	return false
}
