package canonical

import (
	"time"
	_ "time/tzdata"

	"github.com/tidwall/gjson"

	"github.com/crimson-sun/fareline/internal/engine/fields"
	"github.com/crimson-sun/fareline/internal/model"
)

// DefaultMappers returns the dispatch table for every known variant.
func DefaultMappers() map[model.VariantTag]Mapper {
	return map[model.VariantTag]Mapper{
		model.TagGroupedBatch:      mapGroupedBatch,
		model.TagLegacySummary:     mapSummary,
		model.TagLegacyModernPrice: mapLegacyModernPrice,
		model.TagFlatFareTable:     mapSummary,
		model.TagRoundTripSummary:  mapRoundTrip,
		model.TagGenericResults:    mapGenericResults,
		model.TagRichDashboard:     mapRichDashboard,
	}
}

// mapGroupedBatch expands every result item of every sub-block.
func mapGroupedBatch(doc gjson.Result, e entry) ([]model.CanonicalRecord, error) {
	if !doc.IsArray() {
		return nil, malformed("grouped batch is not an array")
	}
	var recs []model.CanonicalRecord
	for bi, block := range doc.Array() {
		meta, ok := fields.Object(block, fields.Meta)
		if !ok {
			return nil, malformed("block %d has no meta", bi)
		}
		results, ok := fields.Array(block, fields.Results)
		if !ok {
			return nil, malformed("block %d has no results", bi)
		}
		bm := readMeta(meta, nil)
		items, err := mapItems(results, bm, e, itemShape{})
		if err != nil {
			return nil, malformed("block %d: %v", bi, err)
		}
		recs = append(recs, items...)
	}
	return recs, nil
}

// mapSummary covers the legacy and flat-table generations: one meta and one
// summary list.
func mapSummary(doc gjson.Result, e entry) ([]model.CanonicalRecord, error) {
	meta, _ := fields.Object(doc, fields.Meta)
	summary, ok := fields.Array(doc, fields.Summary)
	if !ok {
		return nil, malformed("no summary list")
	}
	return mapItems(summary, readMeta(meta, nil), e, itemShape{})
}

// mapLegacyModernPrice keeps the lowest-price column next to the primary price.
func mapLegacyModernPrice(doc gjson.Result, e entry) ([]model.CanonicalRecord, error) {
	recs, err := mapSummary(doc, e)
	if err != nil {
		return nil, err
	}
	summary, _ := fields.Array(doc, fields.Summary)
	for i, item := range summary.Array() {
		lowest := fields.First(item, []string{"precio_minimo", "lowest_price", "min_price"})
		if amt, _ := coerceAmount(lowest); amt != nil {
			recs[i].Extra["lowest_price"] = *amt
		}
	}
	return recs, nil
}

// mapRoundTrip reads outbound and return legs, which are either bare dates or
// objects carrying a date and carrier.
func mapRoundTrip(doc gjson.Result, e entry) ([]model.CanonicalRecord, error) {
	meta, _ := fields.Object(doc, fields.Meta)
	summary, ok := fields.Array(doc, fields.Summary)
	if !ok {
		return nil, malformed("no summary list")
	}
	bm := readMeta(meta, nil)
	items := summary.Array()
	recs := make([]model.CanonicalRecord, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, malformed("summary item %d is not an object", i)
		}
		rec := mapItem(item, bm, e, itemShape{roundTrip: true})
		applyLeg(rec.Extra, fields.First(item, fields.Outbound), model.ExtraDepartureDate, "outbound")
		applyLeg(rec.Extra, fields.First(item, fields.Return), model.ExtraReturnDate, "return")
		recs = append(recs, rec)
	}
	return recs, nil
}

func applyLeg(extra map[string]any, leg gjson.Result, dateKey, legKey string) {
	switch {
	case leg.IsObject():
		extra[legKey] = leg.Value()
		if _, ok := extra[dateKey]; !ok {
			setExtra(extra, dateKey, fields.First(leg, fields.LegDate))
		}
		if _, ok := extra[model.ExtraCarrier]; !ok {
			setExtra(extra, model.ExtraCarrier, fields.First(leg, fields.Carrier))
		}
	case leg.Type == gjson.String || leg.Type == gjson.Number:
		if _, ok := extra[dateKey]; !ok {
			extra[dateKey] = leg.Value()
		}
	}
}

func mapGenericResults(doc gjson.Result, e entry) ([]model.CanonicalRecord, error) {
	meta, _ := fields.Object(doc, fields.Meta)
	results, ok := fields.Array(doc, fields.Results)
	if !ok {
		return nil, malformed("no results list")
	}
	return mapItems(results, readMeta(meta, nil), e, itemShape{})
}

// mapRichDashboard reads zone-less timestamps in the dashboard's timezone and
// keeps its title and details bags as extras.
func mapRichDashboard(doc gjson.Result, e entry) ([]model.CanonicalRecord, error) {
	meta, _ := fields.Object(doc, fields.Meta)
	var loc *time.Location
	if tz := fields.String(meta, fields.Timezone); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	bm := readMeta(meta, loc)

	list, ok := fields.Array(doc, fields.Summary)
	if !ok {
		list, ok = fields.Array(doc, fields.Results)
	}
	if !ok {
		return nil, malformed("no summary or results list")
	}

	var roundTrip bool
	for _, item := range list.Array() {
		if fields.Has(item, fields.Outbound) && fields.Has(item, fields.Return) {
			roundTrip = true
			break
		}
	}

	recs, err := mapItems(list, bm, e, itemShape{roundTrip: roundTrip})
	if err != nil {
		return nil, err
	}
	title := fields.String(meta, fields.Title)
	dashDetails, hasDash := fields.Object(meta, fields.Details)
	if !hasDash {
		dashDetails, hasDash = fields.Object(doc, fields.Details)
	}
	for i, item := range list.Array() {
		if title != "" {
			recs[i].Extra["dashboard_title"] = title
		}
		if hasDash {
			recs[i].Extra["dashboard_details"] = dashDetails.Value()
		}
		if d, ok := fields.Object(item, fields.Details); ok {
			recs[i].Extra["details"] = d.Value()
		}
		if roundTrip {
			applyLeg(recs[i].Extra, fields.First(item, fields.Outbound), model.ExtraDepartureDate, "outbound")
			applyLeg(recs[i].Extra, fields.First(item, fields.Return), model.ExtraReturnDate, "return")
		}
	}
	return recs, nil
}

// mapItems maps every element of list; any non-object element fails the
// whole entry so no partial reconstruction escapes quarantine.
func mapItems(list gjson.Result, bm blockMeta, e entry, shape itemShape) ([]model.CanonicalRecord, error) {
	items := list.Array()
	recs := make([]model.CanonicalRecord, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, malformed("item %d is not an object", i)
		}
		recs = append(recs, mapItem(item, bm, e, shape))
	}
	return recs, nil
}
