package canonical

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/crimson-sun/fareline/internal/engine/fields"
	"github.com/crimson-sun/fareline/internal/model"
)

// blockMeta is what a meta object contributes to every item beneath it.
type blockMeta struct {
	generated    *time.Time
	generatedBad bool
	source       string
	currency     string
	origin       string
	loc          *time.Location
}

func readMeta(meta gjson.Result, loc *time.Location) blockMeta {
	bm := blockMeta{
		source:   fields.String(meta, fields.Source),
		currency: fields.String(meta, fields.Currency),
		origin:   fields.String(meta, fields.Origin),
		loc:      loc,
	}
	if g := fields.First(meta, fields.Generated); g.Exists() && g.Type != gjson.Null {
		bm.generated = parseTime(g, loc)
		bm.generatedBad = bm.generated == nil
	}
	return bm
}

// itemShape tells mapItem how the surrounding variant lays out legs and routes.
type itemShape struct {
	roundTrip bool
}

// mapItem turns one result/summary object into a canonical record. Field
// coercion failures null the field and are listed in Extra.
func mapItem(item gjson.Result, bm blockMeta, e entry, shape itemShape) model.CanonicalRecord {
	rec := model.NewRecord()
	var failed []string
	fail := func(field string) { failed = append(failed, field) }

	// Route.
	routeVal := fields.First(item, fields.Route)
	switch {
	case routeVal.Type == gjson.String && routeVal.Str != "":
		route := fields.String(item, fields.Route)
		rec.Route = &route
		rec.Origin, rec.Destination = SplitRoute(route)
	case routeVal.Exists() && routeVal.Type != gjson.Null:
		fail("route")
	}
	if rec.Route == nil {
		origin := fields.String(item, fields.Origin)
		if origin == "" {
			origin = bm.origin
		}
		dest := fields.String(item, fields.Destination)
		if origin != "" {
			rec.Origin = &origin
		}
		if dest != "" {
			rec.Destination = &dest
		}
		if origin != "" && dest != "" {
			route := JoinRoute(origin, dest, shape.roundTrip)
			rec.Route = &route
		}
	}

	// Price and threshold.
	var bad bool
	rec.Price, bad = coerceAmount(fields.First(item, fields.Price))
	if bad {
		fail("price")
	}
	rec.Threshold, bad = coerceAmount(fields.First(item, fields.Threshold))
	if bad {
		fail("threshold")
	}

	// Observation time: item level first, then the block's generation time.
	if obs := fields.First(item, fields.ObservedAt); obs.Exists() && obs.Type != gjson.Null {
		rec.Timestamp = parseTime(obs, bm.loc)
		if rec.Timestamp == nil {
			fail("timestamp")
		}
		rec.Extra[model.ExtraFoundAt] = obs.Value()
	}
	if rec.Timestamp == nil {
		rec.Timestamp = bm.generated
		if bm.generatedBad {
			fail("generated")
		}
	}
	if rec.Timestamp == nil && e.opts.LiveSnapshot {
		now := e.opts.now().UTC()
		rec.Timestamp = &now
	}

	rec.Compliance = DeriveCompliance(fields.First(item, fields.Compliance), rec.Price, rec.Threshold)

	if src := fields.String(item, fields.Source); src != "" {
		rec.Source = &src
	} else if bm.source != "" {
		src := bm.source
		rec.Source = &src
	}

	// Extras.
	rec.Extra[model.ExtraVariant] = string(e.tag)
	rec.Extra[model.ExtraSourceIndex] = e.index
	setExtra(rec.Extra, model.ExtraDepartureDate, fields.First(item, fields.DepartureDate))
	setExtra(rec.Extra, model.ExtraReturnDate, fields.First(item, fields.ReturnDate))
	setExtra(rec.Extra, model.ExtraMaxStops, fields.First(item, fields.MaxStops))
	setExtra(rec.Extra, model.ExtraBaggage, fields.First(item, fields.Baggage))
	setExtra(rec.Extra, model.ExtraCarrier, fields.First(item, fields.Carrier))
	setExtra(rec.Extra, model.ExtraItinerary, fields.First(item, fields.Itinerary))
	if cur := fields.First(item, fields.Currency); cur.Exists() {
		setExtra(rec.Extra, model.ExtraCurrency, cur)
	} else if bm.currency != "" {
		rec.Extra[model.ExtraCurrency] = bm.currency
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		rec.Extra[model.ExtraCoercionFailures] = failed
	}
	return rec
}

// coerceAmount reads a price-like value. bad is true when a value was
// present but could not be turned into a finite number.
func coerceAmount(v gjson.Result) (amount *float64, bad bool) {
	switch v.Type {
	case gjson.Number:
		if d, err := decimal.NewFromString(v.Raw); err == nil {
			f, _ := d.Float64()
			amount = model.FiniteOrNil(f)
		} else {
			amount = model.FiniteOrNil(v.Num)
		}
	case gjson.String:
		amount = model.ParsePrice(v.Str)
	case gjson.Null:
		return nil, false
	default:
		if !v.Exists() {
			return nil, false
		}
	}
	return amount, amount == nil
}

// parseTime never returns a time outside what the artifacts can encode.
func parseTime(v gjson.Result, loc *time.Location) *time.Time {
	var ts *time.Time
	switch v.Type {
	case gjson.String:
		ts = model.ParseTimestamp(v.Str, loc)
	case gjson.Number:
		ts = model.ParseTimestamp(v.Raw, loc)
	}
	if ts == nil || !model.ValidTime(*ts) {
		return nil
	}
	return ts
}

func setExtra(extra map[string]any, key string, v gjson.Result) {
	if !v.Exists() || v.Type == gjson.Null {
		return
	}
	extra[key] = v.Value()
}
