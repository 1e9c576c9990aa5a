package model

import "time"

// Compliance is the ternary result of comparing a price against a threshold.
type Compliance string

const (
	Meets       Compliance = "meets"
	DoesNotMeet Compliance = "does_not_meet"
	Unknown     Compliance = "unknown"
)

// Well-known keys in a record's Extra bag.
const (
	ExtraVariant          = "variant"
	ExtraSourceIndex      = "source_index"
	ExtraDepartureDate    = "departure_date"
	ExtraReturnDate       = "return_date"
	ExtraMaxStops         = "max_stops"
	ExtraBaggage          = "baggage"
	ExtraCarrier          = "carrier"
	ExtraItinerary        = "itinerary"
	ExtraCurrency         = "currency"
	ExtraFoundAt          = "found_at"
	ExtraCoercionFailures = "coercion_failures"
	ExtraConfidence       = "confidence"
	ExtraRepaired         = "repaired"
)

// CanonicalRecord is fareline's output type: one normalized, versionless
// fare observation. Nil pointers serialize as JSON null.
type CanonicalRecord struct {
	Route       *string        `json:"route"`
	Origin      *string        `json:"origin"`
	Destination *string        `json:"destination"`
	Price       *float64       `json:"price"`
	Timestamp   *time.Time     `json:"timestamp"`
	Compliance  Compliance     `json:"compliance"`
	Threshold   *float64       `json:"threshold"`
	Source      *string        `json:"source"`
	Extra       map[string]any `json:"extra"`
}

// NewRecord returns a record with unknown compliance and an empty Extra bag.
func NewRecord() CanonicalRecord {
	return CanonicalRecord{
		Compliance: Unknown,
		Extra:      map[string]any{},
	}
}

// ExtraString returns Extra[key] rendered as a string, or "" when absent.
func (r CanonicalRecord) ExtraString(key string) string {
	v, ok := r.Extra[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return stringify(s)
	}
}

// ObservedAt is the record's observation time: Timestamp, else a parseable
// Extra[found_at]. The zero time means unknown.
func (r CanonicalRecord) ObservedAt() time.Time {
	if r.Timestamp != nil {
		return *r.Timestamp
	}
	if ts := ParseTimestamp(r.ExtraString(ExtraFoundAt), nil); ts != nil {
		return *ts
	}
	return time.Time{}
}
