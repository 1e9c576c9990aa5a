package dedup

import (
	"strconv"
	"strings"

	"github.com/crimson-sun/fareline/internal/model"
)

// KeyFunc derives the identity of the fare observation behind a record.
type KeyFunc func(model.CanonicalRecord) string

// Config controls deduplication behavior.
type Config struct {
	Key KeyFunc // defaults to Key
}

// Deduplicator collapses records that describe the same fare observation
// reached through different reconstruction paths.
type Deduplicator struct {
	cfg Config
}

// New creates a Deduplicator with the given config.
func New(cfg Config) *Deduplicator {
	if cfg.Key == nil {
		cfg.Key = Key
	}
	return &Deduplicator{cfg: cfg}
}

// keyFields are the Extra entries that take part in the identity.
var keyFields = []string{
	model.ExtraDepartureDate,
	model.ExtraReturnDate,
	model.ExtraMaxStops,
	model.ExtraBaggage,
	model.ExtraCarrier,
	model.ExtraItinerary,
	model.ExtraCurrency,
}

// Key is the default identity: route, travel dates, stops, baggage, carrier,
// itinerary, currency and price in whole cents.
func Key(r model.CanonicalRecord) string {
	parts := make([]string, 0, len(keyFields)+2)
	if r.Route != nil {
		parts = append(parts, *r.Route)
	} else {
		parts = append(parts, "")
	}
	for _, f := range keyFields {
		parts = append(parts, r.ExtraString(f))
	}
	if r.Price != nil {
		parts = append(parts, strconv.FormatInt(model.Cents(*r.Price), 10))
	} else {
		parts = append(parts, "")
	}
	return strings.Join(parts, "\x1f")
}

// DeduplicateBatch keeps one record per key: the one with the latest
// observation time. On a tie a directly normalized record beats a repaired
// one, otherwise the later-inserted record wins.
// Keys keep their first-occurrence order. The input is not modified.
func (d *Deduplicator) DeduplicateBatch(records []model.CanonicalRecord) []model.CanonicalRecord {
	if len(records) == 0 {
		return nil
	}

	// Ordered map: preserve first-occurrence order.
	var order []string
	kept := make(map[string]model.CanonicalRecord, len(records))

	for _, r := range records {
		key := d.cfg.Key(r)
		prev, exists := kept[key]
		if !exists {
			order = append(order, key)
			kept[key] = r
			continue
		}
		if replaces(r, prev) {
			kept[key] = r
		}
	}

	result := make([]model.CanonicalRecord, 0, len(order))
	for _, key := range order {
		result = append(result, kept[key])
	}
	return result
}

// replaces reports whether r should displace prev under the same key.
func replaces(r, prev model.CanonicalRecord) bool {
	at, prevAt := r.ObservedAt(), prev.ObservedAt()
	switch {
	case at.After(prevAt):
		return true
	case at.Before(prevAt):
		return false
	}
	return !repaired(r) || repaired(prev)
}

func repaired(r model.CanonicalRecord) bool {
	v, _ := r.Extra[model.ExtraRepaired].(bool)
	return v
}
