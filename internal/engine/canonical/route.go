package canonical

import "strings"

// Recognized route separators. Multi-rune forms precede their prefixes so
// "<->" is never split on "-".
var routeSeparators = []string{"<->", "⇄", "↔", "⟷", "→", "⟶", "➔", "->", "=>", "–", "—", "/", "-"}

const (
	oneWayConnector    = " → "
	roundTripConnector = " ⇄ "
)

// SplitRoute splits a route string on the first recognized separator. It
// returns nil parts when no separator is recognized or the split does not
// yield exactly two non-empty codes.
func SplitRoute(route string) (origin, destination *string) {
	for _, sep := range routeSeparators {
		if !strings.Contains(route, sep) {
			continue
		}
		parts := strings.Split(route, sep)
		if len(parts) != 2 {
			return nil, nil
		}
		o := strings.TrimSpace(parts[0])
		d := strings.TrimSpace(parts[1])
		if o == "" || d == "" {
			return nil, nil
		}
		return &o, &d
	}
	return nil, nil
}

// JoinRoute builds a route identifier from explicit parts.
func JoinRoute(origin, destination string, roundTrip bool) string {
	if roundTrip {
		return origin + roundTripConnector + destination
	}
	return origin + oneWayConnector + destination
}
