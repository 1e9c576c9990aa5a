package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// minEpochSeconds rejects small integers (years, counts) as epoch timestamps.
const minEpochSeconds = 1_000_000_000

// ParsePrice extracts a finite amount from free-form text such as "389 USD",
// "$1,234.50" or "389,50 €". Anything that does not yield a finite number
// returns nil.
func ParsePrice(s string) *float64 {
	var b strings.Builder
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
			b.WriteRune(r)
		case r == '.' || r == ',' || r == '-':
			b.WriteRune(r)
		}
	}
	if digits == 0 {
		return nil
	}
	cleaned := strings.Trim(b.String(), ".,")
	if strings.LastIndex(cleaned, "-") > 0 {
		return nil
	}
	cleaned = normalizeSeparators(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return FiniteOrNil(f)
}

// normalizeSeparators rewrites thousands and decimal separators so the result
// uses a single '.' as the decimal point.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// FiniteOrNil returns a pointer to f, or nil for NaN and ±Inf.
func FiniteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp shapes seen across the archive. Layouts
// without a zone are read in loc (UTC when nil). The result is always UTC and
// within years 0-9999; unparseable input returns nil.
func ParseTimestamp(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if ts, ok := parseEpoch(s); ok {
		return &ts
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return inRange(t.UTC())
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return inRange(t.UTC())
		}
	}
	return nil
}

// ValidTime reports whether t can be written as an RFC 3339 timestamp.
func ValidTime(t time.Time) bool {
	y := t.Year()
	return y >= 0 && y <= 9999
}

func inRange(t time.Time) *time.Time {
	if !ValidTime(t) {
		return nil
	}
	return &t
}

// parseEpoch reads seconds, or milli-, micro- or nanoseconds chosen by
// magnitude.
func parseEpoch(s string) (time.Time, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < minEpochSeconds || n >= math.MaxInt64 {
		return time.Time{}, false
	}
	var t time.Time
	switch {
	case n >= minEpochSeconds*1e9:
		t = time.Unix(0, int64(n))
	case n >= minEpochSeconds*1e6:
		t = time.UnixMicro(int64(n))
	case n >= minEpochSeconds*1e3:
		t = time.UnixMilli(int64(n))
	default:
		sec, frac := math.Modf(n)
		t = time.Unix(int64(sec), int64(frac*1e9))
	}
	t = t.UTC()
	if !ValidTime(t) {
		return time.Time{}, false
	}
	return t, true
}

// Cents rounds f half away from zero to whole cents.
func Cents(f float64) int64 {
	return decimal.NewFromFloat(f).Round(2).Shift(2).IntPart()
}

func stringify(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
