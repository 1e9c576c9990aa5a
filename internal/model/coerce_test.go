package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"389 USD", ptr(389)},
		{"$1,234.50", ptr(1234.5)},
		{"389,50 €", ptr(389.5)},
		{"1,234", ptr(1234)},
		{"1.234,56", ptr(1234.56)},
		{"USD 1.234.567", ptr(1234567)},
		{"S/. 420", ptr(420)},
		{"-12.5", ptr(-12.5)},
		{"300-350", nil},
		{"gratis", nil},
		{"", nil},
		{"NaN", nil},
	}

	for _, tt := range tests {
		got := ParsePrice(tt.input)
		if tt.want == nil {
			assert.Nil(t, got, "ParsePrice(%q)", tt.input)
			continue
		}
		require.NotNil(t, got, "ParsePrice(%q)", tt.input)
		assert.InDelta(t, *tt.want, *got, 1e-9, "ParsePrice(%q)", tt.input)
	}
}

func TestFiniteOrNil(t *testing.T) {
	assert.Nil(t, FiniteOrNil(math.NaN()))
	assert.Nil(t, FiniteOrNil(math.Inf(1)))
	assert.Nil(t, FiniteOrNil(math.Inf(-1)))
	require.NotNil(t, FiniteOrNil(0))
}

func TestParseTimestamp(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)

	tests := []struct {
		input string
		loc   *time.Location
		want  time.Time
	}{
		{"2025-01-01T00:00:00Z", nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-01-01T05:30:00-05:00", nil, time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)},
		{"2025-01-01 08:15:00", nil, time.Date(2025, 1, 1, 8, 15, 0, 0, time.UTC)},
		{"2025-01-01", nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-01-01 08:00", lima, time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC)},
		{"1735689600", nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"1735689600000", nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"1735689600000000", nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"1735689600000000000", nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := ParseTimestamp(tt.input, tt.loc)
		require.NotNil(t, got, "ParseTimestamp(%q)", tt.input)
		assert.True(t, tt.want.Equal(*got), "ParseTimestamp(%q) = %v, want %v", tt.input, *got, tt.want)
		assert.Equal(t, time.UTC, got.Location())
	}

	for _, bad := range []string{"", "t1", "yesterday", "2025", "31/12/2024", "1e300", "99999999999999999999"} {
		assert.Nil(t, ParseTimestamp(bad, nil), "ParseTimestamp(%q)", bad)
	}
}

func TestParseTimestampStaysEncodable(t *testing.T) {
	// Epochs of any magnitude and zoned layouts near year 0 must never yield
	// a time encoding/json refuses to write.
	inputs := []string{
		"1735689600", "1735689600123", "1735689600123456", "1735689600123456789",
		"9223372036854775807", "0000-01-01T00:00:00+01:00", "9999-12-31T23:00:00-05:00",
	}
	for _, in := range inputs {
		got := ParseTimestamp(in, nil)
		if got == nil {
			continue
		}
		_, err := json.Marshal(got)
		assert.NoError(t, err, "ParseTimestamp(%q) = %v", in, *got)
	}
}

func TestValidTime(t *testing.T) {
	assert.True(t, ValidTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, ValidTime(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, ValidTime(time.Date(-1, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(38900), Cents(389))
	assert.Equal(t, int64(38901), Cents(389.005))
	assert.Equal(t, int64(-546), Cents(-5.455))
	assert.Equal(t, int64(1999), Cents(19.99))
}

func TestObservedAtFallsBackToFoundAt(t *testing.T) {
	r := NewRecord()
	assert.True(t, r.ObservedAt().IsZero())

	r.Extra[ExtraFoundAt] = "2025-02-01T10:00:00Z"
	assert.Equal(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), r.ObservedAt())

	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	r.Timestamp = &ts
	assert.Equal(t, ts, r.ObservedAt())
}

func TestVariantTagIsKnown(t *testing.T) {
	for _, tag := range KnownTags() {
		assert.True(t, tag.IsKnown(), tag)
	}
	assert.False(t, TagUnknown.IsKnown())
	assert.False(t, VariantTag("bogus").IsKnown())
}

func ptr(f float64) *float64 { return &f }
