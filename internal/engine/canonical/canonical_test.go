package canonical

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/fareline/internal/engine/classifier"
	"github.com/crimson-sun/fareline/internal/engine/testdata"
	"github.com/crimson-sun/fareline/internal/model"
)

func canonicalize(t *testing.T, raw string) []model.CanonicalRecord {
	t.Helper()
	entry := model.RawEntry(raw)
	tag := classifier.NewDefault().Classify(entry)
	recs, err := New(Options{}).Canonicalize(0, tag, entry)
	require.NoError(t, err)
	return recs
}

func TestScenarioALegacyModernPrice(t *testing.T) {
	recs := canonicalize(t, `{"meta":{"generado":"2025-01-01T00:00:00Z"},"resumen":[{"ruta":"LIM ⇄ MIA","precio":"389 USD","umbral":400,"cumple":"✅ Cumple"}]}`)
	require.Len(t, recs, 1)

	r := recs[0]
	require.NotNil(t, r.Route)
	assert.Equal(t, "LIM ⇄ MIA", *r.Route)
	assert.Equal(t, "LIM", *r.Origin)
	assert.Equal(t, "MIA", *r.Destination)
	assert.Equal(t, 389.0, *r.Price)
	assert.Equal(t, 400.0, *r.Threshold)
	assert.Equal(t, model.Meets, r.Compliance)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *r.Timestamp)
	assert.Equal(t, "legacy_modern_price", r.Extra[model.ExtraVariant])
	assert.NotContains(t, r.Extra, model.ExtraCoercionFailures)
}

func TestScenarioDGroupedBatch(t *testing.T) {
	recs := canonicalize(t, `[
		{"meta":{"generado":"t1"},"resultados":[{"ruta":"A-B","precio_encontrado":300,"limite":350}]},
		{"meta":{"generado":"t2"},"resultados":[{"ruta":"C-D","precio_encontrado":"410","limite":400},{"ruta":"E-F","precio_encontrado":1}]}
	]`)
	require.Len(t, recs, 3)

	assert.Equal(t, "A-B", *recs[0].Route)
	assert.Equal(t, "A", *recs[0].Origin)
	assert.Equal(t, "B", *recs[0].Destination)
	assert.Equal(t, 300.0, *recs[0].Price)
	assert.Equal(t, model.Meets, recs[0].Compliance)
	assert.Equal(t, model.DoesNotMeet, recs[1].Compliance)
	assert.Equal(t, model.Unknown, recs[2].Compliance)

	// "t1" is not a timestamp; it must not be replaced by the current time.
	for _, r := range recs {
		assert.Nil(t, r.Timestamp)
		assert.Equal(t, []string{"generated"}, r.Extra[model.ExtraCoercionFailures])
	}
}

func TestCorpusRecordCounts(t *testing.T) {
	entries, err := testdata.LoadCorpus()
	require.NoError(t, err)

	cls := classifier.NewDefault()
	c := New(Options{})
	for i, e := range entries {
		tag := cls.Classify(model.RawEntry(e.Entry))
		if tag == model.TagUnknown {
			continue
		}
		recs, err := c.Canonicalize(i, tag, model.RawEntry(e.Entry))
		require.NoError(t, err, e.Description)
		assert.Len(t, recs, e.ExpectedRecords, e.Description)
		for _, r := range recs {
			assert.Equal(t, i, r.Extra[model.ExtraSourceIndex], e.Description)
			if r.Price != nil {
				assert.False(t, math.IsNaN(*r.Price) || math.IsInf(*r.Price, 0), e.Description)
			}
		}
	}
}

func TestFlatFareTableUsesMetaOriginAndCurrency(t *testing.T) {
	recs := canonicalize(t, `{"meta":{"origen":"LIM","moneda":"USD","generado":"2025-03-01T12:00:00Z","fuente":"tabla"},"resumen":[
		{"destino":"MAD","aerolinea":"IB","precio":780,"umbral":800},
		{"destino":"BCN","aerolinea":"LA","precio":"910","umbral":800,"moneda":"EUR"}]}`)
	require.Len(t, recs, 2)

	assert.Equal(t, "LIM → MAD", *recs[0].Route)
	assert.Equal(t, "USD", recs[0].Extra[model.ExtraCurrency])
	assert.Equal(t, "IB", recs[0].Extra[model.ExtraCarrier])
	assert.Equal(t, "tabla", *recs[0].Source)
	assert.Equal(t, model.Meets, recs[0].Compliance)

	assert.Equal(t, "EUR", recs[1].Extra[model.ExtraCurrency])
	assert.Equal(t, model.DoesNotMeet, recs[1].Compliance)
}

func TestRoundTripLegs(t *testing.T) {
	recs := canonicalize(t, `{"meta":{"generado":"2025-04-01T09:00:00Z"},"resumen":[
		{"origen":"LIM","destino":"MIA","ida":{"fecha":"2025-06-01","aerolinea":"AA"},"vuelta":"2025-06-15","precio_total":"650","umbral":700}]}`)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "LIM ⇄ MIA", *r.Route)
	assert.Equal(t, "2025-06-01", r.Extra[model.ExtraDepartureDate])
	assert.Equal(t, "2025-06-15", r.Extra[model.ExtraReturnDate])
	assert.Equal(t, "AA", r.Extra[model.ExtraCarrier])
	assert.Equal(t, 650.0, *r.Price)
	assert.Equal(t, model.Meets, r.Compliance)
}

func TestRichDashboardTimezoneAndExplicitFlag(t *testing.T) {
	recs := canonicalize(t, `{"meta":{"titulo":"Monitor","zona_horaria":"America/Lima","generado":"2025-06-01 08:00"},"resumen":[
		{"ruta":"LIM ⇄ MIA","precio_actual":399,"umbral":400,"cumple_umbral":"No cumple","detalles":{"escalas":1}}]}`)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC), *r.Timestamp)
	// The explicit flag wins over the recomputed 399 <= 400.
	assert.Equal(t, model.DoesNotMeet, r.Compliance)
	assert.Equal(t, "Monitor", r.Extra["dashboard_title"])
	assert.Equal(t, map[string]any{"escalas": 1.0}, r.Extra["details"])
}

func TestRichDashboardWithoutListIsMalformed(t *testing.T) {
	for _, raw := range []string{
		`{"meta":{"title":"Empty","tz":"UTC"}}`,
		`{"meta":{"title":"Board","tz":"UTC"},"rutas":[{"ruta":"LIM-MIA","precio":300}]}`,
	} {
		entry := model.RawEntry(raw)
		require.Equal(t, model.TagRichDashboard, classifier.NewDefault().Classify(entry), raw)
		recs, err := New(Options{}).Canonicalize(0, model.TagRichDashboard, entry)
		assert.Nil(t, recs, raw)
		assert.True(t, errors.Is(err, ErrMalformedEntry), "%s: %v", raw, err)
	}
}

func TestOutOfRangeFoundAtIsCoercionFailure(t *testing.T) {
	recs := canonicalize(t, `{"meta":{"generated":"2025-01-01T00:00:00Z"},"results":[{"route":"A-B","price":1,"found_at":999999999999999}]}`)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Timestamp)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *recs[0].Timestamp)
	assert.Contains(t, recs[0].Extra[model.ExtraCoercionFailures], "timestamp")

	_, err := json.Marshal(recs)
	assert.NoError(t, err)
}

func TestUnrecognizedSeparatorKeepsRouteOnly(t *testing.T) {
	recs := canonicalize(t, `{"meta":{"generated":"2025-01-01"},"summary":[{"route":"LIM to MIA","price":1}]}`)
	require.Len(t, recs, 1)
	assert.Equal(t, "LIM to MIA", *recs[0].Route)
	assert.Nil(t, recs[0].Origin)
	assert.Nil(t, recs[0].Destination)
}

func TestMissingPartsLeaveRouteNull(t *testing.T) {
	recs := canonicalize(t, `{"meta":{},"results":[{"destination":"CUZ","price":"abc"}]}`)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Nil(t, r.Route)
	assert.Nil(t, r.Origin)
	assert.Equal(t, "CUZ", *r.Destination)
	assert.Nil(t, r.Price)
	assert.Nil(t, r.Timestamp)
	assert.Equal(t, []string{"price"}, r.Extra[model.ExtraCoercionFailures])
}

func TestItemObservationTimeWins(t *testing.T) {
	recs := canonicalize(t, `{"meta":{"generated":"2025-01-01T00:00:00Z"},"results":[{"route":"A-B","foundAt":"2025-01-05T10:00:00Z"}]}`)
	require.Len(t, recs, 1)
	assert.Equal(t, time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC), *recs[0].Timestamp)
	assert.Equal(t, "2025-01-05T10:00:00Z", recs[0].Extra[model.ExtraFoundAt])
}

func TestLiveSnapshotDefaultsTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := model.RawEntry(`{"meta":{},"results":[{"route":"A-B"}]}`)

	recs, err := New(Options{}).Canonicalize(0, model.TagGenericResults, raw)
	require.NoError(t, err)
	assert.Nil(t, recs[0].Timestamp)

	recs, err = New(Options{LiveSnapshot: true, Now: func() time.Time { return now }}).Canonicalize(0, model.TagGenericResults, raw)
	require.NoError(t, err)
	assert.Equal(t, now, *recs[0].Timestamp)
}

func TestNonObjectItemFailsEntry(t *testing.T) {
	raw := model.RawEntry(`{"meta":{"generado":"2025-01-01"},"resumen":[{"ruta":"A-B"}, 5]}`)
	recs, err := New(Options{}).Canonicalize(3, model.TagLegacySummary, raw)
	assert.Nil(t, recs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedEntry))
	assert.Contains(t, err.Error(), "entry 3")
}

func TestUnknownTagHasNoMapper(t *testing.T) {
	c := New(Options{})
	assert.False(t, c.Supports(model.TagUnknown))
	_, err := c.Canonicalize(0, model.TagUnknown, model.RawEntry(`{}`))
	assert.True(t, errors.Is(err, ErrNoMapper))
}

func TestCanonicalizeNeverPanics(t *testing.T) {
	inputs := []string{`null`, `1`, `"x"`, `[]`, `{}`, `[1,2]`, `{"meta":1,"resumen":{}}`, `{bad`, `[{"meta":{},"resultados":[null]}]`}
	c := New(Options{})
	for _, tag := range model.KnownTags() {
		for _, in := range inputs {
			assert.NotPanics(t, func() {
				recs, _ := c.Canonicalize(0, tag, model.RawEntry(in))
				for _, r := range recs {
					if r.Price != nil {
						assert.False(t, math.IsNaN(*r.Price))
					}
				}
			}, "%s %s", tag, in)
		}
	}
}

func TestRecordJSONShape(t *testing.T) {
	recs := canonicalize(t, `{"meta":{},"results":[{"destination":"CUZ"}]}`)
	data, err := json.Marshal(recs[0])
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"route", "origin", "destination", "price", "timestamp", "compliance", "threshold", "source", "extra"} {
		assert.Contains(t, m, key)
	}
	assert.Nil(t, m["price"])
	assert.Equal(t, "unknown", m["compliance"])
}
