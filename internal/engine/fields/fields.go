// Package fields holds the field-name aliases observed across archive
// generations and small gjson helpers for probing them.
package fields

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Aliases for each logical field, in lookup priority order.
var (
	Meta      = []string{"meta"}
	Summary   = []string{"resumen", "summary"}
	Results   = []string{"resultados", "results"}
	Generated = []string{"generado", "generated", "generated_at", "fecha", "actualizado", "updated_at"}
	Title     = []string{"titulo", "title", "dashboard_title"}
	Timezone  = []string{"zona_horaria", "timezone", "tz"}
	Details   = []string{"detalles", "details"}
	Source    = []string{"fuente", "source", "proveedor", "provider"}

	Route       = []string{"ruta", "route"}
	Origin      = []string{"origen", "origin", "from"}
	Destination = []string{"destino", "destination", "to"}
	Currency    = []string{"moneda", "currency"}
	Carrier     = []string{"aerolinea", "carrier", "airline"}
	Outbound    = []string{"ida", "outbound", "salida"}
	Return      = []string{"vuelta", "return", "regreso"}

	Price     = []string{"precio", "price", "precio_encontrado", "precio_actual", "precio_total", "precio_minimo", "lowest_price", "min_price", "monto", "amount"}
	Threshold = []string{"umbral", "threshold", "limite", "limit", "precio_max", "max_price"}
	// ModernPrice marks the later legacy generation that tracked thresholds
	// and lowest prices per route.
	ModernPrice = []string{"umbral", "threshold", "precio_minimo", "lowest_price", "min_price"}
	Compliance  = []string{"cumple", "cumple_umbral", "meets", "meets_threshold", "compliance", "ok"}
	ObservedAt  = []string{"fecha_consulta", "found_at", "foundAt", "observed_at", "timestamp"}

	DepartureDate = []string{"fecha_ida", "departure_date", "departure", "fecha_salida"}
	ReturnDate    = []string{"fecha_vuelta", "return_date", "fecha_regreso"}
	MaxStops      = []string{"escalas_max", "max_stops", "maxStops", "escalas"}
	Baggage       = []string{"equipaje", "baggage", "bags"}
	Itinerary     = []string{"itinerario", "itinerary"}
	LegDate       = []string{"fecha", "date"}
)

// First returns the first alias present on obj, or an empty result.
func First(obj gjson.Result, keys []string) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	for _, k := range keys {
		if v := obj.Get(gjson.Escape(k)); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// Has reports whether any alias is present on obj, including null values.
func Has(obj gjson.Result, keys []string) bool {
	return First(obj, keys).Exists()
}

// Object returns the first alias holding a JSON object.
func Object(obj gjson.Result, keys []string) (gjson.Result, bool) {
	v := First(obj, keys)
	return v, v.IsObject()
}

// Array returns the first alias holding a JSON array.
func Array(obj gjson.Result, keys []string) (gjson.Result, bool) {
	v := First(obj, keys)
	return v, v.IsArray()
}

// String returns the alias value as trimmed text. Objects, arrays, null and
// missing values yield "".
func String(obj gjson.Result, keys []string) string {
	v := First(obj, keys)
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return strings.TrimSpace(v.String())
	}
	return ""
}
