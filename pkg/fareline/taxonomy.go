package fareline

// Variant describes one known archive schema generation.
type Variant struct {
	Tag         string // e.g. "legacy_modern_price"
	Description string
	Generation  int // 1 is the oldest schema
}

// Unknown is the tag of entries that match no known variant.
const Unknown = "unknown"

// Variants returns the known variants in generation order. This is
// read-only; the catalog cannot be modified.
func (f *Fareline) Variants() []Variant {
	vs := f.taxonomy.Variants()
	out := make([]Variant, len(vs))
	for i, v := range vs {
		out[i] = Variant{
			Tag:         string(v.Tag),
			Description: v.Desc,
			Generation:  v.Generation,
		}
	}
	return out
}
