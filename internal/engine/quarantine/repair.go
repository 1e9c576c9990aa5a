package quarantine

import (
	"github.com/tidwall/gjson"

	"github.com/crimson-sun/fareline/internal/engine/canonical"
	"github.com/crimson-sun/fareline/internal/engine/fields"
	"github.com/crimson-sun/fareline/internal/model"
)

// tagRepaired labels records rebuilt by the relaxed repair pass.
const tagRepaired model.VariantTag = "repaired"

// Repair reprocesses quarantined entries with relaxed heuristics: the first
// array of objects found at the top level, or one level down, is treated as
// the result list. Every record it produces is marked low confidence. Entries
// that still yield nothing are skipped; they stay in quarantine either way.
func Repair(entries []model.QuarantinedEntry, opts canonical.Options) []model.CanonicalRecord {
	c := canonical.New(opts)
	var out []model.CanonicalRecord
	for _, q := range entries {
		recs := repairOne(c, q)
		for i := range recs {
			recs[i].Extra[model.ExtraConfidence] = "low"
			recs[i].Extra[model.ExtraRepaired] = true
			recs[i].Extra[model.ExtraVariant] = string(tagRepaired)
		}
		out = append(out, recs...)
	}
	return out
}

func repairOne(c *canonical.Canonicalizer, q model.QuarantinedEntry) []model.CanonicalRecord {
	if !gjson.ValidBytes(q.Sample) {
		return nil
	}
	doc := gjson.ParseBytes(q.Sample)
	if !doc.IsObject() {
		return nil
	}
	key, ok := findResultList(doc)
	if !ok {
		return nil
	}

	// Re-shape as a generic results entry and reuse its mapper.
	meta := "{}"
	if m, ok := fields.Object(doc, fields.Meta); ok {
		meta = m.Raw
	}
	list := doc.Get(key).Raw
	synthetic := model.RawEntry(`{"meta":` + meta + `,"results":` + list + `}`)
	recs, err := c.Canonicalize(q.Index, model.TagGenericResults, synthetic)
	if err != nil {
		return nil
	}
	return recs
}

// findResultList returns the gjson path of the first array whose elements are
// all objects, searching top-level fields then their direct children in
// document order.
func findResultList(doc gjson.Result) (string, bool) {
	var path string
	doc.ForEach(func(k, v gjson.Result) bool {
		if isObjectList(v) {
			path = gjson.Escape(k.String())
			return false
		}
		return true
	})
	if path != "" {
		return path, true
	}
	doc.ForEach(func(k, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		v.ForEach(func(ck, cv gjson.Result) bool {
			if isObjectList(cv) {
				path = gjson.Escape(k.String()) + "." + gjson.Escape(ck.String())
				return false
			}
			return true
		})
		return path == ""
	})
	return path, path != ""
}

func isObjectList(v gjson.Result) bool {
	if !v.IsArray() {
		return false
	}
	items := v.Array()
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.IsObject() {
			return false
		}
	}
	return true
}
