package taxonomy

import (
	"github.com/cockroachdb/errors"

	"github.com/crimson-sun/fareline/internal/model"
)

// Variant describes one archive generation.
type Variant struct {
	Tag  model.VariantTag
	Desc string
	// Generation orders variants from the oldest schema (1) upward.
	Generation int
}

// Taxonomy is the catalog of known variants, kept in generation order.
type Taxonomy struct {
	variants []Variant
	byTag    map[model.VariantTag]Variant
}

// New creates a Taxonomy. Tags must be unique and must not be model.TagUnknown.
func New(variants []Variant) (*Taxonomy, error) {
	t := &Taxonomy{
		variants: make([]Variant, 0, len(variants)),
		byTag:    make(map[model.VariantTag]Variant, len(variants)),
	}
	for i, v := range variants {
		if v.Tag == "" || v.Tag == model.TagUnknown {
			return nil, errors.Newf("taxonomy: variant %d has reserved tag %q", i, v.Tag)
		}
		if _, dup := t.byTag[v.Tag]; dup {
			return nil, errors.Newf("taxonomy: duplicate variant %q", v.Tag)
		}
		v.Generation = i + 1
		t.variants = append(t.variants, v)
		t.byTag[v.Tag] = v
	}
	return t, nil
}

// Variants returns the known variants, oldest first.
func (t *Taxonomy) Variants() []Variant {
	return t.variants
}

// Tags returns the known tags followed by model.TagUnknown.
func (t *Taxonomy) Tags() []model.VariantTag {
	tags := make([]model.VariantTag, 0, len(t.variants)+1)
	for _, v := range t.variants {
		tags = append(tags, v.Tag)
	}
	return append(tags, model.TagUnknown)
}

// Lookup returns the variant registered under tag.
func (t *Taxonomy) Lookup(tag model.VariantTag) (Variant, bool) {
	v, ok := t.byTag[tag]
	return v, ok
}
