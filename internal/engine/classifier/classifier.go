package classifier

import (
	"github.com/tidwall/gjson"

	"github.com/crimson-sun/fareline/internal/model"
)

// Rule pairs a variant tag with the structural predicate that selects it.
type Rule struct {
	Tag   model.VariantTag
	Match func(doc gjson.Result) bool
}

// Classifier assigns exactly one variant tag to a raw entry by walking an
// ordered rule chain. The first matching rule wins, because later schema
// generations can structurally subsume earlier ones.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier over the given ordered rules.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// NewDefault creates a Classifier over DefaultRules.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Rules returns the rule chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify returns the tag of the first matching rule, or model.TagUnknown.
// It never panics: null, scalars, invalid JSON and empty arrays are unknown.
func (c *Classifier) Classify(raw model.RawEntry) (tag model.VariantTag) {
	defer func() {
		if recover() != nil {
			tag = model.TagUnknown
		}
	}()

	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return model.TagUnknown
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() && !doc.IsArray() {
		return model.TagUnknown
	}
	for _, r := range c.rules {
		if r.Match(doc) {
			return r.Tag
		}
	}
	return model.TagUnknown
}
