package canonical

import (
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"

	"github.com/crimson-sun/fareline/internal/model"
)

// Checked before affirmative phrases: "does_not_meet" contains "meet".
var negativePhrases = []string{
	"does_not_meet", "not_meet", "incumple", "❌", "✗", "✖", "false",
}

var negativeWords = map[string]bool{"no": true, "n": true, "0": true, "x": true}

var affirmativePhrases = []string{"meet", "cumple", "✅", "✔", "true", "yes", "ok"}

var affirmativeWords = map[string]bool{"si": true, "sí": true, "y": true, "1": true}

// negators turn a later affirmative token into a negation. Apostrophes are
// stripped before tokenizing, so "doesn't" arrives as "doesnt".
var negators = map[string]bool{
	"no": true, "not": true, "never": true, "nunca": true, "cannot": true,
	"dont": true, "doesnt": true, "didnt": true, "isnt": true, "wont": true,
}

// failWords mark a failed check on their own.
var failWords = map[string]bool{"fail": true, "fails": true, "failed": true, "failing": true, "failure": true}

var apostrophes = strings.NewReplacer("'", "", "\u2019", "", "\u2018", "", "`", "")

func isAffirmativeToken(tok string) bool {
	switch {
	case strings.HasPrefix(tok, "meet"), strings.HasPrefix(tok, "cumpl"):
		return true
	case tok == "ok", tok == "okay":
		return true
	}
	return false
}

// negated reports whether the text negates a check: a fail word anywhere, or
// a negator appearing before an affirmative token.
func negated(folded string) bool {
	toks := strings.FieldsFunc(apostrophes.Replace(folded), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seenNegator := false
	for _, tok := range toks {
		switch {
		case failWords[tok]:
			return true
		case negators[tok]:
			seenNegator = true
		case seenNegator && isAffirmativeToken(tok):
			return true
		}
	}
	return false
}

// DeriveCompliance prefers an interpretable explicit flag and otherwise
// compares price against threshold when both are known.
func DeriveCompliance(flag gjson.Result, price, threshold *float64) model.Compliance {
	if c, ok := interpretFlag(flag); ok {
		return c
	}
	if price != nil && threshold != nil {
		if *price <= *threshold {
			return model.Meets
		}
		return model.DoesNotMeet
	}
	return model.Unknown
}

func interpretFlag(flag gjson.Result) (model.Compliance, bool) {
	switch flag.Type {
	case gjson.True:
		return model.Meets, true
	case gjson.False:
		return model.DoesNotMeet, true
	case gjson.Number:
		switch flag.Num {
		case 1:
			return model.Meets, true
		case 0:
			return model.DoesNotMeet, true
		}
	case gjson.String:
		return InterpretText(flag.Str)
	}
	return model.Unknown, false
}

// InterpretText reads a free-text compliance flag such as "✅ Cumple" or
// "Does NOT meet". Negations take precedence over affirmative substrings.
func InterpretText(s string) (model.Compliance, bool) {
	folded := strings.TrimSpace(cases.Fold().String(s))
	if folded == "" {
		return model.Unknown, false
	}
	if negated(folded) {
		return model.DoesNotMeet, true
	}
	for _, p := range negativePhrases {
		if strings.Contains(folded, p) {
			return model.DoesNotMeet, true
		}
	}
	if negativeWords[folded] {
		return model.DoesNotMeet, true
	}
	for _, p := range affirmativePhrases {
		if strings.Contains(folded, p) {
			return model.Meets, true
		}
	}
	if affirmativeWords[folded] {
		return model.Meets, true
	}
	return model.Unknown, false
}
