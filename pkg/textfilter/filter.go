// Package textfilter softens NPC answers for family-friendly content
// ratings. LLM providers occasionally let profanity through even with a
// persona prompt, so rated deployments run answers through this filter
// before returning them.
package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps US English swear words to family-friendly
// alternatives. Singular and plural forms both match.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douchebag":    "jerk",
}

// Filter rewrites profanity in NPC answers when the configured content
// rating calls for it. For mature ratings Apply is a no-op.
type Filter struct {
	active  bool
	words   []string // longest first, so "bullshit" wins over "shit"
	regexes map[string]*regexp.Regexp
}

// NewFilter builds a filter for the given content rating. Ratings of
// G, PG and PG-13 activate filtering; anything else leaves answers
// untouched.
func NewFilter(rating string) *Filter {
	f := &Filter{active: shouldFilter(rating)}
	if !f.active {
		return f
	}

	f.regexes = make(map[string]*regexp.Regexp, len(replacements))
	for word := range replacements {
		f.words = append(f.words, word)
		// Word boundaries plus an optional trailing s so plurals match
		// without catching substrings like "classical".
		f.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `(s)?\b`)
	}
	sort.Slice(f.words, func(i, j int) bool {
		if len(f.words[i]) != len(f.words[j]) {
			return len(f.words[i]) > len(f.words[j])
		}
		return f.words[i] < f.words[j]
	})
	return f
}

// Active reports whether this filter rewrites anything at all.
func (f *Filter) Active() bool {
	return f.active
}

// Apply replaces profanity with family-friendly alternatives, preserving
// the case pattern of the original word.
func (f *Filter) Apply(text string) string {
	if !f.active {
		return text
	}

	result := text
	for _, word := range f.words {
		replacement := replacements[word]
		result = f.regexes[word].ReplaceAllStringFunc(result, func(match string) string {
			out := replacement
			if len(match) > len(word) {
				// Plural form matched.
				out += "s"
			}
			return preserveCase(match, out)
		})
	}
	return result
}

// Contains reports whether the text holds any filterable profanity.
// Always false for inactive filters.
func (f *Filter) Contains(text string) bool {
	if !f.active {
		return false
	}
	for _, regex := range f.regexes {
		if regex.MatchString(text) {
			return true
		}
	}
	return false
}

func shouldFilter(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

// preserveCase applies the case pattern of the original word to the
// replacement.
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: carry the pattern over character by character.
	originalRunes := []rune(original)
	result := make([]rune, 0, len(replacement))
	for i, r := range replacement {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}
