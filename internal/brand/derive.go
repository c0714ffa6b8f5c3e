// Package brand derives display parameters for a generated logo from the
// free-form prompt that produced it.
package brand

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"logoforge/internal/domain"
)

// PlaceholderName is used when nothing can be extracted from the prompt.
const PlaceholderName = "Brand"

// DerivedBrand holds what a renderer needs besides the generated image.
type DerivedBrand struct {
	BrandName string          `json:"brandName"`
	FontStyle FontStyle       `json:"fontStyle"`
	Style     StyleDescriptor `json:"style"`
}

// Initial returns the upper-cased first letter of the brand name, used by the
// monogram variant.
func (d DerivedBrand) Initial() string {
	for _, r := range d.BrandName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return cases.Upper(language.Und).String(string(r))
		}
	}
	return cases.Upper(language.Und).String(PlaceholderName[:1])
}

// Derive maps a prompt and style key to display parameters. It never fails.
func Derive(prompt string, style domain.StyleKey) DerivedBrand {
	return DerivedBrand{
		BrandName: ExtractName(prompt),
		FontStyle: FontFor(prompt),
		Style:     Style(style),
	}
}

type rule struct {
	name    string
	extract func(prompt string) (string, bool)
}

// rules are evaluated in order; the first one yielding a non-empty name wins.
var rules = []rule{
	{name: "quoted", extract: quotedSpan},
	{name: "for", extract: forSpan},
	{name: "logo", extract: logoSpan},
}

// ExtractName returns the brand name found in prompt.
func ExtractName(prompt string) string {
	for _, r := range rules {
		if name, ok := r.extract(prompt); ok {
			return name
		}
	}
	return firstToken(prompt)
}

const nameChars = `[\p{L}\p{N}_\s&.'-]`

var (
	quotePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"([^"]+)"`),
		regexp.MustCompile(`“([^”]+)”`),
		regexp.MustCompile(`‘([^’]+)’`),
		// single quotes only count when they are not apostrophes inside a word
		regexp.MustCompile(`(?:^|[^\p{L}\p{N}])'([^']+)'(?:$|[^\p{L}\p{N}])`),
	}
	forPattern    = regexp.MustCompile(`(?i)\bfor\s+(\p{L}` + nameChars + `*?)(?:\s+(?:with|in|using|and)\b|$)`)
	logoPattern   = regexp.MustCompile(`(?i)(\p{L}` + nameChars + `*?)\s+logo\b`)
	suffixPattern = regexp.MustCompile(`(?i)\s+(?:logo|design|brand|company)$`)
)

var adjectives = map[string]struct{}{
	"minimalist":   {},
	"modern":       {},
	"professional": {},
	"creative":     {},
	"elegant":      {},
	"simple":       {},
	"bold":         {},
	"vintage":      {},
	"abstract":     {},
	"geometric":    {},
}

// quotedSpan picks the earliest non-blank quoted substring in the prompt.
func quotedSpan(prompt string) (string, bool) {
	best := -1
	var name string
	for _, re := range quotePatterns {
		for _, m := range re.FindAllStringSubmatchIndex(prompt, -1) {
			inner := strings.TrimSpace(prompt[m[2]:m[3]])
			if inner == "" {
				continue
			}
			if best == -1 || m[2] < best {
				best = m[2]
				name = inner
			}
			break
		}
	}
	return clean(name)
}

func forSpan(prompt string) (string, bool) {
	m := forPattern.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	return clean(stripSuffix(strings.TrimSpace(m[1])))
}

func logoSpan(prompt string) (string, bool) {
	m := logoPattern.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	return clean(dropLeadingAdjective(strings.TrimSpace(m[1])))
}

func stripSuffix(candidate string) string {
	return suffixPattern.ReplaceAllString(candidate, "")
}

func dropLeadingAdjective(candidate string) string {
	words := strings.Fields(candidate)
	if len(words) < 2 {
		return candidate
	}
	if _, ok := adjectives[strings.ToLower(words[0])]; !ok {
		return candidate
	}
	return strings.TrimSpace(strings.TrimPrefix(candidate, words[0]))
}

func firstToken(prompt string) string {
	fields := strings.Fields(prompt)
	if len(fields) == 0 {
		return PlaceholderName
	}
	return fields[0]
}

func clean(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
