package brand

import "strings"

// FontStyle is the typographic weight chosen for the brand name.
type FontStyle string

const (
	FontSerifBold FontStyle = "serif-bold"
	FontBold      FontStyle = "bold"
	FontMinimal   FontStyle = "minimal"
	FontSemibold  FontStyle = "semibold"
)

var fontKeywords = []struct {
	keyword string
	style   FontStyle
}{
	{"serif", FontSerifBold},
	{"bold", FontBold},
	{"minimal", FontMinimal},
}

// FontFor selects the font style from keywords in the prompt. Only the first
// keyword in priority order counts.
func FontFor(prompt string) FontStyle {
	lower := strings.ToLower(prompt)
	for _, k := range fontKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.style
		}
	}
	return FontSemibold
}

// Family returns the font family used to render the style.
func (f FontStyle) Family() string {
	switch f {
	case FontSerifBold:
		return "Manrope-ExtraBold"
	case FontBold:
		return "Manrope-Bold"
	case FontMinimal:
		return "Manrope-Regular"
	default:
		return "Manrope-SemiBold"
	}
}

// Weight returns the CSS font weight matching the family.
func (f FontStyle) Weight() int {
	switch f {
	case FontSerifBold:
		return 800
	case FontBold:
		return 700
	case FontMinimal:
		return 400
	default:
		return 600
	}
}
