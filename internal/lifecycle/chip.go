package lifecycle

import (
	"golang.org/x/text/language"
)

// Chip is the short status line shown while a job is tracked.
type Chip struct {
	Title    string
	Subtitle string
}

var chipLocales = []language.Tag{language.English, language.Indonesian}

var chipMatcher = language.NewMatcher(chipLocales)

var chipCopy = map[language.Tag]map[State]Chip{
	language.English: {
		StateProcessing: {Title: "Creating Your Design...", Subtitle: "Ready in 2 minutes"},
		StateDone:       {Title: "Your Design is Ready!", Subtitle: "Tap to see it."},
		StateFailed:     {Title: "Oops, something went wrong!", Subtitle: "Click to try again"},
	},
	language.Indonesian: {
		StateProcessing: {Title: "Membuat Desain Anda...", Subtitle: "Siap dalam 2 menit"},
		StateDone:       {Title: "Desain Anda Sudah Siap!", Subtitle: "Ketuk untuk melihatnya."},
		StateFailed:     {Title: "Ups, terjadi kesalahan!", Subtitle: "Klik untuk mencoba lagi"},
	},
}

// ChipFor returns the status copy for state in the best matching locale. The
// idle state has no chip.
func ChipFor(state State, locale string) (Chip, bool) {
	tag := language.English
	if tags, _, err := language.ParseAcceptLanguage(locale); err == nil && len(tags) > 0 {
		if _, idx, conf := chipMatcher.Match(tags...); conf != language.No {
			tag = chipLocales[idx]
		}
	}
	chip, ok := chipCopy[tag][state]
	return chip, ok
}
