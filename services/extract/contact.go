package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nameRe  = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ ]+$`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	digitRe = regexp.MustCompile(`\D`)
)

// Name validates a free-form human name and returns it title-cased.
func Name(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < 2 || !nameRe.MatchString(trimmed) {
		return "", false
	}
	return titleCase(trimmed), true
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// Phone extracts a Brazilian phone number, accepting 10 or 11 digits and
// reformatting to "(DD) NNNNN-NNNN" or "(DD) NNNN-NNNN".
func Phone(text string) (string, bool) {
	digits := digitRe.ReplaceAllString(text, "")
	switch len(digits) {
	case 11:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:], true
	case 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:], true
	default:
		return "", false
	}
}

// Email extracts the first well-formed address, stored lower-cased.
func Email(text string) (string, bool) {
	match := emailRe.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.ToLower(match), true
}
