package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Extraction failures. Callers re-prompt the user; these never escape
// the workflow engine.
var (
	ErrNoDate      = errors.New("no date recognized")
	ErrPastDate    = errors.New("date is in the past")
	ErrNoTime      = errors.New("no time recognized")
	ErrInvalidTime = errors.New("time out of range")
)

var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"domingo", time.Sunday},
	{"segunda", time.Monday},
	{"terca", time.Tuesday},
	{"terça", time.Tuesday},
	{"quarta", time.Wednesday},
	{"quinta", time.Thursday},
	{"sexta", time.Friday},
	{"sabado", time.Saturday},
	{"sábado", time.Saturday},
}

var numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)

// Date recognizes relative terms, numeric DD/MM[/YYYY] and weekday names,
// returning the date as "2006-01-02". A parsed date earlier than today is
// rejected. `now` anchors the resolution so tests stay deterministic.
func Date(text string, now time.Time) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(normalized, "depois de amanha"), strings.Contains(normalized, "depois de amanhã"):
		return today.AddDate(0, 0, 2).Format("2006-01-02"), nil
	case strings.Contains(normalized, "amanha"), strings.Contains(normalized, "amanhã"):
		return today.AddDate(0, 0, 1).Format("2006-01-02"), nil
	case strings.Contains(normalized, "hoje"):
		return today.Format("2006-01-02"), nil
	}

	if m := numericDateRe.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return "", ErrNoDate
		}
		parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		if parsed.Day() != day || parsed.Month() != time.Month(month) {
			return "", ErrNoDate
		}
		if parsed.Before(today) {
			return "", ErrPastDate
		}
		return parsed.Format("2006-01-02"), nil
	}

	// When several weekdays are named ("sexta ou sábado"), the one
	// mentioned first wins.
	bestPos := -1
	var bestDay time.Weekday
	for _, wd := range weekdays {
		if pos := strings.Index(normalized, wd.name); pos >= 0 && (bestPos < 0 || pos < bestPos) {
			bestPos = pos
			bestDay = wd.day
		}
	}
	if bestPos >= 0 {
		// Next occurrence of the weekday; the same weekday rolls a
		// full week ahead, never resolving to today.
		delta := (int(bestDay) - int(today.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return today.AddDate(0, 0, delta).Format("2006-01-02"), nil
	}

	return "", ErrNoDate
}

// StripDate removes a numeric date token so a follow-up Time pass does
// not mistake the day of "15/08" for three o'clock.
func StripDate(text string) string {
	return numericDateRe.ReplaceAllString(text, " ")
}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\s)(?:às|as)\s+(\d{1,2})(?:[:.](\d{2})|h(\d{2})?)?`),
	regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`),
	regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`),
	regexp.MustCompile(`\b(\d{1,2})\b`),
}

// Time tries an ordered list of pt-BR clock patterns and returns the
// first structurally valid hour as "15:04". Day-period words shift bare
// hours ("9 da noite" is 21:00); a lone 1–2 digit numeral only counts
// when it falls in business hours [6,22].
func Time(text string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	morning := strings.Contains(normalized, "manha") || strings.Contains(normalized, "manhã")
	afternoon := strings.Contains(normalized, "tarde")
	evening := strings.Contains(normalized, "noite")

	for i, re := range timePatterns {
		m := re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		for _, g := range m[2:] {
			if g != "" {
				minute, _ = strconv.Atoi(g)
				break
			}
		}

		// The bare-numeral fallback is only trusted inside plausible
		// business hours, unless a day-period word disambiguates it.
		bare := i == len(timePatterns)-1
		if bare && !morning && !afternoon && !evening && (hour < 6 || hour > 22) {
			continue
		}

		switch {
		case afternoon:
			if hour < 12 {
				hour += 12
			}
		case evening:
			if hour == 12 {
				hour = 0
			} else if hour < 12 {
				hour += 12
			}
		case morning:
			if hour == 12 {
				hour = 0
			}
		}

		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			continue
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	return "", ErrNoTime
}
