package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday, so weekday resolution is predictable.
var monday = time.Date(2025, time.August, 18, 10, 0, 0, 0, time.Local)

func TestDateRelativeTerms(t *testing.T) {
	d, err := Date("quero pra hoje", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-18", d)

	d, err = Date("amanhã de manhã", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-19", d)

	d, err = Date("pode ser depois de amanhã", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-20", d)
}

func TestDateNumeric(t *testing.T) {
	d, err := Date("dia 25/08", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-25", d)

	d, err = Date("25/12/2025", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-25", d)

	// Missing year defaults to the current year; a date already past is
	// rejected, not rolled over.
	_, err = Date("15/08", monday)
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = Date("32/01", monday)
	assert.ErrorIs(t, err, ErrNoDate)

	_, err = Date("31/02", monday)
	assert.ErrorIs(t, err, ErrNoDate)
}

func TestDateWeekday(t *testing.T) {
	// Asking for the current weekday rolls a full week, never today.
	d, err := Date("segunda-feira", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-25", d)

	d, err = Date("na sexta", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-22", d)

	d, err = Date("sábado", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-23", d)
}

func TestDateWeekdayFirstMentionWins(t *testing.T) {
	d, err := Date("sexta ou sábado", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-22", d)

	d, err = Date("sábado ou sexta", monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-23", d)
}

func TestDateUnrecognized(t *testing.T) {
	_, err := Date("sei lá", monday)
	assert.ErrorIs(t, err, ErrNoDate)
}

func TestTimePatterns(t *testing.T) {
	cases := map[string]string{
		"14:30":          "14:30",
		"às 9h":          "09:00",
		"as 9:15":        "09:15",
		"às 14h30":       "14:30",
		"16h":            "16:00",
		"9 da noite":     "21:00",
		"3 da tarde":     "15:00",
		"12 da noite":    "00:00",
		"12 da manhã":    "00:00",
		"10":             "10:00",
		"amanhã às 14h":  "14:00",
		"pode ser 14.30": "14:30",
	}
	for input, want := range cases {
		got, err := Time(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestStripDateKeepsTheClock(t *testing.T) {
	_, err := Time(StripDate("dia 15/08"))
	assert.Error(t, err, "a bare date must not read as a time")

	got, err := Time(StripDate("15/08 às 14h"))
	require.NoError(t, err)
	assert.Equal(t, "14:00", got)
}

func TestTimeRejected(t *testing.T) {
	for _, input := range []string{"25:00", "sei lá", "3"} {
		_, err := Time(input)
		assert.Error(t, err, "input %q", input)
	}
}
