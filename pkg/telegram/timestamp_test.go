package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		token    string
		expected Timestamp
	}{
		{"200102184500W", Timestamp{Year: 20, Month: 1, Day: 2, Hour: 18, Minute: 45, Second: 0, DST: false}},
		{"200102184500S", Timestamp{Year: 20, Month: 1, Day: 2, Hour: 18, Minute: 45, Second: 0, DST: true}},
		{"101209113020W", Timestamp{Year: 10, Month: 12, Day: 9, Hour: 11, Minute: 30, Second: 20}},
		// No calendar validation.
		{"991399996199S", Timestamp{Year: 99, Month: 13, Day: 99, Hour: 99, Minute: 61, Second: 99, DST: true}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ts)
			assert.Equal(t, tt.token, ts.String())
		})
	}
}

func TestParseTimestampRejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"missing flag", "200102184500"},
		{"too long", "200102184500WW"},
		{"truncated", "2001021845W"},
		{"lowercase flag", "200102184500s"},
		{"unknown flag", "200102184500X"},
		{"letter in digits", "2001O2184500W"},
		{"sign in digits", "-00102184500W"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimestamp(tt.token)
			require.ErrorIs(t, err, ErrTimestampFormat)

			var tsErr *TimestampFormatError
			require.ErrorAs(t, err, &tsErr)
			assert.Equal(t, tt.token, tsErr.Token)
		})
	}
}

func TestTimestampTime(t *testing.T) {
	ts := Timestamp{Year: 20, Month: 1, Day: 2, Hour: 18, Minute: 45, Second: 7}
	assert.Equal(t, time.Date(2020, time.January, 2, 18, 45, 7, 0, time.UTC), ts.Time(nil))

	amsterdam := time.FixedZone("CET", 3600)
	assert.Equal(t, "2020-01-02T18:45:07+01:00", ts.Time(amsterdam).Format(time.RFC3339))
}
