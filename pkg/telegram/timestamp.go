package telegram

import (
	"fmt"
	"time"
)

const timestampLen = 13

// Timestamp is the YYMMDDhhmmss time the meter reports, with its DST flag.
// Calendar fields are kept as transmitted and never validated.
type Timestamp struct {
	Year   uint8 `json:"year"`
	Month  uint8 `json:"month"`
	Day    uint8 `json:"day"`
	Hour   uint8 `json:"hour"`
	Minute uint8 `json:"minute"`
	Second uint8 `json:"second"`

	// Daylight savings time, "S" on the wire.
	DST bool `json:"dst"`
}

// ParseTimestamp decodes a token such as "200102184500W".
func ParseTimestamp(token string) (Timestamp, error) {
	if len(token) != timestampLen {
		return Timestamp{}, &TimestampFormatError{
			Token:  token,
			Reason: fmt.Sprintf("length %d, want %d", len(token), timestampLen),
		}
	}

	var fields [6]uint8
	for i := range fields {
		hi, lo := token[2*i], token[2*i+1]
		if !isDigit(hi) || !isDigit(lo) {
			return Timestamp{}, &TimestampFormatError{
				Token:  token,
				Reason: fmt.Sprintf("non-digit in position %d-%d", 2*i, 2*i+1),
			}
		}
		fields[i] = (hi-'0')*10 + (lo - '0')
	}

	ts := Timestamp{
		Year:   fields[0],
		Month:  fields[1],
		Day:    fields[2],
		Hour:   fields[3],
		Minute: fields[4],
		Second: fields[5],
	}

	switch token[12] {
	case 'S':
		ts.DST = true
	case 'W':
	default:
		return Timestamp{}, &TimestampFormatError{
			Token:  token,
			Reason: fmt.Sprintf("unknown DST flag %q", token[12]),
		}
	}
	return ts, nil
}

func (t Timestamp) String() string {
	flag := 'W'
	if t.DST {
		flag = 'S'
	}
	return fmt.Sprintf("%02d%02d%02d%02d%02d%02d%c", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, flag)
}

// Time converts the timestamp to a time.Time in loc, assuming the 21st century.
// Out of range fields are normalized the way time.Date does.
func (t Timestamp) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(2000+int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), 0, loc)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
