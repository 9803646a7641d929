package telegram

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errNoValueGroup     = errors.New("no value group")
	errNoReference      = errors.New("missing reference code")
	errUnbalanced       = errors.New("unbalanced parentheses")
	errNested           = errors.New("nested parenthesis")
	errTrailingText     = errors.New("text after value group")
	errMissingValue     = errors.New("missing value group")
	errNotNumeric       = errors.New("not a numeral")
	errOctets           = errors.New("not a 4-digit hexadecimal code")
	errUpdateOutOfRange = errors.New("channel out of range")
)

// Code is an OBIS reference code A-B:C.D.E.
type Code struct {
	A, B, C, D, E uint8
}

func (c Code) String() string {
	return fmt.Sprintf("%d-%d:%d.%d.%d", c.A, c.B, c.C, c.D, c.E)
}

// ParseCode parses a reference such as "1-0:1.8.1".
func ParseCode(s string) (Code, error) {
	const separators = "-:.."

	var parts [5]uint8
	rest := s
	for i := range parts {
		end := len(rest)
		if i < len(separators) {
			end = strings.IndexByte(rest, separators[i])
			if end < 0 {
				return Code{}, fmt.Errorf("obis code %q: missing %q", s, separators[i])
			}
		}
		n, err := strconv.ParseUint(rest[:end], 10, 8)
		if err != nil || !allDigits(rest[:end]) {
			return Code{}, fmt.Errorf("obis code %q: bad group %q", s, rest[:end])
		}
		parts[i] = uint8(n)
		if end < len(rest) {
			rest = rest[end+1:]
		} else {
			rest = ""
		}
	}
	return Code{A: parts[0], B: parts[1], C: parts[2], D: parts[3], E: parts[4]}, nil
}

// Object is one data line split into its reference and raw value tokens.
type Object struct {
	Reference string
	Values    []string
}

// SplitObject splits "<reference>(<value>)[(<value>)...]" into an Object.
// Value tokens keep their unit suffix.
func SplitObject(line string) (Object, error) {
	line = strings.TrimSpace(line)

	open := strings.IndexByte(line, '(')
	switch {
	case open < 0:
		return Object{}, &ObisParseError{Token: line, Err: errNoValueGroup}
	case open == 0:
		return Object{}, &ObisParseError{Token: line, Err: errNoReference}
	}

	obj := Object{Reference: line[:open]}
	rest := line[open:]
	for rest != "" {
		if rest[0] != '(' {
			return Object{}, &ObisParseError{Code: obj.Reference, Token: rest, Err: errTrailingText}
		}
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return Object{}, &ObisParseError{Code: obj.Reference, Token: rest, Err: errUnbalanced}
		}
		value := rest[1:end]
		if strings.IndexByte(value, '(') >= 0 {
			return Object{}, &ObisParseError{Code: obj.Reference, Token: rest[:end+1], Err: errNested}
		}
		obj.Values = append(obj.Values, value)
		rest = rest[end+1:]
	}
	return obj, nil
}

// ParseLine interprets one data line. ok is false, with a nil error, when the
// line is well formed but its reference does not map to a State field.
func ParseLine(line string) (u Update, ok bool, err error) {
	obj, err := SplitObject(line)
	if err != nil {
		return Update{}, false, err
	}
	return obj.Update()
}

// Update converts the object into a typed field update.
func (o Object) Update() (Update, bool, error) {
	code, err := ParseCode(o.Reference)
	if err != nil {
		// Not a reference this decoder knows how to read.
		return Update{}, false, nil
	}
	t, ok := targets[code]
	if !ok {
		return Update{}, false, nil
	}
	if len(o.Values) < t.shape.groups() {
		return Update{}, false, &ObisParseError{
			Code:  o.Reference,
			Token: strings.Join(o.Values, ")("),
			Err:   errMissingValue,
		}
	}

	u := Update{Field: t.field, Index: t.index}
	value := o.Values[0]
	switch t.shape {
	case shapeTimestamp:
		ts, err := ParseTimestamp(value)
		if err != nil {
			return Update{}, false, o.fail(value, err)
		}
		u.Time = &ts

	case shapeNumeral:
		v, err := parseNumeral(value, t.unit)
		if err != nil {
			return Update{}, false, o.fail(value, err)
		}
		u.Float = &v

	case shapeCount:
		n, err := parseCount(value)
		if err != nil {
			return Update{}, false, o.fail(value, err)
		}
		u.Uint = &n

	case shapeOctets:
		b, err := parseOctets(value)
		if err != nil {
			return Update{}, false, o.fail(value, err)
		}
		u.Octets = &b

	case shapeDeviceType:
		if value != "" {
			n, err := parseCount(value)
			if err != nil {
				return Update{}, false, o.fail(value, err)
			}
			u.Uint = &n
		}

	case shapeSlaveReading:
		ts, err := ParseTimestamp(value)
		if err != nil {
			return Update{}, false, o.fail(value, err)
		}
		u.Time = &ts
		if reading := o.Values[1]; reading != "" {
			v, err := parseNumeral(reading, "")
			if err != nil {
				return Update{}, false, o.fail(reading, err)
			}
			u.Float = &v
		}
	}
	return u, true, nil
}

func (o Object) fail(token string, err error) error {
	return &ObisParseError{Code: o.Reference, Token: token, Err: err}
}

// splitUnit splits "00123.456*m3" into "00123.456" and "m3".
func splitUnit(token string) (number, unit string) {
	number, unit, _ = strings.Cut(token, "*")
	return number, unit
}

// parseNumeral reads a fixed point numeral. A unit suffix, when present, must
// match want unless want is empty.
func parseNumeral(token, want string) (float64, error) {
	number, unit := splitUnit(token)
	if want != "" && unit != "" && !strings.EqualFold(unit, want) {
		return 0, fmt.Errorf("unit %q, want %q", unit, want)
	}

	digits, point := 0, 0
	for i := 0; i < len(number); i++ {
		switch c := number[i]; {
		case isDigit(c):
			digits++
		case c == '.':
			point++
		default:
			return 0, errNotNumeric
		}
	}
	if digits == 0 || point > 1 {
		return 0, errNotNumeric
	}
	return strconv.ParseFloat(number, 64)
}

// parseCount reads an unsigned integer, ignoring any unit suffix.
func parseCount(token string) (uint64, error) {
	number, _ := splitUnit(token)
	if number == "" || !allDigits(number) {
		return 0, errNotNumeric
	}
	return strconv.ParseUint(number, 10, 64)
}

// parseOctets reads a code such as "0002" as two bytes.
func parseOctets(token string) ([2]uint8, error) {
	var out [2]uint8
	if len(token) != 2*len(out) {
		return out, errOctets
	}
	if _, err := hex.Decode(out[:], []byte(token)); err != nil {
		return out, errOctets
	}
	return out, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
