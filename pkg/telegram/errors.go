package telegram

import (
	"errors"
	"fmt"
)

var (
	ErrFraming          = errors.New("telegram: framing error")
	ErrChecksumMismatch = errors.New("telegram: checksum mismatch")
	ErrObisParse        = errors.New("telegram: obis parse error")
	ErrTimestampFormat  = errors.New("telegram: timestamp format error")
)

// FramingError reports a frame that was dropped before its end marker.
type FramingError struct {
	Reason string
	// Size is the number of bytes collected before the frame was dropped.
	Size int
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("telegram: framing error: %s (%d bytes dropped)", e.Reason, e.Size)
}

func (e *FramingError) Is(target error) bool { return target == ErrFraming }

// ChecksumMismatchError reports a frame whose trailing checksum does not match
// the CRC computed over its content. Expected is empty when the frame carried
// no checksum digits at all.
type ChecksumMismatchError struct {
	Expected string
	Computed string
}

func (e *ChecksumMismatchError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("telegram: checksum missing, computed %s", e.Computed)
	}
	return fmt.Sprintf("telegram: checksum mismatch: frame carries %q, computed %s", e.Expected, e.Computed)
}

func (e *ChecksumMismatchError) Is(target error) bool { return target == ErrChecksumMismatch }

// ObisParseError reports a data line that could not be interpreted.
type ObisParseError struct {
	Code  string
	Token string
	Err   error
}

func (e *ObisParseError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("telegram: cannot parse line %q: %v", e.Token, e.Err)
	}
	return fmt.Sprintf("telegram: cannot parse %s value %q: %v", e.Code, e.Token, e.Err)
}

func (e *ObisParseError) Is(target error) bool { return target == ErrObisParse }

func (e *ObisParseError) Unwrap() error { return e.Err }

// TimestampFormatError reports a token that is not a YYMMDDhhmmss[SW] timestamp.
type TimestampFormatError struct {
	Token  string
	Reason string
}

func (e *TimestampFormatError) Error() string {
	return fmt.Sprintf("telegram: bad timestamp %q: %s", e.Token, e.Reason)
}

func (e *TimestampFormatError) Is(target error) bool { return target == ErrTimestampFormat }

// IsDecodeError reports whether err describes a malformed telegram, as opposed
// to a failure of the underlying byte source.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrFraming) ||
		errors.Is(err, ErrChecksumMismatch) ||
		errors.Is(err, ErrObisParse) ||
		errors.Is(err, ErrTimestampFormat)
}
