package telegram

import (
	"bytes"
	"errors"
	"io"
	"iter"
)

// Option configures a Decoder.
type Option func(*Decoder)

// WithChecksumPolicy selects how frames without checksum digits are treated.
// The default is ChecksumRequired.
func WithChecksumPolicy(p ChecksumPolicy) Option {
	return func(d *Decoder) { d.policy = p }
}

// WithMaxFrameSize bounds the size of a single frame in bytes.
func WithMaxFrameSize(n int) Option {
	return func(d *Decoder) { d.frames.MaxSize = n }
}

// WithTruncationReport makes Next return a FramingError for a frame cut off
// by the end of the source, before returning io.EOF.
func WithTruncationReport() Option {
	return func(d *Decoder) { d.frames.ReportTruncated = true }
}

// Decoder reads consecutive telegrams from a byte source.
//
// A Decoder is not safe for concurrent use; it is meant to be driven by the
// single goroutine that owns the source.
type Decoder struct {
	frames *FrameReader
	policy ChecksumPolicy
}

func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{frames: NewFrameReader(r)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next decodes the next telegram.
//
// It returns io.EOF when the source is exhausted. A malformed telegram is
// reported as an error for which IsDecodeError is true; calling Next again
// continues with the following telegram. Other errors come from the source.
func (d *Decoder) Next() (State, error) {
	frame, err := d.frames.ReadFrame()
	if err != nil {
		return State{}, err
	}
	return DecodeFrame(frame, d.policy)
}

// All returns the remaining telegrams as a sequence. Malformed telegrams are
// yielded with their error and the sequence continues; it ends at the end of
// the source or after yielding a source error.
func (d *Decoder) All() iter.Seq2[State, error] {
	return func(yield func(State, error) bool) {
		for {
			state, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(state, err) {
				return
			}
			if err != nil && !IsDecodeError(err) {
				return
			}
		}
	}
}

// DecodeFrame verifies and parses a single frame.
func DecodeFrame(f Frame, policy ChecksumPolicy) (State, error) {
	if err := VerifyChecksum(f, policy); err != nil {
		return State{}, err
	}

	lines := f.Lines()
	updates := make([]Update, 0, len(lines))
	for _, line := range lines {
		u, ok, err := ParseLine(line)
		if err != nil {
			return State{}, err
		}
		if ok {
			updates = append(updates, u)
		}
	}
	return BuildState(updates)
}

// Decode decodes the first telegram found in raw.
func Decode(raw []byte, policy ChecksumPolicy) (State, error) {
	fr := NewFrameReader(bytes.NewReader(raw))
	fr.ReportTruncated = true

	frame, err := fr.ReadFrame()
	if errors.Is(err, io.EOF) {
		return State{}, &FramingError{Reason: "no start marker"}
	}
	if err != nil {
		return State{}, err
	}
	return DecodeFrame(frame, policy)
}
