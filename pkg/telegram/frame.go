package telegram

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	startMarker = '/'
	endMarker   = '!'

	// DefaultMaxFrameSize bounds a frame so a source that never sends an end
	// marker cannot grow the buffer forever. DSMR 5 telegrams stay well below.
	DefaultMaxFrameSize = 16 * 1024

	// Longest checksum trailer read before giving up on the line terminator.
	maxTrailerLen = 8
)

// Frame is one raw telegram.
type Frame struct {
	// Data runs from the start marker through the end marker inclusive.
	Data []byte
	// Checksum holds the digits after the end marker, empty if there were none.
	Checksum string
}

// Identification returns the meter identification that follows the start marker.
func (f Frame) Identification() string {
	header, _, _ := bytes.Cut(f.Data, []byte{'\n'})
	return strings.TrimSpace(strings.TrimPrefix(string(header), string(startMarker)))
}

// Lines returns the data lines between the identification line and the end
// marker. Blank lines are dropped and a line starting with "(" is joined to
// the line before it, as older meters wrap long gas readings that way.
func (f Frame) Lines() []string {
	raw := strings.Split(string(f.Data), "\n")
	if len(raw) < 2 {
		return nil
	}

	var lines []string
	for _, line := range raw[1 : len(raw)-1] {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case line[0] == '(' && len(lines) > 0:
			lines[len(lines)-1] += line
		default:
			lines = append(lines, line)
		}
	}
	return lines
}

// FrameReader splits a byte stream into frames.
//
// Bytes before a start marker are skipped. An identification header (start
// marker, three letter manufacturer flag, baud rate digit) after the
// identification line of an unfinished frame means the meter restarted its
// transmission; the unfinished frame is dropped and collection starts over.
// Any other start marker inside a frame is data.
type FrameReader struct {
	// MaxSize bounds a frame in bytes. Zero selects DefaultMaxFrameSize.
	MaxSize int
	// ReportTruncated makes ReadFrame return a FramingError when the source
	// ends in the middle of a frame instead of a bare io.EOF.
	ReportTruncated bool

	r *bufio.Reader
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// ReadFrame returns the next complete frame. It returns io.EOF once the
// source is exhausted, and any other source error unchanged.
func (fr *FrameReader) ReadFrame() (Frame, error) {
	limit := fr.MaxSize
	if limit <= 0 {
		limit = DefaultMaxFrameSize
	}

	if err := fr.skipToStart(); err != nil {
		return Frame{}, err
	}

	data := []byte{startMarker}
	inHeader, lineStart := true, false
	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return Frame{}, fr.truncated(data, err)
		}

		switch {
		case b == startMarker && !inHeader && fr.atIdentification():
			data = append(data[:0], startMarker)
			inHeader, lineStart = true, false
			continue
		case b == endMarker && lineStart:
			data = append(data, b)
			sum, err := fr.readTrailer()
			if err != nil {
				return Frame{}, err
			}
			return Frame{Data: data, Checksum: sum}, nil
		}

		data = append(data, b)
		if len(data) > limit {
			return Frame{}, &FramingError{
				Reason: fmt.Sprintf("frame exceeds %d bytes", limit),
				Size:   len(data),
			}
		}
		lineStart = b == '\n'
		if lineStart {
			inHeader = false
		}
	}
}

// atIdentification reports whether the bytes after a start marker look like
// an IEC 62056-21 identification, e.g. "ISk5".
func (fr *FrameReader) atIdentification() bool {
	next, err := fr.r.Peek(4)
	if err != nil {
		return false
	}
	for _, c := range next[:3] {
		if !isLetter(c) {
			return false
		}
	}
	return isDigit(next[3])
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (fr *FrameReader) skipToStart() error {
	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return err
		}
		if b == startMarker {
			return nil
		}
	}
}

// readTrailer reads the checksum digits after the end marker up to the line
// terminator. End of input also ends the trailer.
func (fr *FrameReader) readTrailer() (string, error) {
	var sum []byte
	for len(sum) < maxTrailerLen {
		b, err := fr.r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if b == '\n' {
			break
		}
		if b == startMarker {
			// Next telegram started without a line terminator.
			if err := fr.r.UnreadByte(); err != nil {
				return "", err
			}
			break
		}
		sum = append(sum, b)
	}
	return strings.TrimSpace(string(sum)), nil
}

func (fr *FrameReader) truncated(data []byte, err error) error {
	if !errors.Is(err, io.EOF) {
		return err
	}
	if fr.ReportTruncated {
		return &FramingError{Reason: "source ended before end marker", Size: len(data)}
	}
	return io.EOF
}
