package telegram

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFrameSkipsLeadingGarbage(t *testing.T) {
	telegram := buildTelegram("1-0:1.8.1(000001.000*kWh)")
	stream := append([]byte("23.456*m3)\r\n!1A2B\r\n\x00\xff"), telegram...)

	fr := NewFrameReader(bytes.NewReader(stream))
	frame, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, telegram[:bytes.IndexByte(telegram, '!')+1], frame.Data)
	assert.Len(t, frame.Checksum, 4)
	assert.Equal(t, "TST5\\2TEST-METER", frame.Identification())

	_, err = fr.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameDropsTruncatedFrame(t *testing.T) {
	full := buildTelegram("1-0:1.8.1(000001.000*kWh)")
	cut := full[:len(full)/2]

	t.Run("silently at end of source", func(t *testing.T) {
		fr := NewFrameReader(bytes.NewReader(cut))
		_, err := fr.ReadFrame()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("reported when requested", func(t *testing.T) {
		fr := NewFrameReader(bytes.NewReader(cut))
		fr.ReportTruncated = true
		_, err := fr.ReadFrame()
		require.ErrorIs(t, err, ErrFraming)

		var framing *FramingError
		require.ErrorAs(t, err, &framing)
		assert.Equal(t, len(cut), framing.Size)

		_, err = fr.ReadFrame()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("restarted by the next telegram", func(t *testing.T) {
		next := buildTelegram("1-0:1.8.2(000002.000*kWh)")
		fr := NewFrameReader(bytes.NewReader(append(bytes.Clone(cut), next...)))
		frame, err := fr.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, []string{"1-0:1.8.2(000002.000*kWh)"}, frame.Lines())
		require.NoError(t, VerifyChecksum(frame, ChecksumRequired))
	})
}

func TestReadFrameOversize(t *testing.T) {
	stream := "/TST5\\2\r\n" + strings.Repeat("1-0:1.8.1(000001.000*kWh)\r\n", 100)
	stream += string(buildTelegram("1-0:2.8.1(000003.000*kWh)"))

	fr := NewFrameReader(strings.NewReader(stream))
	fr.MaxSize = 512
	_, err := fr.ReadFrame()
	var framing *FramingError
	require.ErrorAs(t, err, &framing)
	assert.Equal(t, 513, framing.Size)

	// The rest of the oversized frame is skipped while resynchronizing.
	frame, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []string{"1-0:2.8.1(000003.000*kWh)"}, frame.Lines())
}

func TestReadFrameTrailer(t *testing.T) {
	tests := []struct {
		name     string
		stream   string
		checksum string
		next     bool
	}{
		{"crlf", "/A\r\n!ABCD\r\n", "ABCD", false},
		{"lf", "/A\n!ABCD\n", "ABCD", false},
		{"eof", "/A\r\n!ABCD", "ABCD", false},
		{"no digits", "/A\r\n!\r\n", "", false},
		{"next telegram without terminator", "/A\r\n!ABCD/B\r\n!1234\r\n", "ABCD", true},
		{"overlong", "/A\r\n!0123456789\r\n", "01234567", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := NewFrameReader(strings.NewReader(tt.stream))
			frame, err := fr.ReadFrame()
			require.NoError(t, err)
			assert.Equal(t, tt.checksum, frame.Checksum)

			next, err := fr.ReadFrame()
			if tt.next {
				require.NoError(t, err)
				assert.Equal(t, "B", next.Identification())
				assert.Equal(t, "1234", next.Checksum)
			} else {
				assert.ErrorIs(t, err, io.EOF)
			}
		})
	}
}

func TestReadFrameEndMarkerOnlyAtLineStart(t *testing.T) {
	fr := NewFrameReader(strings.NewReader("/ISK5!ID\r\n0-0:96.13.0(Hi!)\r\n!1234\r\n"))
	frame, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "ISK5!ID", frame.Identification())
	assert.Equal(t, []string{"0-0:96.13.0(Hi!)"}, frame.Lines())
	assert.Equal(t, "1234", frame.Checksum)
}

func TestReadFrameStartMarkerInsideValue(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unit text", "0-0:96.13.0(kWh/day)"},
		{"leading slash", "0-0:96.13.0(/tmp)"},
		{"slash before digits", "0-0:96.13.0(ab/1234)"},
		{"line start", "/ not a header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := buildTelegram("1-0:1.7.0(01.193*kW)", tt.line)
			fr := NewFrameReader(bytes.NewReader(raw))
			frame, err := fr.ReadFrame()
			require.NoError(t, err)
			assert.Equal(t, "TST5\\2TEST-METER", frame.Identification())
			assert.Equal(t, []string{"1-0:1.7.0(01.193*kW)", tt.line}, frame.Lines())
			assert.NoError(t, VerifyChecksum(frame, ChecksumRequired))
		})
	}
}

func TestReadFrameRestartsOnlyOnIdentification(t *testing.T) {
	next := buildTelegram("1-0:1.8.2(000002.000*kWh)")
	stream := append([]byte("/TST5\\2\r\n1-0:1.8.1(0001/ab"), next...)

	fr := NewFrameReader(bytes.NewReader(stream))
	frame, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "TST5\\2TEST-METER", frame.Identification())
	assert.Equal(t, []string{"1-0:1.8.2(000002.000*kWh)"}, frame.Lines())
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReadFramePassesSourceErrors(t *testing.T) {
	boom := errors.New("serial port unplugged")
	fr := NewFrameReader(&failingReader{data: []byte("/TST5\r\n1-0:1.8.1("), err: boom})
	fr.ReportTruncated = true
	_, err := fr.ReadFrame()
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsDecodeError(err))
}

func TestFrameLines(t *testing.T) {
	frame, err := NewFrameReader(bytes.NewReader(readFixture(t, "legacy.txt"))).ReadFrame()
	require.NoError(t, err)
	assert.Empty(t, frame.Checksum)
	assert.Equal(t, "KMP5 KA6U001511209910", frame.Identification())
	assert.Equal(t, []string{
		"0-0:96.1.1(204B413655303031353131323039393130)",
		"1-0:1.8.1(00185.000*kWh)",
		"1-0:1.8.2(00084.000*kWh)",
		"0-0:96.14.0(0001)",
		"1-0:1.7.0(0000.98*kW)",
		"0-1:24.3.0(121106140000)(00)(60)(1)(0-1:24.2.1)(m3)(00004.123)",
	}, frame.Lines())
}
