package telegram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// buildTelegram frames data lines the way a DSMR 5 meter does, with a valid
// checksum.
func buildTelegram(lines ...string) []byte {
	body := "/TST5\\2TEST-METER\r\n\r\n"
	for _, line := range lines {
		body += line + "\r\n"
	}
	body += "!"
	return []byte(fmt.Sprintf("%s%04X\r\n", body, Checksum([]byte(body))))
}

// withChecksum replaces the checksum digits of a built telegram.
func withChecksum(raw []byte, sum string) []byte {
	s := string(raw)
	i := strings.LastIndexByte(s, '!')
	return []byte(s[:i+1] + sum + "\r\n")
}

func ptr[T any](v T) *T {
	return &v
}
