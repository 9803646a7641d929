package telegram

import (
	"fmt"
	"strings"

	"github.com/sigurn/crc16"
)

// CRC16_ARC: reflected polynomial 0xA001, initial value 0x0000.
var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

// checksumDigits is the length of the hexadecimal checksum after the end marker.
const checksumDigits = 4

// ChecksumPolicy decides what happens to frames that carry no checksum.
type ChecksumPolicy uint8

const (
	// ChecksumRequired rejects frames without checksum digits.
	ChecksumRequired ChecksumPolicy = iota
	// ChecksumOptional accepts frames without checksum digits unverified, as
	// sent by DSMR 2.2 and 3.0 meters. Frames with digits are still verified.
	ChecksumOptional
)

func (p ChecksumPolicy) String() string {
	switch p {
	case ChecksumRequired:
		return "required"
	case ChecksumOptional:
		return "optional"
	default:
		return fmt.Sprintf("ChecksumPolicy(%d)", uint8(p))
	}
}

// Checksum computes the telegram CRC over data.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// VerifyChecksum recomputes the CRC over the frame content, from the start
// marker through the end marker, and compares it with the trailing digits.
func VerifyChecksum(f Frame, policy ChecksumPolicy) error {
	computed := fmt.Sprintf("%04X", Checksum(f.Data))

	if f.Checksum == "" {
		if policy == ChecksumOptional {
			return nil
		}
		return &ChecksumMismatchError{Computed: computed}
	}

	if len(f.Checksum) != checksumDigits || !strings.EqualFold(f.Checksum, computed) {
		return &ChecksumMismatchError{Expected: f.Checksum, Computed: computed}
	}
	return nil
}
