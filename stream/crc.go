package stream

import (
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
)

var crcTable = crc32.MakeTable(crc32.IEEE)

// ComputeCRC computes the IEEE CRC-32 of data.
func ComputeCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// VerifyCRC reports whether data matches the expected checksum.
func VerifyCRC(data []byte, expected uint32) bool {
	return ComputeCRC(data) == expected
}

func formatCRC(c uint32) string {
	return fmt.Sprintf("%08x", c)
}

// parseCRC accepts "crc32:XXXXXXXX" or "XXXXXXXX".
func parseCRC(val string) (uint32, bool) {
	val = strings.TrimPrefix(val, "crc32:")
	if len(val) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(val, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
