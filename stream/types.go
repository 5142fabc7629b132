// Package stream frames encoded JData documents for transport.
//
// Each frame is a one-line text header followed by the payload bytes:
//
//	@frame{v=1 seq=N fmt=text|binary len=N [crc=X] [sid=N] [final=true]}\n
//	<payload>\n
//
// The header gives:
//   - Message boundaries (len) for text and binary payloads alike
//   - Multiplexing via stream IDs (sid, omitted when 0)
//   - Ordering via per-stream sequence numbers (seq)
//   - Integrity via optional CRC-32
//
// Payloads are plain jdata text or BJData documents; the header is not
// part of the document and the payload is passed to the jdata decoders
// unchanged.
package stream

import (
	"fmt"
)

// Version is the framing protocol version.
const Version uint8 = 1

// Format is the encoding of a frame's payload.
type Format uint8

const (
	FormatText   Format = 0 // JSON text with JData annotations
	FormatBinary Format = 1 // BJData
	FormatUBJSON Format = 2 // UBJSON Draft 12
)

// String returns the format name used in the fmt= header field.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	case FormatUBJSON:
		return "ubjson"
	default:
		return fmt.Sprintf("unknown(%d)", f)
	}
}

// ParseFormat parses a format name or its numeric value.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "text", "json", "0":
		return FormatText, true
	case "binary", "bjdata", "1":
		return FormatBinary, true
	case "ubjson", "2":
		return FormatUBJSON, true
	}
	return 0, false
}

// Frame is a single framed document.
type Frame struct {
	Version uint8
	SID     uint64 // stream identifier
	Seq     uint64 // per-SID sequence number
	Format  Format
	Payload []byte

	CRC   *uint32 // CRC-32 of payload, nil if absent
	Final bool    // last frame of this SID
}

// HasCRC reports whether the frame carries a checksum.
func (f *Frame) HasCRC() bool {
	return f.CRC != nil
}

// MaxPayloadSize is the default maximum payload size (64 MiB).
const MaxPayloadSize = 64 * 1024 * 1024

// ParseError reports a malformed frame header.
type ParseError struct {
	Reason string
	Offset int
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("stream: %s at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("stream: %s", e.Reason)
}

// CRCMismatchError is returned when CRC verification fails.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("stream: CRC mismatch: expected %08x, got %08x", e.Expected, e.Got)
}

// SequenceError is returned for duplicate, out-of-order or post-final
// frames, and for gaps when the cursor is strict.
type SequenceError struct {
	SID      uint64
	Expected uint64
	Got      uint64
	Reason   string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("stream: sid %d: %s: expected seq %d, got %d", e.SID, e.Reason, e.Expected, e.Got)
}
