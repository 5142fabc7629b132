package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
)

// Reader reads framed documents from an io.Reader.
type Reader struct {
	r          *bufio.Reader
	maxPayload int
	verifyCRC  bool
	cursor     *Cursor
	opts       jdata.Options
	offset     int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the maximum payload size (default: 64 MiB).
func WithMaxPayload(max int) ReaderOption {
	return func(r *Reader) {
		r.maxPayload = max
	}
}

// WithoutCRCVerification disables checksum verification.
func WithoutCRCVerification() ReaderOption {
	return func(r *Reader) {
		r.verifyCRC = false
	}
}

// WithCursor checks every frame against c. Without a cursor the reader
// does not enforce sequence order.
func WithCursor(c *Cursor) ReaderOption {
	return func(r *Reader) {
		r.cursor = c
	}
}

// WithDecodeOptions sets the jdata options used by NextValue.
func WithDecodeOptions(o jdata.Options) ReaderOption {
	return func(r *Reader) {
		r.opts = o
	}
}

// NewReader creates a frame reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:          bufio.NewReader(r),
		maxPayload: MaxPayloadSize,
		verifyCRC:  true,
		opts:       jdata.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next reads and returns the next frame, or io.EOF at a clean end.
func (r *Reader) Next() (*Frame, error) {
	start := r.offset
	headerLine, err := r.r.ReadString('\n')
	r.offset += len(headerLine)
	if err != nil {
		if err == io.EOF && headerLine == "" {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	frame, payloadLen, err := parseHeader(headerLine, start)
	if err != nil {
		return nil, err
	}
	if payloadLen > r.maxPayload {
		return nil, &ParseError{Reason: fmt.Sprintf("payload too large: %d > %d", payloadLen, r.maxPayload), Offset: start}
	}
	if payloadLen > 0 {
		frame.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r.r, frame.Payload); err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		r.offset += payloadLen
	}

	// The trailing newline is optional at EOF.
	if b, err := r.r.ReadByte(); err == nil {
		if b == '\n' {
			r.offset++
		} else {
			_ = r.r.UnreadByte()
		}
	}

	if r.verifyCRC && frame.CRC != nil {
		if computed := ComputeCRC(frame.Payload); computed != *frame.CRC {
			return nil, &CRCMismatchError{Expected: *frame.CRC, Got: computed}
		}
	}
	if r.cursor != nil {
		if err := r.cursor.ProcessFrame(frame); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// NextValue reads the next frame and decodes its payload.
func (r *Reader) NextValue() (*Frame, *jdata.Value, error) {
	f, err := r.Next()
	if err != nil {
		return nil, nil, err
	}
	v, err := Decode(f, r.opts)
	if err != nil {
		return f, nil, fmt.Errorf("frame sid=%d seq=%d: %w", f.SID, f.Seq, err)
	}
	return f, v, nil
}

// Decode decodes a frame payload according to its format.
func Decode(f *Frame, opts jdata.Options) (*jdata.Value, error) {
	switch f.Format {
	case FormatText:
		return jdata.DecodeText(string(f.Payload), opts)
	case FormatBinary:
		opts.UBJSON = false
		return jdata.DecodeBinary(f.Payload, opts)
	case FormatUBJSON:
		opts.UBJSON = true
		return jdata.DecodeBinary(f.Payload, opts)
	}
	return nil, fmt.Errorf("stream: unknown format %s", f.Format)
}

// parseHeader parses the @frame{...} line starting at stream offset at.
func parseHeader(line string, at int) (*Frame, int, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "@frame{") {
		return nil, 0, &ParseError{Reason: "expected @frame{", Offset: at}
	}
	endIdx := strings.LastIndex(line, "}")
	if endIdx < 0 {
		return nil, 0, &ParseError{Reason: "missing closing }", Offset: at + len(line)}
	}

	frame := &Frame{Version: Version}
	payloadLen := -1
	for _, pair := range tokenize(line[len("@frame{"):endIdx]) {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		switch key {
		case "v":
			v, err := strconv.ParseUint(val, 10, 8)
			if err != nil || uint8(v) != Version {
				return nil, 0, &ParseError{Reason: "unsupported version " + val, Offset: at}
			}
			frame.Version = uint8(v)
		case "sid":
			sid, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid sid", Offset: at}
			}
			frame.SID = sid
		case "seq":
			seq, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid seq", Offset: at}
			}
			frame.Seq = seq
		case "fmt":
			f, ok := ParseFormat(val)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid fmt: " + val, Offset: at}
			}
			frame.Format = f
		case "len":
			l, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid len", Offset: at}
			}
			payloadLen = int(l)
		case "crc":
			crc, ok := parseCRC(val)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid crc: " + val, Offset: at}
			}
			frame.CRC = &crc
		case "final":
			frame.Final = val == "true" || val == "1"
		}
	}
	if payloadLen < 0 {
		return nil, 0, &ParseError{Reason: "missing len", Offset: at}
	}
	return frame, payloadLen, nil
}

// tokenize splits key=value pairs separated by spaces or commas.
func tokenize(s string) []string {
	var tokens []string
	var current bytes.Buffer
	inQuote := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			current.WriteByte(c)
		case (c == ' ' || c == ',' || c == '\t') && !inQuote:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// ReadAll reads all frames until EOF.
func (r *Reader) ReadAll() ([]*Frame, error) {
	var frames []*Frame
	for {
		frame, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}
