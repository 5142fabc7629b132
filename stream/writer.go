package stream

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
)

// Writer writes framed documents to an io.Writer.
type Writer struct {
	w       io.Writer
	withCRC bool
	opts    jdata.Options
	next    map[uint64]uint64
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCRC makes the writer compute a CRC for every non-empty payload.
func WithCRC() WriterOption {
	return func(w *Writer) {
		w.withCRC = true
	}
}

// WithEncodeOptions sets the jdata options used by WriteValue.
func WithEncodeOptions(o jdata.Options) WriterOption {
	return func(w *Writer) {
		w.opts = o
	}
}

// NewWriter creates a frame writer. Values are encoded with
// jdata.CompactOptions unless WithEncodeOptions is given.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	fw := &Writer{w: w, opts: jdata.CompactOptions(), next: make(map[uint64]uint64)}
	for _, opt := range opts {
		opt(fw)
	}
	return fw
}

// WriteFrame writes f as is. Sequence numbers are the caller's.
func (w *Writer) WriteFrame(f *Frame) error {
	var header strings.Builder
	header.WriteString("@frame{v=")
	if f.Version == 0 {
		header.WriteByte('1')
	} else {
		header.WriteString(strconv.Itoa(int(f.Version)))
	}
	header.WriteString(" seq=")
	header.WriteString(strconv.FormatUint(f.Seq, 10))
	header.WriteString(" fmt=")
	header.WriteString(f.Format.String())
	header.WriteString(" len=")
	header.WriteString(strconv.Itoa(len(f.Payload)))

	crc := f.CRC
	if crc == nil && w.withCRC && len(f.Payload) > 0 {
		computed := ComputeCRC(f.Payload)
		crc = &computed
	}
	if crc != nil {
		header.WriteString(" crc=")
		header.WriteString(formatCRC(*crc))
	}
	if f.SID != 0 {
		header.WriteString(" sid=")
		header.WriteString(strconv.FormatUint(f.SID, 10))
	}
	if f.Final {
		header.WriteString(" final=true")
	}
	header.WriteString("}\n")

	if _, err := io.WriteString(w.w, header.String()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(f.Payload) > 0 {
		if _, err := w.w.Write(f.Payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}

// Encode serializes v in the given format.
func Encode(v *jdata.Value, format Format, opts jdata.Options) ([]byte, error) {
	switch format {
	case FormatText:
		s, err := jdata.EncodeText(v, opts)
		return []byte(s), err
	case FormatBinary:
		opts.UBJSON = false
		return jdata.EncodeBinary(v, opts)
	case FormatUBJSON:
		opts.UBJSON = true
		return jdata.EncodeBinary(v, opts)
	}
	return nil, fmt.Errorf("stream: unknown format %s", format)
}

// WriteValue encodes v and writes it as the next frame of sid.
func (w *Writer) WriteValue(sid uint64, format Format, v *jdata.Value) error {
	return w.writeValue(sid, format, v, false)
}

// WriteFinal writes v as the last frame of sid.
func (w *Writer) WriteFinal(sid uint64, format Format, v *jdata.Value) error {
	return w.writeValue(sid, format, v, true)
}

func (w *Writer) writeValue(sid uint64, format Format, v *jdata.Value, final bool) error {
	payload, err := Encode(v, format, w.opts)
	if err != nil {
		return fmt.Errorf("encode frame payload: %w", err)
	}
	seq := w.next[sid]
	if err := w.WriteFrame(&Frame{
		Version: Version,
		SID:     sid,
		Seq:     seq,
		Format:  format,
		Payload: payload,
		Final:   final,
	}); err != nil {
		return err
	}
	w.next[sid] = seq + 1
	return nil
}
