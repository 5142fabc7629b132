package jdata

import (
	"io"
	"strconv"
)

// EncodeText encodes v as JSON text with JData annotations.
func EncodeText(v *Value, opts Options) (string, error) {
	b, err := encodeText(v, opts)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeTextTo writes the JSON text encoding of v to w.
func EncodeTextTo(w io.Writer, v *Value, opts Options) error {
	b, err := encodeText(v, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func encodeText(v *Value, opts Options) ([]byte, error) {
	e := newTextEmitter(opts)
	if err := e.root(v); err != nil {
		return nil, err
	}
	return e.finish()
}

// EncodeBinary encodes v as a BJData (or, with Options.UBJSON, UBJSON)
// byte stream.
func EncodeBinary(v *Value, opts Options) ([]byte, error) {
	e := newBinEmitter(opts)
	if err := e.value(v); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// EncodeBinaryTo writes the binary encoding of v to w.
func EncodeBinaryTo(w io.Writer, v *Value, opts Options) error {
	b, err := EncodeBinary(v, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// DecodeText decodes a single JSON text document. With Options.MmapOnly the
// result is the position index rendered by Index.Value.
func DecodeText(src string, opts Options) (*Value, error) {
	v, _, err := decodeText(src, opts)
	return v, err
}

// DecodeTextIndex decodes a JSON text document and returns its position
// index.
func DecodeTextIndex(src string, opts Options) (*Value, *Index, error) {
	opts.WithIndex = true
	return decodeText(src, opts)
}

func decodeText(src string, opts Options) (*Value, *Index, error) {
	p := &textParser{src: src}
	roots, err := p.roots()
	if err != nil {
		return nil, nil, err
	}
	return newBuilder(opts, true).single(roots)
}

// DecodeTextAll decodes every concatenated root value in src.
func DecodeTextAll(src string, opts Options) ([]*Value, error) {
	p := &textParser{src: src}
	roots, err := p.roots()
	if err != nil {
		return nil, err
	}
	return newBuilder(opts, true).all(roots)
}

// DecodeBinary decodes a single BJData/UBJSON document.
func DecodeBinary(src []byte, opts Options) (*Value, error) {
	v, _, err := decodeBinary(src, opts)
	return v, err
}

// DecodeBinaryIndex decodes a binary document and returns its position
// index.
func DecodeBinaryIndex(src []byte, opts Options) (*Value, *Index, error) {
	opts.WithIndex = true
	return decodeBinary(src, opts)
}

func decodeBinary(src []byte, opts Options) (*Value, *Index, error) {
	p := &binParser{src: src, order: opts.byteOrder()}
	roots, err := p.roots()
	if err != nil {
		return nil, nil, err
	}
	return newBuilder(opts, false).single(roots)
}

// DecodeBinaryAll decodes every concatenated root value in src.
func DecodeBinaryAll(src []byte, opts Options) ([]*Value, error) {
	p := &binParser{src: src, order: opts.byteOrder()}
	roots, err := p.roots()
	if err != nil {
		return nil, err
	}
	return newBuilder(opts, false).all(roots)
}

// rootPath names the i-th concatenated root: "$", "$1", "$2", ...
func rootPath(i int) string {
	if i == 0 {
		return "$"
	}
	return "$" + strconv.Itoa(i)
}

func (b *builder) single(roots []*node) (*Value, *Index, error) {
	switch len(roots) {
	case 0:
		return nil, nil, malformed(0, "empty document")
	case 1:
	default:
		return nil, nil, malformed(roots[1].start, "unexpected data after the root value")
	}
	vals, err := b.all(roots)
	if err != nil {
		return nil, nil, err
	}
	return vals[0], b.index, nil
}

func (b *builder) all(roots []*node) ([]*Value, error) {
	if b.opts.MmapOnly {
		for i, r := range roots {
			b.walk(r, rootPath(i))
		}
		return []*Value{b.index.Value()}, nil
	}
	out := make([]*Value, len(roots))
	for i, r := range roots {
		v, err := b.build(r, rootPath(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
