package jdata

import (
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz/lzma"
)

// Compressor is a byte-stream codec used for _ArrayZipData_ payloads.
// Implementations must be safe for concurrent use.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) (io.ReadCloser, error)
}

var (
	compressorsMu sync.RWMutex
	compressors   = map[string]Compressor{
		"zlib": zlibCodec{},
		"gzip": gzipCodec{},
		"lzma": lzmaCodec{},
		"zstd": zstdCodec{},
		"lz4":  lz4Codec{},
	}
)

// RegisterCompressor adds or replaces a named codec.
func RegisterCompressor(name string, c Compressor) {
	compressorsMu.Lock()
	defer compressorsMu.Unlock()
	compressors[name] = c
}

// Compressors returns the registered codec names in sorted order.
func Compressors() []string {
	compressorsMu.RLock()
	defer compressorsMu.RUnlock()
	names := make([]string, 0, len(compressors))
	for n := range compressors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookupCompressor(name string) (Compressor, error) {
	compressorsMu.RLock()
	c, ok := compressors[name]
	compressorsMu.RUnlock()
	if !ok {
		return nil, compressionError(ErrCodecUnavailable, "codec %q", name)
	}
	return c, nil
}

// Compress encodes src with the named codec.
func Compress(codec string, src []byte) ([]byte, error) {
	c, err := lookupCompressor(codec)
	if err != nil {
		return nil, err
	}
	out, err := c.Compress(src)
	if err != nil {
		return nil, compressionError(err, "%s compress", codec)
	}
	return out, nil
}

// Decompress decodes src with the named codec. When expectedLen is
// non-negative the output must be exactly that long.
func Decompress(codec string, src []byte, expectedLen int) ([]byte, error) {
	c, err := lookupCompressor(codec)
	if err != nil {
		return nil, err
	}
	rc, err := c.Decompress(src)
	if err != nil {
		return nil, compressionError(err, "%s stream header", codec)
	}
	defer rc.Close()

	var r io.Reader = rc
	if expectedLen >= 0 {
		r = io.LimitReader(rc, int64(expectedLen)+1)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, compressionError(err, "%s decompress", codec)
	}
	if expectedLen >= 0 && len(out) != expectedLen {
		return nil, compressionError(nil, "%s payload decompressed to %d bytes, want %d", codec, len(out), expectedLen)
	}
	return out, nil
}

type zlibCodec struct{}

func (zlibCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (zlibCodec) Decompress(src []byte) (io.ReadCloser, error) {
	return zlib.NewReader(bytes.NewReader(src))
}

type gzipCodec struct{}

func (gzipCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decompress(src []byte) (io.ReadCloser, error) {
	return gzip.NewReader(bytes.NewReader(src))
}

type lzmaCodec struct{}

func (lzmaCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lzmaCodec) Decompress(src []byte) (io.ReadCloser, error) {
	r, err := lzma.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}

type zstdCodec struct{}

func (zstdCodec) Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, nil), nil
}

func (zstdCodec) Decompress(src []byte) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

type lz4Codec struct{}

func (lz4Codec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(src []byte) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(bytes.NewReader(src))), nil
}
