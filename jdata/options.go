package jdata

import "encoding/binary"

// FormatVersion selects the JData axis-ordering revision.
type FormatVersion float64

const (
	// FormatLegacy nests N-D arrays with axis 0 outermost and flattens
	// annotated _ArrayData_ column-major.
	FormatLegacy FormatVersion = 1.9
	// FormatRevised nests trailing axes outermost (last axis first) and
	// flattens annotated _ArrayData_ row-major.
	FormatRevised FormatVersion = 2
)

func (v FormatVersion) revised() bool { return v >= 2 }

// Endian selects the byte order of binary numeric payloads.
type Endian uint8

const (
	// EndianDefault is little-endian for BJData and big-endian for UBJSON.
	EndianDefault Endian = iota
	LittleEndian
	BigEndian
)

// Options configures encoding and decoding. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	// Compact suppresses insignificant whitespace in text output.
	Compact bool

	// Indent is the per-level indentation for non-compact text output.
	Indent string

	// NestArray writes plain numeric arrays as nested arrays rather than
	// annotated objects (text) or BJData N-D headers (binary).
	NestArray bool

	// FormatVersion selects the legacy or revised axis order.
	FormatVersion FormatVersion

	// Compression names the codec for large array payloads ("" disables).
	Compression string

	// CompressArraySize is the element-block byte size above which arrays
	// are compressed. 0 disables compression.
	CompressArraySize int

	// UseArrayShape enables structured-matrix detection on encode.
	UseArrayShape bool

	// KeepType disables narrowest-marker downcasting of integers.
	KeepType bool

	// Endian is the binary byte order.
	Endian Endian

	// UBJSON restricts binary output to UBJSON Draft 12 markers.
	UBJSON bool

	// EscapeKeys writes record keys in identifier-safe escaped form.
	EscapeKeys bool

	// UnpackHex unescapes escaped record keys on decode.
	UnpackHex bool

	// EmptyArrayAsNull writes Null as the literal null instead of [].
	EmptyArrayAsNull bool

	// Text sentinels for IEEE special values.
	NaN    string
	Inf    string
	NegInf string

	// MmapOnly makes decode build only the position index.
	MmapOnly bool

	// WithIndex makes decode also build the position index.
	WithIndex bool
}

// DefaultOptions returns the JData defaults: revised axis order, no
// compression, type narrowing on, key escaping and unpacking on.
func DefaultOptions() Options {
	return Options{
		Indent:        "  ",
		FormatVersion: FormatRevised,
		EscapeKeys:    true,
		UnpackHex:     true,
		NaN:           "_NaN_",
		Inf:           "_Inf_",
		NegInf:        "-_Inf_",
	}
}

// CompactOptions returns defaults with whitespace suppressed.
func CompactOptions() Options {
	o := DefaultOptions()
	o.Compact = true
	return o
}

// byteOrder reads and appends fixed-width values.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (o Options) byteOrder() byteOrder {
	switch o.Endian {
	case BigEndian:
		return binary.BigEndian
	case LittleEndian:
		return binary.LittleEndian
	}
	if o.UBJSON {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (o Options) compressing() bool {
	return o.Compression != "" && o.CompressArraySize > 0
}

func (o Options) sentinels() (nan, inf, ninf string) {
	nan, inf, ninf = o.NaN, o.Inf, o.NegInf
	if nan == "" {
		nan = "_NaN_"
	}
	if inf == "" {
		inf = "_Inf_"
	}
	if ninf == "" {
		ninf = "-_Inf_"
	}
	return nan, inf, ninf
}
