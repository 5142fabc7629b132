package jdata

import (
	"bytes"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEncodeBinary(t *testing.T, v *Value, opts Options) []byte {
	t.Helper()
	b, err := EncodeBinary(v, opts)
	require.NoError(t, err)
	return b
}

func binaryRoundTrip(t *testing.T, v *Value, opts Options) *Value {
	t.Helper()
	got, err := DecodeBinary(mustEncodeBinary(t, v, opts), opts)
	require.NoError(t, err)
	return got
}

func TestEncodeBinary_Scalars(t *testing.T) {
	huge, _ := new(big.Int).SetString("18446744073709551616", 10)
	tests := []struct {
		name string
		v    *Value
		want []byte
	}{
		{"null", Null(), []byte("Z")},
		{"true", Bool(true), []byte("T")},
		{"false", Bool(false), []byte("F")},
		{"uint8", Uint8(255), []byte{'U', 0xFF}},
		{"int8", Int8(-128), []byte{'i', 0x80}},
		{"narrowed", Int64(7), []byte{'U', 7}},
		{"uint16", Int(300), []byte{'u', 0x2C, 0x01}},
		{"int16", Int(-300), []byte{'I', 0xD4, 0xFE}},
		{"uint32", Int(65536), []byte{'m', 0x00, 0x00, 0x01, 0x00}},
		{"float64", Float64(1), []byte{'D', 0, 0, 0, 0, 0, 0, 0xF0, 0x3F}},
		{"float32", Float32(1), []byte{'d', 0, 0, 0x80, 0x3F}},
		{"char", Text("a"), []byte{'C', 'a'}},
		{"string", Text("abc"), []byte{'S', 'U', 3, 'a', 'b', 'c'}},
		{"empty_string", Text(""), []byte{'S', 'U', 0}},
		{"huge", BigInt(huge), append([]byte{'H', 'U', 20}, "18446744073709551616"...)},
		{"list", List(Int(1), Text("xy")), []byte{'[', 'U', 1, 'S', 'U', 2, 'x', 'y', ']'}},
		{"record", MustRecord(F("k", Bool(true))), []byte{'{', 'U', 1, 'k', 'T', '}'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEncodeBinary(t, tt.v, DefaultOptions()))
		})
	}
}

func TestEncodeBinary_KeepType(t *testing.T) {
	o := DefaultOptions()
	o.KeepType = true
	assert.Equal(t, []byte{'L', 7, 0, 0, 0, 0, 0, 0, 0}, mustEncodeBinary(t, Int64(7), o))
	assert.Equal(t, []byte{'l', 7, 0, 0, 0}, mustEncodeBinary(t, Int32(7), o))
}

func TestEncodeBinary_BigEndian(t *testing.T) {
	o := DefaultOptions()
	o.Endian = BigEndian
	b := mustEncodeBinary(t, Int(65536), o)
	assert.Equal(t, []byte{'m', 0x00, 0x01, 0x00, 0x00}, b)

	got, err := DecodeBinary(b, o)
	require.NoError(t, err)
	assert.True(t, Equal(Int(65536), got))
}

func TestBinary_ScalarRoundTrip(t *testing.T) {
	huge, _ := new(big.Int).SetString("-99999999999999999999999", 10)
	values := []*Value{
		Int8(-128), Uint8(255), Int16(-32768), Uint16(65535), Int32(math.MinInt32),
		Uint32(math.MaxUint32), Int64(math.MinInt64), Uint64(math.MaxUint64), BigInt(huge),
		Float64(3.14), Float32(2.5), Float64(math.NaN()), Float64(math.Inf(1)), Float64(math.Inf(-1)),
		Text("日本"), Text("x"), Bool(true), Null(),
	}
	for _, v := range values {
		for _, opts := range []Options{DefaultOptions(), {UBJSON: true}} {
			got := binaryRoundTrip(t, v, opts)
			assert.True(t, Equal(v, got), "%v via %v", v.Kind(), opts.UBJSON)
		}
	}
	// -128 as int8 decodes to the same declared width.
	got := binaryRoundTrip(t, Int8(-128), DefaultOptions())
	bits, signed := got.IntWidth()
	assert.Equal(t, 8, bits)
	assert.True(t, signed)
}

func TestEncodeBinary_Arrays(t *testing.T) {
	v := MustArray([]int{3}, []int32{1, 2, 3})
	assert.Equal(t,
		[]byte{'[', '$', 'l', '#', 'U', 3, 1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0},
		mustEncodeBinary(t, Array(v), DefaultOptions()))

	m := MustArray([]int{2, 3}, []uint8{1, 2, 3, 4, 5, 6})
	assert.Equal(t,
		[]byte{'[', '$', 'U', '#', '[', '$', 'U', '#', 'U', 2, 2, 3, 1, 2, 3, 4, 5, 6},
		mustEncodeBinary(t, Array(m), DefaultOptions()))

	o := DefaultOptions()
	o.NestArray = true
	assert.Equal(t,
		[]byte{'[', '#', 'U', 2, '[', '$', 'U', '#', 'U', 3, 1, 2, 3, '[', '$', 'U', '#', 'U', 3, 4, 5, 6},
		mustEncodeBinary(t, Array(m), o))

	assert.Equal(t, []byte{'[', ']'}, mustEncodeBinary(t, Array(MustArray([]int{}, []float64{})), DefaultOptions()))
}

func TestBinary_ArrayRoundTrip(t *testing.T) {
	arrays := []*NDArray{
		MustArray([]int{3}, []int32{1, 2, 3}),
		MustArray([]int{2, 3}, []uint8{1, 2, 3, 4, 5, 6}),
		MustArray([]int{2, 3, 2}, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}),
		MustArray([]int{2, 2, 2, 2}, []int16{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}),
		MustArray([]int{1}, []float32{1.25}),
		MustArray([]int{0}, []int64{}),
		MustArray([]int{0, 4}, []float64{}),
		MustArray([]int{}, []uint16{}),
		MustArray([]int{2}, []uint64{0, math.MaxUint64}),
		MustArray([]int{2}, []float64{math.NaN(), math.Inf(-1)}),
	}
	nested := DefaultOptions()
	nested.NestArray = true
	nestedLegacy := nested
	nestedLegacy.FormatVersion = FormatLegacy
	for _, a := range arrays {
		for _, opts := range []Options{DefaultOptions(), nested, nestedLegacy} {
			got := binaryRoundTrip(t, Array(a), opts)
			arr, err := got.AsArray()
			require.NoError(t, err, "shape %v", a.Shape())
			assert.True(t, ArraysEqual(a, arr), "shape %v", a.Shape())
		}
	}
}

func TestBinary_NestedAxisOrder(t *testing.T) {
	data := make([]float64, 12)
	for i := range data {
		data[i] = float64(i)
	}
	a := MustArray([]int{2, 3, 2}, data)
	rev := DefaultOptions()
	rev.NestArray = true
	leg := rev
	leg.FormatVersion = FormatLegacy

	rb := mustEncodeBinary(t, Array(a), rev)
	lb := mustEncodeBinary(t, Array(a), leg)
	assert.NotEqual(t, rb, lb)

	got, err := DecodeBinary(lb, leg)
	require.NoError(t, err)
	assert.True(t, Equal(Array(a), got))
	got, err = DecodeBinary(rb, rev)
	require.NoError(t, err)
	assert.True(t, Equal(Array(a), got))
}

func TestBinary_UBJSON(t *testing.T) {
	o := Options{UBJSON: true}
	assert.Equal(t, []byte{'l', 0x00, 0x00, 0x9C, 0x40}, mustEncodeBinary(t, Int(40000), o))

	a := MustArray([]int{2, 2}, []uint16{1, 2, 3, 60000})
	b := mustEncodeBinary(t, Array(a), o)
	assert.Equal(t, byte('#'), b[1], "UBJSON writes N-D arrays as nested containers")
	assert.NotContains(t, string(b), "$u")

	got, err := DecodeBinary(b, o)
	require.NoError(t, err)
	arr, err := got.AsArray()
	require.NoError(t, err)
	assert.Equal(t, ElemInt32, arr.ElemType())
	assert.Equal(t, []float64{1, 2, 3, 60000}, arr.Float64s())
	assert.Equal(t, []int{2, 2}, arr.Shape())
}

func TestBinary_Annotated(t *testing.T) {
	c, err := ComplexFrom([]int{2, 2}, []complex128{1 + 1i, 2, 3, 4 - 4i})
	require.NoError(t, err)
	sp, err := NewSparse(4, 4, []Triplet{{Row: 0, Col: 3, Re: 1}, {Row: 2, Col: 1, Re: -2}}, false)
	require.NoError(t, err)
	band := mat(t, [][]float64{{1, 0, 0, 0}, {2, 3, 0, 0}, {0, 4, 5, 0}, {0, 0, 6, 7}})

	shaped := DefaultOptions()
	shaped.UseArrayShape = true
	zipped := DefaultOptions()
	zipped.Compression = "zlib"
	zipped.CompressArraySize = 8
	legacyZip := zipped
	legacyZip.FormatVersion = FormatLegacy

	values := []*Value{ComplexArray(c), SparseMatrix(sp), Array(band)}
	for _, opts := range []Options{DefaultOptions(), shaped, zipped, legacyZip} {
		for _, v := range values {
			b := mustEncodeBinary(t, v, opts)
			got, err := DecodeBinary(b, opts)
			require.NoError(t, err)
			assert.True(t, Equal(v, got), "%s", v.Kind())
		}
	}

	b := mustEncodeBinary(t, Array(band), zipped)
	assert.True(t, bytes.Contains(b, []byte("_ArrayZipData_[$U#")))
	b = mustEncodeBinary(t, Array(band), shaped)
	assert.True(t, bytes.Contains(b, []byte("lowerband")))
}

func TestDecodeBinary_Noop(t *testing.T) {
	got, err := DecodeBinary([]byte{'N', '[', 'N', 'U', 5, 'N', 'T', 'N', ']', 'N'}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, Equal(List(Int(5), Bool(true)), got))

	got, err = DecodeBinary([]byte{'{', 'N', 'U', 1, 'a', 'N', 'Z', 'N', '}'}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, Equal(MustRecord(F("a", Null())), got))
}

func TestDecodeBinary_OptimizedContainers(t *testing.T) {
	// [$S#2 of strings and {$U#2 of bytes.
	got, err := DecodeBinary([]byte{'[', '$', 'S', '#', 'U', 2, 'U', 1, 'a', 'U', 2, 'b', 'c'}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, Equal(List(Text("a"), Text("bc")), got))

	got, err = DecodeBinary([]byte{'{', '$', 'U', '#', 'U', 2, 'U', 1, 'x', 1, 'U', 1, 'y', 2}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, Equal(MustRecord(F("x", Int(1)), F("y", Int(2))), got))

	got, err = DecodeBinary([]byte{'[', '#', 'U', 2, 'T', 'Z'}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, Equal(List(Bool(true), Null()), got))

	// N-D dimensions may also be given as a plain list.
	got, err = DecodeBinary([]byte{'[', '$', 'U', '#', '[', 'U', 1, 'U', 2, ']', 7, 8}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, Equal(Array(MustArray([]int{1, 2}, []uint8{7, 8})), got))
}

func TestDecodeBinary_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		src    []byte
		offset int
	}{
		{"unknown_marker", []byte{'[', 'X', ']'}, 1},
		{"truncated_int", []byte{'l', 1, 0}, 1},
		{"truncated_string", []byte{'S', 'U', 5, 'a', 'b'}, 3},
		{"unterminated_array", []byte{'[', 'U', 1}, 0},
		{"unterminated_object", []byte{'{', 'U', 1, 'a', 'T'}, 0},
		{"bad_length_marker", []byte{'S', 'D', 0, 0, 0, 0, 0, 0, 0, 0}, 1},
		{"negative_length", []byte{'S', 'i', 0xFF}, 1},
		{"short_typed_array", []byte{'[', '$', 'l', '#', 'U', 2, 1, 0, 0, 0}, 6},
		{"type_without_count", []byte{'[', '$', 'U', 'U', 1}, 3},
		{"empty", []byte{}, 0},
		{"trailing", []byte{'T', 'F'}, 1},
		{"stray_close", []byte{']'}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBinary(tt.src, DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedStream)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.offset, e.Offset)
		})
	}
}

func TestDecodeBinaryAll(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeBinaryTo(&buf, Int(1), DefaultOptions()))
	require.NoError(t, EncodeBinaryTo(&buf, Text("two"), DefaultOptions()))
	vals, err := DecodeBinaryAll(buf.Bytes(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.True(t, Equal(Int(1), vals[0]))
	assert.True(t, Equal(Text("two"), vals[1]))
}

func TestCrossFormat(t *testing.T) {
	v := MustRecord(
		F("id", Int(7)),
		F("label", Text("trial")),
		F("samples", Array(MustArray([]int{2, 3}, []int16{1, -2, 3, -4, 5, -6}))),
		F("spectrum", ComplexArray(func() *Complex {
			c, _ := ComplexFrom([]int{3}, []complex128{1, 1i, -1})
			return c
		}())),
		F("mask", SparseMatrix(func() *Sparse {
			s, _ := NewSparse(3, 3, []Triplet{{Row: 1, Col: 1, Re: 1}}, false)
			return s
		}())),
		F("trials", List(MustRecord(F("ok", Bool(true))), MustRecord(F("ok", Bool(false))))),
	)
	txt := textRoundTrip(t, v, compact())
	bin := binaryRoundTrip(t, v, DefaultOptions())
	assert.True(t, Equal(txt, bin))
	assert.True(t, Equal(v, bin))
}
