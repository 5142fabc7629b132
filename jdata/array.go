package jdata

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ElemType is the element type of a typed numeric array.
type ElemType uint8

const (
	ElemDouble ElemType = iota // 64-bit float, the default array type
	ElemSingle                 // 32-bit float
	ElemInt8
	ElemUint8
	ElemInt16
	ElemUint16
	ElemInt32
	ElemUint32
	ElemInt64
	ElemUint64
)

// String returns the JData type name used in _ArrayType_.
func (t ElemType) String() string {
	switch t {
	case ElemDouble:
		return "double"
	case ElemSingle:
		return "single"
	case ElemInt8:
		return "int8"
	case ElemUint8:
		return "uint8"
	case ElemInt16:
		return "int16"
	case ElemUint16:
		return "uint16"
	case ElemInt32:
		return "int32"
	case ElemUint32:
		return "uint32"
	case ElemInt64:
		return "int64"
	case ElemUint64:
		return "uint64"
	default:
		return "unknown"
	}
}

// ParseElemType parses a JData type name. The numpy-style aliases
// float32/float64 are accepted on input.
func ParseElemType(name string) (ElemType, bool) {
	switch strings.ToLower(name) {
	case "double", "float64":
		return ElemDouble, true
	case "single", "float32":
		return ElemSingle, true
	case "int8":
		return ElemInt8, true
	case "uint8":
		return ElemUint8, true
	case "int16":
		return ElemInt16, true
	case "uint16":
		return ElemUint16, true
	case "int32":
		return ElemInt32, true
	case "uint32":
		return ElemUint32, true
	case "int64":
		return ElemInt64, true
	case "uint64":
		return ElemUint64, true
	default:
		return 0, false
	}
}

// Size returns the element width in bytes.
func (t ElemType) Size() int {
	switch t {
	case ElemInt8, ElemUint8:
		return 1
	case ElemInt16, ElemUint16:
		return 2
	case ElemSingle, ElemInt32, ElemUint32:
		return 4
	default:
		return 8
	}
}

// IsFloat reports whether t is a floating point type.
func (t ElemType) IsFloat() bool {
	return t == ElemDouble || t == ElemSingle
}

// IsSigned reports whether t is a signed integer or float type.
func (t ElemType) IsSigned() bool {
	switch t {
	case ElemUint8, ElemUint16, ElemUint32, ElemUint64:
		return false
	default:
		return true
	}
}

// Number is the set of Go element types an NDArray can hold.
type Number interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

func elemTypeOf[T Number]() ElemType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return ElemInt8
	case uint8:
		return ElemUint8
	case int16:
		return ElemInt16
	case uint16:
		return ElemUint16
	case int32:
		return ElemInt32
	case uint32:
		return ElemUint32
	case int64:
		return ElemInt64
	case uint64:
		return ElemUint64
	case float32:
		return ElemSingle
	default:
		return ElemDouble
	}
}

// ============================================================
// Scalar numbers
// ============================================================

type numKind uint8

const (
	numFloat numKind = iota
	numInt
	numUint
	numBig
)

// num is a decoded numeric scalar before it is bound to an element type.
type num struct {
	kind numKind
	f    float64
	i    int64
	u    uint64
	b    *big.Int
}

func floatNum(f float64) num { return num{kind: numFloat, f: f} }
func intNum(i int64) num { return num{kind: numInt, i: i} }
func uintNum(u uint64) num { return num{kind: numUint, u: u} }
func bigNum(b *big.Int) num { return num{kind: numBig, b: b} }
func (n num) isInteger() bool { return n.kind != numFloat }

func (n num) float() float64 {
	switch n.kind {
	case numInt:
		return float64(n.i)
	case numUint:
		return float64(n.u)
	case numBig:
		f, _ := new(big.Float).SetInt(n.b).Float64()
		return f
	default:
		return n.f
	}
}

func (n num) isZero() bool {
	switch n.kind {
	case numInt:
		return n.i == 0
	case numUint:
		return n.u == 0
	case numBig:
		return n.b.Sign() == 0
	default:
		return n.f == 0
	}
}

// integral returns the value as a big.Int when it is an exact integer.
func (n num) integral() (*big.Int, bool) {
	switch n.kind {
	case numInt:
		return big.NewInt(n.i), true
	case numUint:
		return new(big.Int).SetUint64(n.u), true
	case numBig:
		return n.b, true
	default:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) || n.f != math.Trunc(n.f) {
			return nil, false
		}
		b, _ := big.NewFloat(n.f).Int(nil)
		return b, true
	}
}

// parseNumLiteral parses a JSON numeric literal. A leading '+' is allowed.
// Literals without fraction or exponent become integers; integers beyond
// 64 bits keep full precision.
func parseNumLiteral(s string) (num, error) {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return num{}, fmt.Errorf("empty number")
	}
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return intNum(i), nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return uintNum(u), nil
		}
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return num{}, fmt.Errorf("invalid integer %q", s)
		}
		return bigNum(b), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// ParseFloat reports ErrRange with ±Inf or 0, which is the value we want.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return num{}, fmt.Errorf("invalid number %q", s)
		}
	}
	return floatNum(f), nil
}

// ============================================================
// NDArray
// ============================================================

// NDArray is a dense N-dimensional typed numeric array. Data is stored
// flat in row-major order (last index varies fastest).
type NDArray struct {
	elem  ElemType
	shape []int
	data  any // []T for the Go type matching elem

	// Optional structured-matrix hint, set by the decoder when the array
	// arrived in reduced storage.
	desc *ShapeDescriptor
}

// NewArray creates an NDArray from a flat row-major slice.
func NewArray[T Number](shape []int, data []T) (*NDArray, error) {
	if err := checkShape(shape, len(data)); err != nil {
		return nil, err
	}
	return &NDArray{elem: elemTypeOf[T](), shape: cloneInts(shape), data: data}, nil
}

// MustArray is NewArray that panics on a shape mismatch.
func MustArray[T Number](shape []int, data []T) *NDArray {
	a, err := NewArray(shape, data)
	if err != nil {
		panic(err)
	}
	return a
}

// Vector creates a 1-D double array.
func Vector(data ...float64) *NDArray {
	return MustArray([]int{len(data)}, data)
}

// Matrix creates a 2-D double array from rows. All rows must have equal length.
func Matrix(rows [][]float64) (*NDArray, error) {
	if len(rows) == 0 {
		return NewArray([]int{0, 0}, []float64{})
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, shapeMismatch("row %d has %d columns, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return NewArray([]int{len(rows), cols}, data)
}

// Zeros creates a zero-filled array of the given type.
func Zeros(elem ElemType, shape []int) (*NDArray, error) {
	if err := checkShapeDims(shape); err != nil {
		return nil, err
	}
	n := 0
	if len(shape) > 0 {
		var err error
		if n, err = shapeProduct(shape); err != nil {
			return nil, err
		}
	}
	return &NDArray{elem: elem, shape: cloneInts(shape), data: makeData(elem, n)}, nil
}

// Elements returns the typed backing slice when T matches the element type.
func Elements[T Number](a *NDArray) ([]T, bool) {
	d, ok := a.data.([]T)
	return d, ok
}

func checkShapeDims(shape []int) error {
	for i, d := range shape {
		if d < 0 {
			return shapeMismatch("dimension %d is negative (%d)", i, d)
		}
	}
	return nil
}

func checkShape(shape []int, n int) error {
	if err := checkShapeDims(shape); err != nil {
		return err
	}
	if len(shape) == 0 {
		if n != 0 {
			return shapeMismatch("dimensionless array holds %d elements", n)
		}
		return nil
	}
	p, err := shapeProduct(shape)
	if err != nil {
		return err
	}
	if p != n {
		return shapeMismatch("shape %v needs %d elements, got %d", shape, p, n)
	}
	return nil
}

// shapeProduct is the element count of shape, failing on negative
// dimensions or a count that overflows int.
func shapeProduct(shape []int) (int, error) {
	p := 1
	for i, d := range shape {
		if d < 0 {
			return 0, shapeMismatch("dimension %d is negative (%d)", i, d)
		}
		if d != 0 && p > math.MaxInt/d {
			return 0, shapeMismatch("shape %v overflows the element count", shape)
		}
		p *= d
	}
	return p, nil
}

// mulCount multiplies two non-negative counts, failing on overflow.
func mulCount(a, b int) (int, error) {
	if a < 0 || b < 0 || (b != 0 && a > math.MaxInt/b) {
		return 0, shapeMismatch("element count %d x %d overflows", a, b)
	}
	return a * b, nil
}

// product is the element count of an already validated shape.
func product(shape []int) int {
	p := 1
	for _, d := range shape {
		p *= d
	}
	return p
}

func cloneInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return append([]int(nil), s...)
}

func makeData(elem ElemType, n int) any {
	switch elem {
	case ElemSingle:
		return make([]float32, n)
	case ElemInt8:
		return make([]int8, n)
	case ElemUint8:
		return make([]uint8, n)
	case ElemInt16:
		return make([]int16, n)
	case ElemUint16:
		return make([]uint16, n)
	case ElemInt32:
		return make([]int32, n)
	case ElemUint32:
		return make([]uint32, n)
	case ElemInt64:
		return make([]int64, n)
	case ElemUint64:
		return make([]uint64, n)
	default:
		return make([]float64, n)
	}
}

// ElemType returns the element type.
func (a *NDArray) ElemType() ElemType { return a.elem }

// Shape returns a copy of the dimensions.
func (a *NDArray) Shape() []int { return cloneInts(a.shape) }

// NDim returns the number of dimensions.
func (a *NDArray) NDim() int { return len(a.shape) }

// Len returns the number of elements.
func (a *NDArray) Len() int {
	switch d := a.data.(type) {
	case []float64:
		return len(d)
	case []float32:
		return len(d)
	case []int8:
		return len(d)
	case []uint8:
		return len(d)
	case []int16:
		return len(d)
	case []uint16:
		return len(d)
	case []int32:
		return len(d)
	case []uint32:
		return len(d)
	case []int64:
		return len(d)
	case []uint64:
		return len(d)
	}
	return 0
}

// Data returns the typed backing slice ([]float64, []int32, ...).
func (a *NDArray) Data() any { return a.data }

// ShapeHint returns the structured-matrix descriptor attached to the array.
func (a *NDArray) ShapeHint() *ShapeDescriptor { return a.desc }

// WithShapeHint attaches a structured-matrix descriptor. The encoder uses it
// when the data fits the descriptor.
func (a *NDArray) WithShapeHint(d *ShapeDescriptor) *NDArray {
	a.desc = d
	return a
}

// Float64At returns element i converted to float64.
func (a *NDArray) Float64At(i int) float64 {
	return a.numAt(i).float()
}

// At returns the element at the given multi-index as float64.
func (a *NDArray) At(idx ...int) float64 {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("jdata: At needs %d indices, got %d", len(a.shape), len(idx)))
	}
	return a.Float64At(flatIndex(a.shape, idx))
}

// Float64s returns a float64 copy of the data.
func (a *NDArray) Float64s() []float64 {
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.Float64At(i)
	}
	return out
}

func flatIndex(shape, idx []int) int {
	off := 0
	for k, d := range shape {
		off = off*d + idx[k]
	}
	return off
}

func (a *NDArray) numAt(i int) num {
	switch d := a.data.(type) {
	case []float64:
		return floatNum(d[i])
	case []float32:
		return floatNum(float64(d[i]))
	case []int8:
		return intNum(int64(d[i]))
	case []uint8:
		return uintNum(uint64(d[i]))
	case []int16:
		return intNum(int64(d[i]))
	case []uint16:
		return uintNum(uint64(d[i]))
	case []int32:
		return intNum(int64(d[i]))
	case []uint32:
		return uintNum(uint64(d[i]))
	case []int64:
		return intNum(d[i])
	case []uint64:
		return uintNum(d[i])
	}
	return floatNum(0)
}

func (a *NDArray) isZeroAt(i int) bool {
	return a.numAt(i).isZero()
}

// set stores n at flat index i, failing with TypeMismatch when n is not
// representable in the element type.
func (a *NDArray) set(i int, n num) error {
	if a.elem.IsFloat() {
		f := n.float()
		switch d := a.data.(type) {
		case []float64:
			d[i] = f
		case []float32:
			d[i] = float32(f)
		}
		return nil
	}
	b, ok := n.integral()
	if !ok {
		return typeMismatch("%s element %d is not an integer (%v)", a.elem, i, n.float())
	}
	if a.elem.IsSigned() {
		if !b.IsInt64() {
			return typeMismatch("value %s overflows %s", b, a.elem)
		}
		v := b.Int64()
		lo, hi := intRange(a.elem)
		if v < lo || v > hi {
			return typeMismatch("value %d overflows %s", v, a.elem)
		}
		switch d := a.data.(type) {
		case []int8:
			d[i] = int8(v)
		case []int16:
			d[i] = int16(v)
		case []int32:
			d[i] = int32(v)
		case []int64:
			d[i] = v
		}
		return nil
	}
	if !b.IsUint64() {
		return typeMismatch("value %s overflows %s", b, a.elem)
	}
	v := b.Uint64()
	if v > uintMax(a.elem) {
		return typeMismatch("value %d overflows %s", v, a.elem)
	}
	switch d := a.data.(type) {
	case []uint8:
		d[i] = uint8(v)
	case []uint16:
		d[i] = uint16(v)
	case []uint32:
		d[i] = uint32(v)
	case []uint64:
		d[i] = v
	}
	return nil
}

func intRange(t ElemType) (int64, int64) {
	switch t {
	case ElemInt8:
		return math.MinInt8, math.MaxInt8
	case ElemInt16:
		return math.MinInt16, math.MaxInt16
	case ElemInt32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func uintMax(t ElemType) uint64 {
	switch t {
	case ElemUint8:
		return math.MaxUint8
	case ElemUint16:
		return math.MaxUint16
	case ElemUint32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// arrayFromNums builds an array of the given type from decoded scalars.
func arrayFromNums(elem ElemType, shape []int, nums []num) (*NDArray, error) {
	if err := checkShape(shape, len(nums)); err != nil {
		return nil, err
	}
	a := &NDArray{elem: elem, shape: cloneInts(shape), data: makeData(elem, len(nums))}
	for i, n := range nums {
		if err := a.set(i, n); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// reshaped returns a shallow copy with a new shape over the same data.
func (a *NDArray) reshaped(shape []int) *NDArray {
	return &NDArray{elem: a.elem, shape: cloneInts(shape), data: a.data, desc: a.desc}
}

// transposeOrder reorders row-major data to column-major (toColMajor) or back.
func (a *NDArray) transposeOrder(toColMajor bool) *NDArray {
	n := a.Len()
	if len(a.shape) < 2 || n == 0 {
		return a
	}
	out := &NDArray{elem: a.elem, shape: cloneInts(a.shape), data: makeData(a.elem, n)}
	rev := make([]int, len(a.shape))
	for i, d := range a.shape {
		rev[len(a.shape)-1-i] = d
	}
	idx := make([]int, len(a.shape))
	ridx := make([]int, len(a.shape))
	for flat := 0; flat < n; flat++ {
		// idx is the row-major multi-index of flat.
		rem := flat
		for k := len(a.shape) - 1; k >= 0; k-- {
			idx[k] = rem % a.shape[k]
			rem /= a.shape[k]
		}
		for k := range idx {
			ridx[len(idx)-1-k] = idx[k]
		}
		colFlat := flatIndex(rev, ridx)
		if toColMajor {
			_ = out.set(colFlat, a.numAt(flat))
		} else {
			_ = out.set(flat, a.numAt(colFlat))
		}
	}
	return out
}

// appendElems appends the raw fixed-width bytes of a's data.
func appendElems(buf []byte, a *NDArray, order byteOrder) []byte {
	switch d := a.data.(type) {
	case []float64:
		for _, v := range d {
			buf = order.AppendUint64(buf, math.Float64bits(v))
		}
	case []float32:
		for _, v := range d {
			buf = order.AppendUint32(buf, math.Float32bits(v))
		}
	case []int8:
		for _, v := range d {
			buf = append(buf, byte(v))
		}
	case []uint8:
		buf = append(buf, d...)
	case []int16:
		for _, v := range d {
			buf = order.AppendUint16(buf, uint16(v))
		}
	case []uint16:
		for _, v := range d {
			buf = order.AppendUint16(buf, v)
		}
	case []int32:
		for _, v := range d {
			buf = order.AppendUint32(buf, uint32(v))
		}
	case []uint32:
		for _, v := range d {
			buf = order.AppendUint32(buf, v)
		}
	case []int64:
		for _, v := range d {
			buf = order.AppendUint64(buf, uint64(v))
		}
	case []uint64:
		for _, v := range d {
			buf = order.AppendUint64(buf, v)
		}
	}
	return buf
}

// elemsFromBytes decodes n fixed-width elements from raw bytes.
func elemsFromBytes(elem ElemType, raw []byte, n int, order binary.ByteOrder) *NDArray {
	a := &NDArray{elem: elem, shape: []int{n}, data: makeData(elem, n)}
	sz := elem.Size()
	switch d := a.data.(type) {
	case []float64:
		for i := range d {
			d[i] = math.Float64frombits(order.Uint64(raw[i*sz:]))
		}
	case []float32:
		for i := range d {
			d[i] = math.Float32frombits(order.Uint32(raw[i*sz:]))
		}
	case []int8:
		for i := range d {
			d[i] = int8(raw[i])
		}
	case []uint8:
		copy(d, raw[:n])
	case []int16:
		for i := range d {
			d[i] = int16(order.Uint16(raw[i*sz:]))
		}
	case []uint16:
		for i := range d {
			d[i] = order.Uint16(raw[i*sz:])
		}
	case []int32:
		for i := range d {
			d[i] = int32(order.Uint32(raw[i*sz:]))
		}
	case []uint32:
		for i := range d {
			d[i] = order.Uint32(raw[i*sz:])
		}
	case []int64:
		for i := range d {
			d[i] = int64(order.Uint64(raw[i*sz:]))
		}
	case []uint64:
		for i := range d {
			d[i] = order.Uint64(raw[i*sz:])
		}
	}
	return a
}
