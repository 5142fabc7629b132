package jdata

import (
	"fmt"
	"math/big"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindList
	KindRecord
	KindArray   // dense typed N-D array
	KindComplex // complex-valued array
	KindSparse  // sparse 2-D matrix
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindArray:
		return "array"
	case KindComplex:
		return "complex"
	case KindSparse:
		return "sparse"
	default:
		return "unknown"
	}
}

// Value is the language-neutral data model shared by the text and binary
// codecs. Values form a tree; they are never cyclic.
type Value struct {
	kind Kind

	boolVal bool

	// Integers: width is 8/16/32/64 bits, or 0 for an arbitrary-precision
	// value held in bigVal.
	intWidth uint8
	signed   bool
	intVal   int64
	uintVal  uint64
	bigVal   *big.Int

	// Floats: width is 32 or 64.
	floatWidth uint8
	floatVal   float64

	textVal string

	listVal   []*Value
	recordVal []Field

	arrayVal   *NDArray
	complexVal *Complex
	sparseVal  *Sparse
}

// Field is one entry of a Record.
type Field struct {
	Key   string
	Value *Value
}

// F creates a Field for use with Record.
func F(key string, value *Value) Field {
	return Field{Key: key, Value: value}
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool creates a boolean value.
func Bool(v bool) *Value { return &Value{kind: KindBool, boolVal: v} }

// Int8 creates a signed 8-bit integer.
func Int8(v int8) *Value { return &Value{kind: KindInt, intWidth: 8, signed: true, intVal: int64(v)} }

// Int16 creates a signed 16-bit integer.
func Int16(v int16) *Value { return &Value{kind: KindInt, intWidth: 16, signed: true, intVal: int64(v)} }

// Int32 creates a signed 32-bit integer.
func Int32(v int32) *Value { return &Value{kind: KindInt, intWidth: 32, signed: true, intVal: int64(v)} }

// Int64 creates a signed 64-bit integer.
func Int64(v int64) *Value { return &Value{kind: KindInt, intWidth: 64, signed: true, intVal: v} }

// Int creates a signed 64-bit integer.
func Int(v int) *Value { return Int64(int64(v)) }

// Uint8 creates an unsigned 8-bit integer.
func Uint8(v uint8) *Value { return &Value{kind: KindInt, intWidth: 8, uintVal: uint64(v)} }

// Uint16 creates an unsigned 16-bit integer.
func Uint16(v uint16) *Value { return &Value{kind: KindInt, intWidth: 16, uintVal: uint64(v)} }

// Uint32 creates an unsigned 32-bit integer.
func Uint32(v uint32) *Value { return &Value{kind: KindInt, intWidth: 32, uintVal: uint64(v)} }

// Uint64 creates an unsigned 64-bit integer.
func Uint64(v uint64) *Value { return &Value{kind: KindInt, intWidth: 64, uintVal: v} }

// BigInt creates an arbitrary-precision integer. Values that fit 64 bits are
// still held as big integers so their declared kind survives a round trip
// through the huge-integer marker.
func BigInt(v *big.Int) *Value {
	return &Value{kind: KindInt, signed: v.Sign() < 0, bigVal: new(big.Int).Set(v)}
}

// Float64 creates a 64-bit float.
func Float64(v float64) *Value { return &Value{kind: KindFloat, floatWidth: 64, floatVal: v} }

// Float32 creates a 32-bit float.
func Float32(v float32) *Value { return &Value{kind: KindFloat, floatWidth: 32, floatVal: float64(v)} }

// Text creates a string value.
func Text(s string) *Value { return &Value{kind: KindText, textVal: s} }

// List creates an ordered heterogeneous list.
func List(values ...*Value) *Value {
	if values == nil {
		values = []*Value{}
	}
	return &Value{kind: KindList, listVal: values}
}

// Record creates an ordered record. Keys must be unique.
func Record(fields ...Field) (*Value, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Key]; dup {
			return nil, fmt.Errorf("jdata: duplicate record key %q", f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	if fields == nil {
		fields = []Field{}
	}
	return &Value{kind: KindRecord, recordVal: fields}, nil
}

// MustRecord is Record that panics on duplicate keys.
func MustRecord(fields ...Field) *Value {
	v, err := Record(fields...)
	if err != nil {
		panic(err)
	}
	return v
}

// Array wraps a dense array.
func Array(a *NDArray) *Value { return &Value{kind: KindArray, arrayVal: a} }

// ComplexArray wraps a complex array.
func ComplexArray(c *Complex) *Value { return &Value{kind: KindComplex, complexVal: c} }

// SparseMatrix wraps a sparse matrix.
func SparseMatrix(s *Sparse) *Value { return &Value{kind: KindSparse, sparseVal: s} }

// ============================================================
// Accessors
// ============================================================

// Kind returns the variant. A nil Value is null.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is null.
func (v *Value) IsNull() bool { return v == nil || v.kind == KindNull }

func (v *Value) expect(k Kind) error {
	if v == nil {
		return fmt.Errorf("jdata: nil value")
	}
	if v.kind != k {
		return fmt.Errorf("jdata: expected %s, got %s", k, v.kind)
	}
	return nil
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if err := v.expect(KindBool); err != nil {
		return false, err
	}
	return v.boolVal, nil
}

// IntWidth returns the declared width in bits (0 for big integers) and
// whether the integer is signed.
func (v *Value) IntWidth() (bits int, signed bool) {
	return int(v.intWidth), v.signed
}

// IsBig reports whether the integer is held at arbitrary precision.
func (v *Value) IsBig() bool { return v.kind == KindInt && v.bigVal != nil }

// AsInt64 returns a signed integer value. Unsigned and big values that fit
// int64 are converted.
func (v *Value) AsInt64() (int64, error) {
	if err := v.expect(KindInt); err != nil {
		return 0, err
	}
	b := v.AsBigInt()
	if !b.IsInt64() {
		return 0, fmt.Errorf("jdata: integer %s overflows int64", b)
	}
	return b.Int64(), nil
}

// AsUint64 returns an unsigned integer value.
func (v *Value) AsUint64() (uint64, error) {
	if err := v.expect(KindInt); err != nil {
		return 0, err
	}
	b := v.AsBigInt()
	if !b.IsUint64() {
		return 0, fmt.Errorf("jdata: integer %s overflows uint64", b)
	}
	return b.Uint64(), nil
}

// AsBigInt returns the integer at full precision, or nil for non-integers.
func (v *Value) AsBigInt() *big.Int {
	if v == nil || v.kind != KindInt {
		return nil
	}
	switch {
	case v.bigVal != nil:
		return new(big.Int).Set(v.bigVal)
	case v.signed:
		return big.NewInt(v.intVal)
	default:
		return new(big.Int).SetUint64(v.uintVal)
	}
}

// FloatWidth returns 32 or 64.
func (v *Value) FloatWidth() int { return int(v.floatWidth) }

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if err := v.expect(KindFloat); err != nil {
		return 0, err
	}
	return v.floatVal, nil
}

// Number returns an int or float value as float64.
func (v *Value) Number() (float64, bool) {
	switch v.Kind() {
	case KindFloat:
		return v.floatVal, true
	case KindInt:
		return v.num().float(), true
	}
	return 0, false
}

func (v *Value) num() num {
	switch v.kind {
	case KindFloat:
		return floatNum(v.floatVal)
	case KindInt:
		switch {
		case v.bigVal != nil:
			return bigNum(v.bigVal)
		case v.signed:
			return intNum(v.intVal)
		default:
			return uintNum(v.uintVal)
		}
	}
	return floatNum(0)
}

// AsText returns the string value.
func (v *Value) AsText() (string, error) {
	if err := v.expect(KindText); err != nil {
		return "", err
	}
	return v.textVal, nil
}

// AsList returns the list elements.
func (v *Value) AsList() ([]*Value, error) {
	if err := v.expect(KindList); err != nil {
		return nil, err
	}
	return v.listVal, nil
}

// AsRecord returns the record fields in insertion order.
func (v *Value) AsRecord() ([]Field, error) {
	if err := v.expect(KindRecord); err != nil {
		return nil, err
	}
	return v.recordVal, nil
}

// AsArray returns the dense array.
func (v *Value) AsArray() (*NDArray, error) {
	if err := v.expect(KindArray); err != nil {
		return nil, err
	}
	return v.arrayVal, nil
}

// AsComplex returns the complex array.
func (v *Value) AsComplex() (*Complex, error) {
	if err := v.expect(KindComplex); err != nil {
		return nil, err
	}
	return v.complexVal, nil
}

// AsSparse returns the sparse matrix.
func (v *Value) AsSparse() (*Sparse, error) {
	if err := v.expect(KindSparse); err != nil {
		return nil, err
	}
	return v.sparseVal, nil
}

// Len returns the length of a list or record, or the element count of an array.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindList:
		return len(v.listVal)
	case KindRecord:
		return len(v.recordVal)
	case KindArray:
		return v.arrayVal.Len()
	case KindComplex:
		return v.complexVal.Real.Len()
	case KindSparse:
		return len(v.sparseVal.Triplets)
	}
	return 0
}

// Get returns a record field by key, or nil.
func (v *Value) Get(key string) *Value {
	if v.Kind() != KindRecord {
		return nil
	}
	for _, f := range v.recordVal {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Index returns the i-th list element.
func (v *Value) Index(i int) (*Value, error) {
	if v.Kind() != KindList {
		return nil, fmt.Errorf("jdata: not a list")
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("jdata: index %d out of bounds (len=%d)", i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// IsStructArray reports whether v is a non-empty list of records that all
// share the same key sequence.
func (v *Value) IsStructArray() bool {
	if v.Kind() != KindList || len(v.listVal) == 0 {
		return false
	}
	var keys []string
	for i, e := range v.listVal {
		if e.Kind() != KindRecord {
			return false
		}
		if i == 0 {
			for _, f := range e.recordVal {
				keys = append(keys, f.Key)
			}
			continue
		}
		if len(e.recordVal) != len(keys) {
			return false
		}
		for j, f := range e.recordVal {
			if f.Key != keys[j] {
				return false
			}
		}
	}
	return true
}

// ============================================================
// Mutators
// ============================================================

// Set sets a record field, appending when the key is new.
func (v *Value) Set(key string, val *Value) {
	if v.kind != KindRecord {
		panic("jdata: cannot set on non-record")
	}
	for i := range v.recordVal {
		if v.recordVal[i].Key == key {
			v.recordVal[i].Value = val
			return
		}
	}
	v.recordVal = append(v.recordVal, Field{Key: key, Value: val})
}

// Append adds a value to a list.
func (v *Value) Append(val *Value) {
	if v.kind != KindList {
		panic("jdata: cannot append to non-list")
	}
	v.listVal = append(v.listVal, val)
}
