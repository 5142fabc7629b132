package jdata

import (
	"fmt"
	"math/big"
	"sort"

	json "github.com/goccy/go-json"
)

// FromGo converts common Go values into a Value. Maps become records with
// sorted keys; numeric slices become 1-D arrays of the matching type.
func FromGo(x any) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int8:
		return Int8(t), nil
	case int16:
		return Int16(t), nil
	case int32:
		return Int32(t), nil
	case int64:
		return Int64(t), nil
	case uint:
		return Uint64(uint64(t)), nil
	case uint8:
		return Uint8(t), nil
	case uint16:
		return Uint16(t), nil
	case uint32:
		return Uint32(t), nil
	case uint64:
		return Uint64(t), nil
	case *big.Int:
		return BigInt(t), nil
	case float32:
		return Float32(t), nil
	case float64:
		return Float64(t), nil
	case json.Number:
		n, err := parseNumLiteral(string(t))
		if err != nil {
			return nil, typeMismatch("%v", err)
		}
		return numValue(n), nil
	case string:
		return Text(t), nil
	case []float64:
		return Array(Vector(t...)), nil
	case []float32:
		return vectorOf(t)
	case []int8:
		return vectorOf(t)
	case []uint8:
		return vectorOf(t)
	case []int16:
		return vectorOf(t)
	case []uint16:
		return vectorOf(t)
	case []int32:
		return vectorOf(t)
	case []uint32:
		return vectorOf(t)
	case []int64:
		return vectorOf(t)
	case []uint64:
		return vectorOf(t)
	case [][]float64:
		a, err := Matrix(t)
		if err != nil {
			return nil, err
		}
		return Array(a), nil
	case []complex128:
		c, err := ComplexFrom([]int{len(t)}, t)
		if err != nil {
			return nil, err
		}
		return ComplexArray(c), nil
	case *NDArray:
		return Array(t), nil
	case *Complex:
		return ComplexArray(t), nil
	case *Sparse:
		return SparseMatrix(t), nil
	case []any:
		items := make([]*Value, len(t))
		for i, e := range t {
			v, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = v
		}
		return List(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rec := &Value{kind: KindRecord, recordVal: make([]Field, 0, len(keys))}
		for _, k := range keys {
			v, err := FromGo(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			rec.recordVal = append(rec.recordVal, Field{Key: k, Value: v})
		}
		return rec, nil
	}
	return nil, typeMismatch("unsupported Go type %T", x)
}

func vectorOf[T Number](data []T) (*Value, error) {
	a, err := NewArray([]int{len(data)}, append([]T(nil), data...))
	if err != nil {
		return nil, err
	}
	return Array(a), nil
}

// ToGo converts a Value into plain Go values: nil, bool, int64, uint64,
// *big.Int, float64, string, []any and map[string]any. Arrays become
// nested []any in row-major order; complex elements become complex128 and
// sparse matrices are expanded to dense.
func ToGo(v *Value) any {
	switch v.Kind() {
	case KindBool:
		return v.boolVal
	case KindInt:
		switch n := v.num(); n.kind {
		case numInt:
			return n.i
		case numUint:
			return n.u
		default:
			return n.b
		}
	case KindFloat:
		return v.floatVal
	case KindText:
		return v.textVal
	case KindList:
		out := make([]any, len(v.listVal))
		for i, e := range v.listVal {
			out[i] = ToGo(e)
		}
		return out
	case KindRecord:
		out := make(map[string]any, len(v.recordVal))
		for _, f := range v.recordVal {
			out[f.Key] = ToGo(f.Value)
		}
		return out
	case KindArray:
		a := v.arrayVal
		return nestAny(a.shape, 0, func(i int) any { return numAny(a.numAt(i)) })
	case KindComplex:
		c := v.complexVal
		return nestAny(c.Real.shape, 0, func(i int) any {
			return complex(c.Real.Float64At(i), c.Imag.Float64At(i))
		})
	case KindSparse:
		if v.sparseVal.IsComplex {
			return ToGo(ComplexArray(v.sparseVal.DenseComplex()))
		}
		return ToGo(Array(v.sparseVal.Dense()))
	}
	return nil
}

func numAny(n num) any {
	switch n.kind {
	case numInt:
		return n.i
	case numUint:
		return n.u
	case numBig:
		return n.b
	}
	return n.f
}

func nestAny(shape []int, base int, at func(int) any) any {
	if len(shape) == 0 {
		return []any{}
	}
	stride := product(shape[1:])
	out := make([]any, shape[0])
	for i := range out {
		if len(shape) == 1 {
			out[i] = at(base + i)
		} else {
			out[i] = nestAny(shape[1:], base+i*stride, at)
		}
	}
	return out
}

// ToJSON renders v as plain JSON without JData annotations. Arrays lose
// their element type; complex values are written as {"re","im"} pairs.
func ToJSON(v *Value) ([]byte, error) {
	return json.Marshal(plainJSON(ToGo(v)))
}

func plainJSON(x any) any {
	switch t := x.(type) {
	case []any:
		for i, e := range t {
			t[i] = plainJSON(e)
		}
	case map[string]any:
		for k, e := range t {
			t[k] = plainJSON(e)
		}
	case complex128:
		return map[string]float64{"re": real(t), "im": imag(t)}
	}
	return x
}
