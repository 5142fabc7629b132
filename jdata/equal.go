package jdata

import "math"

// Equal reports whether two values are structurally equal. Integers and
// floats compare by value regardless of declared width, and NaN equals
// NaN. Array element types and shapes must match exactly.
func Equal(a, b *Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInt:
		return a.AsBigInt().Cmp(b.AsBigInt()) == 0
	case KindFloat:
		return floatsEqual(a.floatVal, b.floatVal)
	case KindText:
		return a.textVal == b.textVal
	case KindList:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for i := range a.listVal {
			if !Equal(a.listVal[i], b.listVal[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if len(a.recordVal) != len(b.recordVal) {
			return false
		}
		for i, f := range a.recordVal {
			g := b.recordVal[i]
			if f.Key != g.Key || !Equal(f.Value, g.Value) {
				return false
			}
		}
		return true
	case KindArray:
		return ArraysEqual(a.arrayVal, b.arrayVal)
	case KindComplex:
		return ArraysEqual(a.complexVal.Real, b.complexVal.Real) &&
			ArraysEqual(a.complexVal.Imag, b.complexVal.Imag)
	case KindSparse:
		return sparseEqual(a.sparseVal, b.sparseVal)
	}
	return false
}

// ArraysEqual compares element type, shape and every element.
func ArraysEqual(a, b *NDArray) bool {
	if a.elem != b.elem || !equalInts(a.shape, b.shape) || a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !numsEqual(a.numAt(i), b.numAt(i)) {
			return false
		}
	}
	return true
}

func numsEqual(x, y num) bool {
	if x.kind == numFloat || y.kind == numFloat {
		return floatsEqual(x.float(), y.float())
	}
	bx, _ := x.integral()
	by, _ := y.integral()
	return bx.Cmp(by) == 0
}

func floatsEqual(x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.IsNaN(x) && math.IsNaN(y)
	}
	return x == y
}

func sparseEqual(a, b *Sparse) bool {
	if a.Rows != b.Rows || a.Cols != b.Cols || a.IsComplex != b.IsComplex || len(a.Triplets) != len(b.Triplets) {
		return false
	}
	for i, t := range a.Triplets {
		u := b.Triplets[i]
		if t.Row != u.Row || t.Col != u.Col || !floatsEqual(t.Re, u.Re) || !floatsEqual(t.Im, u.Im) {
			return false
		}
	}
	return true
}
