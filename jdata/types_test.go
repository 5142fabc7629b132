package jdata

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArray_ShapeChecks(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		data  []float64
		ok    bool
	}{
		{"vector", []int{3}, []float64{1, 2, 3}, true},
		{"matrix", []int{2, 2}, []float64{1, 2, 3, 4}, true},
		{"empty", []int{}, nil, true},
		{"zero_dim", []int{0, 3}, []float64{}, true},
		{"too_few", []int{2, 2}, []float64{1, 2, 3}, false},
		{"negative", []int{-1}, []float64{}, false},
		{"count_overflow", []int{1 << 32, 1 << 32}, []float64{}, false},
		{"dimensionless_with_data", []int{}, []float64{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArray(tt.shape, tt.data)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrShapeMismatch)
			}
		})
	}
}

func TestNDArray_Accessors(t *testing.T) {
	a := MustArray([]int{2, 3}, []int16{1, 2, 3, 4, 5, 6})
	assert.Equal(t, ElemInt16, a.ElemType())
	assert.Equal(t, []int{2, 3}, a.Shape())
	assert.Equal(t, 2, a.NDim())
	assert.Equal(t, 6, a.Len())
	assert.Equal(t, 6.0, a.At(1, 2))
	assert.Equal(t, 4.0, a.Float64At(3))

	raw, ok := Elements[int16](a)
	require.True(t, ok)
	assert.Equal(t, []int16{1, 2, 3, 4, 5, 6}, raw)
	_, ok = Elements[float64](a)
	assert.False(t, ok)

	shape := a.Shape()
	shape[0] = 99
	assert.Equal(t, []int{2, 3}, a.Shape(), "Shape returns a copy")
}

func TestMatrix(t *testing.T) {
	m, err := Matrix([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, m.Shape())
	assert.Equal(t, 3.0, m.At(1, 0))

	_, err = Matrix([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestZeros(t *testing.T) {
	z, err := Zeros(ElemUint8, []int{2, 2})
	require.NoError(t, err)
	raw, ok := Elements[uint8](z)
	require.True(t, ok)
	assert.Equal(t, []uint8{0, 0, 0, 0}, raw)
}

func TestNewComplex(t *testing.T) {
	re := Vector(1, 2)
	_, err := NewComplex(re, Vector(1, 2, 3))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewComplex(re, MustArray([]int{2}, []float32{1, 2}))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	c, err := ComplexFrom([]int{2}, []complex128{complex(1, -1), complex(0, 2)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, c.Real.Float64s())
	assert.Equal(t, []float64{-1, 2}, c.Imag.Float64s())
}

func TestNewSparse(t *testing.T) {
	s, err := NewSparse(3, 2, []Triplet{
		{Row: 2, Col: 1, Re: 5},
		{Row: 0, Col: 1, Re: 4},
		{Row: 1, Col: 0, Re: 3},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []Triplet{
		{Row: 1, Col: 0, Re: 3},
		{Row: 0, Col: 1, Re: 4},
		{Row: 2, Col: 1, Re: 5},
	}, s.Triplets, "triplets are ordered by column then row")
	assert.Equal(t, []float64{0, 4, 3, 0, 0, 5}, s.Dense().Float64s())

	tests := []struct {
		name string
		ts   []Triplet
		err  error
	}{
		{"out_of_range", []Triplet{{Row: 3, Col: 0, Re: 1}}, ErrShapeMismatch},
		{"zero_entry", []Triplet{{Row: 0, Col: 0}}, ErrTypeMismatch},
		{"imag_in_real", []Triplet{{Row: 0, Col: 0, Re: 1, Im: 1}}, ErrTypeMismatch},
		{"duplicate", []Triplet{{Row: 0, Col: 0, Re: 1}, {Row: 0, Col: 0, Re: 2}}, ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSparse(3, 2, tt.ts, false)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	empty, err := NewSparse(2, 3, nil, false)
	require.NoError(t, err)
	assert.Empty(t, empty.Triplets)
	assert.Equal(t, []int{2, 3}, empty.Dense().Shape())
}

func TestSparseFromDense(t *testing.T) {
	s, err := SparseFromDense(Vector(0, 7, 0, 9))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 1, s.Cols)
	assert.Equal(t, []Triplet{{Row: 1, Col: 0, Re: 7}, {Row: 3, Col: 0, Re: 9}}, s.Triplets)
}

func TestValue_Accessors(t *testing.T) {
	n, err := Uint32(7).AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = Uint64(math.MaxUint64).AsInt64()
	assert.Error(t, err)

	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	b := BigInt(huge)
	assert.True(t, b.IsBig())
	assert.Equal(t, 0, b.AsBigInt().Cmp(huge))

	bits, signed := Int16(-3).IntWidth()
	assert.Equal(t, 16, bits)
	assert.True(t, signed)
	assert.Equal(t, 32, Float32(1.5).FloatWidth())

	_, err = Text("x").AsFloat()
	assert.Error(t, err)

	f, ok := Int8(-2).Number()
	assert.True(t, ok)
	assert.Equal(t, -2.0, f)
}

func TestRecord(t *testing.T) {
	_, err := Record(F("a", Int(1)), F("a", Int(2)))
	assert.Error(t, err)

	r := MustRecord(F("b", Int(1)), F("a", Int(2)))
	r.Set("c", Text("x"))
	r.Set("b", Bool(true))
	fields, err := r.AsRecord()
	require.NoError(t, err)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys, "insertion order is kept")
	assert.True(t, Equal(Bool(true), r.Get("b")))
	assert.Nil(t, r.Get("missing"))
}

func TestIsStructArray(t *testing.T) {
	rec := func(a, b int) *Value { return MustRecord(F("x", Int(a)), F("y", Int(b))) }
	assert.True(t, List(rec(1, 2), rec(3, 4)).IsStructArray())
	assert.False(t, List(rec(1, 2), MustRecord(F("y", Int(1)), F("x", Int(2)))).IsStructArray())
	assert.False(t, List(rec(1, 2), Int(3)).IsStructArray())
	assert.False(t, List().IsStructArray())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Value
		want bool
	}{
		{"nan", Float64(math.NaN()), Float64(math.NaN()), true},
		{"int_widths", Int8(5), Uint64(5), true},
		{"int_vs_float", Int(1), Float64(1), false},
		{"null_nil", Null(), nil, true},
		{"array_types", Array(Vector(1, 2)), Array(MustArray([]int{2}, []float32{1, 2})), false},
		{"array_shapes", Array(Vector(1, 2)), Array(MustArray([]int{1, 2}, []float64{1, 2})), false},
		{"list", List(Int(1), Text("a")), List(Int(1), Text("a")), true},
		{"record_order", MustRecord(F("a", Int(1)), F("b", Int(2))), MustRecord(F("b", Int(2)), F("a", Int(1))), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}
