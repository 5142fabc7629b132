package jdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mat(t *testing.T, rows [][]float64) *NDArray {
	t.Helper()
	a, err := Matrix(rows)
	require.NoError(t, err)
	return a
}

func TestDetectShape(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
		want string
	}{
		{"diagonal", [][]float64{{1, 0, 0}, {0, 2, 0}, {0, 0, 3}}, "diag"},
		{"symmetric_band", [][]float64{{1, 2, 0, 0}, {2, 3, 4, 0}, {0, 4, 5, 6}, {0, 0, 6, 7}}, "lowersymmband[1]"},
		{"lower_band", [][]float64{{1, 0, 0, 0}, {2, 3, 0, 0}, {0, 4, 5, 0}, {0, 0, 6, 7}}, "lowerband[1]"},
		{"upper_band", [][]float64{{1, 2, 0, 0}, {0, 3, 4, 0}, {0, 0, 5, 6}, {0, 0, 0, 7}}, "upperband[1]"},
		{"lower_band_tie", [][]float64{{1, 0, 0}, {2, 3, 0}, {0, 4, 5}}, "lowerband[1]"},
		{"upper_band_tie", [][]float64{{1, 2, 0}, {0, 3, 4}, {0, 0, 5}}, "upperband[1]"},
		{"band", [][]float64{{1, 9, 0, 0, 0}, {2, 3, 8, 0, 0}, {5, 4, 5, 7, 0}, {0, 6, 6, 7, 6}, {0, 0, 7, 8, 9}}, "band[2 1]"},
		{"lower", [][]float64{{1, 0, 0}, {2, 3, 0}, {4, 5, 6}}, "lower"},
		{"upper", [][]float64{{1, 2, 3}, {0, 4, 5}, {0, 0, 6}}, "upper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DetectShape(mat(t, tt.rows))
			require.NotNil(t, d)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDetectShape_None(t *testing.T) {
	assert.Nil(t, DetectShape(mat(t, [][]float64{{1, 2}, {3, 4}})))
	assert.Nil(t, DetectShape(Vector(1, 0, 0)))
	assert.Nil(t, DetectShape(mat(t, [][]float64{{1, 0, 0}})))
}

func TestReduceReconstruct_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		d    ShapeDescriptor
		rows [][]float64
	}{
		{"diag", Diagonal(), [][]float64{{1, 0, 0}, {0, 2, 0}, {0, 0, 3}}},
		{"lower", LowerTriangular(), [][]float64{{1, 0, 0}, {2, 3, 0}, {4, 5, 6}, {7, 8, 9}}},
		{"upper", UpperTriangular(), [][]float64{{1, 2, 3, 4}, {0, 5, 6, 7}, {0, 0, 8, 9}}},
		{"lowerband", LowerBand(1), [][]float64{{1, 0, 0, 0}, {2, 3, 0, 0}, {0, 4, 5, 0}, {0, 0, 6, 7}}},
		{"upperband", UpperBand(2), [][]float64{{1, 2, 3, 0}, {0, 4, 5, 6}, {0, 0, 7, 8}, {0, 0, 0, 9}}},
		{"band", Band(1, 1), [][]float64{{1, 2, 0, 0}, {3, 4, 5, 0}, {0, 6, 7, 8}, {0, 0, 9, 1}}},
		{"symmband", SymmetricBand(1), [][]float64{{1, 2, 0}, {2, 3, 4}, {0, 4, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mat(t, tt.rows)
			z, err := ReduceShape(a, tt.d)
			require.NoError(t, err)
			assert.Equal(t, tt.d.ZipShape(len(tt.rows), len(tt.rows[0])), z.Shape())
			assert.Less(t, z.Len(), a.Len())

			back, err := ReconstructShape(z, tt.d, a.Shape())
			require.NoError(t, err)
			assert.True(t, ArraysEqual(a, back))
			assert.Equal(t, &tt.d, back.ShapeHint())
		})
	}
}

func TestReduceShape_LowerBandLayout(t *testing.T) {
	a := mat(t, [][]float64{{1, 0, 0, 0}, {2, 3, 0, 0}, {0, 4, 5, 0}, {0, 0, 6, 7}})
	z, err := ReduceShape(a, LowerBand(1))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, z.Shape())
	assert.Equal(t, []float64{1, 3, 5, 7, 2, 4, 6, 0}, z.Float64s())
}

func TestReduceShape_Errors(t *testing.T) {
	_, err := ReduceShape(mat(t, [][]float64{{1, 2}, {3, 4}}), Diagonal())
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = ReduceShape(Vector(1, 2), LowerTriangular())
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = ReconstructShape(Vector(1, 2), Diagonal(), []int{3, 3})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestParseShapeDescriptor(t *testing.T) {
	d, err := ParseShapeDescriptor("band", []int{2, 1})
	require.NoError(t, err)
	assert.Equal(t, Band(2, 1), d)

	d, err = ParseShapeDescriptor("symmband", []int{3})
	require.NoError(t, err)
	assert.Equal(t, SymmetricBand(3), d)

	_, err = ParseShapeDescriptor("lowerband", nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ParseShapeDescriptor("toeplitz", nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
