package jdata

import "sort"

// Complex is a complex-valued array stored as separate real and imaginary
// parts of identical shape and element type.
type Complex struct {
	Real *NDArray
	Imag *NDArray
}

// NewComplex pairs real and imaginary parts.
func NewComplex(re, im *NDArray) (*Complex, error) {
	if re == nil || im == nil {
		return nil, shapeMismatch("complex array needs both real and imaginary parts")
	}
	if !equalInts(re.shape, im.shape) {
		return nil, shapeMismatch("real shape %v differs from imaginary shape %v", re.shape, im.shape)
	}
	if re.elem != im.elem {
		return nil, typeMismatch("real type %s differs from imaginary type %s", re.elem, im.elem)
	}
	return &Complex{Real: re, Imag: im}, nil
}

// ComplexFrom builds a complex double array from Go complex values.
func ComplexFrom(shape []int, data []complex128) (*Complex, error) {
	re := make([]float64, len(data))
	im := make([]float64, len(data))
	for i, c := range data {
		re[i], im[i] = real(c), imag(c)
	}
	ra, err := NewArray(shape, re)
	if err != nil {
		return nil, err
	}
	ia, err := NewArray(shape, im)
	if err != nil {
		return nil, err
	}
	return NewComplex(ra, ia)
}

// Shape returns the shared shape.
func (c *Complex) Shape() []int { return c.Real.Shape() }

// Triplet is one stored entry of a sparse matrix. Im is used only by
// complex matrices.
type Triplet struct {
	Row, Col int
	Re, Im   float64
}

// Sparse is a 2-D matrix holding only its nonzero entries. An empty triplet
// list with a preserved shape represents an all-zero matrix.
type Sparse struct {
	Rows, Cols int
	Triplets   []Triplet
	IsComplex  bool
}

// NewSparse validates and orders triplets column-major (by column, then row).
func NewSparse(rows, cols int, triplets []Triplet, isComplex bool) (*Sparse, error) {
	if rows < 0 || cols < 0 {
		return nil, shapeMismatch("sparse shape %dx%d is negative", rows, cols)
	}
	ts := append([]Triplet(nil), triplets...)
	for i, t := range ts {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			return nil, shapeMismatch("triplet %d at (%d,%d) outside %dx%d", i, t.Row, t.Col, rows, cols)
		}
		if t.Re == 0 && (!isComplex || t.Im == 0) {
			return nil, typeMismatch("triplet %d at (%d,%d) is zero", i, t.Row, t.Col)
		}
		if !isComplex && t.Im != 0 {
			return nil, typeMismatch("triplet %d has an imaginary part in a real matrix", i)
		}
	}
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Col != ts[j].Col {
			return ts[i].Col < ts[j].Col
		}
		return ts[i].Row < ts[j].Row
	})
	for i := 1; i < len(ts); i++ {
		if ts[i].Row == ts[i-1].Row && ts[i].Col == ts[i-1].Col {
			return nil, shapeMismatch("duplicate triplet at (%d,%d)", ts[i].Row, ts[i].Col)
		}
	}
	if ts == nil {
		ts = []Triplet{}
	}
	return &Sparse{Rows: rows, Cols: cols, Triplets: ts, IsComplex: isComplex}, nil
}

// SparseFromDense collects the nonzeros of a 2-D (or 1-D, as a column) array.
func SparseFromDense(a *NDArray) (*Sparse, error) {
	rows, cols, err := matrixDims(a)
	if err != nil {
		return nil, err
	}
	var ts []Triplet
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			if v := a.Float64At(i*cols + j); v != 0 {
				ts = append(ts, Triplet{Row: i, Col: j, Re: v})
			}
		}
	}
	return NewSparse(rows, cols, ts, false)
}

// Dense expands a real sparse matrix into a rows x cols double array.
// For complex matrices use DenseComplex.
func (s *Sparse) Dense() *NDArray {
	data := make([]float64, s.Rows*s.Cols)
	for _, t := range s.Triplets {
		data[t.Row*s.Cols+t.Col] = t.Re
	}
	return MustArray([]int{s.Rows, s.Cols}, data)
}

// DenseComplex expands a sparse matrix into a complex double array.
func (s *Sparse) DenseComplex() *Complex {
	re := make([]float64, s.Rows*s.Cols)
	im := make([]float64, s.Rows*s.Cols)
	for _, t := range s.Triplets {
		re[t.Row*s.Cols+t.Col] = t.Re
		im[t.Row*s.Cols+t.Col] = t.Im
	}
	shape := []int{s.Rows, s.Cols}
	return &Complex{Real: MustArray(shape, re), Imag: MustArray(shape, im)}
}

func matrixDims(a *NDArray) (int, int, error) {
	switch len(a.shape) {
	case 1:
		return a.shape[0], 1, nil
	case 2:
		return a.shape[0], a.shape[1], nil
	default:
		return 0, 0, shapeMismatch("expected a 1-D or 2-D array, got %d dimensions", len(a.shape))
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
