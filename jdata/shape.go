package jdata

import "fmt"

// ShapeKind classifies a structured matrix.
type ShapeKind uint8

const (
	ShapeDiagonal ShapeKind = iota + 1
	ShapeLower
	ShapeUpper
	ShapeLowerBand
	ShapeUpperBand
	ShapeBand
	ShapeSymmBand
)

// ShapeDescriptor describes the zero structure of a 2-D matrix so it can be
// stored in reduced form. Lower and Upper are the band widths below and
// above the main diagonal; they are unused for Diagonal, Lower and Upper.
type ShapeDescriptor struct {
	Kind  ShapeKind
	Lower int
	Upper int
}

// Descriptor constructors.
func Diagonal() ShapeDescriptor { return ShapeDescriptor{Kind: ShapeDiagonal} }
func LowerTriangular() ShapeDescriptor { return ShapeDescriptor{Kind: ShapeLower} }
func UpperTriangular() ShapeDescriptor { return ShapeDescriptor{Kind: ShapeUpper} }
func LowerBand(w int) ShapeDescriptor { return ShapeDescriptor{Kind: ShapeLowerBand, Lower: w} }
func UpperBand(w int) ShapeDescriptor { return ShapeDescriptor{Kind: ShapeUpperBand, Upper: w} }
func Band(lower, upper int) ShapeDescriptor { return ShapeDescriptor{Kind: ShapeBand, Lower: lower, Upper: upper} }
func SymmetricBand(w int) ShapeDescriptor { return ShapeDescriptor{Kind: ShapeSymmBand, Lower: w, Upper: w} }

// Name returns the _ArrayShape_ name.
func (d ShapeDescriptor) Name() string {
	switch d.Kind {
	case ShapeDiagonal:
		return "diag"
	case ShapeLower:
		return "lower"
	case ShapeUpper:
		return "upper"
	case ShapeLowerBand:
		return "lowerband"
	case ShapeUpperBand:
		return "upperband"
	case ShapeBand:
		return "band"
	case ShapeSymmBand:
		return "lowersymmband"
	default:
		return "unknown"
	}
}

// Params returns the descriptor parameters in wire order.
func (d ShapeDescriptor) Params() []int {
	switch d.Kind {
	case ShapeLowerBand, ShapeSymmBand:
		return []int{d.Lower}
	case ShapeUpperBand:
		return []int{d.Upper}
	case ShapeBand:
		return []int{d.Lower, d.Upper}
	default:
		return nil
	}
}

func (d ShapeDescriptor) String() string {
	if p := d.Params(); len(p) > 0 {
		return fmt.Sprintf("%s%v", d.Name(), p)
	}
	return d.Name()
}

// ParseShapeDescriptor builds a descriptor from its wire name and parameters.
func ParseShapeDescriptor(name string, params []int) (ShapeDescriptor, error) {
	need := func(n int) error {
		if len(params) != n {
			return typeMismatch("_ArrayShape_ %q takes %d parameters, got %d", name, n, len(params))
		}
		for _, p := range params {
			if p < 0 {
				return typeMismatch("_ArrayShape_ %q has negative parameter %d", name, p)
			}
		}
		return nil
	}
	var d ShapeDescriptor
	var err error
	switch name {
	case "diag":
		d, err = Diagonal(), need(0)
	case "lower":
		d, err = LowerTriangular(), need(0)
	case "upper":
		d, err = UpperTriangular(), need(0)
	case "lowerband":
		if err = need(1); err == nil {
			d = LowerBand(params[0])
		}
	case "upperband":
		if err = need(1); err == nil {
			d = UpperBand(params[0])
		}
	case "band":
		if err = need(2); err == nil {
			d = Band(params[0], params[1])
		}
	case "lowersymmband", "symmband":
		if err = need(1); err == nil {
			d = SymmetricBand(params[0])
		}
	default:
		err = typeMismatch("unknown _ArrayShape_ %q", name)
	}
	return d, err
}

// bands returns the lower/upper widths of band storage, and false for the
// packed triangular kinds.
func (d ShapeDescriptor) bands() (lower, upper int, banded bool) {
	switch d.Kind {
	case ShapeDiagonal:
		return 0, 0, true
	case ShapeLowerBand, ShapeSymmBand:
		return d.Lower, 0, true
	case ShapeUpperBand:
		return 0, d.Upper, true
	case ShapeBand:
		return d.Lower, d.Upper, true
	}
	return 0, 0, false
}

// ZipShape returns the reduced storage shape for a rows x cols matrix.
func (d ShapeDescriptor) ZipShape(rows, cols int) []int {
	if l, u, ok := d.bands(); ok {
		return []int{l + u + 1, cols}
	}
	if d.Kind == ShapeLower {
		return []int{lowerPackedLen(rows, cols)}
	}
	return []int{upperPackedLen(rows, cols)}
}

// lowerPackedLen counts the entries on or below the diagonal.
func lowerPackedLen(rows, cols int) int {
	m := min(rows, cols)
	return m*rows - m*(m-1)/2
}

// upperPackedLen counts the entries on or above the diagonal.
func upperPackedLen(rows, cols int) int {
	m := min(rows, cols)
	return m*(m+1)/2 + (cols-m)*rows
}

// inSupport reports whether (i, j) may be nonzero under d.
func (d ShapeDescriptor) inSupport(i, j int) bool {
	switch d.Kind {
	case ShapeLower:
		return i >= j
	case ShapeUpper:
		return i <= j
	case ShapeSymmBand:
		return i-j <= d.Lower && j-i <= d.Lower
	}
	l, u, _ := d.bands()
	return i-j <= l && j-i <= u
}

// Fits reports whether every nonzero of a lies inside the descriptor's
// support (and, for the symmetric kind, whether a is symmetric).
func (d ShapeDescriptor) Fits(parts ...*NDArray) bool {
	a := parts[0]
	if len(a.shape) != 2 {
		return false
	}
	rows, cols := a.shape[0], a.shape[1]
	if d.Kind == ShapeSymmBand && (rows != cols || !symmetric(parts)) {
		return false
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !d.inSupport(i, j) && !zeroAt(parts, i*cols+j) {
				return false
			}
		}
	}
	return true
}

func zeroAt(parts []*NDArray, k int) bool {
	for _, p := range parts {
		if !p.isZeroAt(k) {
			return false
		}
	}
	return true
}

func symmetric(parts []*NDArray) bool {
	n := parts[0].shape[0]
	for _, p := range parts {
		for i := 0; i < n; i++ {
			for j := 0; j < i; j++ {
				if p.numAt(i*n+j).float() != p.numAt(j*n+i).float() {
					return false
				}
			}
		}
	}
	return true
}

// DetectShape classifies a 2-D matrix (real, or the real and imaginary
// parts of a complex matrix together). Candidates are tried in the order
// diagonal, symmetric band, one-sided band, two-sided band, triangular.
// A one-sided band wins over the triangular kind unless it needs more
// storage, and a two-sided band must be strictly smaller than the full
// matrix. Vectors and matrices with no reduction return nil.
func DetectShape(parts ...*NDArray) *ShapeDescriptor {
	a := parts[0]
	if len(a.shape) != 2 || a.shape[0] < 2 || a.shape[1] < 2 {
		return nil
	}
	rows, cols := a.shape[0], a.shape[1]
	bl, bu := 0, 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if zeroAt(parts, i*cols+j) {
				continue
			}
			if i-j > bl {
				bl = i - j
			}
			if j-i > bu {
				bu = j - i
			}
		}
	}
	full := rows * cols
	pick := func(d ShapeDescriptor) *ShapeDescriptor { return &d }

	if bl == 0 && bu == 0 {
		return pick(Diagonal())
	}
	if rows == cols && bl == bu && (bl+1)*cols < full && symmetric(parts) {
		return pick(SymmetricBand(bl))
	}
	if bu == 0 && (bl+1)*cols <= lowerPackedLen(rows, cols) {
		return pick(LowerBand(bl))
	}
	if bl == 0 && (bu+1)*cols <= upperPackedLen(rows, cols) {
		return pick(UpperBand(bu))
	}
	if bl > 0 && bu > 0 && (bl+bu+1)*cols < full {
		return pick(Band(bl, bu))
	}
	if bu == 0 && lowerPackedLen(rows, cols) < full {
		return pick(LowerTriangular())
	}
	if bl == 0 && upperPackedLen(rows, cols) < full {
		return pick(UpperTriangular())
	}
	return nil
}

// ReduceShape extracts the stored band or triangle of a. The returned
// array's shape is the descriptor's zip shape. Band kinds use LAPACK band
// layout (row u+i-j, column j); triangular kinds pack columns in order.
func ReduceShape(a *NDArray, d ShapeDescriptor) (*NDArray, error) {
	if len(a.shape) != 2 {
		return nil, shapeMismatch("shape reduction needs a 2-D array, got %d dimensions", len(a.shape))
	}
	if !d.Fits(a) {
		return nil, shapeMismatch("array does not have %s structure", d)
	}
	rows, cols := a.shape[0], a.shape[1]
	zs := d.ZipShape(rows, cols)
	out := &NDArray{elem: a.elem, shape: zs, data: makeData(a.elem, product(zs))}
	k := 0
	copyAt := func(dst, i, j int) {
		_ = out.set(dst, a.numAt(i*cols+j))
	}
	if l, u, ok := d.bands(); ok {
		for r := 0; r < l+u+1; r++ {
			for j := 0; j < cols; j++ {
				if i := j + r - u; i >= 0 && i < rows {
					copyAt(r*cols+j, i, j)
				}
			}
		}
		return out, nil
	}
	for j := 0; j < cols; j++ {
		lo, hi := j, rows-1
		if d.Kind == ShapeUpper {
			lo, hi = 0, min(j, rows-1)
		}
		for i := lo; i <= hi; i++ {
			copyAt(k, i, j)
			k++
		}
	}
	return out, nil
}

// ReconstructShape is the inverse of ReduceShape: it expands zipped storage
// into a fullShape matrix, zero-filling outside the descriptor's support.
func ReconstructShape(zipped *NDArray, d ShapeDescriptor, fullShape []int) (*NDArray, error) {
	if len(fullShape) != 2 {
		return nil, shapeMismatch("_ArrayShape_ needs a 2-D _ArraySize_, got %v", fullShape)
	}
	rows, cols := fullShape[0], fullShape[1]
	if d.Kind == ShapeSymmBand && rows != cols {
		return nil, shapeMismatch("symmetric band matrix must be square, got %dx%d", rows, cols)
	}
	if _, err := shapeProduct(fullShape); err != nil {
		return nil, err
	}
	zs := d.ZipShape(rows, cols)
	zn, err := shapeProduct(zs)
	if err != nil {
		return nil, err
	}
	if zn != zipped.Len() {
		return nil, shapeMismatch("%s storage for %dx%d needs %d elements, got %d", d, rows, cols, zn, zipped.Len())
	}
	out := &NDArray{elem: zipped.elem, shape: []int{rows, cols}, data: makeData(zipped.elem, rows*cols)}
	if l, u, ok := d.bands(); ok {
		for r := 0; r < l+u+1; r++ {
			for j := 0; j < cols; j++ {
				i := j + r - u
				if i < 0 || i >= rows {
					continue
				}
				v := zipped.numAt(r*cols + j)
				_ = out.set(i*cols+j, v)
				if d.Kind == ShapeSymmBand {
					_ = out.set(j*cols+i, v)
				}
			}
		}
		out.desc = &d
		return out, nil
	}
	k := 0
	for j := 0; j < cols; j++ {
		lo, hi := j, rows-1
		if d.Kind == ShapeUpper {
			lo, hi = 0, min(j, rows-1)
		}
		for i := lo; i <= hi; i++ {
			_ = out.set(i*cols+j, zipped.numAt(k))
			k++
		}
	}
	out.desc = &d
	return out, nil
}
