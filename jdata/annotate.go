package jdata

import (
	"encoding/base64"
	"encoding/binary"
)

// ============================================================
// Decoding annotated arrays
// ============================================================

func (b *builder) decodeAnnotation(n *node) (*Value, error) {
	elem := ElemDouble
	if t := n.field(keyArrayType); t != nil {
		name, err := nodeString(t)
		if err != nil {
			return nil, err
		}
		var ok bool
		if elem, ok = ParseElemType(name); !ok {
			return nil, typeMismatch("unsupported _ArrayType_ %q", name)
		}
	}
	isComplex, err := nodeFlag(n.field(keyArrayIsComplex))
	if err != nil {
		return nil, err
	}
	isSparse, err := nodeFlag(n.field(keyArrayIsSparse))
	if err != nil {
		return nil, err
	}
	var size, zipSize []int
	if f := n.field(keyArraySize); f != nil {
		if size, err = b.nodeInts(f); err != nil {
			return nil, err
		}
	}
	if f := n.field(keyArrayZipSize); f != nil {
		if zipSize, err = b.nodeInts(f); err != nil {
			return nil, err
		}
	}
	var desc *ShapeDescriptor
	if f := n.field(keyArrayShape); f != nil {
		d, err := b.nodeShape(f)
		if err != nil {
			return nil, err
		}
		desc = &d
	}

	k := 1
	switch {
	case isSparse && isComplex:
		k = 4
	case isSparse:
		k = 3
	case isComplex:
		k = 2
	}

	var rows [][]num
	if zt := n.field(keyArrayZipType); zt != nil {
		rows, err = b.unzipPayload(n, zt, elem, k, size, zipSize, desc, isSparse)
	} else if d := n.field(keyArrayData); d != nil {
		rows, err = b.dataRows(d, k, isSparse, size)
	} else {
		return nil, shapeMismatch("annotated array has neither %s nor %s", keyArrayData, keyArrayZipData)
	}
	if err != nil {
		return nil, err
	}

	if isSparse {
		s, err := sparseFromRows(rows, size, isComplex)
		if err != nil {
			return nil, err
		}
		return SparseMatrix(s), nil
	}
	if size == nil {
		size = []int{len(rows[0])}
	}
	parts := make([]*NDArray, len(rows))
	for i, r := range rows {
		if parts[i], err = b.denseFromRow(elem, r, size, desc); err != nil {
			return nil, err
		}
	}
	if isComplex {
		c, err := NewComplex(parts[0], parts[1])
		if err != nil {
			return nil, err
		}
		return ComplexArray(c), nil
	}
	return Array(parts[0]), nil
}

// denseFromRow rebuilds one real part from numbers listed in the
// version's data order, expanding reduced storage when desc is set.
func (b *builder) denseFromRow(elem ElemType, row []num, size []int, desc *ShapeDescriptor) (*NDArray, error) {
	target := size
	if desc != nil {
		if len(size) != 2 {
			return nil, shapeMismatch("_ArrayShape_ needs a 2-D _ArraySize_, got %v", size)
		}
		if _, err := shapeProduct(size); err != nil {
			return nil, err
		}
		target = desc.ZipShape(size[0], size[1])
	}
	a, err := arrayFromNums(elem, target, row)
	if err != nil {
		return nil, err
	}
	if !b.opts.FormatVersion.revised() {
		a = a.transposeOrder(false)
	}
	if desc != nil {
		return ReconstructShape(a, *desc, size)
	}
	return a, nil
}

func (b *builder) dataRows(d *node, k int, isSparse bool, size []int) ([][]num, error) {
	nums, shape, err := b.nodeNums(d)
	if err != nil {
		return nil, err
	}
	if k == 1 {
		return [][]num{nums}, nil
	}
	if len(nums) == 0 {
		return make([][]num, k), nil
	}
	if isSparse && len(size) == 2 && size[1] == 1 && len(shape) == 2 && shape[0] != k && shape[1] != k {
		// Column-vector short form: [rows, values(, imag)].
		k--
	}
	if len(shape) == 2 {
		byRow := shape[0] == k
		if shape[1] == k && (!byRow || !b.opts.FormatVersion.revised()) {
			return splitCols(nums, shape[0], k), nil
		}
		if byRow {
			return splitRows(nums, k), nil
		}
	}
	return nil, shapeMismatch("%s has shape %v, want %d rows", keyArrayData, shape, k)
}

func (b *builder) unzipPayload(n, zt *node, elem ElemType, k int, size, zipSize []int, desc *ShapeDescriptor, isSparse bool) ([][]num, error) {
	codec, err := nodeString(zt)
	if err != nil {
		return nil, err
	}
	zd := n.field(keyArrayZipData)
	if zd == nil {
		return nil, shapeMismatch("%s without %s", keyArrayZipType, keyArrayZipData)
	}
	payload, err := nodeBytes(zd)
	if err != nil {
		return nil, err
	}
	raw := elem
	if isSparse {
		raw = ElemDouble
	}
	count, err := zipCount(k, size, zipSize, desc, isSparse)
	if err != nil {
		return nil, err
	}
	byteLen, err := mulCount(count, raw.Size())
	if err != nil {
		return nil, err
	}
	buf, err := Decompress(codec, payload, byteLen)
	if err != nil {
		return nil, err
	}
	flat := elemsFromBytes(raw, buf, count, binary.LittleEndian)
	nums := make([]num, count)
	for i := range nums {
		nums[i] = flat.numAt(i)
	}
	if k == 1 {
		return [][]num{nums}, nil
	}
	if count%k != 0 {
		return nil, shapeMismatch("compressed payload of %d elements does not split into %d rows", count, k)
	}
	if b.opts.FormatVersion.revised() {
		return splitRows(nums, k), nil
	}
	return splitCols(nums, count/k, k), nil
}

// zipCount is the element count of a compressed payload, taken from
// _ArrayZipSize_ when present and from the declared shape otherwise.
func zipCount(k int, size, zipSize []int, desc *ShapeDescriptor, isSparse bool) (int, error) {
	switch {
	case zipSize != nil:
		return shapeProduct(zipSize)
	case desc != nil && len(size) == 2:
		if _, err := shapeProduct(size); err != nil {
			return 0, err
		}
		n, err := shapeProduct(desc.ZipShape(size[0], size[1]))
		if err != nil {
			return 0, err
		}
		return mulCount(n, k)
	case !isSparse && size != nil:
		n, err := shapeProduct(size)
		if err != nil {
			return 0, err
		}
		return mulCount(n, k)
	}
	return 0, shapeMismatch("compressed array needs %s", keyArrayZipSize)
}

func splitRows(nums []num, k int) [][]num {
	w := len(nums) / k
	rows := make([][]num, k)
	for i := range rows {
		rows[i] = nums[i*w : (i+1)*w]
	}
	return rows
}

// splitCols splits an n x k row-major block into its k columns.
func splitCols(nums []num, n, k int) [][]num {
	rows := make([][]num, k)
	for c := range rows {
		rows[c] = make([]num, n)
		for r := 0; r < n; r++ {
			rows[c][r] = nums[r*k+c]
		}
	}
	return rows
}

func sparseFromRows(rows [][]num, size []int, isComplex bool) (*Sparse, error) {
	if len(size) != 2 {
		return nil, shapeMismatch("sparse %s must have 2 dimensions, got %v", keyArraySize, size)
	}
	nr, nc := size[0], size[1]
	short := len(rows) == 2 || (isComplex && len(rows) == 3)
	var ts []Triplet
	for t := range rows[0] {
		ri, err := oneBased(rows[0][t])
		if err != nil {
			return nil, err
		}
		col, vals := 0, rows[1:]
		if !short {
			if col, err = oneBased(rows[1][t]); err != nil {
				return nil, err
			}
			vals = rows[2:]
		}
		tr := Triplet{Row: ri, Col: col, Re: vals[0][t].float()}
		if isComplex {
			tr.Im = vals[1][t].float()
		}
		if tr.Re == 0 && tr.Im == 0 {
			continue
		}
		ts = append(ts, tr)
	}
	return NewSparse(nr, nc, ts, isComplex)
}

func oneBased(n num) (int, error) {
	b, ok := n.integral()
	if !ok || !b.IsInt64() || b.Int64() < 1 {
		return 0, typeMismatch("sparse index %v is not a positive integer", n.float())
	}
	return int(b.Int64()) - 1, nil
}

// nodeNums flattens a numeric node in row-major nesting order.
func (b *builder) nodeNums(n *node) ([]num, []int, error) {
	if x, ok := b.scalarNum(n); ok {
		return []num{x}, []int{}, nil
	}
	switch n.kind {
	case nPacked:
		out := make([]num, n.packed.Len())
		for i := range out {
			out[i] = n.packed.numAt(i)
		}
		return out, n.packed.Shape(), nil
	case nList:
		if len(n.items) == 0 {
			return []num{}, []int{0}, nil
		}
		var out []num
		var inner []int
		for i, it := range n.items {
			nums, s, err := b.nodeNums(it)
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				inner = s
			} else if !equalInts(s, inner) {
				return nil, nil, shapeMismatch("ragged numeric array at element %d", i)
			}
			out = append(out, nums...)
		}
		return out, append([]int{len(n.items)}, inner...), nil
	}
	return nil, nil, typeMismatch("non-numeric %s element inside a typed array", kindName(n))
}

func (b *builder) nodeInts(n *node) ([]int, error) {
	nums, _, err := b.nodeNums(n)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(nums))
	for i, x := range nums {
		v, ok := x.integral()
		if !ok || !v.IsInt64() || v.Sign() < 0 {
			return nil, typeMismatch("dimension %v is not a non-negative integer", x.float())
		}
		out[i] = int(v.Int64())
	}
	return out, nil
}

func (b *builder) nodeShape(n *node) (ShapeDescriptor, error) {
	if n.kind == nText {
		return ParseShapeDescriptor(n.s, nil)
	}
	if n.kind == nList && len(n.items) > 0 && n.items[0].kind == nText {
		params := make([]int, 0, len(n.items)-1)
		for _, it := range n.items[1:] {
			p, err := b.nodeInts(it)
			if err != nil {
				return ShapeDescriptor{}, err
			}
			params = append(params, p...)
		}
		return ParseShapeDescriptor(n.items[0].s, params)
	}
	return ShapeDescriptor{}, typeMismatch("%s must be a name or [name, params...]", keyArrayShape)
}

func nodeString(n *node) (string, error) {
	if n.kind != nText {
		return "", typeMismatch("expected a string, got %s", kindName(n))
	}
	return n.s, nil
}

func nodeFlag(n *node) (bool, error) {
	if n == nil {
		return false, nil
	}
	switch n.kind {
	case nBool:
		return n.b, nil
	case nNum:
		return !n.n.isZero(), nil
	case nScalar:
		return !n.val.num().isZero(), nil
	}
	return false, typeMismatch("expected a boolean flag, got %s", kindName(n))
}

func nodeBytes(n *node) ([]byte, error) {
	switch n.kind {
	case nText:
		if out, err := base64.StdEncoding.DecodeString(n.s); err == nil {
			return out, nil
		}
		out, err := base64.RawStdEncoding.DecodeString(n.s)
		if err != nil {
			return nil, typeMismatch("%s is not valid base64", keyArrayZipData)
		}
		return out, nil
	case nPacked:
		if d, ok := Elements[uint8](n.packed); ok {
			return d, nil
		}
	}
	return nil, typeMismatch("%s must be bytes, got %s", keyArrayZipData, kindName(n))
}

func kindName(n *node) string {
	switch n.kind {
	case nNull:
		return "null"
	case nBool:
		return "bool"
	case nNum, nScalar:
		return "number"
	case nText:
		return "string"
	case nList:
		return "array"
	case nObject:
		return "object"
	case nPacked:
		return "typed array"
	}
	return "value"
}

// ============================================================
// Encoding annotated arrays
// ============================================================

// annotation is the format-neutral form of an annotated array. Each row is
// a 1-D array already flattened in the version's data order.
type annotation struct {
	elem      ElemType
	size      []int
	isComplex bool
	isSparse  bool
	zipSize   []int
	shape     *ShapeDescriptor
	zipType   string
	zipData   []byte
	rows      []*NDArray
}

// needsAnnotation reports whether a dense real array must use the annotated
// form in text output.
func needsAnnotation(a *NDArray, opts Options) bool {
	if a.elem != ElemDouble || len(a.shape) == 0 {
		return a.elem != ElemDouble
	}
	if len(a.shape) > 2 && !opts.NestArray {
		return true
	}
	if len(a.shape) == 1 && a.shape[0] == 1 {
		return true
	}
	for _, d := range a.shape {
		if d == 0 {
			return true
		}
	}
	if chooseShape(opts, a) != nil {
		return true
	}
	return opts.compressing() && a.Len()*a.elem.Size() > opts.CompressArraySize
}

func chooseShape(opts Options, parts ...*NDArray) *ShapeDescriptor {
	a := parts[0]
	if len(a.shape) != 2 {
		return nil
	}
	if a.desc != nil && a.desc.Fits(parts...) {
		return a.desc
	}
	if opts.UseArrayShape {
		return DetectShape(parts...)
	}
	return nil
}

func flattenVersion(a *NDArray, v FormatVersion) *NDArray {
	if !v.revised() {
		a = a.transposeOrder(true)
	}
	return a.reshaped([]int{a.Len()})
}

func annotate(v *Value, opts Options) (*annotation, error) {
	ann := &annotation{}
	var parts []*NDArray
	switch v.Kind() {
	case KindArray:
		parts = []*NDArray{v.arrayVal}
	case KindComplex:
		ann.isComplex = true
		parts = []*NDArray{v.complexVal.Real, v.complexVal.Imag}
	case KindSparse:
		return annotateSparse(v.sparseVal, opts)
	default:
		return nil, typeMismatch("cannot annotate %s", v.Kind())
	}
	a := parts[0]
	ann.elem = a.elem
	ann.size = a.Shape()
	ann.shape = chooseShape(opts, parts...)
	for _, p := range parts {
		if ann.shape != nil {
			z, err := ReduceShape(p, *ann.shape)
			if err != nil {
				return nil, err
			}
			p = z
		}
		ann.rows = append(ann.rows, flattenVersion(p, opts.FormatVersion))
	}
	if ann.shape != nil {
		ann.zipSize = ann.shape.ZipShape(ann.size[0], ann.size[1])
		if ann.isComplex {
			ann.zipSize = []int{2, ann.rows[0].Len()}
		}
	}
	if err := maybeCompress(ann, opts); err != nil {
		return nil, err
	}
	return ann, nil
}

func annotateSparse(s *Sparse, opts Options) (*annotation, error) {
	ann := &annotation{elem: ElemDouble, size: []int{s.Rows, s.Cols}, isSparse: true, isComplex: s.IsComplex}
	k := 3
	if s.IsComplex {
		k = 4
	}
	nnz := len(s.Triplets)
	cols := make([][]float64, k)
	for i := range cols {
		cols[i] = make([]float64, nnz)
	}
	for t, tr := range s.Triplets {
		cols[0][t] = float64(tr.Row + 1)
		cols[1][t] = float64(tr.Col + 1)
		cols[2][t] = tr.Re
		if s.IsComplex {
			cols[3][t] = tr.Im
		}
	}
	for _, c := range cols {
		ann.rows = append(ann.rows, MustArray([]int{nnz}, c))
	}
	if err := maybeCompress(ann, opts); err != nil {
		return nil, err
	}
	return ann, nil
}

// maybeCompress replaces the rows with a compressed payload when the
// element block exceeds the configured threshold.
func maybeCompress(ann *annotation, opts Options) error {
	if !opts.compressing() {
		return nil
	}
	count := 0
	for _, r := range ann.rows {
		count += r.Len()
	}
	if count*ann.elem.Size() <= opts.CompressArraySize {
		return nil
	}
	raw := make([]byte, 0, count*ann.elem.Size())
	if len(ann.rows) == 1 || opts.FormatVersion.revised() {
		for _, r := range ann.rows {
			raw = appendElems(raw, r, binary.LittleEndian)
		}
	} else {
		w := ann.rows[0].Len()
		for i := 0; i < w; i++ {
			for _, r := range ann.rows {
				raw = appendElems(raw, &NDArray{elem: r.elem, shape: []int{1}, data: sliceData(r.data, i)}, binary.LittleEndian)
			}
		}
	}
	z, err := Compress(opts.Compression, raw)
	if err != nil {
		return err
	}
	if ann.zipSize == nil {
		if len(ann.rows) == 1 {
			ann.zipSize = cloneInts(ann.size)
		} else {
			ann.zipSize = []int{len(ann.rows), ann.rows[0].Len()}
		}
	}
	ann.zipType = opts.Compression
	ann.zipData = z
	ann.rows = nil
	return nil
}

// sliceData returns the single-element subslice [i:i+1] of typed data.
func sliceData(data any, i int) any {
	switch d := data.(type) {
	case []float64:
		return d[i : i+1]
	case []float32:
		return d[i : i+1]
	case []int8:
		return d[i : i+1]
	case []uint8:
		return d[i : i+1]
	case []int16:
		return d[i : i+1]
	case []uint16:
		return d[i : i+1]
	case []int32:
		return d[i : i+1]
	case []uint32:
		return d[i : i+1]
	case []int64:
		return d[i : i+1]
	case []uint64:
		return d[i : i+1]
	}
	return data
}

// annField is one key of an annotated array object. Exactly one of val and
// plain is set; plain arrays are written as bare numeric containers with no
// annotation of their own.
type annField struct {
	key   string
	val   *Value
	plain *NDArray
}

// fields lists the annotation keys in their canonical order. binary selects
// a typed byte array for compressed data instead of base64 text.
func (ann *annotation) fields(opts Options, binary bool) []annField {
	out := []annField{
		{key: keyArrayType, val: Text(ann.elem.String())},
		{key: keyArraySize, plain: sizeArray(ann.size, opts.UBJSON)},
	}
	if ann.isComplex {
		out = append(out, annField{key: keyArrayIsComplex, val: Bool(true)})
	}
	if ann.isSparse {
		out = append(out, annField{key: keyArrayIsSparse, val: Bool(true)})
	}
	if ann.zipSize != nil {
		out = append(out, annField{key: keyArrayZipSize, plain: sizeArray(ann.zipSize, opts.UBJSON)})
	}
	if ann.shape != nil {
		var sv *Value
		if params := ann.shape.Params(); len(params) == 0 {
			sv = Text(ann.shape.Name())
		} else {
			items := []*Value{Text(ann.shape.Name())}
			for _, p := range params {
				items = append(items, Int(p))
			}
			sv = List(items...)
		}
		out = append(out, annField{key: keyArrayShape, val: sv})
	}
	if ann.zipType != "" {
		out = append(out, annField{key: keyArrayZipType, val: Text(ann.zipType)})
		if binary {
			out = append(out, annField{key: keyArrayZipData, plain: MustArray([]int{len(ann.zipData)}, ann.zipData)})
		} else {
			out = append(out, annField{key: keyArrayZipData, val: Text(base64.StdEncoding.EncodeToString(ann.zipData))})
		}
		return out
	}
	return append(out, annField{key: keyArrayData, plain: stackRows(ann.rows, opts.FormatVersion)})
}

// sizeArray stores dimensions in the narrowest unsigned-friendly type.
func sizeArray(dims []int, ubjson bool) *NDArray {
	elem, _ := markerElem(intsMarker(dims, ubjson))
	a := &NDArray{elem: elem, shape: []int{len(dims)}, data: makeData(elem, len(dims))}
	for i, d := range dims {
		_ = a.set(i, intNum(int64(d)))
	}
	return a
}

// stackRows joins payload rows into the _ArrayData_ matrix: k x n for the
// revised format, n x k (one tuple per element) for legacy.
func stackRows(rows []*NDArray, v FormatVersion) *NDArray {
	if len(rows) == 1 {
		return rows[0]
	}
	k, n := len(rows), rows[0].Len()
	out := &NDArray{elem: rows[0].elem, data: makeData(rows[0].elem, k*n)}
	if v.revised() {
		out.shape = []int{k, n}
	} else {
		out.shape = []int{n, k}
	}
	for r, row := range rows {
		for i := 0; i < n; i++ {
			at := r*n + i
			if !v.revised() {
				at = i*k + r
			}
			_ = out.set(at, row.numAt(i))
		}
	}
	return out
}
