package jdata

import (
	"math"
	"strconv"
)

// builder turns a parse tree into Values, applying the JData conventions
// (annotation decoding, N-D nesting, key unescaping) and recording the
// position index.
type builder struct {
	opts  Options
	text  bool
	index *Index
}

func newBuilder(opts Options, text bool) *builder {
	b := &builder{opts: opts, text: text}
	if opts.WithIndex || opts.MmapOnly {
		b.index = &Index{}
	}
	return b
}

func (b *builder) record(n *node, path string) {
	if b.index != nil {
		b.index.add(path, n.start, n.end-n.start)
	}
}

func (b *builder) build(n *node, path string) (*Value, error) {
	b.record(n, path)
	v, err := b.buildNode(n, path)
	if err != nil {
		return nil, atOffset(err, n.start)
	}
	return v, nil
}

// buildMember builds a container member, leaving members of a typed
// container out of the index.
func (b *builder) buildMember(parent, n *node, path string) (*Value, error) {
	if !parent.typed || b.index == nil {
		return b.build(n, path)
	}
	index := b.index
	b.index = nil
	defer func() { b.index = index }()
	return b.build(n, path)
}

func (b *builder) buildNode(n *node, path string) (*Value, error) {
	switch n.kind {
	case nNull:
		return Null(), nil
	case nBool:
		return Bool(n.b), nil
	case nNum:
		return numValue(n.n), nil
	case nScalar:
		return n.val, nil
	case nText:
		if f, ok := b.sentinel(n); ok {
			return Float64(f), nil
		}
		return Text(n.s), nil
	case nPacked:
		return Array(n.packed), nil
	case nList:
		return b.buildList(n, path)
	case nObject:
		if n.isAnnotated() {
			return b.decodeAnnotation(n)
		}
		return b.buildRecord(n, path)
	}
	return nil, malformed(n.start, "unknown node")
}

func (b *builder) buildList(n *node, path string) (*Value, error) {
	if b.text {
		if len(n.items) == 1 {
			if x, ok := b.scalarNum(n.items[0]); ok {
				return numValue(x), nil
			}
		}
		if shape, ok := b.rectShape(n); ok {
			nums := make([]num, 0, product(shape))
			nums = b.gatherNums(n, nums)
			a, err := fromNested(ElemDouble, shape, nums, b.opts.FormatVersion)
			if err != nil {
				return nil, err
			}
			return Array(a), nil
		}
	} else if elem, shape, ok := stackShape(n); ok {
		nums := make([]num, 0, product(shape))
		nums = gatherPacked(n, nums)
		a, err := fromNested(elem, shape, nums, b.opts.FormatVersion)
		if err != nil {
			return nil, err
		}
		return Array(a), nil
	}

	items := make([]*Value, len(n.items))
	for i, it := range n.items {
		v, err := b.buildMember(n, it, path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return List(items...), nil
}

func (b *builder) buildRecord(n *node, path string) (*Value, error) {
	rec := &Value{kind: KindRecord, recordVal: make([]Field, 0, len(n.keys))}
	for i, k := range n.keys {
		key := k
		if b.opts.UnpackHex {
			key = UnescapeKey(k)
		}
		v, err := b.buildMember(n, n.items[i], childPath(path, key))
		if err != nil {
			return nil, err
		}
		rec.Set(key, v)
	}
	return rec, nil
}

// walk records the position index without materializing values.
func (b *builder) walk(n *node, path string) {
	b.record(n, path)
	if n.typed {
		return
	}
	switch n.kind {
	case nList:
		if b.text {
			if len(n.items) == 1 {
				if _, ok := b.scalarNum(n.items[0]); ok {
					return
				}
			}
			if _, ok := b.rectShape(n); ok {
				return
			}
		} else if _, _, ok := stackShape(n); ok {
			return
		}
		for i, it := range n.items {
			b.walk(it, path+"["+strconv.Itoa(i)+"]")
		}
	case nObject:
		if n.isAnnotated() {
			return
		}
		for i, k := range n.keys {
			if b.opts.UnpackHex {
				k = UnescapeKey(k)
			}
			b.walk(n.items[i], childPath(path, k))
		}
	}
}

// childPath appends a record key to a JSONPath-like path, bracket-quoting
// keys that are not plain identifiers.
func childPath(path, key string) string {
	plain := key != ""
	for i := 0; i < len(key) && plain; i++ {
		c := key[i]
		plain = c == '_' || c == '-' || c >= 0x80 || (c >= '0' && c <= '9') || isASCIILetter(rune(c))
	}
	if plain {
		return path + "." + key
	}
	return path + "[" + strconv.Quote(key) + "]"
}

func numValue(n num) *Value {
	switch n.kind {
	case numInt:
		return Int64(n.i)
	case numUint:
		return Uint64(n.u)
	case numBig:
		return BigInt(n.b)
	}
	return Float64(n.f)
}

func (b *builder) sentinel(n *node) (float64, bool) {
	if !b.text || n.kind != nText {
		return 0, false
	}
	nan, inf, ninf := b.opts.sentinels()
	switch n.s {
	case nan:
		return math.NaN(), true
	case inf:
		return math.Inf(1), true
	case ninf:
		return math.Inf(-1), true
	}
	return 0, false
}

// scalarNum returns the number a node stands for inside a numeric array.
func (b *builder) scalarNum(n *node) (num, bool) {
	switch n.kind {
	case nNum:
		return n.n, true
	case nScalar:
		if k := n.val.Kind(); k == KindInt || k == KindFloat {
			return n.val.num(), true
		}
	case nText:
		if f, ok := b.sentinel(n); ok {
			return floatNum(f), true
		}
	}
	return num{}, false
}

// rectShape returns the nesting shape of a rectangular text array of
// numbers, or false when n is not one.
func (b *builder) rectShape(n *node) ([]int, bool) {
	if n.kind != nList || len(n.items) == 0 {
		return nil, false
	}
	var inner []int
	for i, it := range n.items {
		var s []int
		if _, ok := b.scalarNum(it); ok {
			s = []int{}
		} else {
			var ok bool
			if s, ok = b.rectShape(it); !ok {
				return nil, false
			}
		}
		if i == 0 {
			inner = s
		} else if !equalInts(s, inner) {
			return nil, false
		}
	}
	return append([]int{len(n.items)}, inner...), true
}

func (b *builder) gatherNums(n *node, out []num) []num {
	if x, ok := b.scalarNum(n); ok {
		return append(out, x)
	}
	for _, it := range n.items {
		out = b.gatherNums(it, out)
	}
	return out
}

// stackShape recognizes binary N-D arrays written as nested count-only
// containers around optimized numeric containers.
func stackShape(n *node) (ElemType, []int, bool) {
	switch {
	case n.kind == nPacked:
		return n.packed.elem, n.packed.shape, true
	case n.kind != nList || !n.counted || len(n.items) == 0:
		return 0, nil, false
	}
	var elem ElemType
	var inner []int
	for i, it := range n.items {
		e, s, ok := stackShape(it)
		if !ok {
			return 0, nil, false
		}
		if i == 0 {
			elem, inner = e, s
		} else if e != elem || !equalInts(s, inner) {
			return 0, nil, false
		}
	}
	return elem, append([]int{len(n.items)}, inner...), true
}

func gatherPacked(n *node, out []num) []num {
	if n.kind == nPacked {
		for i := 0; i < n.packed.Len(); i++ {
			out = append(out, n.packed.numAt(i))
		}
		return out
	}
	for _, it := range n.items {
		out = gatherPacked(it, out)
	}
	return out
}

// nestPerm maps nesting level to array axis. Legacy order nests axis 0
// outermost. The revised order nests the trailing axes outermost, last
// first, and keeps each 2-D page as rows of columns.
func nestPerm(ndim int, v FormatVersion) []int {
	p := make([]int, ndim)
	for i := range p {
		p[i] = i
	}
	if ndim < 3 || !v.revised() {
		return p
	}
	k := 0
	for ax := ndim - 1; ax >= 2; ax-- {
		p[k] = ax
		k++
	}
	p[k], p[k+1] = 0, 1
	return p
}

// fromNested builds an array from numbers listed in nesting order.
func fromNested(elem ElemType, nestShape []int, nums []num, v FormatVersion) (*NDArray, error) {
	perm := nestPerm(len(nestShape), v)
	dims := make([]int, len(nestShape))
	for k, ax := range perm {
		dims[ax] = nestShape[k]
	}
	if isIdentity(perm) {
		return arrayFromNums(elem, dims, nums)
	}
	if err := checkShape(dims, len(nums)); err != nil {
		return nil, err
	}
	out := &NDArray{elem: elem, shape: dims, data: makeData(elem, len(nums))}
	m := make([]int, len(nestShape))
	idx := make([]int, len(dims))
	for _, x := range nums {
		for k, ax := range perm {
			idx[ax] = m[k]
		}
		if err := out.set(flatIndex(dims, idx), x); err != nil {
			return nil, err
		}
		for k := len(m) - 1; k >= 0; k-- {
			m[k]++
			if m[k] < nestShape[k] {
				break
			}
			m[k] = 0
		}
	}
	return out, nil
}

func isIdentity(p []int) bool {
	for i, v := range p {
		if i != v {
			return false
		}
	}
	return true
}
