package jdata

import (
	"encoding/binary"
	"math"
)

// binParser scans a BJData/UBJSON marker stream into a node tree.
type binParser struct {
	src   []byte
	pos   int
	order binary.ByteOrder
	depth int
}

func (p *binParser) need(n int) error {
	if n < 0 || len(p.src)-p.pos < n {
		return malformed(p.pos, "truncated stream, need %d bytes", n)
	}
	return nil
}

// skipNoop consumes N padding markers.
func (p *binParser) skipNoop() {
	for p.pos < len(p.src) && p.src[p.pos] == byte(MarkerNoop) {
		p.pos++
	}
}

func (p *binParser) readMarker() (Marker, error) {
	p.skipNoop()
	if err := p.need(1); err != nil {
		return 0, err
	}
	m := Marker(p.src[p.pos])
	p.pos++
	return m, nil
}

func (p *binParser) value() (*node, error) {
	p.skipNoop()
	start := p.pos
	m, err := p.readMarker()
	if err != nil {
		return nil, err
	}
	return p.typed(m, start)
}

// typed reads a value whose marker m has already been consumed (or was
// declared by an optimized container header).
func (p *binParser) typed(m Marker, start int) (*node, error) {
	switch m {
	case MarkerNull:
		return &node{kind: nNull, start: start, end: p.pos}, nil
	case MarkerTrue, MarkerFalse:
		return &node{kind: nBool, start: start, end: p.pos, b: m == MarkerTrue}, nil
	case MarkerChar:
		if err := p.need(1); err != nil {
			return nil, err
		}
		p.pos++
		return &node{kind: nText, start: start, end: p.pos, s: string(p.src[p.pos-1 : p.pos])}, nil
	case MarkerString:
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return &node{kind: nText, start: start, end: p.pos, s: s}, nil
	case MarkerHuge:
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		n, err := parseNumLiteral(s)
		if err != nil {
			return nil, malformed(start, "huge number: %v", err)
		}
		return &node{kind: nScalar, start: start, end: p.pos, val: numValue(n)}, nil
	case MarkerArray:
		return p.array(start)
	case MarkerObject:
		return p.object(start)
	}
	if _, ok := markerElem(m); ok {
		v, err := p.scalar(m)
		if err != nil {
			return nil, err
		}
		return &node{kind: nScalar, start: start, end: p.pos, val: v}, nil
	}
	return nil, malformed(start, "unknown marker %q (0x%02x)", byte(m), byte(m))
}

func (p *binParser) scalar(m Marker) (*Value, error) {
	elem, _ := markerElem(m)
	if err := p.need(elem.Size()); err != nil {
		return nil, err
	}
	b := p.src[p.pos:]
	p.pos += elem.Size()
	switch m {
	case MarkerUint8:
		return Uint8(b[0]), nil
	case MarkerInt8:
		return Int8(int8(b[0])), nil
	case MarkerUint16:
		return Uint16(p.order.Uint16(b)), nil
	case MarkerInt16:
		return Int16(int16(p.order.Uint16(b))), nil
	case MarkerUint32:
		return Uint32(p.order.Uint32(b)), nil
	case MarkerInt32:
		return Int32(int32(p.order.Uint32(b))), nil
	case MarkerUint64:
		return Uint64(p.order.Uint64(b)), nil
	case MarkerInt64:
		return Int64(int64(p.order.Uint64(b))), nil
	case MarkerFloat32:
		return Float32(math.Float32frombits(p.order.Uint32(b))), nil
	default:
		return Float64(math.Float64frombits(p.order.Uint64(b))), nil
	}
}

// length reads a marker-prefixed non-negative integer count.
func (p *binParser) length() (int, error) {
	at := p.pos
	m, err := p.readMarker()
	if err != nil {
		return 0, err
	}
	if _, ok := markerElem(m); !ok || m == MarkerFloat32 || m == MarkerFloat64 {
		return 0, malformed(at, "invalid length marker %q", byte(m))
	}
	v, err := p.scalar(m)
	if err != nil {
		return 0, err
	}
	b := v.AsBigInt()
	if b.Sign() < 0 || !b.IsInt64() || b.Int64() > int64(len(p.src)) {
		return 0, malformed(at, "invalid length %s", b)
	}
	return int(b.Int64()), nil
}

func (p *binParser) str() (string, error) {
	n, err := p.length()
	if err != nil {
		return "", err
	}
	if err := p.need(n); err != nil {
		return "", err
	}
	s := string(p.src[p.pos : p.pos+n])
	p.pos += n
	return s, nil
}

func (p *binParser) enter(start int) error {
	p.depth++
	if p.depth > maxDepth {
		return malformed(start, "nesting deeper than %d", maxDepth)
	}
	return nil
}

// header reads an optional $type and #count after a container opener.
// dims is set for a BJData N-D count. count is -1 for an unsized container.
func (p *binParser) header(array bool) (t Marker, count int, dims []int, err error) {
	count = -1
	p.skipNoop()
	if p.pos < len(p.src) && p.src[p.pos] == byte(MarkerType) {
		p.pos++
		if err = p.need(1); err != nil {
			return
		}
		t = Marker(p.src[p.pos])
		p.pos++
		p.skipNoop()
		if p.pos >= len(p.src) || p.src[p.pos] != byte(MarkerCount) {
			err = malformed(p.pos, "optimized container type without count")
			return
		}
	}
	p.skipNoop()
	if p.pos < len(p.src) && p.src[p.pos] == byte(MarkerCount) {
		p.pos++
		p.skipNoop()
		if array && p.pos < len(p.src) && p.src[p.pos] == byte(MarkerArray) {
			dims, err = p.dims()
			if err != nil {
				return
			}
			count = product(dims)
			return
		}
		count, err = p.length()
	}
	return
}

func (p *binParser) dims() ([]int, error) {
	at := p.pos
	n, err := p.value()
	if err != nil {
		return nil, err
	}
	var nums []num
	switch n.kind {
	case nPacked:
		for i := 0; i < n.packed.Len(); i++ {
			nums = append(nums, n.packed.numAt(i))
		}
	case nList:
		for _, it := range n.items {
			if it.kind != nScalar || it.val.Kind() != KindInt {
				return nil, malformed(it.start, "non-integer N-D dimension")
			}
			nums = append(nums, it.val.num())
		}
	default:
		return nil, malformed(at, "invalid N-D dimension list")
	}
	out := make([]int, len(nums))
	total := 1
	for i, x := range nums {
		b, _ := x.integral()
		if b == nil || b.Sign() < 0 || !b.IsInt64() || b.Int64() > int64(len(p.src)) {
			return nil, malformed(at, "invalid N-D dimension")
		}
		out[i] = int(b.Int64())
		if out[i] > 0 && total > len(p.src)/out[i]+1 {
			return nil, malformed(at, "N-D dimensions too large")
		}
		total *= out[i]
	}
	return out, nil
}

func (p *binParser) array(start int) (*node, error) {
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	t, count, dims, err := p.header(true)
	if err != nil {
		return nil, err
	}
	if t != 0 {
		if elem, ok := markerElem(t); ok {
			return p.packed(start, elem, count, dims)
		}
		if dims != nil {
			return nil, malformed(start, "N-D header needs a numeric type, got %q", byte(t))
		}
	}
	n := &node{kind: nList, start: start, counted: count >= 0 && t == 0, typed: t != 0}
	if count >= 0 {
		if t == 0 && count > len(p.src)-p.pos {
			return nil, malformed(start, "count %d exceeds stream", count)
		}
		for i := 0; i < count; i++ {
			it, err := p.element(t)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, it)
		}
		n.end = p.pos
		return n, nil
	}
	for {
		p.skipNoop()
		if p.pos >= len(p.src) {
			return nil, malformed(start, "unterminated array")
		}
		if p.src[p.pos] == byte(MarkerArrEnd) {
			p.pos++
			n.end = p.pos
			return n, nil
		}
		it, err := p.value()
		if err != nil {
			return nil, err
		}
		n.items = append(n.items, it)
	}
}

// element reads a container member, honoring a declared type.
func (p *binParser) element(t Marker) (*node, error) {
	if t == 0 {
		return p.value()
	}
	return p.typed(t, p.pos)
}

func (p *binParser) packed(start int, elem ElemType, count int, dims []int) (*node, error) {
	if count < 0 {
		return nil, malformed(start, "typed array without count")
	}
	sz := elem.Size()
	if count > (len(p.src)-p.pos)/sz {
		return nil, malformed(p.pos, "truncated typed array, need %d elements", count)
	}
	a := elemsFromBytes(elem, p.src[p.pos:], count, p.order)
	p.pos += count * sz
	if dims != nil {
		a.shape = dims
	}
	return &node{kind: nPacked, start: start, end: p.pos, packed: a}, nil
}

func (p *binParser) object(start int) (*node, error) {
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	t, count, _, err := p.header(false)
	if err != nil {
		return nil, err
	}
	n := &node{kind: nObject, start: start, typed: t != 0}
	member := func() error {
		key, err := p.str()
		if err != nil {
			return err
		}
		it, err := p.element(t)
		if err != nil {
			return err
		}
		n.keys = append(n.keys, key)
		n.items = append(n.items, it)
		return nil
	}
	if count >= 0 {
		for i := 0; i < count; i++ {
			if err := member(); err != nil {
				return nil, err
			}
		}
		n.end = p.pos
		return n, nil
	}
	for {
		p.skipNoop()
		if p.pos >= len(p.src) {
			return nil, malformed(start, "unterminated object")
		}
		if p.src[p.pos] == byte(MarkerObjEnd) {
			p.pos++
			n.end = p.pos
			return n, nil
		}
		if err := member(); err != nil {
			return nil, err
		}
	}
}

func (p *binParser) roots() ([]*node, error) {
	var out []*node
	for {
		p.skipNoop()
		if p.pos >= len(p.src) {
			return out, nil
		}
		n, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}
