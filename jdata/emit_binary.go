package jdata

import (
	"math"
	"math/big"
)

// binEmitter writes the BJData (or UBJSON) marker stream.
type binEmitter struct {
	opts  Options
	order byteOrder
	buf   []byte
}

func newBinEmitter(opts Options) *binEmitter {
	return &binEmitter{opts: opts, order: opts.byteOrder()}
}

func (e *binEmitter) marker(m Marker) { e.buf = append(e.buf, byte(m)) }

func (e *binEmitter) value(v *Value) error {
	switch v.Kind() {
	case KindNull:
		e.marker(MarkerNull)
	case KindBool:
		if v.boolVal {
			e.marker(MarkerTrue)
		} else {
			e.marker(MarkerFalse)
		}
	case KindInt:
		e.integer(v)
	case KindFloat:
		if v.floatWidth == 32 {
			e.marker(MarkerFloat32)
			e.buf = e.order.AppendUint32(e.buf, math.Float32bits(float32(v.floatVal)))
		} else {
			e.marker(MarkerFloat64)
			e.buf = e.order.AppendUint64(e.buf, math.Float64bits(v.floatVal))
		}
	case KindText:
		s := v.textVal
		if len(s) == 1 && s[0] < 0x80 {
			e.marker(MarkerChar)
			e.buf = append(e.buf, s[0])
			return nil
		}
		e.marker(MarkerString)
		e.length(len(s))
		e.buf = append(e.buf, s...)
	case KindList:
		e.marker(MarkerArray)
		for _, it := range v.listVal {
			if err := e.value(it); err != nil {
				return err
			}
		}
		e.marker(MarkerArrEnd)
	case KindRecord:
		e.marker(MarkerObject)
		for _, f := range v.recordVal {
			key := f.Key
			if e.opts.EscapeKeys {
				key = EscapeKey(key)
			}
			e.key(key)
			if err := e.value(f.Value); err != nil {
				return err
			}
		}
		e.marker(MarkerObjEnd)
	case KindArray:
		if !e.needsAnnotation(v.arrayVal) {
			e.plain(v.arrayVal)
			return nil
		}
		return e.annotated(v)
	case KindComplex, KindSparse:
		return e.annotated(v)
	}
	return nil
}

func (e *binEmitter) needsAnnotation(a *NDArray) bool {
	if len(a.shape) == 0 {
		return a.elem != ElemDouble
	}
	if chooseShape(e.opts, a) != nil {
		return true
	}
	if e.opts.compressing() && a.Len()*a.elem.Size() > e.opts.CompressArraySize {
		return true
	}
	if len(a.shape) > 1 && e.nesting() {
		for _, d := range a.shape {
			if d == 0 {
				return true
			}
		}
	}
	return false
}

// nesting reports whether N-D arrays are written as nested containers
// rather than an N-D dimension header.
func (e *binEmitter) nesting() bool { return e.opts.NestArray || e.opts.UBJSON }

func (e *binEmitter) annotated(v *Value) error {
	ann, err := annotate(v, e.opts)
	if err != nil {
		return err
	}
	e.marker(MarkerObject)
	for _, f := range ann.fields(e.opts, true) {
		e.key(f.key)
		if f.plain != nil {
			e.plain(f.plain)
		} else if err := e.value(f.val); err != nil {
			return err
		}
	}
	e.marker(MarkerObjEnd)
	return nil
}

func (e *binEmitter) key(k string) {
	e.length(len(k))
	e.buf = append(e.buf, k...)
}

// length writes a count or string length as the narrowest integer.
func (e *binEmitter) length(n int) {
	b := big.NewInt(int64(n))
	m := narrowestMarker(b, e.opts.UBJSON)
	e.marker(m)
	e.payload(m, b)
}

func (e *binEmitter) integer(v *Value) {
	m := chooseMarker(v, e.opts.KeepType, e.opts.UBJSON)
	b := v.AsBigInt()
	if m == MarkerHuge || !markerHolds(m, b) {
		s := b.String()
		e.marker(MarkerHuge)
		e.length(len(s))
		e.buf = append(e.buf, s...)
		return
	}
	e.marker(m)
	e.payload(m, b)
}

// payload appends the fixed-width bytes of an integer already known to fit m.
func (e *binEmitter) payload(m Marker, b *big.Int) {
	var u uint64
	if b.Sign() < 0 {
		u = uint64(b.Int64())
	} else {
		u = b.Uint64()
	}
	switch m {
	case MarkerUint8, MarkerInt8:
		e.buf = append(e.buf, byte(u))
	case MarkerUint16, MarkerInt16:
		e.buf = e.order.AppendUint16(e.buf, uint16(u))
	case MarkerUint32, MarkerInt32:
		e.buf = e.order.AppendUint32(e.buf, uint32(u))
	default:
		e.buf = e.order.AppendUint64(e.buf, u)
	}
}

// plain writes a typed array as optimized containers: [$t#n for 1-D, the
// BJData N-D dimension header, or nested counted containers.
func (e *binEmitter) plain(a *NDArray) {
	if e.opts.UBJSON {
		a = ubjsonArray(a)
	}
	if len(a.shape) == 0 {
		e.marker(MarkerArray)
		e.marker(MarkerArrEnd)
		return
	}
	t := ElemMarker(a.elem)
	if len(a.shape) == 1 || !e.nesting() {
		e.marker(MarkerArray)
		e.marker(MarkerType)
		e.marker(t)
		e.marker(MarkerCount)
		if len(a.shape) == 1 {
			e.length(a.shape[0])
		} else {
			e.plain(sizeArray(a.shape, false))
		}
		e.buf = appendElems(e.buf, a, e.order)
		return
	}
	perm := nestPerm(len(a.shape), e.opts.FormatVersion)
	idx := make([]int, len(a.shape))
	e.nestLevel(a, t, perm, idx, 0)
}

func (e *binEmitter) nestLevel(a *NDArray, t Marker, perm, idx []int, level int) {
	ax := perm[level]
	e.marker(MarkerArray)
	if level < len(perm)-1 {
		e.marker(MarkerCount)
		e.length(a.shape[ax])
		for i := 0; i < a.shape[ax]; i++ {
			idx[ax] = i
			e.nestLevel(a, t, perm, idx, level+1)
		}
		return
	}
	e.marker(MarkerType)
	e.marker(t)
	e.marker(MarkerCount)
	e.length(a.shape[ax])
	one := &NDArray{elem: a.elem, shape: []int{1}}
	for i := 0; i < a.shape[ax]; i++ {
		idx[ax] = i
		one.data = sliceData(a.data, flatIndex(a.shape, idx))
		e.buf = appendElems(e.buf, one, e.order)
	}
}

// ubjsonArray widens element types that UBJSON has no marker for.
func ubjsonArray(a *NDArray) *NDArray {
	t := ubjsonElem(a.elem)
	if t == a.elem {
		return a
	}
	out := &NDArray{elem: t, shape: cloneInts(a.shape), data: makeData(t, a.Len())}
	for i := 0; i < a.Len(); i++ {
		_ = out.set(i, a.numAt(i))
	}
	return out
}
