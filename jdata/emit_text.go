package jdata

import (
	"bytes"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// textEmitter writes compact JSON text; indentation is applied afterwards.
type textEmitter struct {
	opts Options
	buf  []byte
	nan  string
	inf  string
	ninf string
}

func newTextEmitter(opts Options) *textEmitter {
	e := &textEmitter{opts: opts}
	e.nan, e.inf, e.ninf = opts.sentinels()
	return e
}

func (e *textEmitter) root(v *Value) error {
	if k := v.Kind(); k == KindInt || k == KindFloat {
		e.buf = append(e.buf, '[')
		e.scalar(v)
		e.buf = append(e.buf, ']')
		return nil
	}
	return e.value(v)
}

func (e *textEmitter) value(v *Value) error {
	switch v.Kind() {
	case KindNull:
		if e.opts.EmptyArrayAsNull {
			e.buf = append(e.buf, "null"...)
		} else {
			e.buf = append(e.buf, "[]"...)
		}
	case KindBool:
		e.buf = strconv.AppendBool(e.buf, v.boolVal)
	case KindInt, KindFloat:
		e.scalar(v)
	case KindText:
		return e.str(v.textVal)
	case KindList:
		e.buf = append(e.buf, '[')
		for i, it := range v.listVal {
			if i > 0 {
				e.buf = append(e.buf, ',')
			}
			if err := e.value(it); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, ']')
	case KindRecord:
		e.buf = append(e.buf, '{')
		for i, f := range v.recordVal {
			if i > 0 {
				e.buf = append(e.buf, ',')
			}
			key := f.Key
			if e.opts.EscapeKeys {
				key = EscapeKey(key)
			}
			if err := e.str(key); err != nil {
				return err
			}
			e.buf = append(e.buf, ':')
			if err := e.value(f.Value); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, '}')
	case KindArray:
		if !needsAnnotation(v.arrayVal, e.opts) {
			e.nested(v.arrayVal)
			return nil
		}
		return e.annotated(v)
	case KindComplex, KindSparse:
		return e.annotated(v)
	}
	return nil
}

func (e *textEmitter) annotated(v *Value) error {
	ann, err := annotate(v, e.opts)
	if err != nil {
		return err
	}
	e.buf = append(e.buf, '{')
	for i, f := range ann.fields(e.opts, false) {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		if err := e.str(f.key); err != nil {
			return err
		}
		e.buf = append(e.buf, ':')
		if f.plain != nil {
			e.nested(f.plain)
		} else if err := e.value(f.val); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *textEmitter) str(s string) error {
	q, err := json.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	e.buf = append(e.buf, q...)
	return nil
}

func (e *textEmitter) scalar(v *Value) {
	if v.kind == KindFloat {
		e.float(v.floatVal, int(v.floatWidth), true)
		return
	}
	e.integer(v.num())
}

func (e *textEmitter) integer(n num) {
	switch n.kind {
	case numInt:
		e.buf = strconv.AppendInt(e.buf, n.i, 10)
	case numUint:
		e.buf = strconv.AppendUint(e.buf, n.u, 10)
	case numBig:
		e.buf = n.b.Append(e.buf, 10)
	default:
		e.float(n.f, 64, false)
	}
}

// float writes f, using the sentinel strings for NaN and infinities. With
// point set, integral values keep a trailing ".0" so they read back as
// floats.
func (e *textEmitter) float(f float64, width int, point bool) {
	switch {
	case math.IsNaN(f):
		e.buf = strconv.AppendQuote(e.buf, e.nan)
		return
	case math.IsInf(f, 1):
		e.buf = strconv.AppendQuote(e.buf, e.inf)
		return
	case math.IsInf(f, -1):
		e.buf = strconv.AppendQuote(e.buf, e.ninf)
		return
	}
	if width != 32 {
		width = 64
	}
	start := len(e.buf)
	e.buf = strconv.AppendFloat(e.buf, f, 'g', -1, width)
	if point && bytes.IndexAny(e.buf[start:], ".e") < 0 {
		e.buf = append(e.buf, ".0"...)
	}
}

func (e *textEmitter) elem(a *NDArray, i int) {
	n := a.numAt(i)
	if n.kind == numFloat {
		w := 64
		if a.elem == ElemSingle {
			w = 32
		}
		e.float(n.f, w, false)
		return
	}
	e.integer(n)
}

// nested writes a plain numeric array. 1-D and 2-D arrays are rows of
// values; higher ranks nest in the format version's axis order.
func (e *textEmitter) nested(a *NDArray) {
	if len(a.shape) == 0 {
		e.buf = append(e.buf, "[]"...)
		return
	}
	perm := nestPerm(len(a.shape), e.opts.FormatVersion)
	idx := make([]int, len(a.shape))
	e.nestLevel(a, perm, idx, 0)
}

func (e *textEmitter) nestLevel(a *NDArray, perm, idx []int, level int) {
	ax := perm[level]
	e.buf = append(e.buf, '[')
	for i := 0; i < a.shape[ax]; i++ {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		idx[ax] = i
		if level == len(perm)-1 {
			e.elem(a, flatIndex(a.shape, idx))
		} else {
			e.nestLevel(a, perm, idx, level+1)
		}
	}
	e.buf = append(e.buf, ']')
}

// finish applies indentation for non-compact output.
func (e *textEmitter) finish() ([]byte, error) {
	if e.opts.Compact {
		return e.buf, nil
	}
	indent := e.opts.Indent
	if indent == "" {
		indent = "  "
	}
	var out bytes.Buffer
	if err := json.Indent(&out, e.buf, "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
