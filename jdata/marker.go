package jdata

import (
	"math"
	"math/big"
)

// Marker is a one-byte BJData/UBJSON type marker.
type Marker byte

const (
	MarkerNull    Marker = 'Z'
	MarkerNoop    Marker = 'N'
	MarkerTrue    Marker = 'T'
	MarkerFalse   Marker = 'F'
	MarkerChar    Marker = 'C'
	MarkerUint8   Marker = 'U'
	MarkerInt8    Marker = 'i'
	MarkerUint16  Marker = 'u'
	MarkerInt16   Marker = 'I'
	MarkerUint32  Marker = 'm'
	MarkerInt32   Marker = 'l'
	MarkerUint64  Marker = 'M'
	MarkerInt64   Marker = 'L'
	MarkerHuge    Marker = 'H'
	MarkerFloat32 Marker = 'd'
	MarkerFloat64 Marker = 'D'
	MarkerString  Marker = 'S'
	MarkerArray   Marker = '['
	MarkerArrEnd  Marker = ']'
	MarkerObject  Marker = '{'
	MarkerObjEnd  Marker = '}'
	MarkerType    Marker = '$'
	MarkerCount   Marker = '#'
)

// String returns the marker as a one-character string.
func (m Marker) String() string { return string(rune(m)) }

// ladder is the narrowest-first integer marker order; unsigned before
// signed at equal width.
var ladder = []Marker{
	MarkerUint8, MarkerInt8,
	MarkerUint16, MarkerInt16,
	MarkerUint32, MarkerInt32,
	MarkerUint64, MarkerInt64,
}

// ubjsonLadder is the UBJSON Draft 12 subset: uint8 is the only unsigned type.
var ubjsonLadder = []Marker{MarkerUint8, MarkerInt8, MarkerInt16, MarkerInt32, MarkerInt64}

// ChooseMarker returns the BJData marker for a scalar value. With keepType
// the marker matches the declared width and signedness; otherwise integers
// take the narrowest marker on the ladder whose range holds the value, and
// integers beyond 64 bits fall back to the huge-integer marker.
func ChooseMarker(v *Value, keepType bool) Marker {
	return chooseMarker(v, keepType, false)
}

func chooseMarker(v *Value, keepType, ubjson bool) Marker {
	switch v.Kind() {
	case KindNull:
		return MarkerNull
	case KindBool:
		if v.boolVal {
			return MarkerTrue
		}
		return MarkerFalse
	case KindFloat:
		if v.floatWidth == 32 {
			return MarkerFloat32
		}
		return MarkerFloat64
	case KindText:
		return MarkerString
	case KindList, KindArray, KindComplex, KindSparse:
		return MarkerArray
	case KindRecord:
		return MarkerObject
	case KindInt:
		if v.bigVal != nil {
			if keepType {
				return MarkerHuge
			}
			return narrowestMarker(v.bigVal, ubjson)
		}
		if keepType {
			m := exactIntMarker(int(v.intWidth), v.signed)
			if ubjson {
				return narrowestMarker(v.AsBigInt(), true)
			}
			return m
		}
		return narrowestMarker(v.AsBigInt(), ubjson)
	}
	return MarkerNull
}

func exactIntMarker(width int, signed bool) Marker {
	switch {
	case width == 8 && signed:
		return MarkerInt8
	case width == 8:
		return MarkerUint8
	case width == 16 && signed:
		return MarkerInt16
	case width == 16:
		return MarkerUint16
	case width == 32 && signed:
		return MarkerInt32
	case width == 32:
		return MarkerUint32
	case signed:
		return MarkerInt64
	default:
		return MarkerUint64
	}
}

// narrowestMarker walks the ladder for the first marker whose range
// contains b.
func narrowestMarker(b *big.Int, ubjson bool) Marker {
	l := ladder
	if ubjson {
		l = ubjsonLadder
	}
	for _, m := range l {
		if markerHolds(m, b) {
			return m
		}
	}
	return MarkerHuge
}

func markerHolds(m Marker, b *big.Int) bool {
	if b.Sign() >= 0 {
		if !b.IsUint64() {
			return false
		}
		return b.Uint64() <= markerMax(m)
	}
	if !b.IsInt64() {
		return false
	}
	return b.Int64() >= markerMin(m)
}

func markerMax(m Marker) uint64 {
	switch m {
	case MarkerUint8:
		return math.MaxUint8
	case MarkerInt8:
		return math.MaxInt8
	case MarkerUint16:
		return math.MaxUint16
	case MarkerInt16:
		return math.MaxInt16
	case MarkerUint32:
		return math.MaxUint32
	case MarkerInt32:
		return math.MaxInt32
	case MarkerUint64:
		return math.MaxUint64
	case MarkerInt64:
		return math.MaxInt64
	}
	return 0
}

func markerMin(m Marker) int64 {
	switch m {
	case MarkerInt8:
		return math.MinInt8
	case MarkerInt16:
		return math.MinInt16
	case MarkerInt32:
		return math.MinInt32
	case MarkerInt64:
		return math.MinInt64
	}
	return 0
}

// ElemMarker returns the fixed-width marker for an element type.
func ElemMarker(t ElemType) Marker {
	switch t {
	case ElemSingle:
		return MarkerFloat32
	case ElemInt8:
		return MarkerInt8
	case ElemUint8:
		return MarkerUint8
	case ElemInt16:
		return MarkerInt16
	case ElemUint16:
		return MarkerUint16
	case ElemInt32:
		return MarkerInt32
	case ElemUint32:
		return MarkerUint32
	case ElemInt64:
		return MarkerInt64
	case ElemUint64:
		return MarkerUint64
	default:
		return MarkerFloat64
	}
}

// markerElem maps a fixed-width numeric marker to its element type.
func markerElem(m Marker) (ElemType, bool) {
	switch m {
	case MarkerFloat64:
		return ElemDouble, true
	case MarkerFloat32:
		return ElemSingle, true
	case MarkerInt8:
		return ElemInt8, true
	case MarkerUint8:
		return ElemUint8, true
	case MarkerInt16:
		return ElemInt16, true
	case MarkerUint16:
		return ElemUint16, true
	case MarkerInt32:
		return ElemInt32, true
	case MarkerUint32:
		return ElemUint32, true
	case MarkerInt64:
		return ElemInt64, true
	case MarkerUint64:
		return ElemUint64, true
	}
	return 0, false
}

// ubjsonElem widens unsigned element types UBJSON cannot express.
func ubjsonElem(t ElemType) ElemType {
	switch t {
	case ElemUint16:
		return ElemInt32
	case ElemUint32, ElemUint64:
		return ElemInt64
	}
	return t
}

// intsMarker picks the narrowest marker for a list of non-negative sizes.
func intsMarker(vals []int, ubjson bool) Marker {
	hi := 0
	for _, v := range vals {
		if v > hi {
			hi = v
		}
	}
	return narrowestMarker(big.NewInt(int64(hi)), ubjson)
}
