package jdata

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseMarker_Narrowest(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 64)
	tests := []struct {
		name string
		v    *Value
		want Marker
	}{
		{"zero", Int(0), MarkerUint8},
		{"uint8_max", Int(255), MarkerUint8},
		{"uint8_declared", Uint8(255), MarkerUint8},
		{"int8_min", Int(-128), MarkerInt8},
		{"minus_one", Int(-1), MarkerInt8},
		{"uint16", Int(256), MarkerUint16},
		{"uint16_max", Int(65535), MarkerUint16},
		{"int16", Int(-129), MarkerInt16},
		{"uint32", Int(65536), MarkerUint32},
		{"int32", Int(-32769), MarkerInt32},
		{"uint32_max", Int64(math.MaxUint32), MarkerUint32},
		{"uint64", Int64(math.MaxUint32 + 1), MarkerUint64},
		{"int64", Int64(math.MinInt32 - 1), MarkerInt64},
		{"uint64_max", Uint64(math.MaxUint64), MarkerUint64},
		{"huge", BigInt(huge), MarkerHuge},
		{"float64", Float64(1.5), MarkerFloat64},
		{"float32", Float32(1.5), MarkerFloat32},
		{"null", Null(), MarkerNull},
		{"true", Bool(true), MarkerTrue},
		{"text", Text("x"), MarkerString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseMarker(tt.v, false))
		})
	}
}

func TestChooseMarker_KeepType(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want Marker
	}{
		{"int8", Int8(1), MarkerInt8},
		{"uint8", Uint8(1), MarkerUint8},
		{"int16", Int16(1), MarkerInt16},
		{"uint16", Uint16(1), MarkerUint16},
		{"int32", Int32(1), MarkerInt32},
		{"uint32", Uint32(1), MarkerUint32},
		{"int64", Int64(1), MarkerInt64},
		{"uint64", Uint64(1), MarkerUint64},
		{"big", BigInt(big.NewInt(1)), MarkerHuge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseMarker(tt.v, true))
		})
	}
}

func TestChooseMarker_UBJSONLadder(t *testing.T) {
	assert.Equal(t, MarkerInt16, chooseMarker(Int(256), false, true))
	assert.Equal(t, MarkerInt32, chooseMarker(Int(40000), false, true))
	assert.Equal(t, MarkerHuge, chooseMarker(Uint64(math.MaxUint64), false, true))
}

func TestChooseMarker_Deterministic(t *testing.T) {
	// Every integer gets the first ladder marker that holds it.
	for _, n := range []int64{0, 1, 127, 128, 255, 256, -1, -128, -129, 32767, 32768, 65535, 65536, -32768, -32769, 1 << 31, 1 << 32, -(1 << 31), -(1 << 31) - 1} {
		m := ChooseMarker(Int64(n), false)
		b := big.NewInt(n)
		assert.True(t, markerHolds(m, b), "%d in %s", n, m)
		for _, earlier := range ladder {
			if earlier == m {
				break
			}
			assert.False(t, markerHolds(earlier, b), "%d also fits narrower %s", n, earlier)
		}
	}
}
