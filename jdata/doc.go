// Package jdata implements the JData typed-array codec for JSON text and
// BJData/UBJSON binary streams.
//
// Both encodings share one data model (Value): null, bool, sized integers,
// 32/64-bit floats, text, ordered lists, ordered records, N-dimensional
// typed arrays, complex arrays and sparse matrices.
//
// # JSON Text
//
// Plain double arrays are written as nested JSON arrays. Anything that
// needs metadata is written as an annotated object:
//
//	{
//	  "_ArrayType_": "int32",
//	  "_ArraySize_": [2, 3],
//	  "_ArrayData_": [1, 2, 3, 4, 5, 6]
//	}
//
// Complex arrays add "_ArrayIsComplex_", sparse matrices add
// "_ArrayIsSparse_" and store 1-based [rows, cols, values] columns.
// Structured matrices (diagonal, triangular, banded) are stored reduced
// under "_ArrayShape_" and "_ArrayZipSize_", and large payloads may be
// compressed into "_ArrayZipType_"/"_ArrayZipData_".
//
// NaN and infinities have no JSON literal and are written as the strings
// "_NaN_", "_Inf_" and "-_Inf_" (configurable).
//
// # Binary
//
// The binary codec uses one-byte markers:
//
//	Z null   T/F bool   C char   S string   H huge integer
//	U i u I m l M L   uint8 int8 uint16 int16 uint32 int32 uint64 int64
//	d D   float32 float64
//	[ ] { }   containers, with optional $type #count headers
//	N   no-op padding
//
// Scalar integers take the narrowest marker that holds them unless
// Options.KeepType is set. Typed arrays are written as optimized
// containers; N-D arrays use the BJData [$t#[$U#k d1..dk] dimension
// header, or nested containers with Options.NestArray.
//
// # Position Index
//
// DecodeTextIndex and DecodeBinaryIndex also return an Index of
// (path, span) entries such as "$", "$.a", "$.a[2]", so callers can slice
// sub-documents out of the original bytes without re-parsing everything.
//
// # Example
//
//	a := jdata.MustArray([]int{2, 2}, []int32{1, 2, 3, 4})
//	s, _ := jdata.EncodeText(jdata.Array(a), jdata.CompactOptions())
//	// {"_ArrayType_":"int32","_ArraySize_":[2,2],"_ArrayData_":[1,2,3,4]}
package jdata
