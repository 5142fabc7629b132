package jdata

// nodeKind identifies a raw syntax node produced by either parser.
type nodeKind uint8

const (
	nNull nodeKind = iota
	nBool
	nNum    // text numeric literal
	nScalar // binary typed scalar, carried as a Value
	nText
	nList
	nObject
	nPacked // binary optimized numeric container
)

// node is the format-neutral parse tree shared by the text and binary
// decoders. Spans are half-open byte ranges into the source.
type node struct {
	kind  nodeKind
	start int
	end   int

	b      bool
	n      num
	val    *Value
	s      string
	items  []*node
	keys   []string
	packed *NDArray

	// counted marks a binary array container that declared a count but no
	// element type; the binary encoder uses that form only for nested
	// N-D array levels.
	counted bool

	// typed marks a binary container with a declared $ type whose members
	// carry no marker of their own, so their bytes cannot be parsed alone.
	typed bool
}

// reserved JData annotation keys.
const (
	keyArrayType      = "_ArrayType_"
	keyArraySize      = "_ArraySize_"
	keyArrayIsComplex = "_ArrayIsComplex_"
	keyArrayIsSparse  = "_ArrayIsSparse_"
	keyArrayZipSize   = "_ArrayZipSize_"
	keyArrayShape     = "_ArrayShape_"
	keyArrayZipType   = "_ArrayZipType_"
	keyArrayZipData   = "_ArrayZipData_"
	keyArrayData      = "_ArrayData_"
)

func (n *node) field(key string) *node {
	for i, k := range n.keys {
		if k == key {
			return n.items[i]
		}
	}
	return nil
}

// isAnnotated reports whether an object node is a JData array annotation.
func (n *node) isAnnotated() bool {
	if n.kind != nObject {
		return false
	}
	return n.field(keyArrayData) != nil || n.field(keyArrayZipData) != nil ||
		(n.field(keyArrayType) != nil && n.field(keyArraySize) != nil)
}
