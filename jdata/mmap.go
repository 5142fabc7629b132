package jdata

import "fmt"

// Span is a half-open byte range [Offset, Offset+Length) in a source
// document.
type Span struct {
	Offset int
	Length int
}

// End returns the exclusive end offset.
func (s Span) End() int { return s.Offset + s.Length }

// Entry pairs a JSONPath-like location with the bytes that produced it.
type Entry struct {
	Path string
	Span Span
}

// Index is the position index ("memory map") recorded while decoding.
// Entries are kept in depth-first document order, parents before children.
// Members of binary containers with a declared $ type are not indexed;
// the container is a single entry. When a record repeats a key, Lookup
// resolves the path to the last occurrence, which is the decoded value.
type Index struct {
	entries []Entry
	byPath  map[string]int
}

func (x *Index) add(path string, offset, length int) {
	if x.byPath == nil {
		x.byPath = make(map[string]int)
	}
	x.byPath[path] = len(x.entries)
	x.entries = append(x.entries, Entry{Path: path, Span: Span{Offset: offset, Length: length}})
}

// Entries returns the recorded entries in document order.
func (x *Index) Entries() []Entry {
	if x == nil {
		return nil
	}
	return append([]Entry(nil), x.entries...)
}

// Len returns the number of entries.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// Lookup returns the span recorded for path.
func (x *Index) Lookup(path string) (Span, bool) {
	if x == nil {
		return Span{}, false
	}
	i, ok := x.byPath[path]
	if !ok {
		return Span{}, false
	}
	return x.entries[i].Span, true
}

// Extract slices the bytes for path out of the document the index was
// built from.
func (x *Index) Extract(doc []byte, path string) ([]byte, error) {
	s, ok := x.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("jdata: path %q not in index", path)
	}
	if s.Offset < 0 || s.End() > len(doc) {
		return nil, fmt.Errorf("jdata: span %d+%d for %q outside document of %d bytes", s.Offset, s.Length, path, len(doc))
	}
	return doc[s.Offset:s.End()], nil
}

// Shift moves every span by delta bytes, for indexes of documents embedded
// in a larger buffer.
func (x *Index) Shift(delta int) {
	for i := range x.entries {
		x.entries[i].Span.Offset += delta
	}
}

// Value renders the index as a list of [path, [offset, length]] pairs.
func (x *Index) Value() *Value {
	items := make([]*Value, 0, x.Len())
	for _, e := range x.Entries() {
		items = append(items, List(Text(e.Path), List(Int(e.Span.Offset), Int(e.Span.Length))))
	}
	return List(items...)
}
