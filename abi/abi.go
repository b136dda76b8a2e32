package abi

import "fmt"

// Schema flags, values as defined by the C Data Interface.
const (
	FlagDictionaryOrdered int64 = 1
	FlagNullable          int64 = 2
	FlagMapKeysSorted     int64 = 4
)

// ArrowSchema mirrors struct ArrowSchema: format, name, metadata, flags,
// children, dictionary, release, private_data. The C counts (n_children) are
// carried by the slice lengths.
type ArrowSchema struct {
	Format      string
	Name        string
	Metadata    []byte
	Flags       int64
	Children    []*ArrowSchema
	Dictionary  *ArrowSchema
	Release     func(*ArrowSchema)
	PrivateData any
}

// NChildren returns n_children.
func (s *ArrowSchema) NChildren() int { return len(s.Children) }

// IsReleased reports whether the schema has been released (or moved from).
func (s *ArrowSchema) IsReleased() bool { return s == nil || s.Release == nil }

// ArrowArray mirrors struct ArrowArray: length, null_count, offset, buffers,
// children, dictionary, release, private_data. The C counts (n_buffers,
// n_children) are carried by the slice lengths; a nil buffer is a NULL
// buffer pointer.
type ArrowArray struct {
	Length      int64
	NullCount   int64
	Offset      int64
	Buffers     [][]byte
	Children    []*ArrowArray
	Dictionary  *ArrowArray
	Release     func(*ArrowArray)
	PrivateData any
}

// NBuffers returns n_buffers.
func (a *ArrowArray) NBuffers() int { return len(a.Buffers) }

// NChildren returns n_children.
func (a *ArrowArray) NChildren() int { return len(a.Children) }

// IsReleased reports whether the array has been released (or moved from).
func (a *ArrowArray) IsReleased() bool { return a == nil || a.Release == nil }

// ReleaseArray invokes the release callback of a if it is still live.
// A callback that returns without marking the array released breaks the
// protocol and panics.
func ReleaseArray(a *ArrowArray) {
	if a.IsReleased() {
		return
	}
	a.Release(a)
	if a.Release != nil {
		panic("abi: array release callback did not mark the array released")
	}
}

// ReleaseSchema invokes the release callback of s if it is still live.
func ReleaseSchema(s *ArrowSchema) {
	if s.IsReleased() {
		return
	}
	s.Release(s)
	if s.Release != nil {
		panic("abi: schema release callback did not mark the schema released")
	}
}

// MoveArray transfers the content of src into a new node and marks src
// released, so only the returned node may be released.
func MoveArray(src *ArrowArray) *ArrowArray {
	dst := new(ArrowArray)
	*dst = *src
	src.Release = nil
	return dst
}

// MoveSchema transfers the content of src into a new node and marks src
// released.
func MoveSchema(src *ArrowSchema) *ArrowSchema {
	dst := new(ArrowSchema)
	*dst = *src
	src.Release = nil
	return dst
}

// CheckIsomorphic verifies that the array and schema trees have the same
// shape at every level: same child count, same dictionary presence.
func CheckIsomorphic(a *ArrowArray, s *ArrowSchema) error {
	if a.IsReleased() || s.IsReleased() {
		return ErrReleased
	}
	if len(a.Children) != len(s.Children) {
		return fmt.Errorf("%w: array has %d children, schema has %d",
			ErrInvalidFormat, len(a.Children), len(s.Children))
	}
	if (a.Dictionary == nil) != (s.Dictionary == nil) {
		return fmt.Errorf("%w: dictionary presence differs between array and schema", ErrInvalidFormat)
	}
	for i := range a.Children {
		if err := CheckIsomorphic(a.Children[i], s.Children[i]); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	if a.Dictionary != nil {
		if err := CheckIsomorphic(a.Dictionary, s.Dictionary); err != nil {
			return fmt.Errorf("dictionary: %w", err)
		}
	}
	return nil
}
