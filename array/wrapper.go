package array

import (
	"sync/atomic"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// Mode is how a Wrapper holds its array.
type Mode uint8

const (
	// ModeOwned wrappers release their array.
	ModeOwned Mode = iota
	// ModeShared wrappers hold one reference of a SharedArray.
	ModeShared
	// ModeBorrowed wrappers never release the array they point to.
	ModeBorrowed
)

func (m Mode) String() string {
	switch m {
	case ModeOwned:
		return "owned"
	case ModeShared:
		return "shared"
	case ModeBorrowed:
		return "borrowed"
	}
	return "unknown"
}

// Wrapper is a type-erased handle over one concrete array. Algorithms are
// not methods of the wrapper: they go through Visit.
type Wrapper struct {
	arr    Typed
	shared *SharedArray
	mode   Mode
}

// Owned wraps a and takes ownership of it.
func Owned(a Typed) *Wrapper { return &Wrapper{arr: a, mode: ModeOwned} }

// Shared wraps the array of s, taking one more reference.
func Shared(s *SharedArray) *Wrapper {
	s.Retain()
	return &Wrapper{arr: s.arr, shared: s, mode: ModeShared}
}

// Borrowed wraps a without taking ownership; a must outlive the wrapper.
func Borrowed(a Typed) *Wrapper { return &Wrapper{arr: a, mode: ModeBorrowed} }

// Typed returns the concrete array.
func (w *Wrapper) Typed() Typed { return w.arr }

// Mode returns how the wrapper holds its array.
func (w *Wrapper) Mode() Mode { return w.mode }

// DataType returns the runtime type tag. For dictionary-encoded arrays it is
// the type of the keys.
func (w *Wrapper) DataType() abi.DataType { return w.arr.DataType() }

// IsDictionary reports whether the array is dictionary-encoded.
func (w *Wrapper) IsDictionary() bool {
	_, ok := w.arr.(DictionaryArray)
	return ok
}

// Proxy returns the proxy of the wrapped array.
func (w *Wrapper) Proxy() *proxy.Proxy { return w.arr.Proxy() }

// Clone returns an owned deep copy that shares no buffer with w, whatever
// the mode of w.
func (w *Wrapper) Clone() (*Wrapper, error) {
	p, err := w.arr.Proxy().Clone()
	if err != nil {
		return nil, err
	}
	a, err := FromProxy(p)
	if err != nil {
		p.Release()
		return nil, err
	}
	return Owned(a), nil
}

// Release drops the wrapper's hold on its array. Releasing twice is a no-op.
func (w *Wrapper) Release() {
	if w.arr == nil {
		return
	}
	switch w.mode {
	case ModeOwned:
		w.arr.Release()
	case ModeShared:
		w.shared.Release()
	}
	w.arr, w.shared = nil, nil
}

// As returns the concrete array of w as an A.
func As[A Typed](w *Wrapper) (A, bool) {
	a, ok := w.arr.(A)
	return a, ok
}

// SharedArray is a reference-counted array. The array is released when the
// last reference goes away.
type SharedArray struct {
	refs atomic.Int64
	arr  Typed
}

// NewShared takes ownership of a and returns it with one reference.
func NewShared(a Typed) *SharedArray {
	s := &SharedArray{arr: a}
	s.refs.Store(1)
	return s
}

// Retain adds a reference.
func (s *SharedArray) Retain() { s.refs.Add(1) }

// Release drops a reference. It panics when called more times than the
// references taken.
func (s *SharedArray) Release() {
	switch n := s.refs.Add(-1); {
	case n == 0:
		s.arr.Release()
	case n < 0:
		panic("array: too many releases of a shared array")
	}
}

// Refs returns the number of live references.
func (s *SharedArray) Refs() int64 { return s.refs.Load() }

// Array returns the shared array.
func (s *SharedArray) Array() Typed { return s.arr }
