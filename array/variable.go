package array

import (
	"fmt"
	"math"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/internal/unsafecast"
	"github.com/VanDung-dev/HieraChain-Columnar/layout"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// OffsetType is the element type of an offsets buffer.
type OffsetType interface{ int32 | int64 }

// BytesLike is the element type of variable-length arrays.
type BytesLike interface{ string | []byte }

// Variable is an array of variable-length values in the offset layout:
// a validity bitmap, N+1 offsets and one data buffer.
type Variable[O OffsetType, V BytesLike] struct{ base }

type (
	String      = Variable[int32, string]
	LargeString = Variable[int64, string]
	Binary      = Variable[int32, []byte]
	LargeBinary = Variable[int64, []byte]
)

func variableDataType[O OffsetType, V BytesLike]() abi.DataType {
	var v V
	large := unsafecast.Sizeof[O]() == 8
	switch any(v).(type) {
	case string:
		if large {
			return abi.LARGE_STRING
		}
		return abi.STRING
	default:
		if large {
			return abi.LARGE_BINARY
		}
		return abi.BINARY
	}
}

// NewVariable returns an array holding a copy of vals.
func NewVariable[O OffsetType, V BytesLike](vals []V, opts ...Option) (*Variable[O, V], error) {
	o := newOptions(opts)
	data, offs, err := layout.Concat[O](vals)
	if err != nil {
		return nil, err
	}
	validity, nulls, err := o.validityBuffer(len(vals))
	if err != nil {
		return nil, err
	}
	buffers := [][]byte{
		validity,
		abi.CopyBuffer(o.mem, unsafecast.ToBytes(offs)),
		abi.CopyBuffer(o.mem, data),
	}
	p, err := o.newPair(variableDataType[O, V](), len(vals), nulls, buffers, nil)
	if err != nil {
		return nil, err
	}
	return &Variable[O, V]{base{p}}, nil
}

// NewString returns a utf8 array.
func NewString(vals []string, opts ...Option) (*String, error) {
	return NewVariable[int32](vals, opts...)
}

// NewLargeString returns a large_utf8 array.
func NewLargeString(vals []string, opts ...Option) (*LargeString, error) {
	return NewVariable[int64](vals, opts...)
}

// NewBinary returns a binary array.
func NewBinary(vals [][]byte, opts ...Option) (*Binary, error) {
	return NewVariable[int32](vals, opts...)
}

// NewLargeBinary returns a large_binary array.
func NewLargeBinary(vals [][]byte, opts ...Option) (*LargeBinary, error) {
	return NewVariable[int64](vals, opts...)
}

func newVariableFromProxy[O OffsetType, V BytesLike](p *proxy.Proxy) (*Variable[O, V], error) {
	if p.NBuffers() != 3 {
		return nil, fmt.Errorf("%w: %s array with %d buffers", ErrInvalidFormat, p.Format(), p.NBuffers())
	}
	a := &Variable[O, V]{base{p}}
	if a.Len() == 0 {
		return a, nil
	}
	offs := unsafecast.FromBytes[O](p.Buffer(1))
	lo, hi := a.offset(), a.offset()+a.Len()+1
	if len(offs) < hi {
		return nil, fmt.Errorf("%w: %d offsets, need %d", ErrInvalidFormat, len(offs), hi)
	}
	if err := layout.ValidateOffsets(offs[lo:hi], len(p.Buffer(2))); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Variable[O, V]) offsets() []O { return unsafecast.FromBytes[O](a.p.Buffer(1)) }

// Value returns element i regardless of its validity. For []byte arrays the
// result aliases the data buffer.
func (a *Variable[O, V]) Value(i int) V {
	a.mustIndex(i)
	s, e := layout.Range(a.offsets(), a.offset()+i)
	return V(a.p.Buffer(2)[s:e])
}

// Get returns element i and whether it is valid.
func (a *Variable[O, V]) Get(i int) (V, bool) {
	if a.IsNull(i) {
		var zero V
		return zero, false
	}
	return a.Value(i), true
}

// ValueLen returns the byte length of element i.
func (a *Variable[O, V]) ValueLen(i int) int {
	a.mustIndex(i)
	s, e := layout.Range(a.offsets(), a.offset()+i)
	return e - s
}

func (a *Variable[O, V]) checkSize(total int) error {
	if unsafecast.Sizeof[O]() == 4 && total > math.MaxInt32 {
		return fmt.Errorf("%w: %d bytes overflow 32-bit offsets", ErrInvalidFormat, total)
	}
	return nil
}

// Set replaces element i with v, shifting the following values, and marks
// it valid.
func (a *Variable[O, V]) Set(i int, v V) error {
	if err := a.check(i); err != nil {
		return err
	}
	idx, last := a.offset()+i, a.offset()+a.Len()
	s, e := layout.Range(a.offsets(), idx)
	end := int(a.offsets()[last])
	delta := len(v) - (e - s)
	if err := a.checkSize(end + delta); err != nil {
		return err
	}
	data, err := a.reserve(2, end+delta)
	if err != nil {
		return err
	}
	copy(data[e+delta:end+delta], data[e:end])
	copy(data[s:s+len(v)], v)
	offs := a.offsets()
	for k := idx + 1; k <= last; k++ {
		offs[k] += O(delta)
	}
	return a.p.SetValid(i, true)
}

// Append adds v at the end.
func (a *Variable[O, V]) Append(v V) error {
	return a.appendValue(v, true)
}

// AppendNull adds a null element at the end.
func (a *Variable[O, V]) AppendNull() error {
	var zero V
	return a.appendValue(zero, false)
}

func (a *Variable[O, V]) appendValue(v V, valid bool) error {
	last := a.offset() + a.Len()
	size := unsafecast.Sizeof[O]()
	if _, err := a.reserve(1, (last+2)*size); err != nil {
		return err
	}
	end := int(a.offsets()[last])
	if err := a.checkSize(end + len(v)); err != nil {
		return err
	}
	if len(v) > 0 {
		data, err := a.reserve(2, end+len(v))
		if err != nil {
			return err
		}
		copy(data[end:], v)
	}
	offs := a.offsets()
	offs[last] = O(end)
	offs[last+1] = O(end + len(v))
	return a.appendSlot(valid)
}
