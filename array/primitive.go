package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/float16"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/internal/unsafecast"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// PrimitiveType is the set of fixed-width element types.
type PrimitiveType interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float16.Num | float32 | float64
}

// Integer is the set of dictionary key types.
type Integer interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64
}

func dataTypeOf[T PrimitiveType]() abi.DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return abi.INT8
	case uint8:
		return abi.UINT8
	case int16:
		return abi.INT16
	case uint16:
		return abi.UINT16
	case int32:
		return abi.INT32
	case uint32:
		return abi.UINT32
	case int64:
		return abi.INT64
	case uint64:
		return abi.UINT64
	case float16.Num:
		return abi.HALF_FLOAT
	case float32:
		return abi.FLOAT
	case float64:
		return abi.DOUBLE
	}
	return abi.UNKNOWN
}

// Primitive is an array of fixed-width values: a validity bitmap and one
// values buffer.
type Primitive[T PrimitiveType] struct{ base }

type (
	Int8    = Primitive[int8]
	Uint8   = Primitive[uint8]
	Int16   = Primitive[int16]
	Uint16  = Primitive[uint16]
	Int32   = Primitive[int32]
	Uint32  = Primitive[uint32]
	Int64   = Primitive[int64]
	Uint64  = Primitive[uint64]
	Float16 = Primitive[float16.Num]
	Float32 = Primitive[float32]
	Float64 = Primitive[float64]
)

// NewPrimitive returns an array holding a copy of vals.
func NewPrimitive[T PrimitiveType](vals []T, opts ...Option) (*Primitive[T], error) {
	o := newOptions(opts)
	validity, nulls, err := o.validityBuffer(len(vals))
	if err != nil {
		return nil, err
	}
	data := abi.CopyBuffer(o.mem, unsafecast.ToBytes(vals))
	p, err := o.newPair(dataTypeOf[T](), len(vals), nulls, [][]byte{validity, data}, nil)
	if err != nil {
		return nil, err
	}
	return &Primitive[T]{base{p}}, nil
}

func newPrimitiveFromProxy[T PrimitiveType](p *proxy.Proxy) (*Primitive[T], error) {
	if p.NBuffers() != 2 {
		return nil, fmt.Errorf("%w: %s array with %d buffers", ErrInvalidFormat, p.Format(), p.NBuffers())
	}
	size := unsafecast.Sizeof[T]()
	if need := int(p.Offset()+p.Length()) * size; len(p.Buffer(1)) < need {
		return nil, fmt.Errorf("%w: values buffer of %d bytes, need %d", ErrInvalidFormat, len(p.Buffer(1)), need)
	}
	return &Primitive[T]{base{p}}, nil
}

// Values returns the values of the array, null slots included. The slice
// aliases the values buffer.
func (a *Primitive[T]) Values() []T {
	all := unsafecast.FromBytes[T](a.p.Buffer(1))
	if all == nil {
		return nil
	}
	return all[a.offset() : a.offset()+a.Len()]
}

// Value returns element i regardless of its validity.
func (a *Primitive[T]) Value(i int) T { return a.Values()[i] }

// Get returns element i and whether it is valid.
func (a *Primitive[T]) Get(i int) (T, bool) {
	if a.IsNull(i) {
		var zero T
		return zero, false
	}
	return a.Value(i), true
}

// Set stores v at position i and marks it valid.
func (a *Primitive[T]) Set(i int, v T) error {
	if err := a.check(i); err != nil {
		return err
	}
	if err := a.p.SetValid(i, true); err != nil {
		return err
	}
	a.Values()[i] = v
	return nil
}

// Append adds v at the end.
func (a *Primitive[T]) Append(v T) error {
	n := a.Len()
	if _, err := a.reserve(1, (a.offset()+n+1)*unsafecast.Sizeof[T]()); err != nil {
		return err
	}
	if err := a.appendSlot(true); err != nil {
		return err
	}
	a.Values()[n] = v
	return nil
}

// AppendNull adds a null element at the end.
func (a *Primitive[T]) AppendNull() error {
	if _, err := a.reserve(1, (a.offset()+a.Len()+1)*unsafecast.Sizeof[T]()); err != nil {
		return err
	}
	return a.appendSlot(false)
}
