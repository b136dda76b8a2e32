package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/endian"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/layout"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// DefaultViewBufferSize bounds each variadic buffer built by NewViewArray.
const DefaultViewBufferSize = 1 << 20

// ViewArray is an array of variable-length values in the view layout.
// Buffers: validity, views, variadic data buffers..., then one int64 per
// variadic buffer holding its size.
type ViewArray[V BytesLike] struct{ base }

type (
	StringView = ViewArray[string]
	BinaryView = ViewArray[[]byte]
)

func viewDataType[V BytesLike]() abi.DataType {
	var v V
	if _, ok := any(v).(string); ok {
		return abi.STRING_VIEW
	}
	return abi.BINARY_VIEW
}

// NewViewArray returns an array holding a copy of vals. Values longer than
// 12 bytes are packed into variadic buffers of DefaultViewBufferSize bytes.
func NewViewArray[V BytesLike](vals []V, opts ...Option) (*ViewArray[V], error) {
	views, variadic := layout.BuildViewsFromValues(vals, DefaultViewBufferSize)
	return newViewArray[V](views, variadic, newOptions(opts))
}

// NewViewArrayFromSpecs builds an array from external view descriptions and
// their variadic buffers. Referenced views are validated against the buffers.
func NewViewArrayFromSpecs[V BytesLike](specs []layout.ViewSpec, variadic [][]byte, opts ...Option) (*ViewArray[V], error) {
	views := layout.BuildViews(specs)
	if err := layout.ValidateViews(views, variadic); err != nil {
		return nil, err
	}
	return newViewArray[V](views, variadic, newOptions(opts))
}

// NewStringView returns a utf8_view array.
func NewStringView(vals []string, opts ...Option) (*StringView, error) {
	return NewViewArray(vals, opts...)
}

// NewBinaryView returns a binary_view array.
func NewBinaryView(vals [][]byte, opts ...Option) (*BinaryView, error) {
	return NewViewArray(vals, opts...)
}

func newViewArray[V BytesLike](views []layout.ViewRecord, variadic [][]byte, o *options) (*ViewArray[V], error) {
	validity, nulls, err := o.validityBuffer(len(views))
	if err != nil {
		return nil, err
	}
	buffers := make([][]byte, 0, len(variadic)+3)
	buffers = append(buffers, validity, abi.CopyBuffer(o.mem, layout.ViewBytes(views)))
	sizes := abi.AllocateBuffer(o.mem, 8*len(variadic))
	for i, b := range variadic {
		buffers = append(buffers, abi.CopyBuffer(o.mem, b))
		endian.Native.PutUint64(sizes[8*i:], uint64(len(b)))
	}
	buffers = append(buffers, sizes)
	p, err := o.newPair(viewDataType[V](), len(views), nulls, buffers, nil)
	if err != nil {
		return nil, err
	}
	return &ViewArray[V]{base{p}}, nil
}

func newViewArrayFromProxy[V BytesLike](p *proxy.Proxy) (*ViewArray[V], error) {
	if p.NBuffers() < 3 {
		return nil, fmt.Errorf("%w: %s array with %d buffers", ErrInvalidFormat, p.Format(), p.NBuffers())
	}
	a := &ViewArray[V]{base{p}}
	all := layout.Views(p.Buffer(1))
	if need := a.offset() + a.Len(); len(all) < need {
		return nil, fmt.Errorf("%w: %d views, need %d", ErrInvalidFormat, len(all), need)
	}
	if err := layout.ValidateViews(all[a.offset():a.offset()+a.Len()], a.Variadic()); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *ViewArray[V]) records() []layout.ViewRecord { return layout.Views(a.p.Buffer(1)) }

// Views returns the view records of the array. The slice aliases the views
// buffer.
func (a *ViewArray[V]) Views() []layout.ViewRecord {
	all := a.records()
	if all == nil {
		return nil
	}
	return all[a.offset() : a.offset()+a.Len()]
}

// Variadic returns the variadic data buffers.
func (a *ViewArray[V]) Variadic() [][]byte {
	bufs := a.p.Buffers()
	return bufs[2 : len(bufs)-1]
}

// Value returns element i regardless of its validity.
func (a *ViewArray[V]) Value(i int) V {
	a.mustIndex(i)
	r := &a.records()[a.offset()+i]
	return V(r.Value(a.Variadic()))
}

// Get returns element i and whether it is valid.
func (a *ViewArray[V]) Get(i int) (V, bool) {
	if a.IsNull(i) {
		var zero V
		return zero, false
	}
	return a.Value(i), true
}

// Set replaces element i with v and marks it valid. A long value is appended
// to the last variadic buffer; the bytes it replaces are not reclaimed.
func (a *ViewArray[V]) Set(i int, v V) error {
	if err := a.check(i); err != nil {
		return err
	}
	r, err := a.encode(v)
	if err != nil {
		return err
	}
	a.records()[a.offset()+i] = r
	return a.p.SetValid(i, true)
}

// Append adds v at the end.
func (a *ViewArray[V]) Append(v V) error {
	r, err := a.encode(v)
	if err != nil {
		return err
	}
	return a.appendRecord(r, true)
}

// AppendNull adds a null element at the end.
func (a *ViewArray[V]) AppendNull() error {
	return a.appendRecord(layout.ViewRecord{}, false)
}

func (a *ViewArray[V]) appendRecord(r layout.ViewRecord, valid bool) error {
	last := a.offset() + a.Len()
	if _, err := a.reserve(1, (last+1)*layout.ViewSize); err != nil {
		return err
	}
	a.records()[last] = r
	return a.appendSlot(valid)
}

// encode returns the record of v, storing long values in the last variadic
// buffer (created if needed).
func (a *ViewArray[V]) encode(v V) (layout.ViewRecord, error) {
	if len(v) <= layout.MaxInline {
		return layout.InlineView(v), nil
	}
	n := a.p.NBuffers()
	if n == 3 && len(a.p.Buffer(n-1)) == 0 {
		// no variadic buffer yet: the sizes buffer moves one slot right
		if err := a.p.SetNBuffers(n + 1); err != nil {
			return layout.ViewRecord{}, err
		}
		if err := a.p.SetBuffer(n, make([]byte, 8)); err != nil {
			return layout.ViewRecord{}, err
		}
		if err := a.p.SetBuffer(n-1, nil); err != nil {
			return layout.ViewRecord{}, err
		}
		n++
	}
	idx := n - 2
	sizes := a.p.Buffer(n - 1)
	vi := idx - 2
	used := int(endian.Native.Uint64(sizes[8*vi:]))
	buf, err := a.reserve(idx, used+len(v))
	if err != nil {
		return layout.ViewRecord{}, err
	}
	copy(buf[used:], v)
	endian.Native.PutUint64(a.p.Buffer(n-1)[8*vi:], uint64(used+len(v)))
	return layout.ReferencedView(int32(len(v)), []byte(v)[:layout.PrefixSize], int32(vi), int32(used)), nil
}
