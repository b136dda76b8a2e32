package array

import (
	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// Array is the user-facing handle over a Wrapper.
type Array struct {
	w *Wrapper
}

// Import takes ownership of an interchange pair.
func Import(arr *abi.ArrowArray, sch *abi.ArrowSchema, opts ...proxy.Option) (*Array, error) {
	p, err := proxy.New(arr, sch, opts...)
	if err != nil {
		return nil, err
	}
	a, err := FromProxy(p)
	if err != nil {
		p.Release()
		return nil, err
	}
	return &Array{w: Owned(a)}, nil
}

// View borrows an interchange pair, which must outlive the array.
func View(arr *abi.ArrowArray, sch *abi.ArrowSchema, opts ...proxy.Option) (*Array, error) {
	p, err := proxy.NewView(arr, sch, opts...)
	if err != nil {
		return nil, err
	}
	a, err := FromProxy(p)
	if err != nil {
		return nil, err
	}
	return &Array{w: Borrowed(a)}, nil
}

// FromTyped takes ownership of a.
func FromTyped(a Typed) *Array { return &Array{w: Owned(a)} }

// FromWrapper returns an array using w. Releasing the array releases w.
func FromWrapper(w *Wrapper) *Array { return &Array{w: w} }

func (a *Array) Wrapper() *Wrapper      { return a.w }
func (a *Array) DataType() abi.DataType { return a.w.DataType() }
func (a *Array) Len() int               { return Size(a.w) }
func (a *Array) Empty() bool            { return a.Len() == 0 }
func (a *Array) NullCount() int         { return NullCount(a.w) }
func (a *Array) Name() string           { return a.w.Proxy().Name() }

// SetName renames the field. The schema must have been produced by this
// module.
func (a *Array) SetName(name string) error { return a.w.Proxy().SetName(name) }

// Metadata decodes the field metadata.
func (a *Array) Metadata() ([]abi.KeyValue, error) { return a.w.Proxy().MetadataPairs() }

// At returns element i, failing with ErrOutOfRange past the end.
func (a *Array) At(i int) (Nullable, error) { return Element(a.w, i) }

// Values returns every element in order.
func (a *Array) Values() []Nullable {
	out := make([]Nullable, a.Len())
	for i := range out {
		out[i], _ = Element(a.w, i)
	}
	return out
}

// Slice returns an owned copy of [start, end).
func (a *Array) Slice(start, end int) (*Array, error) {
	p, err := a.w.Proxy().Slice(int64(start), int64(end))
	if err != nil {
		return nil, err
	}
	t, err := FromProxy(p)
	if err != nil {
		p.Release()
		return nil, err
	}
	return &Array{w: Owned(t)}, nil
}

// SliceView returns [start, end) without copying. The result borrows the
// buffers of a and must not outlive it.
func (a *Array) SliceView(start, end int) (*Array, error) {
	p, err := a.w.Proxy().SliceView(int64(start), int64(end))
	if err != nil {
		return nil, err
	}
	t, err := FromProxy(p)
	if err != nil {
		p.Release()
		return nil, err
	}
	return &Array{w: Borrowed(t)}, nil
}

// Equal reports whether a and b hold the same type and elements.
func (a *Array) Equal(b *Array) bool { return Equal(a.w, b.w) }

// Clone returns an owned deep copy.
func (a *Array) Clone() (*Array, error) {
	w, err := a.w.Clone()
	if err != nil {
		return nil, err
	}
	return &Array{w: w}, nil
}

// Export hands an interchange pair to the caller, who must release it. An
// owned array is moved out and left released; any other array is copied.
func (a *Array) Export() (*abi.ArrowArray, *abi.ArrowSchema, error) {
	p := a.w.Proxy()
	if a.w.Mode() == ModeOwned && p.OwnsArray() && p.OwnsSchema() {
		arr, sch, err := p.Extract()
		if err != nil {
			return nil, nil, err
		}
		a.w.Release()
		return arr, sch, nil
	}
	w, err := a.w.Clone()
	if err != nil {
		return nil, nil, err
	}
	defer w.Release()
	return w.Proxy().Extract()
}

// Release releases the underlying wrapper.
func (a *Array) Release() { a.w.Release() }
