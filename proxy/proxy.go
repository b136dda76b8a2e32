package proxy

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/bitmap"
)

var (
	ErrInvalidFormat   = abi.ErrInvalidFormat
	ErrOutOfRange      = abi.ErrOutOfRange
	ErrNotProduced     = abi.ErrNotProduced
	ErrUnsupportedType = abi.ErrUnsupportedType
	ErrNotOwner        = errors.New("proxy does not own its structures")
)

// Option configures a Proxy.
type Option func(*Proxy)

// WithAllocator sets the allocator used for clones and new buffers.
func WithAllocator(mem memory.Allocator) Option {
	return func(p *Proxy) { p.mem = mem }
}

// Proxy is an owning or borrowing handle on an interchange pair.
type Proxy struct {
	arr        *abi.ArrowArray
	sch        *abi.ArrowSchema
	ownsArray  bool
	ownsSchema bool
	mem        memory.Allocator

	children []*Proxy
	dict     *Proxy
	validity *bitmap.Bitmap

	// null count of a borrowed node whose own count is unknown (-1)
	nulls      int64
	nullsKnown bool
}

// New takes ownership of arr and sch by move: both are marked released on
// return, whether or not an error occurs. The trees must be isomorphic.
func New(arr *abi.ArrowArray, sch *abi.ArrowSchema, opts ...Option) (*Proxy, error) {
	if arr.IsReleased() || sch.IsReleased() {
		abi.ReleaseArray(arr)
		abi.ReleaseSchema(sch)
		return nil, fmt.Errorf("%w: cannot import a released structure", ErrInvalidFormat)
	}
	p := newProxy(abi.MoveArray(arr), abi.MoveSchema(sch), true, true, opts)
	if err := p.init(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// NewOwningArray takes ownership of arr by move and borrows sch, which the
// caller must keep alive and release.
func NewOwningArray(arr *abi.ArrowArray, sch *abi.ArrowSchema, opts ...Option) (*Proxy, error) {
	if arr.IsReleased() || sch.IsReleased() {
		abi.ReleaseArray(arr)
		return nil, fmt.Errorf("%w: cannot import a released structure", ErrInvalidFormat)
	}
	p := newProxy(abi.MoveArray(arr), sch, true, false, opts)
	if err := p.init(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// NewView borrows arr and sch. The caller keeps ownership and must keep both
// alive for the lifetime of the proxy.
func NewView(arr *abi.ArrowArray, sch *abi.ArrowSchema, opts ...Option) (*Proxy, error) {
	if arr.IsReleased() || sch.IsReleased() {
		return nil, fmt.Errorf("%w: cannot view a released structure", ErrInvalidFormat)
	}
	p := newProxy(arr, sch, false, false, opts)
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

func newProxy(arr *abi.ArrowArray, sch *abi.ArrowSchema, ownsArray, ownsSchema bool, opts []Option) *Proxy {
	p := &Proxy{arr: arr, sch: sch, ownsArray: ownsArray, ownsSchema: ownsSchema}
	for _, opt := range opts {
		opt(p)
	}
	if p.mem == nil {
		p.mem = memory.DefaultAllocator
	}
	return p
}

func (p *Proxy) init() error {
	if err := abi.CheckIsomorphic(p.arr, p.sch); err != nil {
		return err
	}
	p.refreshChildren()
	return p.resolveNullCounts(p.ownsArray)
}

// resolveNullCounts replaces every unknown null count of the tree by the
// count of zero bits. Owned nodes are updated in place; the count of a
// borrowed node is kept in its proxy.
func (p *Proxy) resolveNullCounts(owned bool) error {
	if p.arr.NullCount < 0 {
		if err := p.checkBitmapCapacity(p.arr.Offset, p.arr.Length); err != nil {
			return err
		}
		n := p.countNulls(p.arr.Offset, p.arr.Length)
		if owned {
			p.arr.NullCount = n
		} else {
			p.nulls, p.nullsKnown = n, true
		}
	}
	for _, c := range p.children {
		if err := c.resolveNullCounts(owned); err != nil {
			return err
		}
	}
	if p.dict != nil {
		return p.dict.resolveNullCounts(owned)
	}
	return nil
}

// refreshChildren rebuilds the borrowed child and dictionary proxies.
func (p *Proxy) refreshChildren() {
	p.children = make([]*Proxy, len(p.arr.Children))
	for i := range p.arr.Children {
		c := &Proxy{arr: p.arr.Children[i], sch: p.sch.Children[i], mem: p.mem}
		c.refreshChildren()
		p.children[i] = c
	}
	p.dict = nil
	if p.arr.Dictionary != nil {
		p.dict = &Proxy{arr: p.arr.Dictionary, sch: p.sch.Dictionary, mem: p.mem}
		p.dict.refreshChildren()
	}
}

// IsReleased reports whether the proxy no longer refers to a pair.
func (p *Proxy) IsReleased() bool { return p.arr == nil }

func (p *Proxy) Length() int64  { return p.arr.Length }
func (p *Proxy) Offset() int64  { return p.arr.Offset }
func (p *Proxy) NBuffers() int  { return len(p.arr.Buffers) }
func (p *Proxy) NChildren() int { return len(p.arr.Children) }
func (p *Proxy) Format() string { return p.sch.Format }
func (p *Proxy) Name() string   { return p.sch.Name }
func (p *Proxy) Flags() int64   { return p.sch.Flags }

// NullCount returns the number of null elements. An unknown count in a
// borrowed node is computed from the validity bitmap.
func (p *Proxy) NullCount() int64 {
	if p.arr.NullCount >= 0 {
		return p.arr.NullCount
	}
	if !p.nullsKnown {
		p.nulls, p.nullsKnown = p.countNulls(p.arr.Offset, p.arr.Length), true
	}
	return p.nulls
}

// Buffer returns buffer i. It panics if i is out of range.
func (p *Proxy) Buffer(i int) []byte { return p.arr.Buffers[i] }

// Buffers returns all buffers. The slice must not be modified.
func (p *Proxy) Buffers() [][]byte { return p.arr.Buffers }

// Child returns a borrowed proxy on child i.
func (p *Proxy) Child(i int) *Proxy { return p.children[i] }

// Children returns borrowed proxies on every child.
func (p *Proxy) Children() []*Proxy { return p.children }

// Dictionary returns a borrowed proxy on the dictionary, or nil.
func (p *Proxy) Dictionary() *Proxy { return p.dict }

// DataType returns the element type named by the format, UNKNOWN for
// formats outside the supported set.
func (p *Proxy) DataType() abi.DataType {
	dt, err := abi.DataTypeFromFormat(p.sch.Format)
	if err != nil {
		return abi.UNKNOWN
	}
	return dt
}

// Metadata returns the raw metadata bytes.
func (p *Proxy) Metadata() []byte { return p.sch.Metadata }

// MetadataPairs decodes the metadata.
func (p *Proxy) MetadataPairs() ([]abi.KeyValue, error) { return abi.DecodeMetadata(p.sch.Metadata) }

// Allocator returns the allocator used for clones.
func (p *Proxy) Allocator() memory.Allocator { return p.mem }

// ProducedArray reports whether the array was built by this library and can
// be edited.
func (p *Proxy) ProducedArray() bool { return abi.IsProducedArray(p.arr) }

// ProducedSchema reports whether the schema was built by this library and can
// be edited.
func (p *Proxy) ProducedSchema() bool { return abi.IsProducedSchema(p.sch) }

func (p *Proxy) OwnsArray() bool  { return p.ownsArray }
func (p *Proxy) OwnsSchema() bool { return p.ownsSchema }

// Array returns the underlying array node. It stays owned by the proxy.
func (p *Proxy) Array() *abi.ArrowArray { return p.arr }

// Schema returns the underlying schema node. It stays owned by the proxy.
func (p *Proxy) Schema() *abi.ArrowSchema { return p.sch }

// Release releases the owned nodes exactly once. Borrowed nodes are left to
// their owner. Releasing a released or moved-from proxy is a no-op.
func (p *Proxy) Release() {
	if p.arr == nil {
		return
	}
	if p.ownsArray {
		abi.ReleaseArray(p.arr)
	}
	if p.ownsSchema {
		abi.ReleaseSchema(p.sch)
	}
	*p = Proxy{}
}

// Clone returns an owning deep copy. Every buffer is reallocated through the
// proxy's allocator; the copy shares nothing with p.
func (p *Proxy) Clone() (*Proxy, error) {
	arr, err := abi.CopyArray(p.mem, p.arr)
	if err != nil {
		return nil, err
	}
	sch, err := abi.CopySchema(p.sch)
	if err != nil {
		abi.ReleaseArray(arr)
		return nil, err
	}
	return New(arr, sch, WithAllocator(p.mem))
}

// Move transfers the content of p to a new proxy. p is left empty and its
// Release becomes a no-op.
func (p *Proxy) Move() *Proxy {
	q := new(Proxy)
	*q = *p
	q.validity = nil
	*p = Proxy{}
	return q
}

// View returns a borrowing proxy on the same pair.
func (p *Proxy) View() *Proxy {
	v := &Proxy{arr: p.arr, sch: p.sch, mem: p.mem}
	v.refreshChildren()
	return v
}

// Extract hands the pair back to the caller, who becomes responsible for
// releasing it. The NULLABLE flag is set when the array holds nulls. The
// proxy must own both nodes and is left empty.
func (p *Proxy) Extract() (*abi.ArrowArray, *abi.ArrowSchema, error) {
	if !p.ownsArray || !p.ownsSchema {
		return nil, nil, ErrNotOwner
	}
	p.sanitizeNullable()
	arr, sch := abi.MoveArray(p.arr), abi.MoveSchema(p.sch)
	*p = Proxy{}
	return arr, sch, nil
}

// ExtractArray hands the array back to the caller. The proxy must own the
// array; a borrowed schema stays with its owner.
func (p *Proxy) ExtractArray() (*abi.ArrowArray, error) {
	if !p.ownsArray {
		return nil, ErrNotOwner
	}
	arr := abi.MoveArray(p.arr)
	if p.ownsSchema {
		abi.ReleaseSchema(p.sch)
	}
	*p = Proxy{}
	return arr, nil
}

func (p *Proxy) sanitizeNullable() {
	if p.NullCount() != 0 && p.sch.Flags&abi.FlagNullable == 0 && abi.IsProducedSchema(p.sch) {
		p.sch.Flags |= abi.FlagNullable
	}
	for _, c := range p.children {
		c.sanitizeNullable()
	}
	if p.dict != nil {
		p.dict.sanitizeNullable()
	}
}

// countNulls computes the null count of [offset, offset+length) from the
// validity buffer.
func (p *Proxy) countNulls(offset, length int64) int64 {
	dt := p.DataType()
	if dt == abi.NA {
		return length
	}
	if !dt.HasValidityBitmap() || len(p.arr.Buffers) == 0 || p.arr.Buffers[0] == nil || length == 0 {
		return 0
	}
	return length - int64(bitutil.CountSetBits(p.arr.Buffers[0], int(offset), int(length)))
}

func (p *Proxy) checkBitmapCapacity(offset, length int64) error {
	if !p.DataType().HasValidityBitmap() || len(p.arr.Buffers) == 0 || p.arr.Buffers[0] == nil {
		return nil
	}
	if need := bitutil.BytesForBits(offset + length); need > int64(len(p.arr.Buffers[0])) {
		return fmt.Errorf("%w: validity buffer of %d bytes cannot hold %d bits at offset %d",
			ErrOutOfRange, len(p.arr.Buffers[0]), length, offset)
	}
	return nil
}
