package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

var (
	ErrOutOfRange      = abi.ErrOutOfRange
	ErrInvalidFormat   = abi.ErrInvalidFormat
	ErrUnsupportedType = abi.ErrUnsupportedType
)

// Typed is implemented by every concrete array of this package.
type Typed interface {
	DataType() abi.DataType
	Len() int
	NullCount() int
	IsNull(i int) bool
	Proxy() *proxy.Proxy
	Release()

	typed()
}

// Nullable is one element: its value and whether it is valid. Value is nil
// for null elements.
type Nullable struct {
	Value any
	Valid bool
}

type base struct {
	p *proxy.Proxy
}

func (b *base) typed() {}

// Proxy returns the proxy owned by the array.
func (b *base) Proxy() *proxy.Proxy { return b.p }

// DataType returns the element type.
func (b *base) DataType() abi.DataType { return b.p.DataType() }

// Len returns the number of elements.
func (b *base) Len() int { return int(b.p.Length()) }

// NullCount returns the number of null elements.
func (b *base) NullCount() int { return int(b.p.NullCount()) }

// IsNull reports whether element i is null.
func (b *base) IsNull(i int) bool { return !b.p.IsValid(i) }

// IsValid reports whether element i is not null.
func (b *base) IsValid(i int) bool { return b.p.IsValid(i) }

// Name returns the field name.
func (b *base) Name() string { return b.p.Name() }

// Release releases the proxy.
func (b *base) Release() { b.p.Release() }

// SetNull marks element i null.
func (b *base) SetNull(i int) error {
	if err := b.check(i); err != nil {
		return err
	}
	return b.p.SetValid(i, false)
}

func (b *base) check(i int) error {
	if i < 0 || i >= b.Len() {
		return fmt.Errorf("element %d of %d: %w", i, b.Len(), ErrOutOfRange)
	}
	return nil
}

// mustIndex panics with ErrOutOfRange when i is not an element index.
func (b *base) mustIndex(i int) {
	if err := b.check(i); err != nil {
		panic(err)
	}
}

func (b *base) offset() int { return int(b.p.Offset()) }

// appendSlot grows the validity bitmap and the length by one element.
func (b *base) appendSlot(valid bool) error { return b.p.AppendSlot(valid) }

// reserve makes buffer i at least n bytes long, growing geometrically.
func (b *base) reserve(i, n int) ([]byte, error) {
	buf := b.p.Buffer(i)
	if n <= len(buf) {
		return buf, nil
	}
	return b.p.ResizeBuffer(i, max(n, 2*len(buf)))
}

// Option configures the construction of an array.
type Option func(*options)

type options struct {
	name     string
	metadata []abi.KeyValue
	nulls    []int
	validity []bool
	mem      memory.Allocator
}

// WithName sets the field name.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithMetadata sets the field metadata.
func WithMetadata(md ...abi.KeyValue) Option { return func(o *options) { o.metadata = md } }

// WithNulls marks the given positions null.
func WithNulls(positions ...int) Option { return func(o *options) { o.nulls = positions } }

// WithValidity sets the validity of every element; false marks a null.
func WithValidity(valid []bool) Option { return func(o *options) { o.validity = valid } }

// WithAllocator sets the allocator of every buffer.
func WithAllocator(mem memory.Allocator) Option { return func(o *options) { o.mem = mem } }

func newOptions(opts []Option) *options {
	o := &options{mem: memory.DefaultAllocator}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// validityBuffer allocates the validity bitmap of n elements and returns it
// with its null count.
func (o *options) validityBuffer(n int) ([]byte, int, error) {
	if o.validity != nil && len(o.validity) != n {
		return nil, 0, fmt.Errorf("%w: %d validity flags for %d elements", ErrInvalidFormat, len(o.validity), n)
	}
	for _, i := range o.nulls {
		if i < 0 || i >= n {
			return nil, 0, fmt.Errorf("null position %d of %d: %w", i, n, ErrOutOfRange)
		}
	}
	buf := abi.AllocateBuffer(o.mem, int(bitutil.BytesForBits(int64(n))))
	if n == 0 {
		return buf, 0, nil
	}
	bitutil.SetBitsTo(buf, 0, int64(n), true)
	for i, v := range o.validity {
		if !v {
			bitutil.ClearBit(buf, i)
		}
	}
	for _, i := range o.nulls {
		bitutil.ClearBit(buf, i)
	}
	return buf, n - bitutil.CountSetBits(buf, 0, n), nil
}

// newPair wraps buffers (allocated from o.mem) into an owning proxy.
func (o *options) newPair(dt abi.DataType, n, nulls int, buffers [][]byte, dict *proxy.Proxy) (*proxy.Proxy, error) {
	var flags int64
	if nulls > 0 {
		flags |= abi.FlagNullable
	}
	ainit := abi.ArrayInit{Length: int64(n), NullCount: int64(nulls), Buffers: buffers}
	sinit := abi.SchemaInit{
		Format:   dt.Format(),
		Name:     o.name,
		Metadata: abi.EncodeMetadata(o.metadata),
		Flags:    flags,
	}
	if dict != nil {
		darr, dsch, err := dict.Extract()
		if err != nil {
			for _, b := range buffers {
				if b != nil {
					o.mem.Free(b)
				}
			}
			return nil, err
		}
		ainit.Dictionary, sinit.Dictionary = darr, dsch
	}
	return proxy.New(abi.NewArray(o.mem, ainit), abi.NewSchema(sinit), proxy.WithAllocator(o.mem))
}
