package bitmap

import (
	"fmt"
	"iter"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrOutOfRange is returned by checked accessors for indices past Len.
var ErrOutOfRange = fmt.Errorf("%w: bitmap index out of range", arrow.ErrIndex)

// Bitmap is a sequence of validity bits with a cached null count.
//
// Copying a Bitmap value aliases its storage; use Clone for an independent
// copy of an owning bitmap.
type Bitmap struct {
	store  Storage
	owned  *allocStorage
	offset int
	size   int
	nulls  int
	gen    uint64
}

// New returns an owning bitmap of n bits, all set to v.
func New(mem memory.Allocator, n int, v bool) *Bitmap {
	b := &Bitmap{}
	b.owned = newAllocStorage(mem, int(bitutil.BytesForBits(int64(n))))
	b.store = b.owned
	b.size = n
	if n > 0 {
		bitutil.SetBitsTo(b.owned.buf, 0, int64(n), v)
	}
	if !v {
		b.nulls = n
	}
	return b
}

// FromBools returns an owning bitmap whose bit i is vals[i].
func FromBools(mem memory.Allocator, vals []bool) *Bitmap {
	b := New(mem, len(vals), true)
	for i, v := range vals {
		if !v {
			bitutil.ClearBit(b.owned.buf, i)
		}
	}
	b.nulls = b.countNulls(0, b.size)
	return b
}

// FromBytes returns an owning bitmap holding a copy of the first n bits of
// buf. A nil buf yields n valid bits.
func FromBytes(mem memory.Allocator, buf []byte, n int) *Bitmap {
	if buf == nil {
		return New(mem, n, true)
	}
	b := New(mem, n, true)
	copy(b.owned.buf, buf[:bitutil.BytesForBits(int64(n))])
	b.nulls = b.countNulls(0, n)
	return b
}

// NewView returns a non-owning bitmap over the first n bits of buf. Writes go
// to buf; the view cannot grow beyond len(buf).
func NewView(buf []byte, n int) *Bitmap { return NewViewAt(buf, 0, n) }

// NewViewAt is NewView starting at bit offset off.
func NewViewAt(buf []byte, off, n int) *Bitmap {
	return NewOnStorage(fixedStorage{buf: buf}, off, n)
}

// NewOnStorage returns a bitmap of n bits starting at bit off of store.
func NewOnStorage(store Storage, off, n int) *Bitmap {
	if buf := store.Bytes(); buf != nil && int64(len(buf)) < bitutil.BytesForBits(int64(off+n)) {
		panic(fmt.Errorf("%w: %d bits at offset %d need more than %d bytes", ErrOutOfRange, n, off, len(buf)))
	}
	b := &Bitmap{store: store, offset: off, size: n}
	b.nulls = b.countNulls(0, n)
	return b
}

// Len returns the number of bits.
func (b *Bitmap) Len() int { return b.size }

// Empty reports whether the bitmap holds no bits.
func (b *Bitmap) Empty() bool { return b.size == 0 }

// NullCount returns the number of zero bits.
func (b *Bitmap) NullCount() int { return b.nulls }

// Offset returns the bit offset of element 0 within Bytes.
func (b *Bitmap) Offset() int { return b.offset }

// Bytes returns the underlying buffer, nil when every bit is implicitly valid.
func (b *Bitmap) Bytes() []byte { return b.store.Bytes() }

// Test returns bit i. It panics if i is out of range.
func (b *Bitmap) Test(i int) bool {
	b.checkIndex(i)
	return b.get(i)
}

// At returns bit i, or ErrOutOfRange.
func (b *Bitmap) At(i int) (bool, error) {
	if i < 0 || i >= b.size {
		return false, fmt.Errorf("bit %d of %d: %w", i, b.size, ErrOutOfRange)
	}
	return b.get(i), nil
}

// Set assigns bit i. It panics if i is out of range.
func (b *Bitmap) Set(i int, v bool) {
	b.checkIndex(i)
	b.set(i, v)
}

// Ref returns a reference to bit i.
func (b *Bitmap) Ref(i int) BitRef {
	b.checkIndex(i)
	return BitRef{b: b, i: i}
}

// Values returns the bits as a bool slice.
func (b *Bitmap) Values() []bool {
	out := make([]bool, b.size)
	for i := range out {
		out[i] = b.get(i)
	}
	return out
}

// All iterates over (index, bit) pairs.
func (b *Bitmap) All() iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(i, b.get(i)) {
				return
			}
		}
	}
}

// Equal reports whether both bitmaps hold the same bits.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b.size != o.size || b.nulls != o.nulls {
		return false
	}
	for i := 0; i < b.size; i++ {
		if b.get(i) != o.get(i) {
			return false
		}
	}
	return true
}

// Clone returns an owning copy of an owning bitmap, or an alias of a view.
func (b *Bitmap) Clone() *Bitmap {
	if b.owned == nil {
		c := *b
		return &c
	}
	c := New(b.owned.mem, b.size, true)
	for i := 0; i < b.size; i++ {
		if !b.get(i) {
			bitutil.ClearBit(c.owned.buf, i)
		}
	}
	c.nulls = b.nulls
	return c
}

// Release frees storage owned by the bitmap. Views are left untouched.
func (b *Bitmap) Release() {
	if b.owned != nil {
		b.owned.free()
	}
	b.size, b.nulls = 0, 0
	b.gen++
}

// Resize changes the length to n. New bits take the value fill; dropped bits
// are removed from the null count according to their actual values.
func (b *Bitmap) Resize(n int, fill bool) {
	if n < 0 {
		panic(fmt.Errorf("%w: negative bitmap size %d", ErrOutOfRange, n))
	}
	if n == b.size {
		return
	}
	b.gen++
	if n < b.size {
		b.nulls -= b.countNulls(n, b.size)
		b.size = n
		return
	}
	buf := b.reserve(n)
	old := b.size
	b.size = n
	bitutil.SetBitsTo(buf, int64(b.offset+old), int64(n-old), fill)
	if !fill {
		b.nulls += n - old
	}
}

// Insert inserts count copies of v before position pos and returns an
// iterator to the first inserted bit.
func (b *Bitmap) Insert(pos int, v bool, count int) Iterator {
	if pos < 0 || pos > b.size || count < 0 {
		panic(fmt.Errorf("%w: insert %d bits at %d of %d", ErrOutOfRange, count, pos, b.size))
	}
	if count > 0 {
		buf := b.openGap(pos, count)
		bitutil.SetBitsTo(buf, int64(b.offset+pos), int64(count), v)
		if !v {
			b.nulls += count
		}
	}
	return b.iter(pos)
}

// InsertValues inserts vals before position pos.
func (b *Bitmap) InsertValues(pos int, vals ...bool) Iterator {
	if pos < 0 || pos > b.size {
		panic(fmt.Errorf("%w: insert at %d of %d", ErrOutOfRange, pos, b.size))
	}
	if len(vals) > 0 {
		buf := b.openGap(pos, len(vals))
		for k, v := range vals {
			bitutil.SetBitTo(buf, b.offset+pos+k, v)
			if !v {
				b.nulls++
			}
		}
	}
	return b.iter(pos)
}

// Erase removes the bits in [first, last) and returns an iterator to the
// bit that followed them.
func (b *Bitmap) Erase(first, last int) Iterator {
	if first < 0 || first > last || last > b.size {
		panic(fmt.Errorf("%w: erase [%d, %d) of %d", ErrOutOfRange, first, last, b.size))
	}
	if first == last {
		return b.iter(first)
	}
	buf := b.writable()
	b.nulls -= b.countNulls(first, last)
	n := last - first
	for i := first; i+n < b.size; i++ {
		bitutil.SetBitTo(buf, b.offset+i, bitutil.BitIsSet(buf, b.offset+i+n))
	}
	b.size -= n
	b.gen++
	return b.iter(first)
}

// PushBack appends v.
func (b *Bitmap) PushBack(v bool) { b.Resize(b.size+1, v) }

// PopBack drops the last bit. It panics on an empty bitmap.
func (b *Bitmap) PopBack() {
	if b.size == 0 {
		panic(fmt.Errorf("%w: pop from empty bitmap", ErrOutOfRange))
	}
	b.Resize(b.size-1, true)
}

// Begin returns an iterator to bit 0.
func (b *Bitmap) Begin() Iterator { return b.iter(0) }

// End returns an iterator past the last bit.
func (b *Bitmap) End() Iterator { return b.iter(b.size) }

// CBegin returns a read-only iterator to bit 0.
func (b *Bitmap) CBegin() ConstIterator { return ConstIterator{b.cursor(0)} }

// CEnd returns a read-only iterator past the last bit.
func (b *Bitmap) CEnd() ConstIterator { return ConstIterator{b.cursor(b.size)} }

func (b *Bitmap) iter(i int) Iterator { return Iterator{b.cursor(i)} }

func (b *Bitmap) cursor(i int) cursor { return cursor{b: b, i: i, gen: b.gen} }

func (b *Bitmap) checkIndex(i int) {
	if i < 0 || i >= b.size {
		panic(fmt.Errorf("bit %d of %d: %w", i, b.size, ErrOutOfRange))
	}
}

func (b *Bitmap) get(i int) bool {
	buf := b.store.Bytes()
	return buf == nil || bitutil.BitIsSet(buf, b.offset+i)
}

// set is the only place a single bit changes; the null count follows the
// transition of that bit.
func (b *Bitmap) set(i int, v bool) {
	if b.get(i) == v {
		return
	}
	buf := b.writable()
	bitutil.SetBitTo(buf, b.offset+i, v)
	if v {
		b.nulls--
	} else {
		b.nulls++
	}
}

func (b *Bitmap) countNulls(from, to int) int {
	buf := b.store.Bytes()
	if buf == nil || to <= from {
		return 0
	}
	return (to - from) - bitutil.CountSetBits(buf, b.offset+from, to-from)
}

// writable returns the buffer, materializing an absent one as all ones.
func (b *Bitmap) writable() []byte {
	if buf := b.store.Bytes(); buf != nil {
		return buf
	}
	buf := b.store.Grow(max(1, int(bitutil.BytesForBits(int64(b.offset+b.size)))))
	bitutil.SetBitsTo(buf, 0, int64(len(buf))*8, true)
	return buf
}

// reserve makes room for n bits and returns the buffer.
func (b *Bitmap) reserve(n int) []byte {
	buf := b.writable()
	need := int(bitutil.BytesForBits(int64(b.offset + n)))
	if need > len(buf) {
		buf = b.store.Grow(need)
	}
	return buf
}

// openGap grows the bitmap by count bits and shifts [pos, size) right by
// count, leaving the gap bits unspecified.
func (b *Bitmap) openGap(pos, count int) []byte {
	buf := b.reserve(b.size + count)
	for i := b.size - 1; i >= pos; i-- {
		bitutil.SetBitTo(buf, b.offset+i+count, bitutil.BitIsSet(buf, b.offset+i))
	}
	b.size += count
	b.gen++
	return buf
}

// BitRef refers to one bit of a Bitmap. Every write goes through Bitmap.Set.
type BitRef struct {
	b *Bitmap
	i int
}

func (r BitRef) Get() bool  { return r.b.get(r.i) }
func (r BitRef) Set(v bool) { r.b.set(r.i, v) }
func (r BitRef) And(v bool) { r.b.set(r.i, r.Get() && v) }
func (r BitRef) Or(v bool)  { r.b.set(r.i, r.Get() || v) }
func (r BitRef) Xor(v bool) { r.b.set(r.i, r.Get() != v) }
func (r BitRef) Flip()      { r.b.set(r.i, !r.Get()) }
func (r BitRef) Index() int { return r.i }
