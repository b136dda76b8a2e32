package proxy

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/bitutil"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/bitmap"
)

// validityStorage exposes buffer 0 of a produced array as bitmap storage, so
// the bitmap can grow the buffer in place.
type validityStorage struct {
	arr *abi.ArrowArray
}

func (s validityStorage) Bytes() []byte { return s.arr.Buffers[0] }

func (s validityStorage) Grow(n int) []byte {
	ed, err := abi.EditArray(s.arr)
	if err != nil {
		panic(err)
	}
	cur := len(s.arr.Buffers[0])
	if n <= cur {
		return s.arr.Buffers[0]
	}
	b, err := ed.ResizeBuffer(0, max(n, 2*cur))
	if err != nil {
		panic(err)
	}
	return b
}

// ValidityBitmap returns the validity bitmap of the array, covering
// [Offset, Offset+Length) of buffer 0. On a produced array the bitmap may
// grow the buffer; on a foreign array it is a fixed view. The bitmap stays
// valid until the next change of length, offset or buffer 0.
func (p *Proxy) ValidityBitmap() (*bitmap.Bitmap, error) {
	if p.validity != nil {
		return p.validity, nil
	}
	if !p.DataType().HasValidityBitmap() {
		return nil, fmt.Errorf("%w: %s arrays have no validity bitmap", ErrUnsupportedType, p.sch.Format)
	}
	if len(p.arr.Buffers) == 0 {
		return nil, fmt.Errorf("%w: array has no buffers", ErrInvalidFormat)
	}
	if err := p.checkBitmapCapacity(p.arr.Offset, p.arr.Length); err != nil {
		return nil, err
	}
	if !abi.IsProducedArray(p.arr) {
		return bitmap.NewViewAt(p.arr.Buffers[0], int(p.arr.Offset), int(p.arr.Length)), nil
	}
	p.validity = bitmap.NewOnStorage(validityStorage{arr: p.arr}, int(p.arr.Offset), int(p.arr.Length))
	return p.validity, nil
}

// SetValid marks element i valid or null and keeps the null count in step.
func (p *Proxy) SetValid(i int, valid bool) error {
	bm, err := p.editableBitmap()
	if err != nil {
		return err
	}
	if i < 0 || i >= bm.Len() {
		return fmt.Errorf("element %d of %d: %w", i, bm.Len(), ErrOutOfRange)
	}
	bm.Set(i, valid)
	p.arr.NullCount = int64(bm.NullCount())
	return nil
}

// IsValid reports whether element i is not null. It panics if i is out of
// range.
func (p *Proxy) IsValid(i int) bool {
	if i < 0 || int64(i) >= p.arr.Length {
		panic(fmt.Errorf("element %d of %d: %w", i, p.arr.Length, ErrOutOfRange))
	}
	if p.DataType() == abi.NA {
		return false
	}
	if len(p.arr.Buffers) == 0 || p.arr.Buffers[0] == nil {
		return true
	}
	return bitutil.BitIsSet(p.arr.Buffers[0], int(p.arr.Offset)+i)
}

// ResizeBitmap resizes the bitmap to n bits, new bits set to fill. The
// length of the array is left to the caller (see SetLength).
func (p *Proxy) ResizeBitmap(n int, fill bool) error {
	bm, err := p.editableBitmap()
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: negative bitmap size %d", ErrOutOfRange, n)
	}
	bm.Resize(n, fill)
	p.arr.NullCount = int64(bm.NullCount())
	return nil
}

// InsertBitmap inserts count bits of value v before element pos.
func (p *Proxy) InsertBitmap(pos int, v bool, count int) error {
	bm, err := p.editableBitmap()
	if err != nil {
		return err
	}
	if pos < 0 || pos > bm.Len() || count < 0 {
		return fmt.Errorf("insert %d bits at %d of %d: %w", count, pos, bm.Len(), ErrOutOfRange)
	}
	bm.Insert(pos, v, count)
	p.arr.NullCount = int64(bm.NullCount())
	return nil
}

// EraseBitmap removes count bits starting at element pos.
func (p *Proxy) EraseBitmap(pos, count int) error {
	bm, err := p.editableBitmap()
	if err != nil {
		return err
	}
	if pos < 0 || count < 0 || pos+count > bm.Len() {
		return fmt.Errorf("erase [%d, %d) of %d: %w", pos, pos+count, bm.Len(), ErrOutOfRange)
	}
	bm.Erase(pos, pos+count)
	p.arr.NullCount = int64(bm.NullCount())
	return nil
}

// PushBackBitmap appends one bit.
func (p *Proxy) PushBackBitmap(v bool) error {
	bm, err := p.editableBitmap()
	if err != nil {
		return err
	}
	bm.PushBack(v)
	p.arr.NullCount = int64(bm.NullCount())
	return nil
}

// AppendSlot appends one element to a produced array: a validity bit and one
// unit of length. The null count follows the bitmap, which stays cached.
func (p *Proxy) AppendSlot(valid bool) error {
	bm, err := p.editableBitmap()
	if err != nil {
		return err
	}
	if int64(bm.Len()) != p.arr.Length {
		// bitmap edited ahead of the length
		bm.PushBack(valid)
		return p.SetLength(p.arr.Length + 1)
	}
	bm.PushBack(valid)
	p.arr.Length = int64(bm.Len())
	p.arr.NullCount = int64(bm.NullCount())
	return nil
}

// PopBackBitmap drops the last bit.
func (p *Proxy) PopBackBitmap() error {
	bm, err := p.editableBitmap()
	if err != nil {
		return err
	}
	if bm.Len() == 0 {
		return fmt.Errorf("pop from empty bitmap: %w", ErrOutOfRange)
	}
	bm.PopBack()
	p.arr.NullCount = int64(bm.NullCount())
	return nil
}

// editableBitmap returns the bitmap of a produced array. An absent validity
// buffer is materialized on first write.
func (p *Proxy) editableBitmap() (*bitmap.Bitmap, error) {
	if _, err := p.arrayEditor(); err != nil {
		return nil, err
	}
	return p.ValidityBitmap()
}
