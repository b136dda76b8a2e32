package bitmap

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
)

func newChecked(t *testing.T) *memory.CheckedAllocator {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}

func TestNew(t *testing.T) {
	mem := newChecked(t)

	valid := New(mem, 10, true)
	defer valid.Release()
	require.Equal(t, 10, valid.Len())
	require.Zero(t, valid.NullCount())

	nulls := New(mem, 10, false)
	defer nulls.Release()
	require.Equal(t, 10, nulls.NullCount())
	for i := range 10 {
		require.False(t, nulls.Test(i))
	}

	empty := New(mem, 0, false)
	defer empty.Release()
	require.True(t, empty.Empty())
}

func TestNullCountTracksSet(t *testing.T) {
	mem := newChecked(t)
	b := FromBools(mem, []bool{true, false, true, true, false})
	defer b.Release()
	require.Equal(t, 2, b.NullCount())

	b.Set(0, true) // unchanged bit
	require.Equal(t, 2, b.NullCount())

	b.Set(0, false)
	require.Equal(t, 3, b.NullCount())

	b.Set(1, true)
	b.Set(4, true)
	require.Equal(t, 1, b.NullCount())
	require.Equal(t, []bool{false, true, true, true, true}, b.Values())
}

func TestAtOutOfRange(t *testing.T) {
	mem := newChecked(t)
	b := New(mem, 3, true)
	defer b.Release()

	v, err := b.At(2)
	require.NoError(t, err)
	require.True(t, v)

	_, err = b.At(3)
	require.ErrorIs(t, err, ErrOutOfRange)
	require.ErrorIs(t, err, arrow.ErrIndex)

	require.Panics(t, func() { b.Test(3) })
	require.Panics(t, func() { b.Set(-1, true) })
}

func TestBitRef(t *testing.T) {
	mem := newChecked(t)
	b := New(mem, 4, true)
	defer b.Release()

	r := b.Ref(1)
	r.And(false)
	require.False(t, r.Get())
	require.Equal(t, 1, b.NullCount())

	r.Or(true)
	require.Equal(t, 0, b.NullCount())

	r.Xor(true)
	require.False(t, b.Test(1))
	require.Equal(t, 1, b.NullCount())

	b.Ref(3).Flip()
	require.Equal(t, 2, b.NullCount())

	b.Ref(3).Set(true)
	require.Equal(t, 1, b.NullCount())
}

func TestInsert(t *testing.T) {
	mem := newChecked(t)
	b := FromBools(mem, []bool{true, false, true})
	defer b.Release()

	it := b.Insert(1, false, 2)
	require.Equal(t, 1, it.Index())
	require.Equal(t, []bool{true, false, false, false, true}, b.Values())
	require.Equal(t, 3, b.NullCount())

	b.Insert(5, true, 20) // crosses byte boundaries
	require.Equal(t, 25, b.Len())
	require.Equal(t, 3, b.NullCount())

	b.InsertValues(0, false, true)
	require.Equal(t, 27, b.Len())
	require.Equal(t, 4, b.NullCount())
	require.False(t, b.Test(0))
	require.True(t, b.Test(1))
	require.True(t, b.Test(2))

	require.Panics(t, func() { b.Insert(28, true, 1) })
}

func TestErase(t *testing.T) {
	mem := newChecked(t)
	vals := []bool{true, false, false, true, true, false, true, true, false, true}
	b := FromBools(mem, vals)
	defer b.Release()
	require.Equal(t, 4, b.NullCount())

	it := b.Erase(1, 3)
	require.Equal(t, 1, it.Index())
	require.Equal(t, append([]bool{true}, vals[3:]...), b.Values())
	require.Equal(t, 2, b.NullCount())

	b.Erase(0, b.Len())
	require.Zero(t, b.Len())
	require.Zero(t, b.NullCount())
}

func TestResize(t *testing.T) {
	mem := newChecked(t)
	b := FromBools(mem, []bool{true, false, true})
	defer b.Release()

	b.Resize(20, false)
	require.Equal(t, 20, b.Len())
	require.Equal(t, 18, b.NullCount())

	// shrinking subtracts the zeros actually removed
	b.Set(10, true)
	b.Resize(5, true)
	require.Equal(t, 5, b.Len())
	require.Equal(t, 3, b.NullCount())

	b.Resize(9, true)
	require.Equal(t, 3, b.NullCount())
	require.True(t, b.Test(8))
}

func TestPushPop(t *testing.T) {
	mem := newChecked(t)
	b := New(mem, 0, true)
	defer b.Release()

	for i := range 20 {
		b.PushBack(i%3 != 0)
		require.Equal(t, i+1, b.Len())
	}
	require.Equal(t, 7, b.NullCount())

	b.PopBack() // index 19 is valid
	require.Equal(t, 7, b.NullCount())
	b.PopBack() // index 18 is null
	require.Equal(t, 6, b.NullCount())

	empty := New(mem, 0, true)
	defer empty.Release()
	require.Panics(t, empty.PopBack)
}

func TestIterators(t *testing.T) {
	mem := newChecked(t)
	b := FromBools(mem, []bool{true, false, true, true})
	defer b.Release()

	begin, end := b.Begin(), b.End()
	require.Equal(t, 4, end.Sub(begin))
	require.True(t, begin.Less(end))
	require.True(t, begin.Add(4).Equal(end))

	var got []bool
	for it := b.CBegin(); !it.Equal(b.CEnd()); it = it.Next() {
		got = append(got, it.Value())
	}
	require.Equal(t, b.Values(), got)

	begin.Add(1).Ref().Set(true)
	require.Zero(t, b.NullCount())

	b.PushBack(false)
	require.Panics(t, func() { begin.Ref() }, "stale iterator must not be used")
}

func TestStaleIteratorComparisons(t *testing.T) {
	mem := newChecked(t)
	b := FromBools(mem, []bool{true, false, true})
	defer b.Release()

	begin, cbegin := b.Begin(), b.CBegin()
	b.Erase(0, 1)

	end, cend := b.End(), b.CEnd()
	require.Panics(t, func() { end.Sub(begin) })
	require.Panics(t, func() { begin.Sub(end) })
	require.Panics(t, func() { begin.Equal(end) })
	require.Panics(t, func() { end.Less(begin) })
	require.Panics(t, func() { cend.Sub(cbegin) })
	require.Panics(t, func() { cbegin.Equal(cend) })
	require.Panics(t, func() { cbegin.Less(cend) })

	require.Equal(t, 2, end.Sub(b.Begin()))
	require.True(t, b.CBegin().Add(2).Equal(cend))
}

func TestAll(t *testing.T) {
	mem := newChecked(t)
	b := FromBools(mem, []bool{false, true, false})
	defer b.Release()

	var idx []int
	for i, v := range b.All() {
		if !v {
			idx = append(idx, i)
		}
	}
	require.Equal(t, []int{0, 2}, idx)

	for i := range b.All() {
		if i == 1 {
			break
		}
	}
}

func TestView(t *testing.T) {
	buf := []byte{0b1111_0101, 0b0000_0011}
	v := NewView(buf, 10)
	require.Equal(t, 2, v.NullCount())
	require.False(t, v.Test(1))

	v.Set(1, true)
	require.Equal(t, byte(0b1111_0111), buf[0], "views write through")
	require.Equal(t, 1, v.NullCount())

	alias := v.Clone()
	alias.Set(2, false)
	require.Equal(t, byte(0b1111_0011), buf[0])
	require.False(t, v.Test(2), "cloned view aliases the buffer")

	before := v.NullCount()
	v.Resize(16, false)
	require.Equal(t, before+6, v.NullCount())
	require.Panics(t, func() { v.Resize(17, true) })

	at := NewViewAt(buf, 4, 4)
	require.Zero(t, at.NullCount())
	require.Equal(t, 4, at.Offset())
}

func TestNilBufferReadsValid(t *testing.T) {
	v := NewView(nil, 5)
	require.Zero(t, v.NullCount())
	require.True(t, v.Test(4))
	require.Nil(t, v.Bytes())
}

type growStorage struct{ buf []byte }

func (s *growStorage) Bytes() []byte { return s.buf }

func (s *growStorage) Grow(n int) []byte {
	if n > len(s.buf) {
		s.buf = append(s.buf, make([]byte, n-len(s.buf))...)
	}
	return s.buf
}

func TestStorageMaterializesAllValid(t *testing.T) {
	store := &growStorage{}
	b := NewOnStorage(store, 3, 6)
	require.Zero(t, b.NullCount())

	b.Set(2, false)
	require.NotNil(t, store.buf)
	require.Equal(t, 1, b.NullCount())
	require.Equal(t, []bool{true, true, false, true, true, true}, b.Values())

	b.Insert(0, false, 9)
	require.Equal(t, 15, b.Len())
	require.Equal(t, 10, b.NullCount())
	require.GreaterOrEqual(t, len(store.buf), 3)
}

func TestCloneOwned(t *testing.T) {
	mem := newChecked(t)
	b := FromBools(mem, []bool{true, false, true})
	defer b.Release()

	c := b.Clone()
	defer c.Release()
	require.True(t, b.Equal(c))

	c.Set(1, true)
	require.False(t, b.Test(1))
	require.False(t, b.Equal(c))
}

func TestFromBytes(t *testing.T) {
	mem := newChecked(t)
	b := FromBytes(mem, []byte{0b0000_0110}, 3)
	defer b.Release()
	require.Equal(t, []bool{false, true, true}, b.Values())
	require.Equal(t, 1, b.NullCount())

	all := FromBytes(mem, nil, 4)
	defer all.Release()
	require.Zero(t, all.NullCount())
}
