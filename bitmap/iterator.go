package bitmap

type cursor struct {
	b   *Bitmap
	i   int
	gen uint64
}

func (c cursor) check() {
	if c.gen != c.b.gen {
		panic("bitmap: iterator used after the bitmap was structurally modified")
	}
}

func (c cursor) distance(o cursor) int {
	c.check()
	o.check()
	if c.b != o.b {
		panic("bitmap: iterators of different bitmaps")
	}
	return c.i - o.i
}

func (c cursor) equal(o cursor) bool {
	c.check()
	o.check()
	return c.b == o.b && c.i == o.i
}

// Iterator is a random-access position in a Bitmap yielding bit references.
// Insert, Erase, Resize, PushBack and PopBack invalidate every outstanding
// iterator; dereferencing, moving or comparing a stale one panics.
type Iterator struct{ c cursor }

// Index returns the position of the iterator.
func (it Iterator) Index() int { return it.c.i }

// Ref returns a reference to the bit under the iterator.
func (it Iterator) Ref() BitRef {
	it.c.check()
	return it.c.b.Ref(it.c.i)
}

// Value returns the bit under the iterator.
func (it Iterator) Value() bool { return it.Ref().Get() }

// Add returns the iterator moved by n positions.
func (it Iterator) Add(n int) Iterator {
	it.c.check()
	it.c.i += n
	return it
}

// Next returns the iterator moved one position forward.
func (it Iterator) Next() Iterator { return it.Add(1) }

// Sub returns the distance from o to it.
func (it Iterator) Sub(o Iterator) int { return it.c.distance(o.c) }

func (it Iterator) Equal(o Iterator) bool { return it.c.equal(o.c) }
func (it Iterator) Less(o Iterator) bool  { return it.Sub(o) < 0 }

// ConstIterator is the read-only counterpart of Iterator.
type ConstIterator struct{ c cursor }

func (it ConstIterator) Index() int { return it.c.i }

// Value returns the bit under the iterator.
func (it ConstIterator) Value() bool {
	it.c.check()
	return it.c.b.Test(it.c.i)
}

func (it ConstIterator) Add(n int) ConstIterator {
	it.c.check()
	it.c.i += n
	return it
}

func (it ConstIterator) Next() ConstIterator        { return it.Add(1) }
func (it ConstIterator) Sub(o ConstIterator) int    { return it.c.distance(o.c) }
func (it ConstIterator) Equal(o ConstIterator) bool { return it.c.equal(o.c) }
func (it ConstIterator) Less(o ConstIterator) bool  { return it.Sub(o) < 0 }
