package bitmap

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Storage supplies the bytes a Bitmap reads and writes.
type Storage interface {
	// Bytes returns the current buffer, possibly nil.
	Bytes() []byte
	// Grow makes the buffer at least n bytes long, preserving its content,
	// and returns it. Added bytes are zero.
	Grow(n int) []byte
}

// allocStorage owns a buffer obtained from an allocator.
type allocStorage struct {
	mem memory.Allocator
	buf []byte
}

func newAllocStorage(mem memory.Allocator, n int) *allocStorage {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	s := &allocStorage{mem: mem}
	s.Grow(n)
	return s
}

func (s *allocStorage) Bytes() []byte { return s.buf }

func (s *allocStorage) Grow(n int) []byte {
	if n <= len(s.buf) {
		return s.buf
	}
	if s.buf == nil {
		s.buf = s.mem.Allocate(n)
		clear(s.buf)
		return s.buf
	}
	prev := len(s.buf)
	size := max(n, 2*prev)
	s.buf = s.mem.Reallocate(size, s.buf)
	clear(s.buf[prev:])
	return s.buf
}

func (s *allocStorage) free() {
	if s.buf != nil {
		s.mem.Free(s.buf)
		s.buf = nil
	}
}

// fixedStorage is a caller buffer that cannot grow.
type fixedStorage struct {
	buf []byte
}

func (s fixedStorage) Bytes() []byte { return s.buf }

func (s fixedStorage) Grow(n int) []byte {
	if n > len(s.buf) {
		panic(fmt.Errorf("%w: view of %d bytes cannot grow to %d", ErrOutOfRange, len(s.buf), n))
	}
	return s.buf
}
