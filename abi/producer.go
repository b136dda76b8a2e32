package abi

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// arrayPrivate is the private data of every ArrowArray built by NewArray.
// Buffers[i] of the owning array is always the exact slice obtained from mem,
// so release can hand it back unchanged.
type arrayPrivate struct {
	mem       memory.Allocator
	ownsChild []bool
	ownsDict  bool
}

// schemaPrivate is the private data of every ArrowSchema built by NewSchema.
type schemaPrivate struct {
	ownsChild []bool
	ownsDict  bool
}

// ArrayInit describes a new ArrowArray. Buffers must have been obtained from
// the allocator passed to NewArray (see AllocateBuffer); nil entries stand for
// absent buffers. Children and Dictionary are adopted by move.
type ArrayInit struct {
	Length     int64
	NullCount  int64
	Offset     int64
	Buffers    [][]byte
	Children   []*ArrowArray
	Dictionary *ArrowArray
}

// SchemaInit describes a new ArrowSchema. Children and Dictionary are adopted
// by move.
type SchemaInit struct {
	Format     string
	Name       string
	Metadata   []byte
	Flags      int64
	Children   []*ArrowSchema
	Dictionary *ArrowSchema
}

// AllocateBuffer returns a zeroed buffer of n bytes from mem, or nil when n is
// zero. Slices returned here may be adopted by NewArray.
func AllocateBuffer(mem memory.Allocator, n int) []byte {
	if n <= 0 {
		return nil
	}
	b := mem.Allocate(n)
	clear(b)
	return b
}

// CopyBuffer returns a copy of src allocated from mem.
func CopyBuffer(mem memory.Allocator, src []byte) []byte {
	if src == nil {
		return nil
	}
	b := AllocateBuffer(mem, len(src))
	copy(b, src)
	return b
}

func freeBuffer(mem memory.Allocator, b []byte) {
	if b != nil {
		mem.Free(b)
	}
}

// NewArray builds an ArrowArray that owns its buffers, children and
// dictionary. Releasing it frees every buffer through mem and releases the
// adopted nodes.
func NewArray(mem memory.Allocator, init ArrayInit) *ArrowArray {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	priv := &arrayPrivate{mem: mem, ownsChild: make([]bool, len(init.Children))}
	a := &ArrowArray{
		Length:      init.Length,
		NullCount:   init.NullCount,
		Offset:      init.Offset,
		Buffers:     append([][]byte(nil), init.Buffers...),
		Release:     releaseProducedArray,
		PrivateData: priv,
	}
	if len(init.Children) > 0 {
		a.Children = make([]*ArrowArray, len(init.Children))
		for i, c := range init.Children {
			a.Children[i] = MoveArray(c)
			priv.ownsChild[i] = true
		}
	}
	if init.Dictionary != nil {
		a.Dictionary = MoveArray(init.Dictionary)
		priv.ownsDict = true
	}
	return a
}

// NewSchema builds an ArrowSchema that owns its children and dictionary.
func NewSchema(init SchemaInit) *ArrowSchema {
	priv := &schemaPrivate{ownsChild: make([]bool, len(init.Children))}
	s := &ArrowSchema{
		Format:      init.Format,
		Name:        init.Name,
		Metadata:    append([]byte(nil), init.Metadata...),
		Flags:       init.Flags,
		Release:     releaseProducedSchema,
		PrivateData: priv,
	}
	if init.Metadata == nil {
		s.Metadata = nil
	}
	if len(init.Children) > 0 {
		s.Children = make([]*ArrowSchema, len(init.Children))
		for i, c := range init.Children {
			s.Children[i] = MoveSchema(c)
			priv.ownsChild[i] = true
		}
	}
	if init.Dictionary != nil {
		s.Dictionary = MoveSchema(init.Dictionary)
		priv.ownsDict = true
	}
	return s
}

func releaseProducedArray(a *ArrowArray) {
	if priv, ok := a.PrivateData.(*arrayPrivate); ok {
		for i, c := range a.Children {
			if priv.ownsChild[i] {
				ReleaseArray(c)
			}
		}
		if a.Dictionary != nil && priv.ownsDict {
			ReleaseArray(a.Dictionary)
		}
		for _, b := range a.Buffers {
			freeBuffer(priv.mem, b)
		}
	}
	*a = ArrowArray{}
}

func releaseProducedSchema(s *ArrowSchema) {
	if priv, ok := s.PrivateData.(*schemaPrivate); ok {
		for i, c := range s.Children {
			if priv.ownsChild[i] {
				ReleaseSchema(c)
			}
		}
		if s.Dictionary != nil && priv.ownsDict {
			ReleaseSchema(s.Dictionary)
		}
	}
	*s = ArrowSchema{}
}

// IsProducedArray reports whether a was built by NewArray and is still live.
func IsProducedArray(a *ArrowArray) bool {
	if a.IsReleased() {
		return false
	}
	_, ok := a.PrivateData.(*arrayPrivate)
	return ok
}

// IsProducedSchema reports whether s was built by NewSchema and is still live.
func IsProducedSchema(s *ArrowSchema) bool {
	if s.IsReleased() {
		return false
	}
	_, ok := s.PrivateData.(*schemaPrivate)
	return ok
}

// ArrayEditor mutates an ArrowArray built by NewArray while keeping its
// private bookkeeping consistent with the public fields.
type ArrayEditor struct {
	a    *ArrowArray
	priv *arrayPrivate
}

// EditArray returns an editor for a, or ErrNotProduced when a comes from
// another producer.
func EditArray(a *ArrowArray) (*ArrayEditor, error) {
	if a.IsReleased() {
		return nil, ErrReleased
	}
	priv, ok := a.PrivateData.(*arrayPrivate)
	if !ok {
		return nil, ErrNotProduced
	}
	return &ArrayEditor{a: a, priv: priv}, nil
}

// Allocator returns the allocator owning the array's buffers.
func (e *ArrayEditor) Allocator() memory.Allocator { return e.priv.mem }

// SetNBuffers grows or shrinks the buffer list, freeing dropped buffers.
func (e *ArrayEditor) SetNBuffers(n int) {
	for i := n; i < len(e.a.Buffers); i++ {
		freeBuffer(e.priv.mem, e.a.Buffers[i])
	}
	if n <= len(e.a.Buffers) {
		e.a.Buffers = e.a.Buffers[:n:n]
		return
	}
	e.a.Buffers = append(e.a.Buffers, make([][]byte, n-len(e.a.Buffers))...)
}

// SetBuffer replaces buffer i with a copy of b.
func (e *ArrayEditor) SetBuffer(i int, b []byte) error {
	if i < 0 || i >= len(e.a.Buffers) {
		return fmt.Errorf("buffer %d of %d: %w", i, len(e.a.Buffers), ErrOutOfRange)
	}
	nb := CopyBuffer(e.priv.mem, b)
	freeBuffer(e.priv.mem, e.a.Buffers[i])
	e.a.Buffers[i] = nb
	return nil
}

// ResizeBuffer changes the size of buffer i to n bytes, preserving the
// leading bytes and zeroing any new tail. It returns the new buffer.
func (e *ArrayEditor) ResizeBuffer(i, n int) ([]byte, error) {
	if i < 0 || i >= len(e.a.Buffers) {
		return nil, fmt.Errorf("buffer %d of %d: %w", i, len(e.a.Buffers), ErrOutOfRange)
	}
	old := e.a.Buffers[i]
	switch {
	case n <= 0:
		freeBuffer(e.priv.mem, old)
		e.a.Buffers[i] = nil
	case old == nil:
		e.a.Buffers[i] = AllocateBuffer(e.priv.mem, n)
	case n != len(old):
		prev := len(old)
		nb := e.priv.mem.Reallocate(n, old)
		if n > prev {
			clear(nb[prev:])
		}
		e.a.Buffers[i] = nb
	}
	return e.a.Buffers[i], nil
}

// AddChild appends c. When owned is true, c is adopted by move and released
// with the parent; otherwise the parent only references it.
func (e *ArrayEditor) AddChild(c *ArrowArray, owned bool) {
	if owned {
		c = MoveArray(c)
	}
	e.a.Children = append(e.a.Children, c)
	e.priv.ownsChild = append(e.priv.ownsChild, owned)
}

// SetChild replaces child i, releasing the previous one if it was owned.
func (e *ArrayEditor) SetChild(i int, c *ArrowArray, owned bool) error {
	if i < 0 || i >= len(e.a.Children) {
		return fmt.Errorf("child %d of %d: %w", i, len(e.a.Children), ErrOutOfRange)
	}
	if e.priv.ownsChild[i] {
		ReleaseArray(e.a.Children[i])
	}
	if owned {
		c = MoveArray(c)
	}
	e.a.Children[i] = c
	e.priv.ownsChild[i] = owned
	return nil
}

// PopChildren removes the last n children, releasing the owned ones.
func (e *ArrayEditor) PopChildren(n int) error {
	if n < 0 || n > len(e.a.Children) {
		return fmt.Errorf("pop %d of %d children: %w", n, len(e.a.Children), ErrOutOfRange)
	}
	keep := len(e.a.Children) - n
	for i := keep; i < len(e.a.Children); i++ {
		if e.priv.ownsChild[i] {
			ReleaseArray(e.a.Children[i])
		}
	}
	e.a.Children = e.a.Children[:keep:keep]
	e.priv.ownsChild = e.priv.ownsChild[:keep:keep]
	if keep == 0 {
		e.a.Children = nil
	}
	return nil
}

// SetDictionary replaces the dictionary, releasing the previous one if owned.
// A nil d removes the dictionary.
func (e *ArrayEditor) SetDictionary(d *ArrowArray, owned bool) {
	if e.a.Dictionary != nil && e.priv.ownsDict {
		ReleaseArray(e.a.Dictionary)
	}
	if d != nil && owned {
		d = MoveArray(d)
	}
	e.a.Dictionary = d
	e.priv.ownsDict = d != nil && owned
}

// SchemaEditor mutates an ArrowSchema built by NewSchema.
type SchemaEditor struct {
	s    *ArrowSchema
	priv *schemaPrivate
}

// EditSchema returns an editor for s, or ErrNotProduced when s comes from
// another producer.
func EditSchema(s *ArrowSchema) (*SchemaEditor, error) {
	if s.IsReleased() {
		return nil, ErrReleased
	}
	priv, ok := s.PrivateData.(*schemaPrivate)
	if !ok {
		return nil, ErrNotProduced
	}
	return &SchemaEditor{s: s, priv: priv}, nil
}

func (e *SchemaEditor) SetFormat(f string)    { e.s.Format = f }
func (e *SchemaEditor) SetName(n string)      { e.s.Name = n }
func (e *SchemaEditor) SetFlags(f int64)      { e.s.Flags = f }
func (e *SchemaEditor) SetMetadata(md []byte) { e.s.Metadata = append([]byte(nil), md...) }

// AddChild appends c, adopting it by move when owned.
func (e *SchemaEditor) AddChild(c *ArrowSchema, owned bool) {
	if owned {
		c = MoveSchema(c)
	}
	e.s.Children = append(e.s.Children, c)
	e.priv.ownsChild = append(e.priv.ownsChild, owned)
}

// SetChild replaces child i, releasing the previous one if it was owned.
func (e *SchemaEditor) SetChild(i int, c *ArrowSchema, owned bool) error {
	if i < 0 || i >= len(e.s.Children) {
		return fmt.Errorf("child %d of %d: %w", i, len(e.s.Children), ErrOutOfRange)
	}
	if e.priv.ownsChild[i] {
		ReleaseSchema(e.s.Children[i])
	}
	if owned {
		c = MoveSchema(c)
	}
	e.s.Children[i] = c
	e.priv.ownsChild[i] = owned
	return nil
}

// PopChildren removes the last n children, releasing the owned ones.
func (e *SchemaEditor) PopChildren(n int) error {
	if n < 0 || n > len(e.s.Children) {
		return fmt.Errorf("pop %d of %d children: %w", n, len(e.s.Children), ErrOutOfRange)
	}
	keep := len(e.s.Children) - n
	for i := keep; i < len(e.s.Children); i++ {
		if e.priv.ownsChild[i] {
			ReleaseSchema(e.s.Children[i])
		}
	}
	e.s.Children = e.s.Children[:keep:keep]
	e.priv.ownsChild = e.priv.ownsChild[:keep:keep]
	if keep == 0 {
		e.s.Children = nil
	}
	return nil
}

// SetDictionary replaces the dictionary, releasing the previous one if owned.
func (e *SchemaEditor) SetDictionary(d *ArrowSchema, owned bool) {
	if e.s.Dictionary != nil && e.priv.ownsDict {
		ReleaseSchema(e.s.Dictionary)
	}
	if d != nil && owned {
		d = MoveSchema(d)
	}
	e.s.Dictionary = d
	e.priv.ownsDict = d != nil && owned
}
