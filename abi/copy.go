package abi

import "github.com/apache/arrow-go/v18/arrow/memory"

// CopyArray deep-copies a live array tree. Every buffer of the copy is
// allocated from mem; the copy shares nothing with a.
func CopyArray(mem memory.Allocator, a *ArrowArray) (*ArrowArray, error) {
	if a.IsReleased() {
		return nil, ErrReleased
	}
	init := ArrayInit{
		Length:    a.Length,
		NullCount: a.NullCount,
		Offset:    a.Offset,
		Buffers:   make([][]byte, len(a.Buffers)),
	}
	for i, b := range a.Buffers {
		init.Buffers[i] = CopyBuffer(mem, b)
	}
	release := func() {
		for _, b := range init.Buffers {
			freeBuffer(mem, b)
		}
		for _, c := range init.Children {
			ReleaseArray(c)
		}
	}
	for _, c := range a.Children {
		cc, err := CopyArray(mem, c)
		if err != nil {
			release()
			return nil, err
		}
		init.Children = append(init.Children, cc)
	}
	if a.Dictionary != nil {
		d, err := CopyArray(mem, a.Dictionary)
		if err != nil {
			release()
			return nil, err
		}
		init.Dictionary = d
	}
	return NewArray(mem, init), nil
}

// CopySchema deep-copies a live schema tree.
func CopySchema(s *ArrowSchema) (*ArrowSchema, error) {
	if s.IsReleased() {
		return nil, ErrReleased
	}
	init := SchemaInit{
		Format:   s.Format,
		Name:     s.Name,
		Metadata: s.Metadata,
		Flags:    s.Flags,
	}
	release := func() {
		for _, c := range init.Children {
			ReleaseSchema(c)
		}
	}
	for _, c := range s.Children {
		cc, err := CopySchema(c)
		if err != nil {
			release()
			return nil, err
		}
		init.Children = append(init.Children, cc)
	}
	if s.Dictionary != nil {
		d, err := CopySchema(s.Dictionary)
		if err != nil {
			release()
			return nil, err
		}
		init.Dictionary = d
	}
	return NewSchema(init), nil
}
