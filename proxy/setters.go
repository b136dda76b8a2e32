package proxy

import (
	"fmt"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
)

func (p *Proxy) arrayEditor() (*abi.ArrayEditor, error) {
	ed, err := abi.EditArray(p.arr)
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", p.sch.Name, err)
	}
	return ed, nil
}

func (p *Proxy) schemaEditor() (*abi.SchemaEditor, error) {
	ed, err := abi.EditSchema(p.sch)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", p.sch.Name, err)
	}
	return ed, nil
}

// SetFormat changes the format string of a produced schema.
func (p *Proxy) SetFormat(format string) error {
	ed, err := p.schemaEditor()
	if err != nil {
		return err
	}
	ed.SetFormat(format)
	p.validity = nil
	return nil
}

// SetDataType sets the format string of dt.
func (p *Proxy) SetDataType(dt abi.DataType) error {
	if dt == abi.UNKNOWN || dt.Format() == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
	}
	return p.SetFormat(dt.Format())
}

// SetName renames a produced schema.
func (p *Proxy) SetName(name string) error {
	ed, err := p.schemaEditor()
	if err != nil {
		return err
	}
	ed.SetName(name)
	return nil
}

// SetMetadata replaces the metadata of a produced schema.
func (p *Proxy) SetMetadata(pairs []abi.KeyValue) error {
	ed, err := p.schemaEditor()
	if err != nil {
		return err
	}
	ed.SetMetadata(abi.EncodeMetadata(pairs))
	return nil
}

// SetFlags replaces the flags of a produced schema.
func (p *Proxy) SetFlags(flags int64) error {
	ed, err := p.schemaEditor()
	if err != nil {
		return err
	}
	ed.SetFlags(flags)
	return nil
}

// SetLength changes the logical length of a produced array and recomputes
// its null count from the validity bitmap.
func (p *Proxy) SetLength(n int64) error {
	if _, err := p.arrayEditor(); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrOutOfRange, n)
	}
	if err := p.checkBitmapCapacity(p.arr.Offset, n); err != nil {
		return err
	}
	p.arr.Length = n
	p.arr.NullCount = p.countNulls(p.arr.Offset, n)
	p.validity = nil
	return nil
}

// SetOffset changes the offset of a produced array and recomputes its null
// count from the validity bitmap.
func (p *Proxy) SetOffset(off int64) error {
	if _, err := p.arrayEditor(); err != nil {
		return err
	}
	if off < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrOutOfRange, off)
	}
	if err := p.checkBitmapCapacity(off, p.arr.Length); err != nil {
		return err
	}
	p.arr.Offset = off
	p.arr.NullCount = p.countNulls(off, p.arr.Length)
	p.validity = nil
	return nil
}

// SetNullCount overrides the null count of a produced array.
func (p *Proxy) SetNullCount(n int64) error {
	if _, err := p.arrayEditor(); err != nil {
		return err
	}
	if n < -1 || n > p.arr.Length {
		return fmt.Errorf("%w: null count %d for length %d", ErrOutOfRange, n, p.arr.Length)
	}
	p.arr.NullCount = n
	p.nullsKnown = false
	return nil
}

// SetNBuffers grows or shrinks the buffer list of a produced array.
func (p *Proxy) SetNBuffers(n int) error {
	ed, err := p.arrayEditor()
	if err != nil {
		return err
	}
	ed.SetNBuffers(n)
	p.validity = nil
	return nil
}

// SetBuffer replaces buffer i with a copy of b. Replacing the validity
// buffer recomputes the null count.
func (p *Proxy) SetBuffer(i int, b []byte) error {
	ed, err := p.arrayEditor()
	if err != nil {
		return err
	}
	if err := ed.SetBuffer(i, b); err != nil {
		return err
	}
	if i == 0 {
		p.validity = nil
		p.arr.NullCount = p.countNulls(p.arr.Offset, p.arr.Length)
	}
	return nil
}

// ResizeBuffer resizes buffer i of a produced array to n bytes, keeping its
// leading content, and returns the new buffer.
func (p *Proxy) ResizeBuffer(i, n int) ([]byte, error) {
	ed, err := p.arrayEditor()
	if err != nil {
		return nil, err
	}
	return ed.ResizeBuffer(i, n)
}

// AddChild moves the pair owned by child under p. child must own both nodes
// and is left empty.
func (p *Proxy) AddChild(child *Proxy) error {
	aed, sed, err := p.editors()
	if err != nil {
		return err
	}
	arr, sch, err := child.Extract()
	if err != nil {
		return err
	}
	aed.AddChild(arr, true)
	sed.AddChild(sch, true)
	p.refreshChildren()
	return nil
}

// AddChildView references the pair of child under p without taking
// ownership; child must outlive p.
func (p *Proxy) AddChildView(child *Proxy) error {
	aed, sed, err := p.editors()
	if err != nil {
		return err
	}
	aed.AddChild(child.arr, false)
	sed.AddChild(child.sch, false)
	p.refreshChildren()
	return nil
}

// SetChild replaces child i with the pair owned by child.
func (p *Proxy) SetChild(i int, child *Proxy) error {
	aed, sed, err := p.editors()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(p.arr.Children) {
		return fmt.Errorf("child %d of %d: %w", i, len(p.arr.Children), ErrOutOfRange)
	}
	arr, sch, err := child.Extract()
	if err != nil {
		return err
	}
	if err := aed.SetChild(i, arr, true); err != nil {
		return err
	}
	if err := sed.SetChild(i, sch, true); err != nil {
		return err
	}
	p.refreshChildren()
	return nil
}

// PopChildren removes the last n children.
func (p *Proxy) PopChildren(n int) error {
	aed, sed, err := p.editors()
	if err != nil {
		return err
	}
	if err := aed.PopChildren(n); err != nil {
		return err
	}
	if err := sed.PopChildren(n); err != nil {
		return err
	}
	p.refreshChildren()
	return nil
}

// SetDictionary moves the pair owned by dict under p as its dictionary. A nil
// dict removes the dictionary.
func (p *Proxy) SetDictionary(dict *Proxy) error {
	aed, sed, err := p.editors()
	if err != nil {
		return err
	}
	if dict == nil {
		aed.SetDictionary(nil, false)
		sed.SetDictionary(nil, false)
		p.refreshChildren()
		return nil
	}
	arr, sch, err := dict.Extract()
	if err != nil {
		return err
	}
	aed.SetDictionary(arr, true)
	sed.SetDictionary(sch, true)
	p.refreshChildren()
	return nil
}

func (p *Proxy) editors() (*abi.ArrayEditor, *abi.SchemaEditor, error) {
	aed, err := p.arrayEditor()
	if err != nil {
		return nil, nil, err
	}
	sed, err := p.schemaEditor()
	if err != nil {
		return nil, nil, err
	}
	return aed, sed, nil
}
