package proxy

import (
	"fmt"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
)

func (p *Proxy) checkRange(start, end int64) error {
	if start < 0 || start > end || end > p.arr.Length {
		return fmt.Errorf("slice [%d, %d) of %d: %w", start, end, p.arr.Length, ErrOutOfRange)
	}
	return nil
}

// Slice returns an owning deep copy restricted to elements [start, end).
// Buffers are copied whole; the copy addresses the range through its offset.
func (p *Proxy) Slice(start, end int64) (*Proxy, error) {
	if err := p.checkRange(start, end); err != nil {
		return nil, err
	}
	c, err := p.Clone()
	if err != nil {
		return nil, err
	}
	c.arr.Offset += start
	c.arr.Length = end - start
	c.arr.NullCount = c.countNulls(c.arr.Offset, c.arr.Length)
	return c, nil
}

// SliceView returns a proxy on elements [start, end) that shares every buffer
// with p. Its array node is a shallow copy whose release only marks it
// released; p must outlive the view.
func (p *Proxy) SliceView(start, end int64) (*Proxy, error) {
	if err := p.checkRange(start, end); err != nil {
		return nil, err
	}
	arr := &abi.ArrowArray{
		Length:     end - start,
		Offset:     p.arr.Offset + start,
		Buffers:    p.arr.Buffers,
		Children:   p.arr.Children,
		Dictionary: p.arr.Dictionary,
		Release:    func(a *abi.ArrowArray) { a.Release = nil },
	}
	v := &Proxy{arr: arr, sch: p.sch, ownsArray: true, mem: p.mem}
	arr.NullCount = v.countNulls(arr.Offset, arr.Length)
	v.refreshChildren()
	return v, nil
}
