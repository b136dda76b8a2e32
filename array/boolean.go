package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/bitutil"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// Boolean is an array of bit-packed booleans.
type Boolean struct{ base }

// NewBoolean returns an array holding vals.
func NewBoolean(vals []bool, opts ...Option) (*Boolean, error) {
	o := newOptions(opts)
	validity, nulls, err := o.validityBuffer(len(vals))
	if err != nil {
		return nil, err
	}
	data := abi.AllocateBuffer(o.mem, int(bitutil.BytesForBits(int64(len(vals)))))
	for i, v := range vals {
		if v {
			bitutil.SetBit(data, i)
		}
	}
	p, err := o.newPair(abi.BOOL, len(vals), nulls, [][]byte{validity, data}, nil)
	if err != nil {
		return nil, err
	}
	return &Boolean{base{p}}, nil
}

func newBooleanFromProxy(p *proxy.Proxy) (*Boolean, error) {
	if p.NBuffers() != 2 {
		return nil, fmt.Errorf("%w: bool array with %d buffers", ErrInvalidFormat, p.NBuffers())
	}
	if need := bitutil.BytesForBits(p.Offset() + p.Length()); int64(len(p.Buffer(1))) < need {
		return nil, fmt.Errorf("%w: values buffer of %d bytes, need %d", ErrInvalidFormat, len(p.Buffer(1)), need)
	}
	return &Boolean{base{p}}, nil
}

// Value returns element i regardless of its validity.
func (a *Boolean) Value(i int) bool {
	a.mustIndex(i)
	return bitutil.BitIsSet(a.p.Buffer(1), a.offset()+i)
}

// Get returns element i and whether it is valid.
func (a *Boolean) Get(i int) (bool, bool) {
	if a.IsNull(i) {
		return false, false
	}
	return a.Value(i), true
}

// Set stores v at position i and marks it valid.
func (a *Boolean) Set(i int, v bool) error {
	if err := a.check(i); err != nil {
		return err
	}
	if err := a.p.SetValid(i, true); err != nil {
		return err
	}
	bitutil.SetBitTo(a.p.Buffer(1), a.offset()+i, v)
	return nil
}

// Append adds v at the end.
func (a *Boolean) Append(v bool) error {
	n := a.Len()
	buf, err := a.reserve(1, int(bitutil.BytesForBits(int64(a.offset()+n+1))))
	if err != nil {
		return err
	}
	bitutil.SetBitTo(buf, a.offset()+n, v)
	return a.appendSlot(true)
}

// AppendNull adds a null element at the end.
func (a *Boolean) AppendNull() error {
	n := a.Len()
	buf, err := a.reserve(1, int(bitutil.BytesForBits(int64(a.offset()+n+1))))
	if err != nil {
		return err
	}
	bitutil.ClearBit(buf, a.offset()+n)
	return a.appendSlot(false)
}
