package array

import (
	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// Null is an array whose elements are all null. It has no buffers.
type Null struct{ base }

// NewNull returns a null array of n elements.
func NewNull(n int, opts ...Option) (*Null, error) {
	o := newOptions(opts)
	p, err := o.newPair(abi.NA, n, n, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Null{base{p}}, nil
}

func newNullFromProxy(p *proxy.Proxy) (*Null, error) {
	return &Null{base{p}}, nil
}

func (a *Null) NullCount() int { return a.Len() }

func (a *Null) IsNull(i int) bool {
	a.mustIndex(i)
	return true
}

// Append adds one more null element.
func (a *Null) Append() error {
	return a.p.SetLength(a.p.Length() + 1)
}
