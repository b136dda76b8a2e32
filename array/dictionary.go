package array

import (
	"fmt"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/internal/unsafecast"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// DictionaryArray is implemented by every dictionary-encoded array,
// whatever its key type.
type DictionaryArray interface {
	Typed
	// KeyType returns the integer type of the keys.
	KeyType() abi.DataType
	// Key returns the key of element i and whether the element is valid.
	Key(i int) (int, bool)
	// Dictionary returns a borrowed wrapper over the dictionary values.
	Dictionary() *Wrapper
}

// Dictionary is a dictionary-encoded array: integer keys indexing into a
// values array held as the dictionary node of the interchange pair.
type Dictionary[K Integer] struct {
	base
	dict *Wrapper
}

// NewDictionary returns an array of keys into values. It takes ownership of
// values, which is left empty, and releases them on error. Valid keys must
// index into values.
func NewDictionary[K Integer](keys []K, values Typed, opts ...Option) (*Dictionary[K], error) {
	o := newOptions(opts)
	validity, nulls, err := o.validityBuffer(len(keys))
	if err != nil {
		values.Release()
		return nil, err
	}
	data := abi.CopyBuffer(o.mem, unsafecast.ToBytes(keys))
	p, err := o.newPair(dataTypeOf[K](), len(keys), nulls, [][]byte{validity, data}, values.Proxy())
	if err != nil {
		values.Release()
		return nil, err
	}
	d, err := newDictionaryFromProxy[K](p)
	if err != nil {
		p.Release()
		return nil, err
	}
	return d, nil
}

func newDictionaryFromProxy[K Integer](p *proxy.Proxy) (*Dictionary[K], error) {
	if p.Dictionary() == nil {
		return nil, fmt.Errorf("%w: %s array has no dictionary", ErrInvalidFormat, p.Format())
	}
	if p.NBuffers() != 2 {
		return nil, fmt.Errorf("%w: dictionary keys with %d buffers", ErrInvalidFormat, p.NBuffers())
	}
	if need := int(p.Offset()+p.Length()) * unsafecast.Sizeof[K](); len(p.Buffer(1)) < need {
		return nil, fmt.Errorf("%w: keys buffer of %d bytes, need %d", ErrInvalidFormat, len(p.Buffer(1)), need)
	}
	values, err := FromProxy(p.Dictionary().View())
	if err != nil {
		return nil, fmt.Errorf("dictionary values: %w", err)
	}
	d := &Dictionary[K]{base: base{p}, dict: Borrowed(values)}
	n := values.Len()
	for i, k := range d.Keys() {
		if d.IsValid(i) && (int64(k) < 0 || int64(k) >= int64(n)) {
			return nil, fmt.Errorf("key %d at %d outside a dictionary of %d: %w", k, i, n, ErrOutOfRange)
		}
	}
	return d, nil
}

// KeyType returns the type of the keys.
func (d *Dictionary[K]) KeyType() abi.DataType { return dataTypeOf[K]() }

// Dictionary returns a borrowed wrapper over the values. It is valid until d
// is released.
func (d *Dictionary[K]) Dictionary() *Wrapper { return d.dict }

// Keys returns the keys, null slots included. The slice aliases the keys
// buffer.
func (d *Dictionary[K]) Keys() []K {
	all := unsafecast.FromBytes[K](d.p.Buffer(1))
	if all == nil {
		return nil
	}
	return all[d.offset() : d.offset()+d.Len()]
}

func (d *Dictionary[K]) Key(i int) (int, bool) {
	if d.IsNull(i) {
		return 0, false
	}
	return int(d.Keys()[i]), true
}

// Value resolves element i through the dictionary. A null key and a key
// pointing at a null value both yield an invalid element.
func (d *Dictionary[K]) Value(i int) (Nullable, error) {
	if err := d.check(i); err != nil {
		return Nullable{}, err
	}
	k, ok := d.Key(i)
	if !ok {
		return Nullable{}, nil
	}
	return Element(d.dict, k)
}

func (d *Dictionary[K]) checkKey(k K) error {
	if n := d.dict.Typed().Len(); int64(k) < 0 || int64(k) >= int64(n) {
		return fmt.Errorf("key %d outside a dictionary of %d: %w", k, n, ErrOutOfRange)
	}
	return nil
}

// Set stores key k at position i and marks it valid.
func (d *Dictionary[K]) Set(i int, k K) error {
	if err := d.check(i); err != nil {
		return err
	}
	if err := d.checkKey(k); err != nil {
		return err
	}
	if err := d.p.SetValid(i, true); err != nil {
		return err
	}
	d.Keys()[i] = k
	return nil
}

// Append adds key k at the end.
func (d *Dictionary[K]) Append(k K) error {
	if err := d.checkKey(k); err != nil {
		return err
	}
	n := d.Len()
	if _, err := d.reserve(1, (d.offset()+n+1)*unsafecast.Sizeof[K]()); err != nil {
		return err
	}
	if err := d.appendSlot(true); err != nil {
		return err
	}
	d.Keys()[n] = k
	return nil
}

// AppendNull adds a null key at the end.
func (d *Dictionary[K]) AppendNull() error {
	if _, err := d.reserve(1, (d.offset()+d.Len()+1)*unsafecast.Sizeof[K]()); err != nil {
		return err
	}
	return d.appendSlot(false)
}

// Release releases the keys together with the dictionary they own.
func (d *Dictionary[K]) Release() {
	if d.dict != nil {
		d.dict.Release()
		d.dict = nil
	}
	d.base.Release()
}
