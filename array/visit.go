package array

import (
	"bytes"
	"fmt"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
)

// Visitor has one method per concrete array type. Visit calls the method
// matching the runtime type of a wrapper.
type Visitor[R any] interface {
	VisitNull(a *Null) R
	VisitBool(a *Boolean) R
	VisitInt8(a *Int8) R
	VisitUint8(a *Uint8) R
	VisitInt16(a *Int16) R
	VisitUint16(a *Uint16) R
	VisitInt32(a *Int32) R
	VisitUint32(a *Uint32) R
	VisitInt64(a *Int64) R
	VisitUint64(a *Uint64) R
	VisitFloat16(a *Float16) R
	VisitFloat32(a *Float32) R
	VisitFloat64(a *Float64) R
	VisitString(a *String) R
	VisitLargeString(a *LargeString) R
	VisitBinary(a *Binary) R
	VisitLargeBinary(a *LargeBinary) R
	VisitStringView(a *StringView) R
	VisitBinaryView(a *BinaryView) R
	VisitDictionary(a DictionaryArray) R
}

// Visit recovers the concrete array behind w from its type tag and calls the
// matching method of v. A tag with no concrete array panics: wrappers are
// only built from arrays of supported types.
func Visit[R any](w *Wrapper, v Visitor[R]) R {
	a := w.Typed()
	if d, ok := a.(DictionaryArray); ok {
		return v.VisitDictionary(d)
	}
	switch dt := a.DataType(); dt {
	case abi.NA:
		return v.VisitNull(a.(*Null))
	case abi.BOOL:
		return v.VisitBool(a.(*Boolean))
	case abi.INT8:
		return v.VisitInt8(a.(*Int8))
	case abi.UINT8:
		return v.VisitUint8(a.(*Uint8))
	case abi.INT16:
		return v.VisitInt16(a.(*Int16))
	case abi.UINT16:
		return v.VisitUint16(a.(*Uint16))
	case abi.INT32:
		return v.VisitInt32(a.(*Int32))
	case abi.UINT32:
		return v.VisitUint32(a.(*Uint32))
	case abi.INT64:
		return v.VisitInt64(a.(*Int64))
	case abi.UINT64:
		return v.VisitUint64(a.(*Uint64))
	case abi.HALF_FLOAT:
		return v.VisitFloat16(a.(*Float16))
	case abi.FLOAT:
		return v.VisitFloat32(a.(*Float32))
	case abi.DOUBLE:
		return v.VisitFloat64(a.(*Float64))
	case abi.STRING:
		return v.VisitString(a.(*String))
	case abi.LARGE_STRING:
		return v.VisitLargeString(a.(*LargeString))
	case abi.BINARY:
		return v.VisitBinary(a.(*Binary))
	case abi.LARGE_BINARY:
		return v.VisitLargeBinary(a.(*LargeBinary))
	case abi.STRING_VIEW:
		return v.VisitStringView(a.(*StringView))
	case abi.BINARY_VIEW:
		return v.VisitBinaryView(a.(*BinaryView))
	default:
		panic(fmt.Errorf("visit %s: %w", dt, ErrUnsupportedType))
	}
}

// ArrayFunc is a Visitor calling the same function for every array type.
type ArrayFunc[R any] func(a Typed) R

func (f ArrayFunc[R]) VisitNull(a *Null) R                 { return f(a) }
func (f ArrayFunc[R]) VisitBool(a *Boolean) R              { return f(a) }
func (f ArrayFunc[R]) VisitInt8(a *Int8) R                 { return f(a) }
func (f ArrayFunc[R]) VisitUint8(a *Uint8) R               { return f(a) }
func (f ArrayFunc[R]) VisitInt16(a *Int16) R               { return f(a) }
func (f ArrayFunc[R]) VisitUint16(a *Uint16) R             { return f(a) }
func (f ArrayFunc[R]) VisitInt32(a *Int32) R               { return f(a) }
func (f ArrayFunc[R]) VisitUint32(a *Uint32) R             { return f(a) }
func (f ArrayFunc[R]) VisitInt64(a *Int64) R               { return f(a) }
func (f ArrayFunc[R]) VisitUint64(a *Uint64) R             { return f(a) }
func (f ArrayFunc[R]) VisitFloat16(a *Float16) R           { return f(a) }
func (f ArrayFunc[R]) VisitFloat32(a *Float32) R           { return f(a) }
func (f ArrayFunc[R]) VisitFloat64(a *Float64) R           { return f(a) }
func (f ArrayFunc[R]) VisitString(a *String) R             { return f(a) }
func (f ArrayFunc[R]) VisitLargeString(a *LargeString) R   { return f(a) }
func (f ArrayFunc[R]) VisitBinary(a *Binary) R             { return f(a) }
func (f ArrayFunc[R]) VisitLargeBinary(a *LargeBinary) R   { return f(a) }
func (f ArrayFunc[R]) VisitStringView(a *StringView) R     { return f(a) }
func (f ArrayFunc[R]) VisitBinaryView(a *BinaryView) R     { return f(a) }
func (f ArrayFunc[R]) VisitDictionary(a DictionaryArray) R { return f(a) }

// Size returns the number of elements of w.
func Size(w *Wrapper) int {
	return Visit[int](w, ArrayFunc[int](func(a Typed) int { return a.Len() }))
}

// NullCount returns the number of null elements of w.
func NullCount(w *Wrapper) int {
	return Visit[int](w, ArrayFunc[int](func(a Typed) int { return a.NullCount() }))
}

// Element returns element i of w. Dictionary-encoded elements are resolved
// through their dictionary.
func Element(w *Wrapper, i int) (Nullable, error) {
	if n := Size(w); i < 0 || i >= n {
		return Nullable{}, fmt.Errorf("element %d of %d: %w", i, n, ErrOutOfRange)
	}
	return Visit[Nullable](w, elementVisitor{i}), nil
}

func nullable[T any](v T, ok bool) Nullable {
	if !ok {
		return Nullable{}
	}
	return Nullable{Value: v, Valid: true}
}

type elementVisitor struct{ i int }

func (e elementVisitor) VisitNull(*Null) Nullable                 { return Nullable{} }
func (e elementVisitor) VisitBool(a *Boolean) Nullable            { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitInt8(a *Int8) Nullable               { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitUint8(a *Uint8) Nullable             { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitInt16(a *Int16) Nullable             { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitUint16(a *Uint16) Nullable           { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitInt32(a *Int32) Nullable             { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitUint32(a *Uint32) Nullable           { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitInt64(a *Int64) Nullable             { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitUint64(a *Uint64) Nullable           { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitFloat16(a *Float16) Nullable         { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitFloat32(a *Float32) Nullable         { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitFloat64(a *Float64) Nullable         { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitString(a *String) Nullable           { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitLargeString(a *LargeString) Nullable { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitBinary(a *Binary) Nullable           { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitLargeBinary(a *LargeBinary) Nullable { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitStringView(a *StringView) Nullable   { return nullable(a.Get(e.i)) }
func (e elementVisitor) VisitBinaryView(a *BinaryView) Nullable   { return nullable(a.Get(e.i)) }

func (e elementVisitor) VisitDictionary(a DictionaryArray) Nullable {
	k, ok := a.Key(e.i)
	if !ok {
		return Nullable{}
	}
	// keys are checked against the dictionary when stored
	v, err := Element(a.Dictionary(), k)
	if err != nil {
		panic(err)
	}
	return v
}

// Equal reports whether a and b hold the same type and the same elements.
// Null slots compare equal whatever their underlying bytes.
func Equal(a, b *Wrapper) bool {
	if a.DataType() != b.DataType() || a.IsDictionary() != b.IsDictionary() {
		return false
	}
	n := Size(a)
	if n != Size(b) || NullCount(a) != NullCount(b) {
		return false
	}
	for i := 0; i < n; i++ {
		x, _ := Element(a, i)
		y, _ := Element(b, i)
		if !equalElements(x, y) {
			return false
		}
	}
	return true
}

func equalElements(x, y Nullable) bool {
	if x.Valid != y.Valid {
		return false
	}
	if !x.Valid {
		return true
	}
	if xb, ok := x.Value.([]byte); ok {
		yb, ok := y.Value.([]byte)
		return ok && bytes.Equal(xb, yb)
	}
	return x.Value == y.Value
}
