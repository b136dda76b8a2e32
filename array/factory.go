package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/float16"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// FromProxy returns the concrete array matching the format of p. The array
// takes p over; on error p is left untouched and stays with the caller.
func FromProxy(p *proxy.Proxy) (Typed, error) {
	if p.IsReleased() {
		return nil, abi.ErrReleased
	}
	dt, err := abi.DataTypeFromFormat(p.Format())
	if err != nil {
		return nil, err
	}
	if p.Dictionary() != nil {
		return dictionaryFromProxy(dt, p)
	}
	switch dt {
	case abi.NA:
		return asTyped(newNullFromProxy(p))
	case abi.BOOL:
		return asTyped(newBooleanFromProxy(p))
	case abi.INT8:
		return asTyped(newPrimitiveFromProxy[int8](p))
	case abi.UINT8:
		return asTyped(newPrimitiveFromProxy[uint8](p))
	case abi.INT16:
		return asTyped(newPrimitiveFromProxy[int16](p))
	case abi.UINT16:
		return asTyped(newPrimitiveFromProxy[uint16](p))
	case abi.INT32:
		return asTyped(newPrimitiveFromProxy[int32](p))
	case abi.UINT32:
		return asTyped(newPrimitiveFromProxy[uint32](p))
	case abi.INT64:
		return asTyped(newPrimitiveFromProxy[int64](p))
	case abi.UINT64:
		return asTyped(newPrimitiveFromProxy[uint64](p))
	case abi.HALF_FLOAT:
		return asTyped(newPrimitiveFromProxy[float16.Num](p))
	case abi.FLOAT:
		return asTyped(newPrimitiveFromProxy[float32](p))
	case abi.DOUBLE:
		return asTyped(newPrimitiveFromProxy[float64](p))
	case abi.STRING:
		return asTyped(newVariableFromProxy[int32, string](p))
	case abi.LARGE_STRING:
		return asTyped(newVariableFromProxy[int64, string](p))
	case abi.BINARY:
		return asTyped(newVariableFromProxy[int32, []byte](p))
	case abi.LARGE_BINARY:
		return asTyped(newVariableFromProxy[int64, []byte](p))
	case abi.STRING_VIEW:
		return asTyped(newViewArrayFromProxy[string](p))
	case abi.BINARY_VIEW:
		return asTyped(newViewArrayFromProxy[[]byte](p))
	}
	return nil, fmt.Errorf("array of %s: %w", dt, ErrUnsupportedType)
}

func dictionaryFromProxy(key abi.DataType, p *proxy.Proxy) (Typed, error) {
	switch key {
	case abi.INT8:
		return asTyped(newDictionaryFromProxy[int8](p))
	case abi.UINT8:
		return asTyped(newDictionaryFromProxy[uint8](p))
	case abi.INT16:
		return asTyped(newDictionaryFromProxy[int16](p))
	case abi.UINT16:
		return asTyped(newDictionaryFromProxy[uint16](p))
	case abi.INT32:
		return asTyped(newDictionaryFromProxy[int32](p))
	case abi.UINT32:
		return asTyped(newDictionaryFromProxy[uint32](p))
	case abi.INT64:
		return asTyped(newDictionaryFromProxy[int64](p))
	case abi.UINT64:
		return asTyped(newDictionaryFromProxy[uint64](p))
	}
	return nil, fmt.Errorf("%w: dictionary keys of type %s", ErrInvalidFormat, key)
}

// asTyped keeps a failed constructor from producing a non-nil interface
// holding a nil pointer.
func asTyped[A Typed](a A, err error) (Typed, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}
