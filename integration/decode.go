package integration

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/array"
	"github.com/VanDung-dev/HieraChain-Columnar/layout"
)

// NumBatches returns the number of record batches of f.
func (f *File) NumBatches() int { return len(f.Batches) }

// Batch builds the columns of batch i with buffers from mem. On error the
// columns built so far are released.
func (f *File) Batch(i int, mem memory.Allocator) ([]*array.Array, error) {
	if i < 0 || i >= len(f.Batches) {
		return nil, fmt.Errorf("batch %d of %d: %w", i, len(f.Batches), abi.ErrOutOfRange)
	}
	rec := f.Batches[i]
	if len(rec.Columns) != len(f.Schema.Fields) {
		return nil, fmt.Errorf("batch %d has %d columns for %d fields: %w",
			i, len(rec.Columns), len(f.Schema.Fields), abi.ErrInvalidFormat)
	}

	out := make([]*array.Array, 0, len(rec.Columns))
	for j, field := range f.Schema.Fields {
		a, err := f.column(field, rec.Columns[j], mem)
		if err != nil {
			for _, c := range out {
				c.Release()
			}
			return nil, fmt.Errorf("batch %d column %q: %w", i, field.Name, err)
		}
		out = append(out, array.FromTyped(a))
	}
	return out, nil
}

func (f *File) dictionary(id int64) (Column, error) {
	for _, d := range f.Dictionaries {
		if d.ID == id {
			if len(d.Data.Columns) != 1 {
				return Column{}, fmt.Errorf("dictionary %d has %d columns: %w", id, len(d.Data.Columns), abi.ErrInvalidFormat)
			}
			return d.Data.Columns[0], nil
		}
	}
	return Column{}, fmt.Errorf("dictionary %d not found: %w", id, abi.ErrInvalidFormat)
}

func options(field Field, col Column, mem memory.Allocator) []array.Option {
	opts := []array.Option{array.WithName(field.Name), array.WithAllocator(mem)}
	if len(field.Metadata) > 0 {
		md := make([]abi.KeyValue, len(field.Metadata))
		for i, kv := range field.Metadata {
			md[i] = abi.KeyValue{Key: kv.Key, Value: kv.Value}
		}
		opts = append(opts, array.WithMetadata(md...))
	}
	// a non-nullable field is all valid whatever VALIDITY says
	if field.Nullable && len(col.Validity) > 0 {
		valid := make([]bool, len(col.Validity))
		for i, v := range col.Validity {
			valid[i] = v > 0
		}
		opts = append(opts, array.WithValidity(valid))
	}
	return opts
}

func (f *File) column(field Field, col Column, mem memory.Allocator) (array.Typed, error) {
	dt, err := field.Type.DataType()
	if err != nil {
		return nil, err
	}
	if field.Dictionary == nil {
		return build(dt, col, options(field, col, mem))
	}

	keyType, err := field.Dictionary.IndexType.DataType()
	if err != nil {
		return nil, err
	}
	if !keyType.IsInteger() {
		return nil, fmt.Errorf("dictionary key type %s: %w", keyType, abi.ErrInvalidFormat)
	}
	dcol, err := f.dictionary(field.Dictionary.ID)
	if err != nil {
		return nil, err
	}
	values, err := build(dt, dcol, options(Field{Type: field.Type, Nullable: true}, dcol, mem))
	if err != nil {
		return nil, fmt.Errorf("dictionary %d: %w", field.Dictionary.ID, err)
	}

	opts := options(field, col, mem)
	switch keyType {
	case abi.INT8:
		return dictionaryArray[int8](col, true, values, opts)
	case abi.UINT8:
		return dictionaryArray[uint8](col, false, values, opts)
	case abi.INT16:
		return dictionaryArray[int16](col, true, values, opts)
	case abi.UINT16:
		return dictionaryArray[uint16](col, false, values, opts)
	case abi.INT32:
		return dictionaryArray[int32](col, true, values, opts)
	case abi.UINT32:
		return dictionaryArray[uint32](col, false, values, opts)
	case abi.INT64:
		return dictionaryArray[int64](col, true, values, opts)
	default:
		return dictionaryArray[uint64](col, false, values, opts)
	}
}

func build(dt abi.DataType, col Column, opts []array.Option) (array.Typed, error) {
	if dt != abi.NA && !isView(dt) && len(col.Data) != col.Count {
		return nil, fmt.Errorf("%d values for count %d: %w", len(col.Data), col.Count, abi.ErrInvalidFormat)
	}
	switch dt {
	case abi.NA:
		return typed(array.NewNull(col.Count, opts...))
	case abi.BOOL:
		vals, err := bools(col.Data)
		if err != nil {
			return nil, err
		}
		return typed(array.NewBoolean(vals, opts...))
	case abi.INT8:
		return integerArray[int8](col.Data, true, opts)
	case abi.UINT8:
		return integerArray[uint8](col.Data, false, opts)
	case abi.INT16:
		return integerArray[int16](col.Data, true, opts)
	case abi.UINT16:
		return integerArray[uint16](col.Data, false, opts)
	case abi.INT32:
		return integerArray[int32](col.Data, true, opts)
	case abi.UINT32:
		return integerArray[uint32](col.Data, false, opts)
	case abi.INT64:
		return integerArray[int64](col.Data, true, opts)
	case abi.UINT64:
		return integerArray[uint64](col.Data, false, opts)
	case abi.HALF_FLOAT:
		vals, err := floats(col.Data, func(f float64) float16.Num { return float16.New(float32(f)) })
		if err != nil {
			return nil, err
		}
		return typed(array.NewPrimitive(vals, opts...))
	case abi.FLOAT:
		vals, err := floats(col.Data, func(f float64) float32 { return float32(f) })
		if err != nil {
			return nil, err
		}
		return typed(array.NewPrimitive(vals, opts...))
	case abi.DOUBLE:
		vals, err := floats(col.Data, func(f float64) float64 { return f })
		if err != nil {
			return nil, err
		}
		return typed(array.NewPrimitive(vals, opts...))
	case abi.STRING, abi.LARGE_STRING:
		vals, err := strs(col.Data)
		if err != nil {
			return nil, err
		}
		if dt == abi.STRING {
			return typed(array.NewString(vals, opts...))
		}
		return typed(array.NewLargeString(vals, opts...))
	case abi.BINARY, abi.LARGE_BINARY:
		vals, err := binaries(col.Data)
		if err != nil {
			return nil, err
		}
		if dt == abi.BINARY {
			return typed(array.NewBinary(vals, opts...))
		}
		return typed(array.NewLargeBinary(vals, opts...))
	case abi.STRING_VIEW:
		specs, variadic, err := views(col)
		if err != nil {
			return nil, err
		}
		return typed(array.NewViewArrayFromSpecs[string](specs, variadic, opts...))
	case abi.BINARY_VIEW:
		specs, variadic, err := views(col)
		if err != nil {
			return nil, err
		}
		return typed(array.NewViewArrayFromSpecs[[]byte](specs, variadic, opts...))
	}
	return nil, fmt.Errorf("build %s: %w", dt, abi.ErrUnsupportedType)
}

func isView(dt abi.DataType) bool { return dt == abi.STRING_VIEW || dt == abi.BINARY_VIEW }

// typed drops the concrete type, keeping a nil interface on error.
func typed[A array.Typed](a A, err error) (array.Typed, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}

func integerArray[T array.Integer](vs []any, signed bool, opts []array.Option) (array.Typed, error) {
	vals, err := integers[T](vs, signed)
	if err != nil {
		return nil, err
	}
	return typed(array.NewPrimitive(vals, opts...))
}

func dictionaryArray[K array.Integer](col Column, signed bool, values array.Typed, opts []array.Option) (array.Typed, error) {
	if len(col.Data) != col.Count {
		values.Release()
		return nil, fmt.Errorf("%d keys for count %d: %w", len(col.Data), col.Count, abi.ErrInvalidFormat)
	}
	keys, err := integers[K](col.Data, signed)
	if err != nil {
		values.Release()
		return nil, err
	}
	return typed(array.NewDictionary(keys, values, opts...))
}

// numberText returns the decimal text of v. 64-bit integers arrive as
// strings, narrower ones as numbers.
func numberText(v any) (string, error) {
	switch v := v.(type) {
	case json.Number:
		return v.String(), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("%v (%T) is not a number: %w", v, v, abi.ErrInvalidFormat)
}

func integers[T array.Integer](vs []any, signed bool) ([]T, error) {
	out := make([]T, len(vs))
	for i, v := range vs {
		s, err := numberText(v)
		if err != nil {
			return nil, err
		}
		if signed {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("value %d: %w", i, err)
			}
			out[i] = T(n)
			continue
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = T(n)
	}
	return out, nil
}

func floats[T any](vs []any, conv func(float64) T) ([]T, error) {
	out := make([]T, len(vs))
	for i, v := range vs {
		s, err := numberText(v)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = conv(f)
	}
	return out, nil
}

func bools(vs []any) ([]bool, error) {
	out := make([]bool, len(vs))
	for i, v := range vs {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("value %d: %v (%T) is not a bool: %w", i, v, v, abi.ErrInvalidFormat)
		}
		out[i] = b
	}
	return out, nil
}

func strs(vs []any) ([]string, error) {
	out := make([]string, len(vs))
	for i, v := range vs {
		switch v := v.(type) {
		case string:
			out[i] = v
		case json.Number:
			out[i] = v.String()
		default:
			return nil, fmt.Errorf("value %d: %v (%T) is not a string: %w", i, v, v, abi.ErrInvalidFormat)
		}
	}
	return out, nil
}

func binaries(vs []any) ([][]byte, error) {
	text, err := strs(vs)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(text))
	for i, s := range text {
		if out[i], err = hex.DecodeString(s); err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	return out, nil
}

func views(col Column) ([]layout.ViewSpec, [][]byte, error) {
	if len(col.Views) != col.Count {
		return nil, nil, fmt.Errorf("%d views for count %d: %w", len(col.Views), col.Count, abi.ErrInvalidFormat)
	}
	variadic := make([][]byte, len(col.Variadic))
	for i, s := range col.Variadic {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, nil, fmt.Errorf("variadic buffer %d: %w", i, err)
		}
		variadic[i] = b
	}
	specs := make([]layout.ViewSpec, len(col.Views))
	for i, v := range col.Views {
		if v.Inlined != nil {
			b, err := hex.DecodeString(*v.Inlined)
			if err != nil {
				return nil, nil, fmt.Errorf("view %d: %w", i, err)
			}
			specs[i] = layout.ViewSpec{Inlined: &b, Size: int32(len(b))}
			continue
		}
		prefix, err := hex.DecodeString(v.PrefixHex)
		if err != nil {
			return nil, nil, fmt.Errorf("view %d prefix: %w", i, err)
		}
		specs[i] = layout.ViewSpec{
			Size:        v.Size,
			Prefix:      prefix,
			BufferIndex: v.BufferIndex,
			Offset:      v.Offset,
		}
	}
	return specs, variadic, nil
}
