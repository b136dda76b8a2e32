package interop

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/endian"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/array"
	"github.com/VanDung-dev/HieraChain-Columnar/proxy"
)

// ToArrow copies the array behind w into an arrow-go array. The caller must
// release the result.
func ToArrow(w *array.Wrapper) (arrow.Array, error) {
	data, err := toArrayData(w.Proxy())
	if err != nil {
		return nil, err
	}
	defer data.Release()
	return arrowarray.MakeFromData(data), nil
}

func arrowTypeOf(p *proxy.Proxy) (arrow.DataType, error) {
	t, err := ArrowType(p.DataType())
	if err != nil {
		return nil, err
	}
	if p.Dictionary() == nil {
		return t, nil
	}
	values, err := arrowTypeOf(p.Dictionary())
	if err != nil {
		return nil, err
	}
	return &arrow.DictionaryType{
		IndexType: t,
		ValueType: values,
		Ordered:   p.Flags()&abi.FlagDictionaryOrdered != 0,
	}, nil
}

func toArrayData(p *proxy.Proxy) (*arrowarray.Data, error) {
	typ, err := arrowTypeOf(p)
	if err != nil {
		return nil, err
	}
	src := p.Buffers()
	switch dt := p.DataType(); {
	case dt == abi.NA:
		src = [][]byte{nil}
	case isView(dt):
		// arrow-go keeps no buffer of variadic sizes
		src = src[:len(src)-1]
	}
	buffers := make([]*memory.Buffer, len(src))
	for i, b := range src {
		if b != nil {
			buffers[i] = memory.NewBufferBytes(bytes.Clone(b))
		}
	}
	data := arrowarray.NewData(typ, int(p.Length()), buffers, nil, int(p.NullCount()), int(p.Offset()))
	if d := p.Dictionary(); d != nil {
		dict, err := toArrayData(d)
		if err != nil {
			data.Release()
			return nil, err
		}
		data.SetDictionary(dict)
		dict.Release()
	}
	return data, nil
}

// FromArrow copies an arrow-go array into a new array named name whose
// buffers come from mem.
func FromArrow(arr arrow.Array, name string, mem memory.Allocator) (*array.Array, error) {
	return fromArrayData(arr.Data(), name, nil, mem)
}

// FromField is FromArrow taking the name and metadata from f.
func FromField(f arrow.Field, arr arrow.Array, mem memory.Allocator) (*array.Array, error) {
	return fromArrayData(arr.Data(), f.Name, keyValues(f.Metadata), mem)
}

func fromArrayData(d arrow.ArrayData, name string, md []abi.KeyValue, mem memory.Allocator) (*array.Array, error) {
	a, s, err := exportData(d, name, md, mem)
	if err != nil {
		return nil, err
	}
	return array.Import(a, s, proxy.WithAllocator(mem))
}

func exportData(d arrow.ArrayData, name string, md []abi.KeyValue, mem memory.Allocator) (*abi.ArrowArray, *abi.ArrowSchema, error) {
	var (
		flags      int64
		keyType    = d.DataType()
		dictArr    *abi.ArrowArray
		dictSchema *abi.ArrowSchema
	)
	if dt, ok := d.DataType().(*arrow.DictionaryType); ok {
		var err error
		if dictArr, dictSchema, err = exportData(d.Dictionary(), "", nil, mem); err != nil {
			return nil, nil, fmt.Errorf("dictionary of %s: %w", name, err)
		}
		keyType = dt.IndexType
		if dt.Ordered {
			flags |= abi.FlagDictionaryOrdered
		}
	}
	tag, err := DataTypeOf(keyType)
	if err != nil {
		abi.ReleaseArray(dictArr)
		abi.ReleaseSchema(dictSchema)
		return nil, nil, err
	}

	var buffers [][]byte
	if tag != abi.NA {
		src := d.Buffers()
		buffers = make([][]byte, 0, len(src)+1)
		for _, b := range src {
			if b == nil || b.Len() == 0 {
				buffers = append(buffers, nil)
				continue
			}
			buffers = append(buffers, abi.CopyBuffer(mem, b.Bytes()))
		}
		if isView(tag) {
			variadic := src[2:]
			sizes := abi.AllocateBuffer(mem, 8*len(variadic))
			for i, b := range variadic {
				if b != nil {
					endian.Native.PutUint64(sizes[8*i:], uint64(b.Len()))
				}
			}
			buffers = append(buffers, sizes)
		}
	}
	nulls := d.NullN()
	if nulls > 0 {
		flags |= abi.FlagNullable
	}
	arr := abi.NewArray(mem, abi.ArrayInit{
		Length:     int64(d.Len()),
		NullCount:  int64(nulls),
		Offset:     int64(d.Offset()),
		Buffers:    buffers,
		Dictionary: dictArr,
	})
	sch := abi.NewSchema(abi.SchemaInit{
		Format:     tag.Format(),
		Name:       name,
		Metadata:   abi.EncodeMetadata(md),
		Flags:      flags,
		Dictionary: dictSchema,
	})
	return arr, sch, nil
}
