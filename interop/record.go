package interop

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/array"
)

// ToRecordBatch copies cols into one record batch. Column names and metadata
// become the schema fields; every column must have the same length.
func ToRecordBatch(cols []*array.Array) (arrow.RecordBatch, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("record batch: no columns")
	}
	nrows := cols[0].Len()
	fields := make([]arrow.Field, len(cols))
	arrs := make([]arrow.Array, 0, len(cols))
	defer func() {
		for _, a := range arrs {
			a.Release()
		}
	}()

	for i, c := range cols {
		if c.Len() != nrows {
			return nil, fmt.Errorf("column %q has %d rows, want %d: %w", c.Name(), c.Len(), nrows, abi.ErrInvalidFormat)
		}
		md, err := c.Metadata()
		if err != nil {
			return nil, fmt.Errorf("column %q metadata: %w", c.Name(), err)
		}
		a, err := ToArrow(c.Wrapper())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name(), err)
		}
		arrs = append(arrs, a)
		fields[i] = arrow.Field{
			Name:     c.Name(),
			Type:     a.DataType(),
			Nullable: c.Wrapper().Proxy().Flags()&abi.FlagNullable != 0 || c.NullCount() > 0,
			Metadata: arrowMetadata(md),
		}
	}
	schema := arrow.NewSchema(fields, nil)
	return arrowarray.NewRecordBatch(schema, arrs, int64(nrows)), nil
}

// FromRecordBatch copies every column of rec, naming each after its field.
// On error the columns built so far are released.
func FromRecordBatch(rec arrow.RecordBatch, mem memory.Allocator) ([]*array.Array, error) {
	fields := rec.Schema().Fields()
	out := make([]*array.Array, 0, len(fields))
	for i, f := range fields {
		a, err := FromField(f, rec.Column(i), mem)
		if err != nil {
			for _, c := range out {
				c.Release()
			}
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func arrowMetadata(pairs []abi.KeyValue) arrow.Metadata {
	if len(pairs) == 0 {
		return arrow.Metadata{}
	}
	keys := make([]string, len(pairs))
	vals := make([]string, len(pairs))
	for i, kv := range pairs {
		keys[i], vals[i] = kv.Key, kv.Value
	}
	return arrow.NewMetadata(keys, vals)
}

func keyValues(md arrow.Metadata) []abi.KeyValue {
	if md.Len() == 0 {
		return nil
	}
	out := make([]abi.KeyValue, md.Len())
	for i := range out {
		out[i] = abi.KeyValue{Key: md.Keys()[i], Value: md.Values()[i]}
	}
	return out
}
