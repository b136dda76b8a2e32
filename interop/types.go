package interop

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
)

var arrowTypes = map[abi.DataType]arrow.DataType{
	abi.NA:           arrow.Null,
	abi.BOOL:         arrow.FixedWidthTypes.Boolean,
	abi.INT8:         arrow.PrimitiveTypes.Int8,
	abi.UINT8:        arrow.PrimitiveTypes.Uint8,
	abi.INT16:        arrow.PrimitiveTypes.Int16,
	abi.UINT16:       arrow.PrimitiveTypes.Uint16,
	abi.INT32:        arrow.PrimitiveTypes.Int32,
	abi.UINT32:       arrow.PrimitiveTypes.Uint32,
	abi.INT64:        arrow.PrimitiveTypes.Int64,
	abi.UINT64:       arrow.PrimitiveTypes.Uint64,
	abi.HALF_FLOAT:   arrow.FixedWidthTypes.Float16,
	abi.FLOAT:        arrow.PrimitiveTypes.Float32,
	abi.DOUBLE:       arrow.PrimitiveTypes.Float64,
	abi.STRING:       arrow.BinaryTypes.String,
	abi.LARGE_STRING: arrow.BinaryTypes.LargeString,
	abi.BINARY:       arrow.BinaryTypes.Binary,
	abi.LARGE_BINARY: arrow.BinaryTypes.LargeBinary,
	abi.STRING_VIEW:  arrow.BinaryTypes.StringView,
	abi.BINARY_VIEW:  arrow.BinaryTypes.BinaryView,
}

var tags = map[arrow.Type]abi.DataType{
	arrow.NULL:         abi.NA,
	arrow.BOOL:         abi.BOOL,
	arrow.INT8:         abi.INT8,
	arrow.UINT8:        abi.UINT8,
	arrow.INT16:        abi.INT16,
	arrow.UINT16:       abi.UINT16,
	arrow.INT32:        abi.INT32,
	arrow.UINT32:       abi.UINT32,
	arrow.INT64:        abi.INT64,
	arrow.UINT64:       abi.UINT64,
	arrow.FLOAT16:      abi.HALF_FLOAT,
	arrow.FLOAT32:      abi.FLOAT,
	arrow.FLOAT64:      abi.DOUBLE,
	arrow.STRING:       abi.STRING,
	arrow.LARGE_STRING: abi.LARGE_STRING,
	arrow.BINARY:       abi.BINARY,
	arrow.LARGE_BINARY: abi.LARGE_BINARY,
	arrow.STRING_VIEW:  abi.STRING_VIEW,
	arrow.BINARY_VIEW:  abi.BINARY_VIEW,
}

// ArrowType returns the arrow-go type of dt.
func ArrowType(dt abi.DataType) (arrow.DataType, error) {
	t, ok := arrowTypes[dt]
	if !ok {
		return nil, fmt.Errorf("arrow type of %s: %w", dt, abi.ErrUnsupportedType)
	}
	return t, nil
}

// DataTypeOf returns the tag of an arrow-go type. Dictionary types are not
// accepted: their keys and values are mapped separately.
func DataTypeOf(t arrow.DataType) (abi.DataType, error) {
	dt, ok := tags[t.ID()]
	if !ok {
		return abi.UNKNOWN, fmt.Errorf("arrow type %s: %w", t, abi.ErrUnsupportedType)
	}
	return dt, nil
}

func isView(dt abi.DataType) bool { return dt == abi.STRING_VIEW || dt == abi.BINARY_VIEW }
