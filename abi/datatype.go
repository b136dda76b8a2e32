package abi

import "fmt"

// DataType is the closed set of element types carried across the boundary.
type DataType uint8

const (
	UNKNOWN DataType = iota
	NA
	BOOL
	UINT8
	INT8
	UINT16
	INT16
	UINT32
	INT32
	UINT64
	INT64
	HALF_FLOAT
	FLOAT
	DOUBLE
	STRING
	LARGE_STRING
	BINARY
	LARGE_BINARY
	STRING_VIEW
	BINARY_VIEW
)

var dataTypeInfo = [...]struct {
	name   string
	format string
	width  int
}{
	UNKNOWN:      {"unknown", "", 0},
	NA:           {"null", "n", 0},
	BOOL:         {"bool", "b", 0},
	UINT8:        {"uint8", "C", 1},
	INT8:         {"int8", "c", 1},
	UINT16:       {"uint16", "S", 2},
	INT16:        {"int16", "s", 2},
	UINT32:       {"uint32", "I", 4},
	INT32:        {"int32", "i", 4},
	UINT64:       {"uint64", "L", 8},
	INT64:        {"int64", "l", 8},
	HALF_FLOAT:   {"float16", "e", 2},
	FLOAT:        {"float32", "f", 4},
	DOUBLE:       {"float64", "g", 8},
	STRING:       {"utf8", "u", 0},
	LARGE_STRING: {"large_utf8", "U", 0},
	BINARY:       {"binary", "z", 0},
	LARGE_BINARY: {"large_binary", "Z", 0},
	STRING_VIEW:  {"utf8_view", "vu", 0},
	BINARY_VIEW:  {"binary_view", "vz", 0},
}

func (t DataType) String() string {
	if int(t) < len(dataTypeInfo) {
		return dataTypeInfo[t].name
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// Format returns the C Data Interface format string of t.
func (t DataType) Format() string {
	if int(t) < len(dataTypeInfo) {
		return dataTypeInfo[t].format
	}
	return ""
}

// ByteWidth returns the element width of fixed-size primitive types and 0
// for every other type.
func (t DataType) ByteWidth() int {
	if int(t) < len(dataTypeInfo) {
		return dataTypeInfo[t].width
	}
	return 0
}

// HasValidityBitmap reports whether buffer 0 of arrays of type t is a
// validity bitmap.
func (t DataType) HasValidityBitmap() bool { return t != NA && t != UNKNOWN }

// IsInteger reports whether t may key a dictionary.
func (t DataType) IsInteger() bool { return t >= UINT8 && t <= INT64 }

// NBuffers returns the fixed buffer count of t. View types report the two
// fixed buffers; their variadic data buffers and sizes buffer come on top.
func (t DataType) NBuffers() int {
	switch t {
	case NA:
		return 0
	case STRING, LARGE_STRING, BINARY, LARGE_BINARY:
		return 3
	case UNKNOWN:
		return 0
	default:
		return 2
	}
}

// DataTypeFromFormat maps a format string to its DataType.
func DataTypeFromFormat(format string) (DataType, error) {
	for t := NA; t <= BINARY_VIEW; t++ {
		if dataTypeInfo[t].format == format {
			return t, nil
		}
	}
	return UNKNOWN, fmt.Errorf("%w: format %q", ErrUnsupportedType, format)
}
