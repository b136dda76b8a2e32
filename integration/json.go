package integration

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
)

// File is a decoded integration JSON document.
type File struct {
	Schema       Schema       `json:"schema"`
	Batches      []Record     `json:"batches"`
	Dictionaries []Dictionary `json:"dictionaries,omitempty"`
}

type Schema struct {
	Fields   []Field    `json:"fields"`
	Metadata []KeyValue `json:"metadata,omitempty"`
}

type Field struct {
	Name       string     `json:"name"`
	Type       Type       `json:"type"`
	Nullable   bool       `json:"nullable"`
	Children   []Field    `json:"children"`
	Dictionary *FieldDict `json:"dictionary,omitempty"`
	Metadata   []KeyValue `json:"metadata,omitempty"`
}

// FieldDict marks a dictionary-encoded field. The field type is the type of
// the dictionary values; IndexType is the type of the keys.
type FieldDict struct {
	ID        int64 `json:"id"`
	IndexType Type  `json:"indexType"`
	Ordered   bool  `json:"isOrdered"`
}

// Type is the union of the type objects of the supported types.
type Type struct {
	Name      string `json:"name"`
	Signed    bool   `json:"isSigned,omitempty"`
	BitWidth  int    `json:"bitWidth,omitempty"`
	Precision string `json:"precision,omitempty"`
}

type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Dictionary struct {
	ID   int64  `json:"id"`
	Data Record `json:"data"`
}

type Record struct {
	Count   int      `json:"count"`
	Columns []Column `json:"columns"`
}

// Column holds one array of a record. DATA entries are json.Number, string
// or bool depending on the type; OFFSET is not read since offsets are
// rebuilt from the values.
type Column struct {
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Validity []int    `json:"VALIDITY,omitempty"`
	Data     []any    `json:"DATA,omitempty"`
	Offset   []any    `json:"OFFSET,omitempty"`
	Views    []View   `json:"VIEWS,omitempty"`
	Variadic []string `json:"VARIADIC_DATA_BUFFERS,omitempty"`
	Children []Column `json:"children,omitempty"`
}

// View is one record of a view column. A present Inlined selects the inline
// form.
type View struct {
	Size        int32   `json:"SIZE"`
	Inlined     *string `json:"INLINED,omitempty"`
	PrefixHex   string  `json:"PREFIX_HEX,omitempty"`
	BufferIndex int32   `json:"BUFFER_INDEX,omitempty"`
	Offset      int32   `json:"OFFSET,omitempty"`
}

// Decode reads one integration JSON document.
func Decode(r io.Reader) (*File, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode integration json: %w", err)
	}
	return &f, nil
}

// ReadFile decodes the integration JSON document at path.
func ReadFile(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Decode(r)
}

// DataType maps t to its tag.
func (t Type) DataType() (abi.DataType, error) {
	switch t.Name {
	case "null":
		return abi.NA, nil
	case "bool":
		return abi.BOOL, nil
	case "int":
		return intType(t.BitWidth, t.Signed)
	case "floatingpoint":
		switch t.Precision {
		case "HALF":
			return abi.HALF_FLOAT, nil
		case "SINGLE":
			return abi.FLOAT, nil
		case "DOUBLE":
			return abi.DOUBLE, nil
		}
	case "utf8":
		return abi.STRING, nil
	case "largeutf8":
		return abi.LARGE_STRING, nil
	case "binary":
		return abi.BINARY, nil
	case "largebinary":
		return abi.LARGE_BINARY, nil
	case "utf8view":
		return abi.STRING_VIEW, nil
	case "binaryview":
		return abi.BINARY_VIEW, nil
	}
	return abi.UNKNOWN, fmt.Errorf("json type %+v: %w", t, abi.ErrUnsupportedType)
}

func intType(bits int, signed bool) (abi.DataType, error) {
	var dt abi.DataType
	switch bits {
	case 8:
		dt = abi.UINT8
	case 16:
		dt = abi.UINT16
	case 32:
		dt = abi.UINT32
	case 64:
		dt = abi.UINT64
	default:
		return abi.UNKNOWN, fmt.Errorf("%d-bit integer: %w", bits, abi.ErrUnsupportedType)
	}
	if signed {
		// each signed tag follows its unsigned counterpart
		dt++
	}
	return dt, nil
}
