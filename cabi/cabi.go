//go:build cgo

package cabi

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/cdata"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/array"
	"github.com/VanDung-dev/HieraChain-Columnar/interop"
)

type (
	// CArray is struct ArrowArray as laid out by C.
	CArray = cdata.CArrowArray
	// CSchema is struct ArrowSchema as laid out by C.
	CSchema = cdata.CArrowSchema
)

// Export fills out and outSchema with a copy of a. The consumer owns both
// and must call their release callbacks, or Release.
func Export(a *array.Array, out *CArray, outSchema *CSchema) error {
	arr, err := interop.ToArrow(a.Wrapper())
	if err != nil {
		return fmt.Errorf("export %q: %w", a.Name(), err)
	}
	defer arr.Release()
	cdata.ExportArrowArray(arr, out, outSchema)
	return nil
}

// Import moves in and sch into a new array allocated from mem. The schema is
// released once read; the array is released after its buffers are copied.
func Import(in *CArray, sch *CSchema, mem memory.Allocator) (*array.Array, error) {
	field, arr, err := cdata.ImportCArray(in, sch)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	defer arr.Release()

	a, err := interop.FromField(field, arr, mem)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", field.Name, err)
	}
	return a, nil
}

// Release calls the release callbacks of a pair that was exported and never
// handed to a consumer.
func Release(arr *CArray, sch *CSchema) {
	if arr != nil {
		cdata.ReleaseCArrowArray(arr)
	}
	if sch != nil {
		cdata.ReleaseCArrowSchema(sch)
	}
}
