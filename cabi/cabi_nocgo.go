//go:build !cgo

package cabi

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/array"
)

// CArray stands in for struct ArrowArray when cgo is disabled.
type CArray struct{}

// CSchema stands in for struct ArrowSchema when cgo is disabled.
type CSchema struct{}

func Export(*array.Array, *CArray, *CSchema) error { return ErrCgoRequired }

func Import(*CArray, *CSchema, memory.Allocator) (*array.Array, error) { return nil, ErrCgoRequired }

func Release(*CArray, *CSchema) {}
