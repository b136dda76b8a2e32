package abi

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// Errors shared by the interchange layers. Each wraps the matching arrow-go
// sentinel so callers can test against either.
var (
	ErrOutOfRange      = fmt.Errorf("%w: index out of range", arrow.ErrIndex)
	ErrInvalidFormat   = fmt.Errorf("%w: invalid format", arrow.ErrInvalid)
	ErrUnsupportedType = fmt.Errorf("%w: unsupported data type", arrow.ErrNotImplemented)
	ErrReleased        = fmt.Errorf("%w: structure already released", arrow.ErrInvalid)
	ErrNotProduced     = errors.New("structure was not produced by this library")
)
