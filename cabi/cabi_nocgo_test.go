//go:build !cgo

package cabi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithoutCgo(t *testing.T) {
	require.ErrorIs(t, Export(nil, nil, nil), ErrCgoRequired)
	_, err := Import(nil, nil, nil)
	require.ErrorIs(t, err, ErrCgoRequired)
}
