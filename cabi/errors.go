package cabi

import "errors"

// ErrCgoRequired is returned by every entry point of a build without cgo.
var ErrCgoRequired = errors.New("cabi: built without cgo")
