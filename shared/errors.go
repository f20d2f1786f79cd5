package shared

import (
	"errors"
	"fmt"
)

var (
	ErrClosed          = errors.New("already closed")
	ErrMmapUnsupported = errors.New("memory mapping is not supported on this platform")
	ErrNotEnoughSpace  = errors.New("not enough disk space")
)

// WidthMismatchError is returned when a stream is decoded with a field width
// different from the one recorded when it was encoded.
type WidthMismatchError struct {
	Expected uint
	Found    uint
	Path     string
}

func (err WidthMismatchError) Error() string {
	return fmt.Sprintf("field width mismatch; expected: %v, found: %v, path: %v",
		err.Expected, err.Found, err.Path)
}

var (
	// ErrMetadataFileMissing is returned when the metadata sidecar of a packed file is missing.
	ErrMetadataFileMissing = errors.New("metadata file is missing")

	// ErrInvalidFinalizer is returned when the last word of a stream holds a finalizer
	// that no writer could have produced.
	ErrInvalidFinalizer = errors.New("invalid finalizer")
)
