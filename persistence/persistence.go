// Package persistence provides the file plumbing around packed bit streams:
// ranged buffered readers and writers, read-only memory mappings, atomic
// saves and blockwise processing with overlap.
package persistence

import (
	"go.uber.org/zap"

	"github.com/spacemeshos/packio/shared"
)

const toEOF = -1

type option struct {
	begin      int64
	end        int64
	bufferSize int
	logger     *zap.Logger
}

func defaultOption() *option {
	return &option{
		begin:      0,
		end:        toEOF,
		bufferSize: shared.DefaultBufferSize,
		logger:     zap.NewNop(),
	}
}

type OptionFunc func(*option)

// WithRange restricts a reader or mapping to the byte window [begin, end) of the file.
// The window is clamped to the file size; a negative end means the end of the file.
func WithRange(begin, end int64) OptionFunc {
	return func(o *option) {
		o.begin = begin
		o.end = end
	}
}

// WithBufferSize sets the size of the I/O buffer of a FileReader or FileWriter.
func WithBufferSize(size int) OptionFunc {
	return func(o *option) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) {
		o.logger = logger
	}
}

func applyOptions(opts []OptionFunc) *option {
	o := defaultOption()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// window clamps [begin, end) to a file of the given size.
func (o *option) window(size int64) (begin, end int64) {
	end = o.end
	if end < 0 || end > size {
		end = size
	}
	begin = o.begin
	if begin < 0 {
		begin = 0
	}
	if begin > end {
		begin = end
	}
	return begin, end
}
