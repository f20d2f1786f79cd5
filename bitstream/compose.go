package bitstream

import (
	"fmt"
	"io"

	"github.com/spacemeshos/packio/wordio"
)

// NewStreamWriter returns a Writer emitting its words as big-endian bytes to w.
// The finalizer is enabled unless WithoutFinalizer is given.
func NewStreamWriter(w io.Writer, opts ...OptionFunc) *Writer {
	return NewWriter(wordio.NewWriter(w), opts...)
}

// NewStreamReader returns a bounded Reader consuming big-endian words from r.
// The stream must have been written with the finalizer enabled.
func NewStreamReader(r io.Reader, opts ...OptionFunc) (*Reader, error) {
	return NewReader(wordio.NewReader(r), opts...)
}

// NewUnboundedStreamReader returns an unbounded Reader consuming big-endian words from r.
// There is no indication as to when the input ends; the caller must stop reading in time.
func NewUnboundedStreamReader(r io.Reader, opts ...OptionFunc) *Reader {
	return NewUnboundedReader(wordio.NewReader(r), opts...)
}

type flusher interface {
	Flush() error
}

// Encode runs fn with a BitSink writing to w, and closes the sink whenever fn
// returns, including on error and panic. If w has a Flush method, it is called
// after the sink is closed.
// It returns the number of bits written by fn, excluding the finalizer.
func Encode(w io.Writer, fn func(BitSink) error, opts ...OptionFunc) (n uint64, err error) {
	bw := NewStreamWriter(w, opts...)
	defer func() {
		n = bw.NumBitsWritten()
		if cerr := bw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close bit writer: %w", cerr)
		}
		if f, ok := w.(flusher); ok {
			if ferr := f.Flush(); ferr != nil && err == nil {
				err = fmt.Errorf("failed to flush stream: %w", ferr)
			}
		}
	}()

	return 0, fn(bw)
}
