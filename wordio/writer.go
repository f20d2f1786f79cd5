package wordio

import (
	"encoding/binary"
	"io"

	"github.com/spacemeshos/packio/shared"
)

// Writer unpacks pack words into bytes and writes them to an io.Writer.
// It does not buffer; wrap the destination in a buffered writer for small writes.
type Writer struct {
	stream io.Writer
	buf    [shared.PackWordBytes]byte
	words  uint64
}

// A compile time check to ensure that Writer fully implements the WordWriter interface.
var _ WordWriter = (*Writer)(nil)

// NewWriter returns a new instance of Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{stream: w}
}

// WriteWord writes the bytes of w to the stream, most significant byte first.
func (w *Writer) WriteWord(word shared.PackWord) error {
	binary.BigEndian.PutUint64(w.buf[:], word)
	n, err := w.stream.Write(w.buf[:])
	if err != nil {
		return err
	}
	if n != len(w.buf) {
		return io.ErrShortWrite
	}
	w.words++
	return nil
}

// Words returns the number of words written so far.
func (w *Writer) Words() uint64 {
	return w.words
}
