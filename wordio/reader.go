package wordio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/spacemeshos/packio/shared"
)

// peekReader is satisfied by bufio.Reader and persistence.FileReader.
type peekReader interface {
	io.Reader
	Peek(n int) ([]byte, error)
}

// Reader packs bytes from an io.Reader into pack words.
type Reader struct {
	stream peekReader
	buf    [shared.PackWordBytes]byte
	words  uint64
}

// A compile time check to ensure that Reader fully implements the WordScanner interface.
var _ WordScanner = (*Reader)(nil)

// NewReader returns a new instance of Reader.
// The stream is used as is if it supports peeking, otherwise it is wrapped into a bufio.Reader.
func NewReader(r io.Reader) *Reader {
	stream, ok := r.(peekReader)
	if !ok {
		stream = bufio.NewReaderSize(r, shared.DefaultBufferSize)
	}
	return &Reader{stream: stream}
}

// ReadWord reads the next shared.PackWordBytes bytes and assembles them into a word,
// the first byte becoming the most significant one.
// It returns io.EOF if the stream is exhausted, and io.ErrUnexpectedEOF if it ends mid-word.
func (r *Reader) ReadWord() (shared.PackWord, error) {
	if _, err := io.ReadFull(r.stream, r.buf[:]); err != nil {
		return 0, err
	}
	r.words++
	return binary.BigEndian.Uint64(r.buf[:]), nil
}

// More reports whether at least one more byte is available on the stream.
func (r *Reader) More() bool {
	_, err := r.stream.Peek(1)
	return !errors.Is(err, io.EOF)
}

// Words returns the number of words read so far.
func (r *Reader) Words() uint64 {
	return r.words
}
