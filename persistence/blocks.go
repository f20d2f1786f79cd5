package persistence

import (
	"errors"
	"fmt"
	"io"
)

// Blocks processes a stream blockwise. Each block keeps the last overlap
// bytes of its predecessor, which are accessible through negative positions.
type Blocks struct {
	stream    io.Reader
	blockSize int
	overlap   int

	buf    []byte // overlap region followed by the current block
	size   int
	offset int64

	probe    [1]byte
	hasProbe bool
}

// NewBlocks returns a Blocks over r and immediately loads the first block.
// The overlap region of the first block is zero-filled.
func NewBlocks(r io.Reader, blockSize, overlap int) (*Blocks, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("invalid block size: %d", blockSize)
	}
	if overlap < 0 || overlap > blockSize {
		return nil, fmt.Errorf("invalid overlap %d for block size %d", overlap, blockSize)
	}

	b := &Blocks{
		stream:    r,
		blockSize: blockSize,
		overlap:   overlap,
		buf:       make([]byte, overlap+blockSize),
	}
	if err := b.readNext(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Blocks) cur() []byte {
	return b.buf[b.overlap:]
}

func (b *Blocks) readNext() error {
	cur := b.cur()
	start := 0
	if b.offset > 0 {
		// The probe byte of the previous block is the first byte of this one.
		cur[0] = b.probe[0]
		start = 1
	}
	n, err := io.ReadFull(b.stream, cur[start:b.blockSize])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read block at offset %d: %w", b.offset, err)
	}
	b.size = start + n

	_, err = io.ReadFull(b.stream, b.probe[:])
	switch {
	case err == nil:
		b.hasProbe = true
	case errors.Is(err, io.EOF):
		b.hasProbe = false
	default:
		return fmt.Errorf("failed to probe stream at offset %d: %w", b.offset+int64(b.size), err)
	}
	return nil
}

// Advance loads the next block, retaining the overlap region of the current one.
// It returns false if the current block is the last one.
func (b *Blocks) Advance() (bool, error) {
	if b.Last() {
		return false, nil
	}

	// Slide the tail of the current block into the overlap region.
	copy(b.buf[:b.overlap], b.buf[b.size:b.size+b.overlap])

	b.offset += int64(b.size)
	if err := b.readNext(); err != nil {
		return false, err
	}
	return b.size > 0, nil
}

// At returns the byte at the block-local position i.
// Negative positions down to -Overlap() address the overlap region.
func (b *Blocks) At(i int) byte {
	return b.buf[b.overlap+i]
}

// Bytes returns the current block, excluding the overlap region.
func (b *Blocks) Bytes() []byte {
	return b.cur()[:b.size]
}

// WithOverlap returns the overlap region followed by the current block.
func (b *Blocks) WithOverlap() []byte {
	return b.buf[:b.overlap+b.size]
}

func (b *Blocks) Len() int {
	return b.size
}

// Offset returns the stream offset of the current block.
func (b *Blocks) Offset() int64 {
	return b.offset
}

func (b *Blocks) Empty() bool {
	return b.size == 0
}

func (b *Blocks) First() bool {
	return b.offset == 0
}

func (b *Blocks) Last() bool {
	return !b.hasProbe
}

func (b *Blocks) Overlap() int {
	return b.overlap
}
