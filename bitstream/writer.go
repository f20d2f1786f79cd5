package bitstream

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spacemeshos/packio/shared"
	"github.com/spacemeshos/packio/wordio"
)

// Writer packs bits into pack words and emits every full word to a wordio.WordWriter.
//
// Close must be called once all bits are written: it emits the pending word
// and, unless disabled, the finalizer. Writers must not be copied.
type Writer struct {
	stream wordio.WordWriter
	logger *zap.Logger

	pack shared.PackWord
	i    uint

	numBitsWritten uint64
	numWords       uint64

	finalize       bool
	wasEverFlushed bool
	closed         bool
	closeErr       error
	err            error
}

// A compile time check to ensure that Writer fully implements the BitSink interface.
var _ BitSink = (*Writer)(nil)

// NewWriter returns a new instance of Writer.
func NewWriter(w wordio.WordWriter, opts ...OptionFunc) *Writer {
	o := applyOptions(opts)
	return &Writer{
		stream:   w,
		logger:   o.logger,
		finalize: o.finalize,
	}
}

// WriteBit writes a single bit at the current position.
func (w *Writer) WriteBit(bit Bit) error {
	if err := w.check(); err != nil {
		return err
	}

	if bit {
		w.pack |= shared.SetBit(w.i)
	}
	w.numBitsWritten++

	w.i++
	if w.i >= shared.PackWordBits {
		return w.Flush()
	}
	return nil
}

// WriteBits writes the num low bits of bits, least-significant first.
// num must be in (0, shared.PackWordBits].
func (w *Writer) WriteBits(bits shared.PackWord, num uint) error {
	checkNumBits(num)
	if err := w.check(); err != nil {
		return err
	}
	w.numBitsWritten += uint64(num)

	for w.i+num > shared.PackWordBits {
		// Not all bits fit into the current word, write as many as possible and advance.
		fit := shared.PackWordBits - w.i
		w.pack |= shared.ExtractLow(bits, fit) << w.i

		w.i = shared.PackWordBits
		if err := w.Flush(); err != nil {
			return err
		}
		bits >>= fit // fit < 64, since num <= 64 and i > 0.
		num -= fit
	}

	w.pack |= shared.ExtractLow(bits, num) << w.i
	w.i += num
	if w.i >= shared.PackWordBits {
		return w.Flush()
	}
	return nil
}

// Flush emits the current word, with any unwritten bits cleared.
// It does nothing if no bits were written to the current word.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.i == 0 {
		return nil
	}

	w.wasEverFlushed = true
	if err := w.stream.WriteWord(w.pack); err != nil {
		w.err = fmt.Errorf("failed to emit word %d: %w", w.numWords, err)
		return w.err
	}
	w.numWords++
	w.pack = 0
	w.i = 0
	return nil
}

// PackPos returns the number of bits written to the current, not yet emitted word.
func (w *Writer) PackPos() uint {
	return w.i % shared.PackWordBits
}

// NumBitsWritten returns the number of bits written since creation, excluding the finalizer.
func (w *Writer) NumBitsWritten() uint64 {
	return w.numBitsWritten
}

// NumWords returns the number of words emitted so far.
func (w *Writer) NumWords() uint64 {
	return w.numWords
}

// Close writes the finalizer, if enabled, and flushes the last word.
// Subsequent calls return the result of the first one.
func (w *Writer) Close() error {
	if w.closed {
		return w.closeErr
	}
	w.closed = true
	w.closeErr = w.close()

	w.logger.Debug("bit writer closed",
		zap.Uint64("bits", w.numBitsWritten),
		zap.Uint64("words", w.numWords),
		zap.Bool("finalized", w.finalize),
		zap.Error(w.closeErr),
	)
	return w.closeErr
}

func (w *Writer) close() error {
	// No finalizer for an empty stream.
	nonEmpty := w.wasEverFlushed || w.i > 0
	if w.finalize && nonEmpty {
		finalizer := encodeFinalizer(w.i)
		if w.i >= shared.PayloadBits {
			// The finalizer no longer fits into this word, write it to the next one.
			if err := w.Flush(); err != nil {
				return err
			}
		}

		w.pack |= finalizer
		// Make sure the final flush emits even if the word holds the finalizer only.
		w.i = shared.PackWordBits
	}
	return w.Flush()
}

func (w *Writer) check() error {
	if w.closed {
		return shared.ErrClosed
	}
	return w.err
}
