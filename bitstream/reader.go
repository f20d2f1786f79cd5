package bitstream

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/spacemeshos/packio/shared"
	"github.com/spacemeshos/packio/wordio"
)

type readerState int

const (
	// stateUnbounded reads words on demand, without a notion of the stream end.
	stateUnbounded readerState = iota
	// stateStreaming holds a look-ahead word which is not the last one.
	stateStreaming
	// stateLastPending holds the last word of the stream as look-ahead.
	stateLastPending
	// stateFinal means the current word is the last one carrying payload.
	stateFinal
)

var states = []string{
	"UNBOUNDED",
	"STREAMING",
	"LAST_PENDING",
	"FINAL",
}

func (s readerState) String() string {
	return states[s]
}

// Reader unpacks bits from pack words taken from a wordio.WordReader.
//
// A bounded Reader keeps one word of look-ahead, so that it knows whether the
// word it is about to expose is the last one before exposing any of its bits.
// Readers must not be copied.
type Reader struct {
	stream  wordio.WordReader
	scanner wordio.WordScanner
	logger  *zap.Logger

	pack shared.PackWord
	next shared.PackWord
	i    uint

	state      readerState
	finalAvail uint
	numWords   uint64
	err        error
}

// A compile time check to ensure that Reader fully implements the BitSource interface.
var _ BitSource = (*Reader)(nil)

// NewReader returns a bounded Reader, which detects the end of the bit stream
// by decoding the finalizer of the last word.
// The first word is read immediately, unless the source is already exhausted.
func NewReader(s wordio.WordScanner, opts ...OptionFunc) (*Reader, error) {
	o := applyOptions(opts)
	r := &Reader{
		stream:  s,
		scanner: s,
		logger:  o.logger,
		i:       shared.PackWordBits,
	}

	if !s.More() {
		// The input is empty.
		r.state = stateFinal
		r.finalAvail = 0
		r.logger.Debug("bit reader created on an empty stream")
		return r, nil
	}

	next, err := s.ReadWord()
	if err != nil {
		return nil, fmt.Errorf("failed to read first word: %w", err)
	}
	r.numWords++
	r.next = next
	r.state = stateStreaming
	if !s.More() {
		r.state = stateLastPending
	}
	return r, nil
}

// NewUnboundedReader returns a Reader without end of stream detection.
// The caller is responsible for not reading more bits than were written.
func NewUnboundedReader(s wordio.WordReader, opts ...OptionFunc) *Reader {
	o := applyOptions(opts)
	return &Reader{
		stream: s,
		logger: o.logger,
		i:      shared.PackWordBits,
		state:  stateUnbounded,
	}
}

func (r *Reader) advance() error {
	switch r.state {
	case stateUnbounded:
		pack, err := r.stream.ReadWord()
		if err != nil {
			return r.fail(err)
		}
		r.numWords++
		r.pack = pack
		r.i = 0
		return nil

	case stateLastPending:
		// The look-ahead word is the last one and carries its own finalizer.
		r.pack = r.next
		r.i = 0
		r.finalAvail = DecodeFinalizer(r.pack)
		r.enterFinal()
		return nil

	case stateFinal:
		return io.EOF
	}

	// There is at least one word after the current one.
	r.pack = r.next
	r.i = 0

	next, err := r.stream.ReadWord()
	if err != nil {
		return r.fail(err)
	}
	r.numWords++
	r.next = next

	if r.scanner.More() {
		return nil
	}

	// The next word is the last one.
	if avail := DecodeFinalizer(next); avail >= shared.PayloadBits {
		// An extra word was appended for the finalizer only,
		// therefore the current word is already the last one.
		r.finalAvail = avail
		r.enterFinal()
		return nil
	}
	r.state = stateLastPending
	return nil
}

func (r *Reader) enterFinal() {
	r.state = stateFinal
	r.logger.Debug("bit reader reached final word",
		zap.Uint64("words", r.numWords),
		zap.Uint("avail", r.finalAvail),
	)
}

func (r *Reader) fail(err error) error {
	if err != io.EOF {
		err = fmt.Errorf("failed to read word %d: %w", r.numWords, err)
	}
	r.err = err
	return err
}

// truncated records that a field ran past the end of the stream.
// The bits already consumed by the field are lost, so the reader stays failed.
func (r *Reader) truncated() error {
	r.err = io.ErrUnexpectedEOF
	return r.err
}

// ReadBit reads a single bit.
// It returns io.EOF if the end of the bit stream has been reached.
func (r *Reader) ReadBit() (Bit, error) {
	if r.err != nil {
		return Zero, r.err
	}
	if r.EOF() {
		return Zero, io.EOF
	}
	if r.i >= shared.PackWordBits {
		if err := r.advance(); err != nil {
			return Zero, err
		}
		if r.EOF() {
			return Zero, io.EOF
		}
	}

	bit := r.pack&shared.SetBit(r.i) != 0
	r.i++
	return Bit(bit), nil
}

// ReadBits reads num bits, returned in the low bits of the result.
// num must be in (0, shared.PackWordBits].
//
// It returns io.EOF if the end of the bit stream was reached before the call,
// and io.ErrUnexpectedEOF if the stream ends before num bits could be read.
// The latter is sticky.
func (r *Reader) ReadBits(num uint) (shared.PackWord, error) {
	checkNumBits(num)
	if r.err != nil {
		return 0, r.err
	}
	if r.EOF() {
		return 0, io.EOF
	}

	var bits shared.PackWord
	var j uint

	if r.i >= shared.PackWordBits {
		if err := r.advance(); err != nil {
			return 0, err
		}
	}

	for r.i+num > shared.PackWordBits {
		// Not all bits can be read from the current word, read as many as possible and advance.
		if r.state == stateFinal {
			return 0, r.truncated()
		}
		avail := shared.PackWordBits - r.i
		bits |= shared.ExtractLow(r.pack>>r.i, avail) << j

		num -= avail
		j += avail
		if err := r.advance(); err != nil {
			if err == io.EOF {
				return 0, r.truncated()
			}
			return 0, err
		}
	}

	if r.state == stateFinal && r.i+num > r.finalAvail {
		return 0, r.truncated()
	}
	bits |= shared.ExtractLow(r.pack>>r.i, num) << j
	r.i += num
	return bits, nil
}

// PackPos returns the position of the next bit to be read in the current word.
func (r *Reader) PackPos() uint {
	return r.i % shared.PackWordBits
}

// Good reports whether more bits can be read from the stream.
// It is always true for an unbounded Reader.
func (r *Reader) Good() bool {
	return r.state != stateFinal || r.i < r.finalAvail
}

// EOF reports whether all bits have been read from the stream.
func (r *Reader) EOF() bool {
	return !r.Good()
}

// Err returns the first error encountered while reading words, if any.
func (r *Reader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

// NumWords returns the number of words read from the underlying source, including look-ahead.
func (r *Reader) NumWords() uint64 {
	return r.numWords
}
