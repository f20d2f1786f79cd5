// Package bitstream packs bits into pack words and unpacks them again.
//
// Bits are packed following the LSB pattern: the first bit written lands at the
// least-significant position of the current word, and multi-bit fields are
// written in ascending order of significance, split across words when needed.
//
// A Writer optionally terminates its output with a finalizer, stored in the top
// shared.FinalizerBits bits of the last word. A bounded Reader decodes it to
// report the exact end of the bit stream.
package bitstream

import (
	"fmt"

	"github.com/spacemeshos/packio/shared"
)

type Bit bool

const (
	Zero Bit = false
	One  Bit = true
)

// BitSink is implemented by types accepting bitwise output.
type BitSink interface {
	WriteBit(bit Bit) error
	WriteBits(bits shared.PackWord, num uint) error
	Flush() error
	NumBitsWritten() uint64
}

// BitSource is implemented by types from which bits can be extracted.
type BitSource interface {
	ReadBit() (Bit, error)
	ReadBits(num uint) (shared.PackWord, error)
}

const finalizerShift = shared.PayloadBits

// encodeFinalizer returns the finalizer for a last word holding k payload bits,
// placed in the top shared.FinalizerBits bits. k == 0 encodes a full previous word.
func encodeFinalizer(k uint) shared.PackWord {
	return shared.ExtractLow(shared.PackWord(k)-1, shared.FinalizerBits) << finalizerShift
}

// DecodeFinalizer returns the number of payload bits announced by the finalizer of x.
// A zero count means that the previous word was completely filled.
func DecodeFinalizer(x shared.PackWord) uint {
	f := uint((x>>finalizerShift)+1) % shared.PackWordBits
	if f == 0 {
		return shared.PackWordBits
	}
	return f
}

// StreamBits returns the number of payload bits of a finalized stream of
// numWords words, given its last word.
func StreamBits(numWords uint64, last shared.PackWord) (uint64, error) {
	if numWords == 0 {
		return 0, nil
	}
	k := uint64(DecodeFinalizer(last))
	if k < shared.PayloadBits {
		return (numWords-1)*shared.PackWordBits + k, nil
	}
	if numWords < 2 {
		return 0, fmt.Errorf("%w: %d payload bits in a single word stream", shared.ErrInvalidFinalizer, k)
	}
	return (numWords-2)*shared.PackWordBits + k, nil
}

func checkNumBits(num uint) {
	if num == 0 || num > shared.PackWordBits {
		panic("bitstream: number of bits must be in (0, 64]")
	}
}
