package shared

import (
	"math"
	"math/bits"
)

// PackWord is the fixed-width unit all bit packing operates on.
type PackWord = uint64

const (
	// PackWordBits is the number of bits that can be packed into a PackWord.
	PackWordBits = 64

	// PackWordBytes is the number of bytes a PackWord occupies on the wire.
	PackWordBytes = PackWordBits / 8

	// PackWordMax is the PackWord with all bits set.
	PackWordMax PackWord = math.MaxUint64

	// FinalizerBits is the number of high bits of the last word reserved for the finalizer,
	// i.e. ceil(log2(PackWordBits)).
	FinalizerBits = 6

	// PayloadBits is the number of bits left for data in a word that also carries the finalizer.
	PayloadBits = PackWordBits - FinalizerBits
)

// SetBit returns a word where only the i-th bit is set.
// The result is undefined for i >= PackWordBits.
func SetBit(i uint) PackWord {
	return PackWord(1) << i
}

// LowMask returns a word with the num lowest bits set.
// num must be in (0, PackWordBits].
func LowMask(num uint) PackWord {
	// Two shifts so that num == PackWordBits never shifts by the full width.
	return ^((PackWordMax << (num - 1)) << 1)
}

// ExtractLow returns the num low bits of v, with the remaining high bits cleared.
// num must be in (0, PackWordBits].
func ExtractLow(v PackWord, num uint) PackWord {
	return v & LowMask(num)
}

// NumBits returns the number of bits required to represent v, with a minimum of 1.
func NumBits(v uint64) uint {
	if v == 0 {
		return 1
	}
	return uint(bits.Len64(v))
}
