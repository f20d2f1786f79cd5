package config

import (
	"fmt"
	"math/bits"

	"github.com/spacemeshos/packio/shared"
)

// Layout describes the size of a packed stream of fixed-width fields.
type Layout struct {
	Bits  uint64
	Words uint64
	Bytes uint64
}

// DeriveLayout returns the layout of count fields of width bits each.
func DeriveLayout(width uint, count uint64, finalize bool) (Layout, error) {
	hi, numBits := bits.Mul64(uint64(width), count)
	if hi != 0 {
		return Layout{}, fmt.Errorf("uint64 overflow: %d fields of %d bits exceed the range allowed by uint64", count, width)
	}

	full := numBits / shared.PackWordBits
	rem := numBits % shared.PackWordBits

	words := full
	switch {
	case !finalize:
		if rem > 0 {
			words++
		}
	case numBits == 0:
		// No finalizer for an empty stream.
	case rem >= shared.PayloadBits:
		// The finalizer needs a word of its own.
		words += 2
	default:
		words++
	}

	return Layout{
		Bits:  numBits,
		Words: words,
		Bytes: words * shared.PackWordBytes,
	}, nil
}
