// Package wordio bridges byte streams and pack word streams.
//
// Every pack word is represented on the wire by shared.PackWordBytes bytes in
// big-endian order, i.e. the first byte of a group is the most significant byte
// of the word, regardless of the host byte order.
package wordio

import "github.com/spacemeshos/packio/shared"

// WordReader produces pack words. ReadWord returns io.EOF once no words are left.
type WordReader interface {
	ReadWord() (shared.PackWord, error)
}

// WordScanner is a WordReader that can tell whether another word follows
// without consuming it.
//
// More reports false only when the producer has cleanly reached its end.
// Any other condition, including an I/O error, reports true so that the
// following ReadWord surfaces it.
type WordScanner interface {
	WordReader
	More() bool
}

// WordWriter consumes pack words.
type WordWriter interface {
	WriteWord(shared.PackWord) error
}
