package wordio

import (
	"io"

	"github.com/spacemeshos/packio/shared"
)

// SliceReader reads words from an in-memory slice.
type SliceReader struct {
	words    []shared.PackWord
	position int
}

// A compile time check to ensure that SliceReader fully implements the WordScanner interface.
var _ WordScanner = (*SliceReader)(nil)

func NewSliceReader(words []shared.PackWord) *SliceReader {
	return &SliceReader{words: words}
}

func (s *SliceReader) ReadWord() (shared.PackWord, error) {
	if s.position >= len(s.words) {
		return 0, io.EOF
	}
	w := s.words[s.position]
	s.position++
	return w, nil
}

func (s *SliceReader) More() bool {
	return s.position < len(s.words)
}

// SliceWriter appends words to an in-memory slice.
type SliceWriter struct {
	Words []shared.PackWord
}

// A compile time check to ensure that SliceWriter fully implements the WordWriter interface.
var _ WordWriter = (*SliceWriter)(nil)

func (s *SliceWriter) WriteWord(w shared.PackWord) error {
	s.Words = append(s.Words, w)
	return nil
}
