package wordio_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/packio/shared"
	"github.com/spacemeshos/packio/wordio"
)

func TestCharPacking(t *testing.T) {
	req := require.New(t)

	buf := bytes.NewBuffer(nil)
	w := wordio.NewWriter(buf)
	req.NoError(w.WriteWord(0x7475646F636F6D70))
	req.NoError(w.WriteWord(0x3D617765736F6D65))
	req.Equal("tudocomp=awesome", buf.String())

	r := wordio.NewReader(strings.NewReader(buf.String()))
	req.True(r.More())
	word, err := r.ReadWord()
	req.NoError(err)
	req.Equal(shared.PackWord(0x7475646F636F6D70), word)

	req.True(r.More())
	word, err = r.ReadWord()
	req.NoError(err)
	req.Equal(shared.PackWord(0x3D617765736F6D65), word)

	req.False(r.More())
	_, err = r.ReadWord()
	req.Equal(io.EOF, err)
	req.Equal(uint64(2), r.Words())
}

func TestReader_Literal(t *testing.T) {
	req := require.New(t)

	r := wordio.NewReader(bytes.NewReader([]byte("tudocomp")))
	word, err := r.ReadWord()
	req.NoError(err)
	req.Equal(shared.PackWord(0x7475646F636F6D70), word)

	// And back.
	buf := bytes.NewBuffer(nil)
	req.NoError(wordio.NewWriter(buf).WriteWord(word))
	req.Equal([]byte("tudocomp"), buf.Bytes())
}

func TestReader_Empty(t *testing.T) {
	req := require.New(t)

	r := wordio.NewReader(bytes.NewReader(nil))
	req.False(r.More())
	_, err := r.ReadWord()
	req.Equal(io.EOF, err)
}

func TestReader_PartialWord(t *testing.T) {
	req := require.New(t)

	r := wordio.NewReader(strings.NewReader("tudocomp=aw"))
	_, err := r.ReadWord()
	req.NoError(err)

	req.True(r.More())
	_, err = r.ReadWord()
	req.Equal(io.ErrUnexpectedEOF, err)
}

func TestReader_ErrorIsNotEnd(t *testing.T) {
	req := require.New(t)

	r := wordio.NewReader(&badReader{})
	req.True(r.More())
	_, err := r.ReadWord()
	req.ErrorIs(err, errBadReader)
}

func TestWriter_BadWriter(t *testing.T) {
	req := require.New(t)

	w := wordio.NewWriter(&badWriter{})
	err := w.WriteWord(shared.PackWordMax)
	req.ErrorIs(err, errBadWriter)
	req.Zero(w.Words())
}

func TestWriter_ShortWrite(t *testing.T) {
	req := require.New(t)

	w := wordio.NewWriter(&shortWriter{})
	err := w.WriteWord(shared.PackWordMax)
	req.Equal(io.ErrShortWrite, err)
}

func TestSliceReaderWriter(t *testing.T) {
	req := require.New(t)

	sw := &wordio.SliceWriter{}
	for i := shared.PackWord(0); i < 4; i++ {
		req.NoError(sw.WriteWord(i))
	}
	req.Equal([]shared.PackWord{0, 1, 2, 3}, sw.Words)

	sr := wordio.NewSliceReader(sw.Words)
	for i := shared.PackWord(0); i < 4; i++ {
		req.True(sr.More())
		w, err := sr.ReadWord()
		req.NoError(err)
		req.Equal(i, w)
	}
	req.False(sr.More())
	_, err := sr.ReadWord()
	req.Equal(io.EOF, err)
}

var (
	errBadReader = errors.New("bad reader")
	errBadWriter = errors.New("bad writer")
)

type badReader struct{}

func (*badReader) Read([]byte) (int, error) { return 0, errBadReader }

type badWriter struct{}

func (*badWriter) Write([]byte) (int, error) { return 0, errBadWriter }

type shortWriter struct{}

func (*shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }
