package persistence

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/packio/shared"
)

var testData = []byte("tudocomp=awesome, iopp=handy")

func writeTestFile(t *testing.T, data []byte) string {
	name := filepath.Join(t.TempDir(), "input")
	require.NoError(t, os.WriteFile(name, data, shared.OwnerReadWrite))
	return name
}

func TestFileReader(t *testing.T) {
	req := require.New(t)
	name := writeTestFile(t, testData)

	r, err := NewFileReader(name, WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)
	defer r.Close()

	req.Equal(int64(len(testData)), r.Size())
	req.Equal(int64(0), r.Tell())

	data, err := io.ReadAll(r)
	req.NoError(err)
	req.Equal(testData, data)
	req.Equal(r.Size(), r.Tell())

	_, err = r.ReadByte()
	req.Equal(io.EOF, err)
}

func TestFileReader_Range(t *testing.T) {
	req := require.New(t)
	name := writeTestFile(t, testData)

	r, err := NewFileReader(name, WithRange(9, 16), WithBufferSize(16))
	req.NoError(err)
	defer r.Close()

	req.Equal(int64(7), r.Size())
	data, err := io.ReadAll(r)
	req.NoError(err)
	req.Equal([]byte("awesome"), data)
}

func TestFileReader_RangeClamped(t *testing.T) {
	req := require.New(t)
	name := writeTestFile(t, testData)

	r, err := NewFileReader(name, WithRange(22, 1000))
	req.NoError(err)
	req.Equal(int64(len(testData)-22), r.Size())
	data, err := io.ReadAll(r)
	req.NoError(err)
	req.Equal([]byte("=handy"), data)
	req.NoError(r.Close())

	r, err = NewFileReader(name, WithRange(1000, 2000))
	req.NoError(err)
	req.Equal(int64(0), r.Size())
	_, err = r.ReadByte()
	req.Equal(io.EOF, err)
	req.NoError(r.Close())
}

func TestFileReader_PeekAndSeek(t *testing.T) {
	req := require.New(t)
	name := writeTestFile(t, testData)

	r, err := NewFileReader(name, WithRange(0, 8))
	req.NoError(err)
	defer r.Close()

	b, err := r.Peek(3)
	req.NoError(err)
	req.Equal([]byte("tud"), b)
	req.Equal(int64(0), r.Tell())

	c, err := r.ReadByte()
	req.NoError(err)
	req.Equal(byte('t'), c)

	pos, err := r.Seek(-2, io.SeekEnd)
	req.NoError(err)
	req.Equal(int64(6), pos)
	req.Equal(int64(6), r.Tell())

	// The window ends before the requested bytes.
	b, err = r.Peek(4)
	req.Equal(io.EOF, err)
	req.Equal([]byte("mp"), b)

	pos, err = r.Seek(-3, io.SeekCurrent)
	req.NoError(err)
	req.Equal(int64(3), pos)
	c, err = r.ReadByte()
	req.NoError(err)
	req.Equal(byte('o'), c)

	_, err = r.Seek(-1, io.SeekStart)
	req.Error(err)

	pos, err = r.Seek(100, io.SeekStart)
	req.NoError(err)
	req.Equal(int64(100), pos)
	_, err = r.Peek(1)
	req.Equal(io.EOF, err)
}

func TestFileReader_NotFound(t *testing.T) {
	_, err := NewFileReader(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileReader_Closed(t *testing.T) {
	req := require.New(t)
	name := writeTestFile(t, testData)

	r, err := NewFileReader(name)
	req.NoError(err)
	req.NoError(r.Close())
	req.NoError(r.Close())

	_, err = r.Read(make([]byte, 4))
	req.ErrorIs(err, shared.ErrClosed)
	_, err = r.ReadByte()
	req.ErrorIs(err, shared.ErrClosed)
	_, err = r.Peek(1)
	req.ErrorIs(err, shared.ErrClosed)
	_, err = r.Seek(0, io.SeekStart)
	req.ErrorIs(err, shared.ErrClosed)
}

func TestFileWriter(t *testing.T) {
	req := require.New(t)
	name := filepath.Join(t.TempDir(), "output")

	// Existing content is truncated.
	req.NoError(os.WriteFile(name, bytes.Repeat([]byte{0xFF}, 100), shared.OwnerReadWrite))

	w, err := NewFileWriter(name, WithBufferSize(4), WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)
	n, err := w.Write(testData[:8])
	req.NoError(err)
	req.Equal(8, n)
	req.NoError(w.WriteByte('!'))
	req.Equal(int64(9), w.Tell())
	req.Equal(name, w.Name())
	req.NoError(w.Close())
	req.NoError(w.Close())

	data, err := os.ReadFile(name)
	req.NoError(err)
	req.Equal([]byte("tudocomp!"), data)
}

func TestLoadAndSaveFile(t *testing.T) {
	req := require.New(t)
	name := filepath.Join(t.TempDir(), "data")

	req.NoError(SaveFile(name, testData))
	data, err := LoadFile(name)
	req.NoError(err)
	req.Equal(testData, data)

	data, err = LoadFile(name, WithRange(0, 8))
	req.NoError(err)
	req.Equal([]byte("tudocomp"), data)

	req.NoError(SaveFile(name, nil))
	data, err = LoadFile(name)
	req.NoError(err)
	req.Empty(data)
}

func TestAtomicFile(t *testing.T) {
	req := require.New(t)
	name := filepath.Join(t.TempDir(), "data")
	req.NoError(os.WriteFile(name, []byte("old"), shared.OwnerReadWrite))

	f, err := CreateAtomic(name)
	req.NoError(err)
	_, err = f.Write([]byte("new"))
	req.NoError(err)

	// The destination is untouched until committed.
	data, err := os.ReadFile(name)
	req.NoError(err)
	req.Equal([]byte("old"), data)

	req.NoError(f.Commit())
	req.NoError(f.Abort())
	data, err = os.ReadFile(name)
	req.NoError(err)
	req.Equal([]byte("new"), data)

	_, err = os.Stat(name + ".tmp")
	req.ErrorIs(err, os.ErrNotExist)
}

func TestAtomicFile_Abort(t *testing.T) {
	req := require.New(t)
	name := filepath.Join(t.TempDir(), "data")

	f, err := CreateAtomic(name)
	req.NoError(err)
	_, err = f.Write([]byte("new"))
	req.NoError(err)
	req.NoError(f.Abort())

	_, err = os.Stat(name)
	req.ErrorIs(err, os.ErrNotExist)
	_, err = os.Stat(name + ".tmp")
	req.ErrorIs(err, os.ErrNotExist)
}

func TestMappedFile(t *testing.T) {
	if !MmapAvailable() {
		t.Skip("mmap not supported")
	}
	req := require.New(t)

	// Large enough for the window to begin beyond the first page.
	data := bytes.Repeat(testData, 1024)
	name := writeTestFile(t, data)

	m, err := OpenMapped(name, WithLogger(zaptest.NewLogger(t)))
	req.NoError(err)
	req.Equal(data, m.Bytes())
	req.NoError(m.Close())
	req.NoError(m.Close())

	begin := int64(os.Getpagesize() + 5)
	m, err = OpenMapped(name, WithRange(begin, begin+100))
	req.NoError(err)
	req.Equal(100, m.Len())
	req.Equal(data[begin:begin+100], m.Bytes())

	read, err := io.ReadAll(m.NewReader())
	req.NoError(err)
	req.Equal(data[begin:begin+100], read)
	req.NoError(m.Close())

	m, err = OpenMapped(name, WithRange(10, 10))
	req.NoError(err)
	req.Equal(0, m.Len())
	req.NoError(m.Close())
}

func TestAvailableSpace(t *testing.T) {
	require.NotZero(t, AvailableSpace(t.TempDir()))
}
