package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/spacemeshos/packio/shared"
)

// FileReader is a buffered reader over a byte window of a file.
// All positions it reports are relative to the beginning of the window.
type FileReader struct {
	file   *os.File
	buf    *bufio.Reader
	logger *zap.Logger

	begin int64
	end   int64
	pos   int64
}

// A compile time check to ensure that FileReader fully implements the io.ReadSeekCloser interface.
var _ io.ReadSeekCloser = (*FileReader)(nil)

func NewFileReader(name string, opts ...OptionFunc) (*FileReader, error) {
	o := applyOptions(opts)

	file, err := os.OpenFile(name, os.O_RDONLY, shared.OwnerReadWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for reading: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %s: %w", name, err)
	}

	begin, end := o.window(info.Size())
	if _, err := file.Seek(begin, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to seek file %s: %w", name, err)
	}
	if err := adviseSequential(file, begin, end-begin); err != nil {
		o.logger.Debug("fadvise failed", zap.String("file", name), zap.Error(err))
	}

	o.logger.Debug("file reader opened",
		zap.String("file", name),
		zap.Int64("begin", begin),
		zap.Int64("end", end),
	)
	return &FileReader{
		file:   file,
		buf:    bufio.NewReaderSize(file, o.bufferSize),
		logger: o.logger,
		begin:  begin,
		end:    end,
		pos:    begin,
	}, nil
}

func (r *FileReader) remaining() int64 {
	return r.end - r.pos
}

func (r *FileReader) Read(p []byte) (int, error) {
	if r.buf == nil {
		return 0, shared.ErrClosed
	}
	rem := r.remaining()
	if rem <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > rem {
		p = p[:rem]
	}
	n, err := r.buf.Read(p)
	r.pos += int64(n)
	return n, err
}

func (r *FileReader) ReadByte() (byte, error) {
	if r.buf == nil {
		return 0, shared.ErrClosed
	}
	if r.remaining() <= 0 {
		return 0, io.EOF
	}
	b, err := r.buf.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// Peek returns the next n bytes without advancing the reader.
// Fewer bytes are returned along with io.EOF if the window ends earlier.
func (r *FileReader) Peek(n int) ([]byte, error) {
	if r.buf == nil {
		return nil, shared.ErrClosed
	}
	rem := r.remaining()
	if rem < 0 {
		rem = 0
	}
	if int64(n) <= rem {
		return r.buf.Peek(n)
	}
	b, err := r.buf.Peek(int(rem))
	if err == nil {
		err = io.EOF
	}
	return b, err
}

// Seek sets the position within the window.
// Seeking beyond the end of the window is allowed, subsequent reads return io.EOF.
func (r *FileReader) Seek(offset int64, whence int) (int64, error) {
	if r.buf == nil {
		return 0, shared.ErrClosed
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.Tell() + offset
	case io.SeekEnd:
		target = r.Size() + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if target < 0 {
		return 0, errors.New("negative position")
	}

	if _, err := r.file.Seek(r.begin+target, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek file: %w", err)
	}
	r.buf.Reset(r.file)
	r.pos = r.begin + target
	return target, nil
}

// Tell returns the current position within the window.
func (r *FileReader) Tell() int64 {
	return r.pos - r.begin
}

// Size returns the size of the window.
func (r *FileReader) Size() int64 {
	return r.end - r.begin
}

// Close closes the file. Reads after Close return shared.ErrClosed.
func (r *FileReader) Close() error {
	if r.buf == nil {
		return nil
	}
	r.buf = nil
	r.logger.Debug("file reader closed", zap.String("file", r.file.Name()), zap.Int64("pos", r.Tell()))
	return r.file.Close()
}
