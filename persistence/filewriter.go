package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/spacemeshos/packio/shared"
)

// FileWriter is a buffered writer to a file, which is truncated when opened.
type FileWriter struct {
	name    string
	file    *os.File
	buf     *bufio.Writer
	logger  *zap.Logger
	written int64
}

// A compile time check to ensure that FileWriter fully implements the io.WriteCloser interface.
var _ io.WriteCloser = (*FileWriter)(nil)

func NewFileWriter(name string, opts ...OptionFunc) (*FileWriter, error) {
	o := applyOptions(opts)

	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, shared.OwnerReadWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for writing: %w", err)
	}
	o.logger.Debug("file writer opened", zap.String("file", name))
	return &FileWriter{
		name:   name,
		file:   f,
		buf:    bufio.NewWriterSize(f, o.bufferSize),
		logger: o.logger,
	}, nil
}

func (w *FileWriter) Write(b []byte) (int, error) {
	n, err := w.buf.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *FileWriter) WriteByte(c byte) error {
	if err := w.buf.WriteByte(c); err != nil {
		return err
	}
	w.written++
	return nil
}

func (w *FileWriter) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush disk writer: %w", err)
	}

	return nil
}

// Tell returns the number of bytes written so far.
func (w *FileWriter) Tell() int64 {
	return w.written
}

// Name returns the name of the underlying file.
func (w *FileWriter) Name() string {
	return w.name
}

// Close flushes the buffer and closes the file.
func (w *FileWriter) Close() error {
	if w.file == nil {
		return nil
	}
	if err := w.Flush(); err != nil {
		w.file.Close()
		w.file = nil
		return err
	}

	err := w.file.Close()
	w.logger.Debug("file writer closed", zap.String("file", w.Name()), zap.Int64("written", w.written))
	w.file = nil
	return err
}
