package persistence

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

// LoadFile reads the window given by WithRange, or the whole file, into memory.
func LoadFile(name string, opts ...OptionFunc) ([]byte, error) {
	r, err := NewFileReader(name, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data := make([]byte, r.Size())
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return data, nil
}

// SaveFile atomically replaces the contents of name with data.
func SaveFile(name string, data []byte) error {
	if err := atomic.WriteFile(name, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// AtomicFile is a FileWriter to a temporary file, which replaces its
// destination only once committed.
type AtomicFile struct {
	*FileWriter
	dest   string
	logger *zap.Logger
}

// CreateAtomic opens a temporary file next to name for writing.
// Either Commit or Abort must be called.
func CreateAtomic(name string, opts ...OptionFunc) (*AtomicFile, error) {
	o := applyOptions(opts)
	w, err := NewFileWriter(fmt.Sprintf("%s.tmp", name), opts...)
	if err != nil {
		return nil, err
	}
	return &AtomicFile{FileWriter: w, dest: name, logger: o.logger}, nil
}

// Commit closes the temporary file and moves it to its destination.
func (f *AtomicFile) Commit() error {
	tmp := f.Name()
	if err := f.FileWriter.Close(); err != nil {
		return fmt.Errorf("failed to close tmp file %s: %w", tmp, err)
	}
	if err := atomic.ReplaceFile(tmp, f.dest); err != nil {
		return fmt.Errorf("atomic replace: %w", err)
	}
	f.logger.Debug("file committed", zap.String("file", f.dest), zap.Int64("size", f.Tell()))
	return nil
}

// Abort discards the temporary file, leaving the destination untouched.
// It is a no-op after Commit.
func (f *AtomicFile) Abort() error {
	tmp := f.Name()
	if err := f.FileWriter.Close(); err != nil {
		return err
	}
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
