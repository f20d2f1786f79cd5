package persistence

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spacemeshos/packio/shared"
)

// MappedFile is a read-only memory mapping of a byte window of a file.
type MappedFile struct {
	data   []byte // the mapping, starting at a page boundary
	view   []byte // the requested window within data
	logger *zap.Logger
}

// MmapAvailable reports whether memory mapping is supported on this platform.
func MmapAvailable() bool {
	return mmapAvailable
}

// OpenMapped maps the window given by WithRange, or the whole file, into memory.
// An empty window results in an empty mapping.
// It returns shared.ErrMmapUnsupported on platforms without mmap support.
func OpenMapped(name string, opts ...OptionFunc) (*MappedFile, error) {
	if !mmapAvailable {
		return nil, shared.ErrMmapUnsupported
	}
	o := applyOptions(opts)

	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for mapping: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", name, err)
	}
	begin, end := o.window(info.Size())
	if begin == end {
		return &MappedFile{logger: o.logger}, nil
	}

	pageSize := int64(os.Getpagesize())
	aligned := begin - begin%pageSize
	data, err := mmap(file, aligned, int(end-aligned))
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", name, err)
	}

	o.logger.Debug("file mapped",
		zap.String("file", name),
		zap.Int64("begin", begin),
		zap.Int64("end", end),
	)
	return &MappedFile{
		data:   data,
		view:   data[begin-aligned:],
		logger: o.logger,
	}, nil
}

// Bytes returns the mapped window. The slice is invalid after Close.
func (m *MappedFile) Bytes() []byte {
	return m.view
}

func (m *MappedFile) Len() int {
	return len(m.view)
}

// NewReader returns a reader over the mapped window.
func (m *MappedFile) NewReader() *bytes.Reader {
	return bytes.NewReader(m.view)
}

func (m *MappedFile) Close() error {
	if m.data == nil {
		return nil
	}
	err := munmap(m.data)
	m.data, m.view = nil, nil
	m.logger.Debug("file unmapped", zap.Error(err))
	return err
}
