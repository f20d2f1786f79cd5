package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"code.cloudfoundry.org/bytefmt"
	"go.uber.org/zap"

	"github.com/spacemeshos/packio/persistence"
	"github.com/spacemeshos/packio/shared"
)

// openSource opens name for reading, through a memory mapping if useMmap is
// set and supported. The returned function releases the source.
func openSource(name string, useMmap bool, bufferSize int, logger *zap.Logger) (io.Reader, func() error, error) {
	if useMmap {
		if persistence.MmapAvailable() {
			m, err := persistence.OpenMapped(name, persistence.WithLogger(logger))
			if err != nil {
				return nil, nil, err
			}
			return m.NewReader(), m.Close, nil
		}
		logger.Warn("memory mapping not supported, falling back to buffered reads", zap.String("file", name))
	}

	r, err := persistence.NewFileReader(name,
		persistence.WithBufferSize(bufferSize),
		persistence.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

// ensureSpace returns shared.ErrNotEnoughSpace if the volume of the file
// name cannot hold size more bytes.
func ensureSpace(name string, size uint64) error {
	dir := filepath.Dir(name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if avail := persistence.AvailableSpace(dir); avail < size {
		return fmt.Errorf("%w: required %s, available %s in %s",
			shared.ErrNotEnoughSpace, bytefmt.ByteSize(size), bytefmt.ByteSize(avail), dir)
	}
	return nil
}
