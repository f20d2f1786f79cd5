//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package persistence

import (
	"os"

	"github.com/spacemeshos/packio/shared"
)

const mmapAvailable = false

func mmap(*os.File, int64, int) ([]byte, error) {
	return nil, shared.ErrMmapUnsupported
}

func munmap([]byte) error {
	return nil
}
