//go:build linux

package persistence

import (
	"os"

	"golang.org/x/sys/unix"
)

func adviseSequential(f *os.File, offset, length int64) error {
	return unix.Fadvise(int(f.Fd()), offset, length, unix.FADV_SEQUENTIAL)
}
