//go:build linux || darwin || freebsd || netbsd || openbsd

package persistence

import (
	"os"

	"golang.org/x/sys/unix"
)

const mmapAvailable = true

func mmap(f *os.File, offset int64, length int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), offset, length, unix.PROT_READ, unix.MAP_PRIVATE)
}

func munmap(b []byte) error {
	return unix.Munmap(b)
}
