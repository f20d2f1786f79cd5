package persistence

import (
	"os"

	"github.com/ricochet2200/go-disk-usage/du"
	"golang.org/x/term"
)

// StdinIsPipe reports whether the standard input is not attached to a terminal.
func StdinIsPipe() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// AvailableSpace returns the number of bytes available to the user on the
// volume holding path.
func AvailableSpace(path string) uint64 {
	usage := du.NewDiskUsage(path)
	return usage.Available()
}
