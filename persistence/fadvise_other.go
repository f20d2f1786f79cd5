//go:build !linux

package persistence

import "os"

func adviseSequential(*os.File, int64, int64) error {
	return nil
}
