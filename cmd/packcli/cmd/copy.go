package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/packio/config"
	"github.com/spacemeshos/packio/persistence"
)

// copyCmd represents the copy command.
var copyCmd = &cobra.Command{
	Use:   "copy IN OUT",
	Short: "Copy a file through the buffered or memory mapped streams",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bufferSize, err := cfg.BufferBytes()
		if err != nil {
			return err
		}
		n, err := copyFile(args[0], args[1], cfg.Mmap, bufferSize, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %d bytes to %s\n", n, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)

	config.SetFlags(copyCmd.Flags(), config.DefaultConfig(), "mmap")
}

func copyFile(in, out string, useMmap bool, bufferSize int, logger *zap.Logger) (int64, error) {
	info, err := os.Stat(in)
	if err != nil {
		return 0, err
	}
	if err := ensureSpace(out, uint64(info.Size())); err != nil {
		return 0, err
	}

	src, release, err := openSource(in, useMmap, bufferSize, logger)
	if err != nil {
		return 0, err
	}
	defer release()

	f, err := persistence.CreateAtomic(out,
		persistence.WithBufferSize(bufferSize),
		persistence.WithLogger(logger),
	)
	if err != nil {
		return 0, err
	}
	defer f.Abort()

	n, err := io.Copy(f, src)
	if err != nil {
		return n, fmt.Errorf("failed to copy %s: %w", in, err)
	}
	if err := f.Commit(); err != nil {
		return n, err
	}
	return n, nil
}
