package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/packio/bitstream"
	"github.com/spacemeshos/packio/config"
	"github.com/spacemeshos/packio/persistence"
	"github.com/spacemeshos/packio/shared"
)

// unpackCmd represents the unpack command.
var unpackCmd = &cobra.Command{
	Use:   "unpack IN [OUT]",
	Short: "Unpack fixed-width bit fields into unsigned integers",
	Long: `Unpack reads the fields of a file written by pack and prints them, one per line,
to OUT or the standard output. The field width is taken from IN.meta unless
--width is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bufferSize, err := cfg.BufferBytes()
		if err != nil {
			return err
		}
		opts := unpackOptions{
			width:      cfg.Width,
			mmap:       cfg.Mmap,
			bufferSize: bufferSize,
		}

		if len(args) == 1 {
			_, err := unpack(cmd.Context(), args[0], cmd.OutOrStdout(), opts, logger)
			return err
		}

		f, err := persistence.CreateAtomic(args[1],
			persistence.WithBufferSize(bufferSize),
			persistence.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		defer f.Abort()

		if _, err := unpack(cmd.Context(), args[0], f, opts, logger); err != nil {
			return err
		}
		return f.Commit()
	},
}

func init() {
	rootCmd.AddCommand(unpackCmd)

	config.SetFlags(unpackCmd.Flags(), config.DefaultConfig(), "width", "mmap")
}

type unpackOptions struct {
	width      uint
	mmap       bool
	bufferSize int
}

// unpack decodes the fields of the packed file in and writes them to out as
// decimal lines. It returns the number of fields decoded.
func unpack(ctx context.Context, in string, out io.Writer, opts unpackOptions, logger *zap.Logger) (uint64, error) {
	meta, err := persistence.LoadMetadata(in)
	switch {
	case errors.Is(err, shared.ErrMetadataFileMissing):
		if opts.width == 0 {
			return 0, fmt.Errorf("no width given and %w", err)
		}
		logger.Debug("no metadata, assuming a finalized stream", zap.String("file", in))
		meta = &shared.StreamMetadata{Width: opts.width, Finalized: true}
	case err != nil:
		return 0, err
	case opts.width != 0 && opts.width != meta.Width:
		return 0, shared.WidthMismatchError{Expected: opts.width, Found: meta.Width, Path: in}
	}
	if meta.Width == 0 || meta.Width > shared.PackWordBits {
		return 0, fmt.Errorf("invalid width %d in metadata of %s", meta.Width, in)
	}

	src, release, err := openSource(in, opts.mmap, opts.bufferSize, logger)
	if err != nil {
		return 0, err
	}
	defer release()

	var r *bitstream.Reader
	if meta.Finalized {
		r, err = bitstream.NewStreamReader(src, bitstream.WithLogger(logger))
		if err != nil {
			return 0, err
		}
	} else {
		r = bitstream.NewUnboundedStreamReader(src, bitstream.WithLogger(logger))
	}

	w := bufio.NewWriterSize(out, opts.bufferSize)
	line := make([]byte, 0, 24)

	var count uint64
	for {
		if meta.Finalized && r.EOF() {
			break
		}
		if !meta.Finalized && count == meta.Count {
			break
		}
		if count%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return count, err
			}
		}

		v, err := r.ReadBits(meta.Width)
		if err != nil {
			return count, fmt.Errorf("failed to read field %d: %w", count, err)
		}
		line = strconv.AppendUint(line[:0], v, 10)
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return count, err
		}
		count++
	}

	if meta.Count != 0 && count != meta.Count {
		logger.Warn("number of fields differs from metadata",
			zap.String("file", in),
			zap.Uint64("expected", meta.Count),
			zap.Uint64("decoded", count),
		)
	}
	logger.Debug("unpacked values", zap.String("file", in), zap.Uint64("count", count))
	return count, w.Flush()
}
