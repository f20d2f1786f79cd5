package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/packio/bitstream"
	"github.com/spacemeshos/packio/config"
	"github.com/spacemeshos/packio/persistence"
	"github.com/spacemeshos/packio/shared"
)

var noFinalize bool

// packCmd represents the pack command.
var packCmd = &cobra.Command{
	Use:   "pack [IN] OUT",
	Short: "Pack unsigned integers into fixed-width bit fields",
	Long: `Pack reads unsigned integers, one per line, from IN and writes each of them
as a field of --width bits to OUT. IN may be "-" or omitted to read from a pipe.
The layout is recorded in OUT.meta, which unpack uses by default.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := "-", args[0]
		if len(args) == 2 {
			in, out = args[0], args[1]
		}

		var src io.Reader
		switch {
		case in != "-":
			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()
			src = f
		case persistence.StdinIsPipe():
			src = os.Stdin
		default:
			return errors.New("no input: pass IN or pipe values to the standard input")
		}

		values, err := readValues(cmd.Context(), src)
		if err != nil {
			return err
		}

		bufferSize, err := cfg.BufferBytes()
		if err != nil {
			return err
		}
		meta, err := pack(cmd.Context(), values, out, packOptions{
			width:      cfg.Width,
			finalize:   cfg.Finalize && !noFinalize,
			bufferSize: bufferSize,
		}, logger)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "packed %d values of %d bits (%d bits) to %s\n", meta.Count, meta.Width, meta.Bits, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packCmd)

	config.SetFlags(packCmd.Flags(), config.DefaultConfig(), "width")
	packCmd.Flags().BoolVar(&noFinalize, "no-finalize", false, "Do not terminate the output with a finalizer")
}

// readValues parses unsigned decimal integers, one per line. Blank lines are skipped.
func readValues(ctx context.Context, r io.Reader) ([]uint64, error) {
	scanner := bufio.NewScanner(r)

	var values []uint64
	line := 0
	for scanner.Scan() {
		line++
		if line%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value on line %d: %w", line, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	return values, nil
}

type packOptions struct {
	width      uint
	finalize   bool
	bufferSize int
}

// pack writes values as fields of opts.width bits to out, along with its
// metadata. A zero width selects the minimal width of the largest value.
func pack(ctx context.Context, values []uint64, out string, opts packOptions, logger *zap.Logger) (*shared.StreamMetadata, error) {
	width := opts.width
	if width == 0 {
		var largest uint64
		for _, v := range values {
			if v > largest {
				largest = v
			}
		}
		width = shared.NumBits(largest)
	}
	if width > shared.PackWordBits {
		return nil, fmt.Errorf("invalid width %d", width)
	}

	layout, err := config.DeriveLayout(width, uint64(len(values)), opts.finalize)
	if err != nil {
		return nil, err
	}
	if err := ensureSpace(out, layout.Bytes); err != nil {
		return nil, err
	}

	f, err := persistence.CreateAtomic(out,
		persistence.WithBufferSize(opts.bufferSize),
		persistence.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	defer f.Abort()

	bitOpts := []bitstream.OptionFunc{bitstream.WithLogger(logger)}
	if !opts.finalize {
		bitOpts = append(bitOpts, bitstream.WithoutFinalizer())
	}

	mask := shared.LowMask(width)
	n, err := bitstream.Encode(f, func(s bitstream.BitSink) error {
		for i, v := range values {
			if i%checkInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if v&^mask != 0 {
				return fmt.Errorf("value %d at index %d does not fit into %d bits", v, i, width)
			}
			if err := s.WriteBits(v, width); err != nil {
				return err
			}
		}
		return nil
	}, bitOpts...)
	if err != nil {
		return nil, err
	}
	if err := f.Commit(); err != nil {
		return nil, err
	}

	meta := &shared.StreamMetadata{
		Width:     width,
		Count:     uint64(len(values)),
		Bits:      n,
		Finalized: opts.finalize,
	}
	if err := persistence.SaveMetadata(out, meta); err != nil {
		return nil, err
	}

	logger.Info("packed values",
		zap.String("file", out),
		zap.Uint("width", width),
		zap.Int("count", len(values)),
		zap.Uint64("bits", n),
		zap.Uint64("words", layout.Words),
	)
	return meta, nil
}
