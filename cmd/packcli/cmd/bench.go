package cmd

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spacemeshos/packio/bitstream"
	"github.com/spacemeshos/packio/shared"
)

var (
	benchCount  uint64
	benchWidths []uint
)

// benchCmd represents the bench command.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure packing and unpacking throughput",
	Long: `Bench packs --count random values for each of the given --widths into memory,
unpacks them again and reports the time spent on both.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		header := []string{"width", "values", "size", "pack", "unpack", "pack/s", "unpack/s"}
		data := make([][]string, 0, len(benchWidths))
		for i, width := range benchWidths {
			logger.Sugar().Infof("bench %v/%v starting, width %d", i+1, len(benchWidths), width)

			res, err := benchWidth(cmd.Context(), width, benchCount)
			if err != nil {
				return err
			}
			data = append(data, []string{
				strconv.FormatUint(uint64(width), 10),
				strconv.FormatUint(benchCount, 10),
				bytefmt.ByteSize(res.size),
				res.pack.Round(time.Millisecond).String(),
				res.unpack.Round(time.Millisecond).String(),
				throughput(res.size, res.pack),
				throughput(res.size, res.unpack),
			})
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader(header)
		table.SetBorder(true)
		table.AppendBulk(data)
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().Uint64Var(&benchCount, "count", 1<<20, "Number of values per width")
	benchCmd.Flags().UintSliceVar(&benchWidths, "widths", []uint{1, 7, 8, 13, 32, 57, 64}, "Field widths to measure")
}

type benchResult struct {
	size   uint64
	pack   time.Duration
	unpack time.Duration
}

func benchWidth(ctx context.Context, width uint, count uint64) (*benchResult, error) {
	if width == 0 || width > shared.PackWordBits {
		return nil, fmt.Errorf("invalid width %d", width)
	}

	rng := rand.New(rand.NewSource(int64(width)))
	mask := shared.LowMask(width)
	values := make([]uint64, count)
	for i := range values {
		values[i] = rng.Uint64() & mask
	}

	buf := bytes.NewBuffer(nil)
	t := time.Now()
	_, err := bitstream.Encode(buf, func(s bitstream.BitSink) error {
		for _, v := range values {
			if err := s.WriteBits(v, width); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ePack := time.Since(t)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := uint64(buf.Len())
	t = time.Now()
	r, err := bitstream.NewStreamReader(buf)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); r.Good(); i++ {
		v, err := r.ReadBits(width)
		if err != nil {
			return nil, err
		}
		if v != values[i] {
			return nil, fmt.Errorf("value %d mismatch: packed %d, unpacked %d", i, values[i], v)
		}
	}
	eUnpack := time.Since(t)

	return &benchResult{size: size, pack: ePack, unpack: eUnpack}, nil
}

func throughput(size uint64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return bytefmt.ByteSize(uint64(float64(size)/d.Seconds())) + "/s"
}
