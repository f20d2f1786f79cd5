package cmd

import (
	"context"
	"encoding/hex"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/packio/config"
	"github.com/spacemeshos/packio/persistence"
)

// blocksCmd represents the blocks command.
var blocksCmd = &cobra.Command{
	Use:   "blocks FILE",
	Short: "Print the blocks a file is processed in",
	Long: `Blocks splits FILE into blocks of --block-size bytes, each of which keeps the
last --overlap bytes of its predecessor, and prints their offsets and sizes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blockSize, err := cfg.BlockBytes()
		if err != nil {
			return err
		}
		bufferSize, err := cfg.BufferBytes()
		if err != nil {
			return err
		}

		rows, err := scanBlocks(cmd.Context(), args[0], blockSize, int(cfg.Overlap), bufferSize, logger)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"block", "offset", "size", "overlap"})
		table.SetBorder(true)
		table.AppendBulk(rows)
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blocksCmd)

	config.SetFlags(blocksCmd.Flags(), config.DefaultConfig(), "block-size", "overlap")
}

// scanBlocks returns one row per block of the file: index, offset, size and
// the overlap region in hex.
func scanBlocks(ctx context.Context, path string, blockSize, overlap, bufferSize int, logger *zap.Logger) ([][]string, error) {
	r, err := persistence.NewFileReader(path,
		persistence.WithBufferSize(bufferSize),
		persistence.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	b, err := persistence.NewBlocks(r, blockSize, overlap)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.FormatInt(b.Offset(), 10),
			bytefmt.ByteSize(uint64(b.Len())),
			hex.EncodeToString(b.WithOverlap()[:b.Overlap()]),
		})

		ok, err := b.Advance()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}
	return rows, nil
}
