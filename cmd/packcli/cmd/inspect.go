package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/packio/bitstream"
	"github.com/spacemeshos/packio/persistence"
	"github.com/spacemeshos/packio/shared"
	"github.com/spacemeshos/packio/wordio"
)

// inspectCmd represents the inspect command.
var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Print the layout of packed files",
	Long: `Inspect reports the size, number of words, finalizer and payload bits of each
packed file, along with the field width and count recorded in its metadata.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := inspectFiles(cmd.Context(), args, logger)
		if err != nil {
			return err
		}
		renderReports(cmd.OutOrStdout(), reports)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

type fileReport struct {
	Path      string
	Size      uint64
	Words     uint64
	Finalizer uint
	Bits      uint64
	Meta      *shared.StreamMetadata
}

// inspectFiles inspects all files concurrently. Reports are returned in the order of paths.
func inspectFiles(ctx context.Context, paths []string, logger *zap.Logger) ([]*fileReport, error) {
	reports := make([]*fileReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := inspectFile(path, logger)
			if err != nil {
				return fmt.Errorf("failed to inspect %s: %w", path, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func inspectFile(path string, logger *zap.Logger) (*fileReport, error) {
	r, err := persistence.NewFileReader(path, persistence.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	size := r.Size()
	if size%shared.PackWordBytes != 0 {
		return nil, fmt.Errorf("size %d is not a multiple of %d bytes", size, shared.PackWordBytes)
	}
	report := &fileReport{
		Path:  path,
		Size:  uint64(size),
		Words: uint64(size / shared.PackWordBytes),
	}

	meta, err := persistence.LoadMetadata(path)
	switch {
	case errors.Is(err, shared.ErrMetadataFileMissing):
	case err != nil:
		return nil, err
	default:
		report.Meta = meta
	}

	if report.Words == 0 {
		return report, nil
	}
	if meta != nil && !meta.Finalized {
		report.Bits = meta.Bits
		return report, nil
	}

	if _, err := r.Seek(-shared.PackWordBytes, io.SeekEnd); err != nil {
		return nil, err
	}
	last, err := wordio.NewReader(r).ReadWord()
	if err != nil {
		return nil, fmt.Errorf("failed to read last word: %w", err)
	}
	report.Finalizer = bitstream.DecodeFinalizer(last)
	report.Bits, err = bitstream.StreamBits(report.Words, last)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func renderReports(w io.Writer, reports []*fileReport) {
	data := make([][]string, 0, len(reports))
	for _, r := range reports {
		width, count, finalizer := "-", "-", "-"
		if r.Meta != nil {
			width = strconv.FormatUint(uint64(r.Meta.Width), 10)
			count = strconv.FormatUint(r.Meta.Count, 10)
		}
		if r.Words > 0 && (r.Meta == nil || r.Meta.Finalized) {
			finalizer = strconv.FormatUint(uint64(r.Finalizer), 10)
		}
		data = append(data, []string{
			r.Path,
			bytefmt.ByteSize(r.Size),
			strconv.FormatUint(r.Words, 10),
			finalizer,
			strconv.FormatUint(r.Bits, 10),
			width,
			count,
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"file", "size", "words", "finalizer", "bits", "width", "count"})
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()
}
