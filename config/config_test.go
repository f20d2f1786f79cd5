package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/packio/config"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	cfg := config.DefaultConfig()
	req.NoError(cfg.Validate())

	n, err := cfg.BufferBytes()
	req.NoError(err)
	req.Equal(16<<10, n)

	lvl, err := cfg.Level()
	req.NoError(err)
	req.Equal(zapcore.InfoLevel, lvl)
}

func TestValidate_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(cfg *config.Config)
	}{
		{"buffer size without unit", func(cfg *config.Config) { cfg.BufferSize = "abc" }},
		{"buffer size too small", func(cfg *config.Config) { cfg.BufferSize = "32B" }},
		{"buffer size too large", func(cfg *config.Config) { cfg.BufferSize = "2G" }},
		{"invalid block size", func(cfg *config.Config) { cfg.BlockSize = "-1M" }},
		{"overlap exceeds block", func(cfg *config.Config) { cfg.BlockSize = "1K"; cfg.Overlap = 1025 }},
		{"width too large", func(cfg *config.Config) { cfg.Width = 65 }},
		{"unknown log level", func(cfg *config.Config) { cfg.LogLevel = "verbose" }},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultConfig()
			tc.modify(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	req := require.New(t)

	file := filepath.Join(t.TempDir(), "config.toml")
	req.NoError(os.WriteFile(file, []byte(`
buffer-size = "1M"
width = 12
overlap = 7
`), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.SetFlags(flags, config.DefaultConfig(), "buffer-size", "width", "overlap", "log-level")
	req.NoError(flags.Parse([]string{"--width", "20", "--log-level", "debug"}))

	cfg, err := config.Load(flags, file)
	req.NoError(err)

	// Flags take precedence over the file, which takes precedence over defaults.
	req.Equal(uint(20), cfg.Width)
	req.Equal("debug", cfg.LogLevel)
	req.Equal("1M", cfg.BufferSize)
	req.Equal(uint(7), cfg.Overlap)
	req.Equal(config.DefaultBlockSize, cfg.BlockSize)
	req.True(cfg.Finalize)
	req.NoError(cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	req := require.New(t)

	_, err := config.Load(nil, filepath.Join(t.TempDir(), "missing.toml"))
	req.Error(err)

	// Without an explicit file, the defaults apply.
	cfg, err := config.Load(nil, "")
	req.NoError(err)
	req.Equal(config.DefaultBufferSize, cfg.BufferSize)
}

func TestSetFlags_UnknownKey(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.Panics(t, func() { config.SetFlags(flags, config.DefaultConfig(), "nope") })
}

func TestDeriveLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		width    uint
		count    uint64
		finalize bool
		words    uint64
	}{
		{"empty", 8, 0, true, 0},
		{"single word payload", 1, 57, true, 1},
		{"finalizer in its own word", 1, 58, true, 2},
		{"full word", 64, 1, true, 2},
		{"full word and a bit", 1, 65, true, 2},
		{"without finalizer", 64, 1, false, 1},
		{"partial word without finalizer", 3, 3, false, 1},
		{"many words", 37, 1000, true, 579},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			layout, err := config.DeriveLayout(tc.width, tc.count, tc.finalize)
			require.NoError(t, err)
			require.Equal(t, uint64(tc.width)*tc.count, layout.Bits)
			require.Equal(t, tc.words, layout.Words)
			require.Equal(t, tc.words*8, layout.Bytes)
		})
	}

	_, err := config.DeriveLayout(64, 1<<60, true)
	require.Error(t, err)
}
