package config

import (
	"fmt"
	"path/filepath"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spacemeshos/smutil"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/packio/shared"
)

const (
	MinBufferSize = 64
	MaxBufferSize = 1 << 30

	MaxBlockSize = 1 << 30

	MaxWidth = shared.PackWordBits
)

const (
	DefaultConfigFileName = "config.toml"

	DefaultBufferSize = "16K"
	DefaultBlockSize  = "1M"
	DefaultOverlap    = 0
	DefaultLogLevel   = "info"

	// Zero means the minimal width of the largest value.
	DefaultWidth = 0
)

var (
	DefaultHomeDir    = filepath.Join(smutil.GetUserHomeDirectory(), "packio")
	DefaultConfigFile = filepath.Join(DefaultHomeDir, DefaultConfigFileName)
)

type Config struct {
	BufferSize string `mapstructure:"buffer-size"`
	Finalize   bool   `mapstructure:"finalize"`
	LogLevel   string `mapstructure:"log-level"`

	BlockSize string `mapstructure:"block-size"`
	Overlap   uint   `mapstructure:"overlap"`

	Mmap  bool `mapstructure:"mmap"`
	Width uint `mapstructure:"width"`
}

func DefaultConfig() *Config {
	return &Config{
		BufferSize: DefaultBufferSize,
		Finalize:   true,
		LogLevel:   DefaultLogLevel,
		BlockSize:  DefaultBlockSize,
		Overlap:    DefaultOverlap,
		Width:      DefaultWidth,
	}
}

// BufferBytes returns the buffer size in bytes.
func (cfg *Config) BufferBytes() (int, error) {
	n, err := bytefmt.ToBytes(cfg.BufferSize)
	if err != nil {
		return 0, fmt.Errorf("invalid `BufferSize` %q: %w", cfg.BufferSize, err)
	}
	return int(n), nil
}

// BlockBytes returns the block size in bytes.
func (cfg *Config) BlockBytes() (int, error) {
	n, err := bytefmt.ToBytes(cfg.BlockSize)
	if err != nil {
		return 0, fmt.Errorf("invalid `BlockSize` %q: %w", cfg.BlockSize, err)
	}
	return int(n), nil
}

func (cfg *Config) Level() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return lvl, fmt.Errorf("invalid `LogLevel` %q: %w", cfg.LogLevel, err)
	}
	return lvl, nil
}

func (cfg *Config) Validate() error {
	bufferSize, err := cfg.BufferBytes()
	if err != nil {
		return err
	}
	if bufferSize < MinBufferSize {
		return fmt.Errorf("invalid `BufferSize`; expected: >= %d, given: %d", MinBufferSize, bufferSize)
	}
	if bufferSize > MaxBufferSize {
		return fmt.Errorf("invalid `BufferSize`; expected: <= %d, given: %d", MaxBufferSize, bufferSize)
	}

	blockSize, err := cfg.BlockBytes()
	if err != nil {
		return err
	}
	if blockSize > MaxBlockSize {
		return fmt.Errorf("invalid `BlockSize`; expected: <= %d, given: %d", MaxBlockSize, blockSize)
	}
	if uint64(cfg.Overlap) > uint64(blockSize) {
		return fmt.Errorf("invalid `Overlap`; expected: <= `BlockSize` (%d), given: %d", blockSize, cfg.Overlap)
	}

	if cfg.Width > MaxWidth {
		return fmt.Errorf("invalid `Width`; expected: <= %d, given: %d", MaxWidth, cfg.Width)
	}

	if _, err := cfg.Level(); err != nil {
		return err
	}

	return nil
}

// Load reads the configuration file at fileLocation, if present, and
// overrides its values with the flags explicitly set in flags.
// A missing default configuration file is not an error.
func Load(flags *pflag.FlagSet, fileLocation string) (*Config, error) {
	vip := viper.New()
	if fileLocation != "" {
		fileLocation = smutil.GetCanonicalPath(fileLocation)
	}
	if err := loadConfigFile(fileLocation, vip); err != nil {
		return nil, err
	}
	if flags != nil {
		if err := vip.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := vip.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(fileLocation string, vip *viper.Viper) error {
	explicit := fileLocation != "" && fileLocation != DefaultConfigFile
	if !explicit {
		fileLocation = DefaultConfigFile
	}

	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		if !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// SetFlags registers the flags of the configuration fields named in keys,
// using the values of cfg as defaults.
func SetFlags(flags *pflag.FlagSet, cfg *Config, keys ...string) {
	for _, key := range keys {
		switch key {
		case "buffer-size":
			flags.String(key, cfg.BufferSize, "Size of the I/O buffers, with a unit (e.g. 16K, 1M)")
		case "finalize":
			flags.Bool(key, cfg.Finalize, "Terminate packed streams with a finalizer")
		case "log-level":
			flags.String(key, cfg.LogLevel, "Log level (debug, info, warn, error)")
		case "block-size":
			flags.String(key, cfg.BlockSize, "Size of a block, with a unit (e.g. 4K, 1M)")
		case "overlap":
			flags.Uint(key, cfg.Overlap, "Number of bytes of the previous block kept with each block")
		case "mmap":
			flags.Bool(key, cfg.Mmap, "Read input through a memory mapping")
		case "width":
			flags.Uint(key, cfg.Width, "Width of a field in bits, 0 for the minimal width of the largest value")
		default:
			panic(fmt.Sprintf("unknown config key %q", key))
		}
	}
}
