package bitstream

import "go.uber.org/zap"

type option struct {
	finalize bool
	logger   *zap.Logger
}

func defaultOption() *option {
	return &option{
		finalize: true,
		logger:   zap.NewNop(),
	}
}

type OptionFunc func(*option)

// WithoutFinalizer disables the finalizer a Writer appends when closed.
// Streams written this way can only be read back with an unbounded Reader.
func WithoutFinalizer() OptionFunc {
	return func(o *option) {
		o.finalize = false
	}
}

// WithLogger sets the logger of a Writer or Reader.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) {
		o.logger = logger
	}
}

func applyOptions(opts []OptionFunc) *option {
	o := defaultOption()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
