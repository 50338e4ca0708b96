package backtest

import "github.com/okian/formcast/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithParallelism bounds the number of iterations fitted at once.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
