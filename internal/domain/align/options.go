package align

import "github.com/okian/formcast/pkg/logger"

// Option applies a configuration option to the Aligner.
type Option func(*Aligner)

// WithLabelScope sets where labels stop.
func WithLabelScope(scope LabelScope) Option {
	return func(a *Aligner) { a.scope = scope }
}

// WithJoinMode sets how the opponent row is located.
func WithJoinMode(mode JoinMode) Option {
	return func(a *Aligner) { a.mode = mode }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aligner) {
		if l != nil {
			a.logger = l
		}
	}
}
