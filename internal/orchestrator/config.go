package orchestrator

import "go.uber.org/zap"

// Defaults applied when the graph or the reasoner leave a field unset.
const (
	DefaultObjectType    = "object"
	UnknownCulture       = "Unknown"
	UnknownTarget        = "Unknown"
	DefaultRationale     = "No rationale provided."
	PreservedByDefault   = "Preserved by default."
	DefaultConcurrency   = 1
	MaxConcurrency       = 64
	defaultConfidenceVal = 0.0
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConcurrency bounds how many objects are analyzed at once. Values below
// 1 mean sequential; values above MaxConcurrency are capped.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		switch {
		case n < 1:
			e.concurrency = 1
		case n > MaxConcurrency:
			e.concurrency = MaxConcurrency
		default:
			e.concurrency = n
		}
	}
}

// WithProgress registers a callback for per-object progress. With
// concurrency above 1 it is called from several goroutines at once.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(e *Engine) {
		e.onProgress = fn
	}
}
