package kvclient

import (
	"time"

	"go.uber.org/zap"

	"github.com/tarantool/go-kvclient/internal/options"
)

// clientOptions contains configuration options for client instances.
type clientOptions struct {
	logger         *zap.Logger
	requestTimeout time.Duration
}

// Option configures a client.
type Option = options.OptionCallback[clientOptions]

func defaultClientOptions() clientOptions {
	return clientOptions{
		logger:         zap.NewNop(),
		requestTimeout: 0,
	}
}

// WithLogger sets the logger used to report dispatched operations.
// A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(opts *clientOptions) {
		if logger == nil {
			logger = zap.NewNop()
		}

		opts.logger = logger
	}
}

// WithRequestTimeout limits every operation by the given timeout.
// A non-positive timeout leaves the caller's context as is.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(opts *clientOptions) {
		opts.requestTimeout = timeout
	}
}
