package pools

import (
	"github.com/dd0wney/cluso-pool/pkg/logging"
	"github.com/dd0wney/cluso-pool/pkg/metrics"
)

// Option configures a Pool at construction.
type Option func(*options)

type options struct {
	name    string
	logger  logging.Logger
	metrics *metrics.Registry
}

func defaultOptions() options {
	return options{
		name:   "default",
		logger: logging.NewNopLogger(),
	}
}

// WithName sets the name used in logs and as the metrics "pool" label.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger. Growth, reduction and teardown are logged at
// debug level; acquire and release are never logged.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records pool activity into registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(o *options) {
		o.metrics = registry
	}
}
