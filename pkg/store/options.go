package store

import (
	"github.com/sirupsen/logrus"
)

type options struct {
	logger  logrus.FieldLogger
	policy  MalformedBlockPolicy
	retries int
}

func defaultOptions() options {
	return options{
		logger:  logrus.StandardLogger(),
		policy:  DefaultMalformedBlockPolicy,
		retries: 0,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures loaders, writers and Open.
type Option func(*options)

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMalformedBlockPolicy overrides DefaultMalformedBlockPolicy.
func WithMalformedBlockPolicy(p MalformedBlockPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithRetries sets how many extra full load attempts Open makes after a
// medium error.
func WithRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.retries = n
		}
	}
}
