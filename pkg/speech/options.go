package speech

import (
	"log/slog"
	"time"
)

type options struct {
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// Option configures an Arbiter or Queue.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers a lifecycle observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithClock overrides the clock used to stamp requests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(component string, opts []Option) options {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("component", component)
	return o
}

func (o options) emit(e Event) {
	if o.observer != nil {
		o.observer(e)
	}
}
