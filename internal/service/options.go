package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxUploadSize   = 10 << 20
	DefaultUpstreamTimeout = 5 * time.Second
	DefaultPageLimit       = 10
	MaxPageLimit           = 100
	grantConcurrency       = 8
)

type settings struct {
	maxSize int64
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// Option customizes a service.
type Option func(*settings)

// WithMaxUploadSize bounds accepted uploads in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithUpstreamTimeout bounds every storage and persistence call.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func newSettings(opts []Option) settings {
	s := settings{
		maxSize: DefaultMaxUploadSize,
		timeout: DefaultUpstreamTimeout,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}
