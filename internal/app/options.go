package app

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/weibeld/github-projects-dashboard/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	bus         *events.Bus
	logger      *slog.Logger
	now         func() time.Time
	newBackOff  func() backoff.BackOff
	concurrency int
}

func defaultConfig() appConfig {
	return appConfig{
		logger: slog.Default(),
		now:    time.Now,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxElapsedTime = 15 * time.Second
			return b
		},
	}
}

// WithEventBus sets the bus cache changes are published on
func WithEventBus(bus *events.Bus) Option {
	return func(cfg *appConfig) {
		cfg.bus = bus
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithClock sets the time source used for relative filter dates
func WithClock(now func() time.Time) Option {
	return func(cfg *appConfig) {
		cfg.now = now
	}
}

// WithBackOff sets the retry policy of Load
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(cfg *appConfig) {
		cfg.newBackOff = fn
	}
}

// WithReconcileConcurrency bounds concurrent reconciliation writes
func WithReconcileConcurrency(n int) Option {
	return func(cfg *appConfig) {
		cfg.concurrency = n
	}
}
