package request

import (
	"github.com/kbukum/reqkit/logger"
	"github.com/kbukum/reqkit/observability"
)

// Option configures a Dispatcher or Client.
type Option func(*Dispatcher)

// WithName sets the client name reported in logs, spans and metrics.
func WithName(name string) Option {
	return func(d *Dispatcher) { d.name = name }
}

// WithLogger sets the dispatch logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics enables dispatch metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}
