package engine

import (
	"go.uber.org/zap"

	"github.com/dashgen-org/dashgen/config"
	"github.com/dashgen-org/dashgen/dataset"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Build()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*settings)

type settings struct {
	Format dataset.Format // explicit decoder, FormatAuto sniffs
	Policy config.Policy  // auto-configuration thresholds
	Values Values         // user-supplied filter state
	Logger *zap.Logger
}

// WithFormat forces a specific data decoder instead of format sniffing.
func WithFormat(f dataset.Format) Option {
	return func(s *settings) {
		s.Format = f
	}
}

// WithPolicy overrides the default auto-configuration policy.
func WithPolicy(p config.Policy) Option {
	return func(s *settings) {
		s.Policy = p
	}
}

// WithValues supplies filter state, keyed by filter column.
func WithValues(v Values) Option {
	return func(s *settings) {
		s.Values = v
	}
}

// WithLogger attaches a structured logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		s.Logger = l
	}
}

// applySettings creates settings from functional options.
func applySettings(opts []Option) *settings {
	s := &settings{
		Format: dataset.FormatAuto,
		Policy: config.DefaultPolicy(),
		Values: Values{},
		Logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
