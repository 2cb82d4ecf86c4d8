package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-qform/components/valuesets"
)

const (
	defaultRequestsPerWindow = 100
	defaultRateWindow        = time.Second
	defaultMaxBodyBytes      = 1 << 20
)

// Option customises a Server.
type Option func(*Server)

// WithLogger routes request and session logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit caps requests per client IP; a non-positive limit disables
// limiting.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Server) {
		s.rateLimit = limit
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithAllowedOrigins enables CORS for the listed origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append(s.origins, origins...)
	}
}

// WithValueSets mounts the option search component. Pass nil to disable it.
func WithValueSets(component *valuesets.Component) Option {
	return func(s *Server) {
		s.valuesets = component
		s.valuesetsSet = true
	}
}

// WithMaxBodyBytes bounds posted form bodies.
func WithMaxBodyBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxBody = limit
		}
	}
}
