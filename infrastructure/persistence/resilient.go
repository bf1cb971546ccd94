// Package persistence wraps the key-value backends with a circuit breaker
// so a failing store degrades to fast rejections.
package persistence

import (
	"context"
	"errors"
	"time"

	"brainbrowser/application/ports"
	pkgerrors "brainbrowser/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold and MinRequests decide when the breaker trips
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the default breaker configuration
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// ResilientStore guards a KeyValueStore with a circuit breaker
type ResilientStore struct {
	next   ports.KeyValueStore
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
}

type getResult struct {
	value string
	found bool
}

// NewResilientStore wraps next
func NewResilientStore(next ports.KeyValueStore, cfg BreakerConfig, logger *zap.Logger) *ResilientStore {
	s := &ResilientStore{next: next, name: cfg.Name, logger: logger}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about store health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return s
}

// Get reads key through the breaker
func (s *ResilientStore) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.cb.Execute(func() (any, error) {
		value, found, err := s.next.Get(ctx, key)
		return getResult{value: value, found: found}, err
	})
	if err != nil {
		return "", false, s.translate("get", err)
	}
	res := out.(getResult)
	return res.value, res.found, nil
}

// Set writes key through the breaker
func (s *ResilientStore) Set(ctx context.Context, key, value string) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.next.Set(ctx, key, value)
	})
	if err != nil {
		return s.translate("set", err)
	}
	return nil
}

// State reports the breaker state for health checks
func (s *ResilientStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *ResilientStore) translate(op string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.logger.Debug("Store call rejected by circuit breaker", zap.String("op", op), zap.Error(err))
		return pkgerrors.NewUnavailableError(s.name).WithCause(err)
	case pkgerrors.IsAppError(err):
		return err
	default:
		return pkgerrors.NewStorageError(op, err)
	}
}
