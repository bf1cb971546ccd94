package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"brainbrowser/infrastructure/persistence/memory"
	pkgerrors "brainbrowser/pkg/errors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Get(context.Context, string) (string, bool, error) {
	f.calls++
	return "", false, f.err
}

func (f *flakyStore) Set(context.Context, string, string) error {
	f.calls++
	return f.err
}

func TestResilientStore_PassesThrough(t *testing.T) {
	ctx := context.Background()
	s := NewResilientStore(memory.NewStore(), DefaultBreakerConfig("session-store"), zap.NewNop())

	require.NoError(t, s.Set(ctx, "brainBrowser", "{}"))
	value, found, err := s.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "{}", value)

	_, found, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResilientStore_TripsAfterFailures(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{err: errors.New("disk full")}
	cfg := DefaultBreakerConfig("session-store")
	cfg.Timeout = time.Hour
	s := NewResilientStore(flaky, cfg, zap.NewNop())

	for i := 0; i < int(cfg.MinRequests); i++ {
		err := s.Set(ctx, "brainBrowser", "{}")
		assert.True(t, pkgerrors.IsStorage(err))
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())

	err := s.Set(ctx, "brainBrowser", "{}")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int(cfg.MinRequests), flaky.calls, "open breaker skips the store")
}

func TestResilientStore_CancellationDoesNotTrip(t *testing.T) {
	flaky := &flakyStore{err: context.Canceled}
	s := NewResilientStore(flaky, DefaultBreakerConfig("session-store"), zap.NewNop())

	for i := 0; i < 10; i++ {
		_, _, _ = s.Get(context.Background(), "brainBrowser")
	}
	assert.Equal(t, gobreaker.StateClosed, s.State())
}
