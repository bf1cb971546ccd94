package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(Config{InMemory: true}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, found, err := s.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "brainBrowser", "record"))
	value, found, err := s.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "record", value)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Path: t.TempDir(), SyncWrites: true}

	s, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "brainBrowser", "persisted"))
	require.NoError(t, s.Close())

	reopened, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	value, found, err := reopened.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "persisted", value)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{}, zap.NewNop())
	assert.Error(t, err)
}
