package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, found, err := s.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "brainBrowser", "first"))
	require.NoError(t, s.Set(ctx, "brainBrowser", "second"))

	value, found, err := s.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", value)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "brainBrowser", `{"lastNeuronId":7}`))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	value, found, err := reopened.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"lastNeuronId":7}`, value)
}
