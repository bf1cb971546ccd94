package di

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"brainbrowser/application/dto"
	"brainbrowser/application/services"
	"brainbrowser/infrastructure/config"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Environment = "test"
	cfg.LogLevel = "error"
	cfg.Store.Backend = backend
	if backend != config.BackendMemory {
		cfg.Store.Path = t.TempDir()
		if backend == config.BackendSQLite {
			cfg.Store.Path += "/session.db"
		}
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func graphOf(t *testing.T, router http.Handler) dto.GraphView {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/graph", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data dto.GraphView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestInitializeContainer_CommandsInvalidateCachedQueries(t *testing.T) {
	ctx := context.Background()
	container, cleanup, err := InitializeContainer(ctx, testConfig(t, config.BackendMemory))
	require.NoError(t, err)
	defer cleanup()
	require.NoError(t, container.Session.Start(ctx))

	assert.Len(t, graphOf(t, container.Router).Neurons, 1)
	assert.Equal(t, 1, container.Cache.Len())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/navigate", bytes.NewBufferString(`{"pageId":"about"}`))
	container.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	graph := graphOf(t, container.Router)
	assert.Len(t, graph.Neurons, 2)
	assert.Len(t, graph.Synapses, 1)
}

func TestInitializeContainer_PersistentBackends(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, backend)

			container, cleanup, err := InitializeContainer(ctx, cfg)
			require.NoError(t, err)
			require.NoError(t, container.Session.Start(ctx))
			_, err = container.Session.Navigate(ctx, services.NavigateRequest{PageID: "about", CreateSynapse: true})
			require.NoError(t, err)
			cleanup()

			restored, cleanup, err := InitializeContainer(ctx, cfg)
			require.NoError(t, err)
			defer cleanup()
			require.NoError(t, restored.Session.Start(ctx))
			stats := restored.Session.Stats()
			assert.Equal(t, 2, stats.NeuronCount)
			assert.Equal(t, 1, stats.SynapseCount)
		})
	}
}

func TestProvideStoreBackend_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "redis"
	_, _, err := ProvideStoreBackend(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
