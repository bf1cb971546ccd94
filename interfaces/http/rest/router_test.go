package rest

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"brainbrowser/application/commands/bus"
	commandhandlers "brainbrowser/application/commands/handlers"
	"brainbrowser/application/dto"
	querybus "brainbrowser/application/queries/bus"
	queryhandlers "brainbrowser/application/queries/handlers"
	"brainbrowser/application/services"
	"brainbrowser/application/session"
	"brainbrowser/infrastructure/catalog"
	"brainbrowser/infrastructure/observability"
	"brainbrowser/infrastructure/persistence/memory"
	pkgerrors "brainbrowser/pkg/errors"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool                 `json:"success"`
	Data    json.RawMessage      `json:"data"`
	Error   *pkgerrors.ErrorBody `json:"error"`
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func (c apiClient) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func newTestAPI(t *testing.T, opts RouterOptions) apiClient {
	t.Helper()
	s, err := session.New(session.Options{
		Catalog: catalog.MustDefault(),
		Store:   memory.NewStore(),
		Rand:    rand.New(rand.NewPCG(1, 2)),
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	commandBus := bus.NewCommandBus()
	require.NoError(t, commandhandlers.NewSessionHandlers(s, zap.NewNop()).Register(commandBus))
	queryBus := querybus.NewQueryBus()
	require.NoError(t, queryhandlers.NewSessionQueries(s).Register(queryBus))

	return apiClient{t: t, handler: NewRouter(commandBus, queryBus, opts, zap.NewNop()).Setup()}
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t, RouterOptions{})
	rec, env := api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = api.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := newTestAPI(t, RouterOptions{Ready: func(context.Context) error { return errors.New("graph invariant broken") }})
	rec, env = failing.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(pkgerrors.ErrorTypeUnavailable), env.Error.Type)
}

func TestNavigateAndReadGraph(t *testing.T) {
	api := newTestAPI(t, RouterOptions{})

	rec, env := api.do(http.MethodPost, "/api/v1/navigate", map[string]interface{}{"pageId": "about"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var nav services.NavigateResult
	require.NoError(t, json.Unmarshal(env.Data, &nav))
	assert.True(t, nav.NeuronCreated)
	assert.True(t, nav.SynapseAdded)

	rec, env = api.do(http.MethodGet, "/api/v1/graph", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var graph dto.GraphView
	require.NoError(t, json.Unmarshal(env.Data, &graph))
	assert.Len(t, graph.Neurons, 2)
	assert.Len(t, graph.Synapses, 1)

	rec, env = api.do(http.MethodGet, "/api/v1/tabs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tabs dto.TabsView
	require.NoError(t, json.Unmarshal(env.Data, &tabs))
	require.Len(t, tabs.Tabs, 1)
	assert.Equal(t, "about", string(tabs.Tabs[0].PageID))
}

func TestTabAndNeuronRoutes(t *testing.T) {
	api := newTestAPI(t, RouterOptions{})

	rec, _ := api.do(http.MethodPost, "/api/v1/tabs", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = api.do(http.MethodPost, "/api/v1/tabs/tab-1/activate", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = api.do(http.MethodPut, "/api/v1/neurons/neuron-1/position", map[string]float64{"x": 20, "y": 30})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = api.do(http.MethodPost, "/api/v1/neurons/neuron-1/focus", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(http.MethodDelete, "/api/v1/tabs/2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = api.do(http.MethodDelete, "/api/v1/neurons/neuron-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env := api.do(http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats dto.StatsView
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Zero(t, stats.NeuronCount)
	assert.Zero(t, stats.TabCount)
}

func TestErrorMapping(t *testing.T) {
	api := newTestAPI(t, RouterOptions{})

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"bad neuron id", http.MethodPost, "/api/v1/neurons/abc/focus", nil, http.StatusBadRequest},
		{"unknown neuron", http.MethodPost, "/api/v1/neurons/neuron-99/focus", nil, http.StatusNotFound},
		{"unknown tab", http.MethodDelete, "/api/v1/tabs/tab-42", nil, http.StatusNotFound},
		{"missing page id", http.MethodPost, "/api/v1/navigate", map[string]string{}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/view/zoom", map[string]float64{"zoom": 1}, http.StatusBadRequest},
		{"position out of range", http.MethodPut, "/api/v1/neurons/neuron-1/position", map[string]float64{"x": 120, "y": 0}, http.StatusBadRequest},
		{"invalid config", http.MethodPut, "/api/v1/config", map[string]interface{}{"patch": map[string]int{"neuronSize": 500}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := api.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.False(t, env.Success)
			assert.NotNil(t, env.Error)
		})
	}
}

func TestViewAndConfigRoutes(t *testing.T) {
	api := newTestAPI(t, RouterOptions{})

	rec, _ := api.do(http.MethodPost, "/api/v1/view/zoom", map[string]float64{"delta": 0.5})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(http.MethodPost, "/api/v1/view/pan", map[string]interface{}{"x": 10, "y": 5, "animate": true})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(http.MethodGet, "/api/v1/view", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(http.MethodPost, "/api/v1/view/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(http.MethodPost, "/api/v1/minimap/click", map[string]float64{"px": 0.5, "py": 0.5})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(http.MethodGet, "/api/v1/minimap", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := api.do(http.MethodPut, "/api/v1/config", map[string]interface{}{"patch": map[string]int{"neuronSize": 40}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result commandhandlers.ConfigResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 40, result.Config.NeuronSize)
	assert.NotEmpty(t, result.Effects)

	rec, _ = api.do(http.MethodPost, "/api/v1/performance/frame-rate", map[string]float64{"fps": 60})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	collector := observability.NewCollector("brainbrowser")
	api := newTestAPI(t, RouterOptions{Metrics: collector})

	api.do(http.MethodGet, "/api/v1/graph", nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `brainbrowser_http_requests_total{method="GET",route="/api/v1/graph",status="200"} 1`)
}
