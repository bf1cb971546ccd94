package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	domainconfig "brainbrowser/domain/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "brainBrowser", cfg.Store.Key)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brainbrowser.yaml")
	writeFile(t, path, `
serverAddress: ":9000"
environment: production
store:
  backend: sqlite
  path: /var/lib/brainbrowser/session.db
  key: brainBrowser
shutdownTimeout: 5s
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_ADDRESS", ":9100")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.ServerAddress)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/brainbrowser/session.db", cfg.Store.Path)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, true},
		{"dynamodb without table", func(c *Config) {
			c.Store.Backend = BackendDynamoDB
			c.Store.DynamoDBTable = ""
		}, true},
		{"unknown environment", func(c *Config) { c.Environment = "qa" }, true},
		{"tracing without endpoint", func(c *Config) {
			c.EnableTracing = true
			c.OTelEndpoint = ""
		}, true},
		{"missing storage key", func(c *Config) { c.Store.Key = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadEngineFile(t *testing.T) {
	dir := t.TempDir()
	base := domainconfig.DefaultEngineConfig()

	withEngine := filepath.Join(dir, "engine.yaml")
	writeFile(t, withEngine, "engine:\n  neuronSize: 40\n  clusteringEnabled: false\n")
	cfg, err := LoadEngineFile(withEngine, base)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.NeuronSize)
	assert.False(t, cfg.ClusteringEnabled)
	assert.Equal(t, base.SynapseWidth, cfg.SynapseWidth)

	without := filepath.Join(dir, "server.yaml")
	writeFile(t, without, "serverAddress: \":8080\"\n")
	cfg, err = LoadEngineFile(without, base)
	require.NoError(t, err)
	assert.Equal(t, base, cfg)

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "engine:\n  neuronSize: 500\n")
	cfg, err = LoadEngineFile(invalid, base)
	assert.Error(t, err)
	assert.Equal(t, base, cfg)
}

func TestEngineWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brainbrowser.yaml")
	writeFile(t, path, "engine:\n  neuronSize: 40\n")

	var mu sync.Mutex
	var applied []domainconfig.EngineConfig
	w, err := NewEngineWatcher(path, domainconfig.DefaultEngineConfig(), func(_ context.Context, cfg domainconfig.EngineConfig) error {
		mu.Lock()
		defer mu.Unlock()
		applied = append(applied, cfg)
		return nil
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 40, w.Current().NeuronSize)

	w.Start(context.Background())
	defer w.Stop()

	writeFile(t, path, "engine:\n  neuronSize: 70\n")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(applied) > 0 && applied[len(applied)-1].NeuronSize == 70
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 70, w.Current().NeuronSize)
}
