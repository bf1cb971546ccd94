package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfigIsValid(t *testing.T) {
	for _, env := range []string{"", "development", "production"} {
		t.Run("env="+env, func(t *testing.T) {
			assert.NoError(t, LoadEngineConfig(env).Validate())
		})
	}
}

func TestMergeJSONKeepsUnspecifiedKeys(t *testing.T) {
	base := DefaultEngineConfig()

	merged, err := base.MergeJSON([]byte(`{"neuronSize": 40, "unknownKey": true}`))
	require.NoError(t, err)

	assert.Equal(t, 40, merged.NeuronSize)
	assert.Equal(t, base.SynapseWidth, merged.SynapseWidth)
	assert.Equal(t, base.LogLevel, merged.LogLevel)
	assert.True(t, merged.ClusteringEnabled)
}

func TestMergeRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		patch string
	}{
		{name: "neuron size too small", patch: `{"neuronSize": 5}`},
		{name: "unknown log level", patch: `{"logLevel": "trace"}`},
		{name: "opacity above one", patch: `{"synapseOpacity": 1.5}`},
		{name: "not an object", patch: `[1,2]`},
	}

	base := DefaultEngineConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := base.MergeJSON([]byte(tt.patch))
			assert.Error(t, err)
			assert.True(t, merged.Equal(base))
		})
	}
}

func TestMergeYAML(t *testing.T) {
	merged, err := DefaultEngineConfig().MergeYAML([]byte("logLevel: warn\nclusteringEnabled: false\n"))
	require.NoError(t, err)

	assert.Equal(t, LogLevelWarn, merged.LogLevel)
	assert.False(t, merged.ClusteringEnabled)
	assert.Equal(t, 60, merged.NeuronSize)
}

func TestDiff(t *testing.T) {
	base := DefaultEngineConfig()

	next := base
	next.NeuronSize = 30
	next.LogLevel = LogLevelNone
	next.PerformanceMonitoring = false

	assert.Equal(t, []Effect{EffectNeuronSize, EffectLogLevel, EffectMonitoring}, base.Diff(next))
	assert.Empty(t, base.Diff(base))
}

func TestLogLevelAllows(t *testing.T) {
	tests := []struct {
		threshold LogLevel
		msg       LogLevel
		want      bool
	}{
		{LogLevelDebug, LogLevelDebug, true},
		{LogLevelInfo, LogLevelDebug, false},
		{LogLevelWarn, LogLevelError, true},
		{LogLevelError, LogLevelWarn, false},
		{LogLevelNone, LogLevelError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.threshold)+"/"+string(tt.msg), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.threshold.Allows(tt.msg))
		})
	}
}
