package config

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	pkgerrors "brainbrowser/pkg/errors"
	"brainbrowser/pkg/utils"
)

// LogLevel is the engine's log threshold
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelNone  LogLevel = "none"
)

var logLevelRank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
	LogLevelNone:  4,
}

// Allows reports whether a message at level msg passes this threshold.
// LogLevelNone suppresses everything.
func (l LogLevel) Allows(msg LogLevel) bool {
	threshold, ok := logLevelRank[l]
	if !ok {
		threshold = logLevelRank[LogLevelDebug]
	}
	rank, ok := logLevelRank[msg]
	if !ok || msg == LogLevelNone || l == LogLevelNone {
		return false
	}
	return rank >= threshold
}

// EngineConfig is the browsing engine's tunable configuration. It is
// persisted with the graph and changed only through ApplyConfig.
type EngineConfig struct {
	// Neuron appearance
	NeuronSize          int  `json:"neuronSize" yaml:"neuronSize" validate:"gte=20,lte=80"`
	NeuronGrowAnimation bool `json:"neuronGrowAnimation" yaml:"neuronGrowAnimation"`
	NeuronGrowDuration  int  `json:"neuronGrowDuration" yaml:"neuronGrowDuration" validate:"gte=0"`

	// Synapse appearance
	SynapseWidth             int     `json:"synapseWidth" yaml:"synapseWidth" validate:"gte=1,lte=10"`
	SynapseOpacity           float64 `json:"synapseOpacity" yaml:"synapseOpacity" validate:"gte=0,lte=1"`
	SynapseAnimationDuration float64 `json:"synapseAnimationDuration" yaml:"synapseAnimationDuration" validate:"gte=0"`
	PulseAnimationDuration   float64 `json:"pulseAnimationDuration" yaml:"pulseAnimationDuration" validate:"gte=0"`

	// Clustering
	ClusteringEnabled     bool    `json:"clusteringEnabled" yaml:"clusteringEnabled"`
	ClusteringMaxDistance float64 `json:"clusteringMaxDistance" yaml:"clusteringMaxDistance" validate:"gte=0,lte=50"`

	// Soft ceilings
	MaxVisibleNeurons  int `json:"maxVisibleNeurons" yaml:"maxVisibleNeurons" validate:"gte=1"`
	MaxVisibleSynapses int `json:"maxVisibleSynapses" yaml:"maxVisibleSynapses" validate:"gte=1"`

	// Logging and monitoring
	LogLevel              LogLevel `json:"logLevel" yaml:"logLevel" validate:"oneof=debug info warn error none"`
	TrackUserInteractions bool     `json:"trackUserInteractions" yaml:"trackUserInteractions"`
	PerformanceMonitoring bool     `json:"performanceMonitoring" yaml:"performanceMonitoring"`
	TrackFrameRate        bool     `json:"trackFrameRate" yaml:"trackFrameRate"`
	NeuronAnimation       string   `json:"neuronAnimation" yaml:"neuronAnimation" validate:"required"`
	ShowDebugInfo         bool     `json:"showDebugInfo" yaml:"showDebugInfo"`
}

// DefaultEngineConfig returns the default engine configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		NeuronSize:          60,
		NeuronGrowAnimation: true,
		NeuronGrowDuration:  500,

		SynapseWidth:             2,
		SynapseOpacity:           0.5,
		SynapseAnimationDuration: 8,
		PulseAnimationDuration:   1.5,

		ClusteringEnabled:     true,
		ClusteringMaxDistance: 10,

		MaxVisibleNeurons:  100,
		MaxVisibleSynapses: 200,

		LogLevel:              LogLevelDebug,
		TrackUserInteractions: true,
		PerformanceMonitoring: true,
		TrackFrameRate:        true,
		NeuronAnimation:       "pulse",
		ShowDebugInfo:         false,
	}
}

// ProductionEngineConfig quiets logging and turns off frame sampling
func ProductionEngineConfig() EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.LogLevel = LogLevelWarn
	cfg.TrackFrameRate = false
	return cfg
}

// DevelopmentEngineConfig shows the debug overlay
func DevelopmentEngineConfig() EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.ShowDebugInfo = true
	return cfg
}

// LoadEngineConfig picks the starting configuration for an environment
func LoadEngineConfig(environment string) EngineConfig {
	switch environment {
	case "production":
		return ProductionEngineConfig()
	case "development":
		return DevelopmentEngineConfig()
	default:
		return DefaultEngineConfig()
	}
}

// Validate checks if the configuration is valid
func (c EngineConfig) Validate() error {
	return utils.ValidateStruct(c)
}

// GrowDuration is the neuron grow animation as a duration
func (c EngineConfig) GrowDuration() time.Duration {
	return time.Duration(c.NeuronGrowDuration) * time.Millisecond
}

// MergeJSON shallow-merges a JSON object over c. Keys absent from the patch
// keep their current value; unknown keys are ignored.
func (c EngineConfig) MergeJSON(patch []byte) (EngineConfig, error) {
	merged := c
	if len(patch) == 0 {
		return merged, nil
	}
	if err := json.Unmarshal(patch, &merged); err != nil {
		return c, pkgerrors.NewValidationError(fmt.Sprintf("invalid config patch: %v", err))
	}
	if err := merged.Validate(); err != nil {
		return c, err
	}
	return merged, nil
}

// MergeYAML is MergeJSON for YAML documents
func (c EngineConfig) MergeYAML(patch []byte) (EngineConfig, error) {
	merged := c
	if err := yaml.Unmarshal(patch, &merged); err != nil {
		return c, pkgerrors.NewValidationError(fmt.Sprintf("invalid config file: %v", err))
	}
	if err := merged.Validate(); err != nil {
		return c, err
	}
	return merged, nil
}

// Effect names one consequence of a configuration change
type Effect string

const (
	EffectNeuronSize          Effect = "neuron_size"
	EffectSynapseWidth        Effect = "synapse_width"
	EffectAnimation           Effect = "animation"
	EffectLogLevel            Effect = "log_level"
	EffectMonitoring          Effect = "monitoring"
	EffectInteractionTracking Effect = "interaction_tracking"
	EffectClustering          Effect = "clustering"
	EffectDebugInfo           Effect = "debug_info"
	EffectLimits              Effect = "limits"
)

// Diff lists the effects of moving from c to next, in a fixed order
func (c EngineConfig) Diff(next EngineConfig) []Effect {
	var effects []Effect
	add := func(effect Effect, changed bool) {
		if changed {
			effects = append(effects, effect)
		}
	}

	add(EffectNeuronSize, c.NeuronSize != next.NeuronSize)
	add(EffectSynapseWidth, c.SynapseWidth != next.SynapseWidth || c.SynapseOpacity != next.SynapseOpacity)
	add(EffectAnimation, c.NeuronGrowAnimation != next.NeuronGrowAnimation ||
		c.NeuronGrowDuration != next.NeuronGrowDuration ||
		c.NeuronAnimation != next.NeuronAnimation ||
		c.SynapseAnimationDuration != next.SynapseAnimationDuration ||
		c.PulseAnimationDuration != next.PulseAnimationDuration)
	add(EffectLogLevel, c.LogLevel != next.LogLevel)
	add(EffectMonitoring, c.PerformanceMonitoring != next.PerformanceMonitoring || c.TrackFrameRate != next.TrackFrameRate)
	add(EffectInteractionTracking, c.TrackUserInteractions != next.TrackUserInteractions)
	add(EffectClustering, c.ClusteringEnabled != next.ClusteringEnabled || c.ClusteringMaxDistance != next.ClusteringMaxDistance)
	add(EffectDebugInfo, c.ShowDebugInfo != next.ShowDebugInfo)
	add(EffectLimits, c.MaxVisibleNeurons != next.MaxVisibleNeurons || c.MaxVisibleSynapses != next.MaxVisibleSynapses)

	return effects
}

// Equal reports whether two configurations are identical
func (c EngineConfig) Equal(other EngineConfig) bool {
	return c == other
}
