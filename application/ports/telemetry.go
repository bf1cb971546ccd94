package ports

import (
	"time"

	domainconfig "brainbrowser/domain/config"
)

// PerformanceSnapshot holds rolling averages in milliseconds
type PerformanceSnapshot struct {
	AvgRenderTimeMs         float64 `json:"avgRenderTimeMs"`
	AvgInteractionLatencyMs float64 `json:"avgInteractionLatencyMs"`
	AvgFrameRate            float64 `json:"avgFrameRate"`
	RenderSamples           int     `json:"renderSamples"`
	InteractionSamples      int     `json:"interactionSamples"`
	FrameRateSamples        int     `json:"frameRateSamples"`
}

// PerformanceRecorder collects timing samples
type PerformanceRecorder interface {
	RecordRenderTime(d time.Duration)
	RecordInteraction(kind string, d time.Duration)
	RecordFrameRate(fps float64)
	Snapshot() PerformanceSnapshot
	SetEnabled(enabled bool)
}

// InteractionEntry is one captured log line
type InteractionEntry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// InteractionHistory exposes the recent interaction log
type InteractionHistory interface {
	Recent(n int) []InteractionEntry
	Len() int
	SetTracking(enabled bool)
}

// LogLevelController applies the engine log level to the process logger
type LogLevelController interface {
	SetLevel(level domainconfig.LogLevel)
}
