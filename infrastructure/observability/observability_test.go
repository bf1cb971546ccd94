package observability

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainconfig "brainbrowser/domain/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestPerformanceRecorder_RollingWindow(t *testing.T) {
	r := NewPerformanceRecorder(nil)

	for i := 1; i <= SampleWindow+50; i++ {
		r.RecordInteraction("navigate", time.Duration(i)*time.Millisecond)
	}
	r.RecordRenderTime(4 * time.Millisecond)
	r.RecordRenderTime(6 * time.Millisecond)
	r.RecordFrameRate(60)

	snap := r.Snapshot()
	assert.Equal(t, SampleWindow, snap.InteractionSamples)
	// Samples 51..150 remain
	assert.InDelta(t, 100.5, snap.AvgInteractionLatencyMs, 1e-9)
	assert.InDelta(t, 5.0, snap.AvgRenderTimeMs, 1e-9)
	assert.Equal(t, 2, snap.RenderSamples)
	assert.InDelta(t, 60.0, snap.AvgFrameRate, 1e-9)
}

func TestPerformanceRecorder_Disabled(t *testing.T) {
	r := NewPerformanceRecorder(nil)
	r.RecordRenderTime(time.Millisecond)
	r.SetEnabled(false)
	r.RecordRenderTime(time.Second)
	r.RecordInteraction("zoom", time.Second)

	snap := r.Snapshot()
	assert.Equal(t, 1, snap.RenderSamples)
	assert.Zero(t, snap.InteractionSamples)
}

func TestPerformanceRecorder_FeedsCollector(t *testing.T) {
	c := NewCollector("test")
	r := NewPerformanceRecorder(c)
	r.RecordInteraction("navigate", time.Millisecond)
	r.RecordFrameRate(30)

	assert.Equal(t, 1, testutil.CollectAndCount(c.InteractionLatency))
	assert.InDelta(t, 30.0, testutil.ToFloat64(c.FrameRate), 1e-9)
}

func TestCollector_BusHooks(t *testing.T) {
	c := NewCollector("test")
	c.ObserveCommand("NavigateCommand", time.Millisecond, nil)
	c.ObserveCommand("NavigateCommand", time.Millisecond, errors.New("boom"))
	c.ObserveQuery("GetGraphQuery", time.Millisecond, nil)
	c.ObserveHTTP("GET", "/api/v1/graph", 200, time.Millisecond)

	assert.InDelta(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("NavigateCommand", "ok")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("NavigateCommand", "error")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.Queries.WithLabelValues("GetGraphQuery", "ok")), 1e-9)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_commands_total"))
}

func TestInteractionLog(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	log := NewInteractionLog(level, 3)
	logger := zap.New(log).With(zap.String("session", "s1"))

	logger.Debug("hidden")
	for i := 1; i <= 4; i++ {
		logger.Info(fmt.Sprintf("navigate %d", i), zap.Int("n", i))
	}
	assert.Equal(t, 3, log.Len())

	recent := log.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, "navigate 2", recent[0].Message)
	assert.Equal(t, "navigate 4", recent[2].Message)
	assert.Equal(t, "info", recent[2].Level)
	assert.Equal(t, "s1", recent[2].Fields["session"])
	assert.EqualValues(t, 4, recent[2].Fields["n"])

	last := log.Recent(1)
	require.Len(t, last, 1)
	assert.Equal(t, "navigate 4", last[0].Message)

	log.SetTracking(false)
	logger.Warn("untracked")
	assert.Equal(t, "navigate 4", log.Recent(1)[0].Message)
}

func TestLogging_SetLevel(t *testing.T) {
	l, err := NewLogging("test", "info")
	require.NoError(t, err)

	l.Logger.Info("kept")
	l.SetLevel(domainconfig.LogLevelNone)
	l.Logger.Error("dropped")
	assert.False(t, l.Level.Enabled(zapcore.FatalLevel))

	l.SetLevel(domainconfig.LogLevelDebug)
	l.Logger.Debug("debug kept")

	recent := l.Interactions.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, "kept", recent[0].Message)
	assert.Equal(t, "debug kept", recent[1].Message)

	_, err = NewLogging("test", "loud")
	assert.Error(t, err)
}
