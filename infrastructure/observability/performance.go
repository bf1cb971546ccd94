package observability

import (
	"sync"
	"time"

	"brainbrowser/application/ports"
)

// SampleWindow is how many recent samples each rolling average keeps
const SampleWindow = 100

// window is a fixed-size ring of samples
type window struct {
	samples []float64
	next    int
	full    bool
}

func newWindow(size int) *window {
	return &window{samples: make([]float64, size)}
}

func (w *window) add(v float64) {
	w.samples[w.next] = v
	w.next++
	if w.next == len(w.samples) {
		w.next = 0
		w.full = true
	}
}

func (w *window) len() int {
	if w.full {
		return len(w.samples)
	}
	return w.next
}

func (w *window) mean() float64 {
	n := w.len()
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range w.samples[:n] {
		sum += v
	}
	return sum / float64(n)
}

// PerformanceRecorder keeps rolling averages and mirrors every sample
// into the Prometheus collector when one is attached
type PerformanceRecorder struct {
	mu           sync.Mutex
	enabled      bool
	render       *window
	interactions *window
	frames       *window
	collector    *Collector
}

// NewPerformanceRecorder creates an enabled recorder. collector may be nil.
func NewPerformanceRecorder(collector *Collector) *PerformanceRecorder {
	return &PerformanceRecorder{
		enabled:      true,
		render:       newWindow(SampleWindow),
		interactions: newWindow(SampleWindow),
		frames:       newWindow(SampleWindow),
		collector:    collector,
	}
}

var _ ports.PerformanceRecorder = (*PerformanceRecorder)(nil)

// SetEnabled turns sampling on or off. Existing samples are kept.
func (r *PerformanceRecorder) SetEnabled(enabled bool) {
	r.mu.Lock()
	r.enabled = enabled
	r.mu.Unlock()
}

// RecordRenderTime records the time to create a neuron
func (r *PerformanceRecorder) RecordRenderTime(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.render.add(ms(d))
	if r.collector != nil {
		r.collector.RenderTime.Observe(d.Seconds())
	}
}

// RecordInteraction records one command's latency
func (r *PerformanceRecorder) RecordInteraction(kind string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.interactions.add(ms(d))
	if r.collector != nil {
		r.collector.InteractionLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// RecordFrameRate records a renderer frame-rate report
func (r *PerformanceRecorder) RecordFrameRate(fps float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.frames.add(fps)
	if r.collector != nil {
		r.collector.FrameRate.Set(fps)
	}
}

// Snapshot returns the current averages
func (r *PerformanceRecorder) Snapshot() ports.PerformanceSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ports.PerformanceSnapshot{
		AvgRenderTimeMs:         r.render.mean(),
		AvgInteractionLatencyMs: r.interactions.mean(),
		AvgFrameRate:            r.frames.mean(),
		RenderSamples:           r.render.len(),
		InteractionSamples:      r.interactions.len(),
		FrameRateSamples:        r.frames.len(),
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
