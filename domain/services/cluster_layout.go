package services

import (
	"math/rand/v2"

	"brainbrowser/domain/core/entities"
	"brainbrowser/domain/core/valueobjects"
)

// Placement bounds in layout space
const (
	DefaultPlacementMin = 30.0
	DefaultPlacementMax = 70.0
	ClusterClampMin     = 10.0
	ClusterClampMax     = 90.0
	DefaultJitter       = 10.0
)

// LayoutOptions tune ClusterLayout
type LayoutOptions struct {
	// Enabled turns relatedness clustering on; when off every neuron gets
	// the default random placement.
	Enabled bool
	// Jitter is the per-axis random offset bound around the related mean.
	Jitter float64
}

// DefaultLayoutOptions matches the engine's default configuration
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{Enabled: true, Jitter: DefaultJitter}
}

// ClusterLayout places new neurons near the related neurons already in
// the graph. It implements aggregates.Placer.
type ClusterLayout struct {
	related *RelatednessChecker
	rng     *rand.Rand
	opts    LayoutOptions
}

// NewClusterLayout creates a layout engine. The random source is injected
// so callers and tests control the randomized part of placement.
func NewClusterLayout(related *RelatednessChecker, rng *rand.Rand, opts LayoutOptions) *ClusterLayout {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ClusterLayout{related: related, rng: rng, opts: opts}
}

// WithOptions returns a copy sharing the random source but using opts
func (l *ClusterLayout) WithOptions(opts LayoutOptions) *ClusterLayout {
	return &ClusterLayout{related: l.related, rng: l.rng, opts: opts}
}

// Options returns the active options
func (l *ClusterLayout) Options() LayoutOptions {
	return l.opts
}

// Place computes the position for a neuron about to be created for pageID
func (l *ClusterLayout) Place(pageID valueobjects.PageID, existing []*entities.Neuron) valueobjects.Position {
	fallback := valueobjects.MustPosition(
		l.uniform(DefaultPlacementMin, DefaultPlacementMax),
		l.uniform(DefaultPlacementMin, DefaultPlacementMax),
	)
	if !l.opts.Enabled {
		return fallback
	}

	anchors := l.RelatedPositions(pageID, existing)
	if len(anchors) == 0 {
		return fallback
	}

	mean := valueobjects.Centroid(anchors...)
	jittered := valueobjects.MustPosition(
		mean.X()+l.uniform(-l.opts.Jitter, l.opts.Jitter),
		mean.Y()+l.uniform(-l.opts.Jitter, l.opts.Jitter),
	)
	return jittered.Clamp(ClusterClampMin, ClusterClampMax)
}

// RelatedPositions returns the positions of the existing neurons whose
// pages are related to pageID. This is the deterministic half of Place.
func (l *ClusterLayout) RelatedPositions(pageID valueobjects.PageID, existing []*entities.Neuron) []valueobjects.Position {
	var anchors []valueobjects.Position
	for _, n := range existing {
		if n.PageID() == pageID {
			continue
		}
		if l.related.Related(pageID, n.PageID()) {
			anchors = append(anchors, n.Position())
		}
	}
	return anchors
}

func (l *ClusterLayout) uniform(lo, hi float64) float64 {
	return lo + l.rng.Float64()*(hi-lo)
}
