package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/domain/events"
)

// feed drains the engine's pending events into the projector
func feed(e *engine, p *MinimapProjector) {
	p.Apply(e.graph.GetUncommittedEvents()...)
	e.graph.MarkEventsAsCommitted()
	p.Apply(e.tabs.GetUncommittedEvents()...)
	e.tabs.MarkEventsAsCommitted()
}

func TestMinimapProjector_FollowsGraph(t *testing.T) {
	e := newEngine(testCatalog(), 3)
	p := NewMinimapProjector(testSurfaces(), e.clock.Now)

	_, err := e.tabs.CreateTab()
	require.NoError(t, err)
	_, err = e.tabs.Navigate(NavigateRequest{PageID: "about", CreateSynapse: true})
	require.NoError(t, err)
	feed(e, p)

	home, about := e.neuronFor("home"), e.neuronFor("about")
	view := p.View()
	require.Len(t, view.Points, 2)
	require.Len(t, view.Lines, 1)

	aboutNeuron, _ := e.graph.Neuron(about)
	pt, ok := p.Point(about)
	require.True(t, ok)
	assert.Equal(t, aboutNeuron.Position().X(), pt.Left)
	assert.Equal(t, aboutNeuron.Position().Y(), pt.Top)
	assert.True(t, pt.Current)
	assert.True(t, pt.Active)

	homePoint, _ := p.Point(home)
	assert.False(t, homePoint.Current)

	// Moving a neuron refreshes its point and incident lines
	require.NoError(t, e.graph.MoveNeuron(home, valueobjects.MustPosition(10, 10)))
	require.NoError(t, e.graph.MoveNeuron(about, valueobjects.MustPosition(13, 14)))
	feed(e, p)

	line, ok := p.Line(valueobjects.NewSynapseKey(home, about))
	require.True(t, ok)
	assert.Equal(t, 10.0, line.Left)
	assert.Equal(t, 10.0, line.Top)
	assert.InDelta(t, 5, line.Length, 1e-9)

	// Removal drops the point and every line touching it
	e.graph.RemoveNeuron(about)
	feed(e, p)
	_, ok = p.Point(about)
	assert.False(t, ok)
	assert.Empty(t, p.View().Lines)
}

func TestMinimapProjector_RaisesOneEventPerReason(t *testing.T) {
	e := newEngine(testCatalog(), 3)
	p := NewMinimapProjector(testSurfaces(), e.clock.Now)

	_, err := e.tabs.CreateTab()
	require.NoError(t, err)
	_, err = e.tabs.Navigate(NavigateRequest{PageID: "about", CreateSynapse: true})
	require.NoError(t, err)

	p.Apply(e.graph.GetUncommittedEvents()...)

	var reasons []string
	for _, evt := range p.GetUncommittedEvents() {
		updated, ok := evt.(events.MinimapUpdated)
		require.True(t, ok)
		reasons = append(reasons, updated.Reason)
	}
	assert.Equal(t, []string{ReasonNeuronAdded, ReasonSynapseAdded}, reasons)
}

func TestMinimapProjector_Viewport(t *testing.T) {
	tests := []struct {
		name string
		view valueobjects.ViewTransform
		want valueobjects.Rect
	}{
		{
			name: "identity",
			view: valueobjects.IdentityView(),
			want: valueobjects.Rect{Left: 0, Top: 0, Width: 100, Height: 80},
		},
		{
			name: "panned into the canvas",
			view: valueobjects.ViewTransform{PanX: -200, PanY: -100, Scale: 1},
			want: valueobjects.Rect{Left: 40, Top: 20, Width: 100, Height: 80},
		},
		{
			name: "clamped at the far edge",
			view: valueobjects.ViewTransform{PanX: -900, PanY: -700, Scale: 1},
			want: valueobjects.Rect{Left: 100, Top: 80, Width: 100, Height: 80},
		},
		{
			name: "clamped at the near edge",
			view: valueobjects.ViewTransform{PanX: 300, PanY: 300, Scale: 1},
			want: valueobjects.Rect{Left: 0, Top: 0, Width: 100, Height: 80},
		},
		{
			name: "zoomed in",
			view: valueobjects.ViewTransform{PanX: -400, PanY: -400, Scale: 2},
			want: valueobjects.Rect{Left: 20, Top: 20, Width: 25, Height: 20},
		},
		{
			name: "zoomed out past the minimap",
			view: valueobjects.ViewTransform{Scale: 0.5},
			want: valueobjects.Rect{Left: 0, Top: 0, Width: 200, Height: 160},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewMinimapProjector(testSurfaces(), nil)
			p.Apply(events.NewViewChanged(tt.view, 0, testEpoch))

			got := p.Viewport()
			assert.InDelta(t, tt.want.Left, got.Left, 1e-9)
			assert.InDelta(t, tt.want.Top, got.Top, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
		})
	}
}

func TestMinimapProjector_ViewportStaysInside(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := NewMinimapProjector(testSurfaces(), nil)
		view := valueobjects.ViewTransform{
			PanX:  rapid.Float64Range(-5000, 5000).Draw(t, "panX"),
			PanY:  rapid.Float64Range(-5000, 5000).Draw(t, "panY"),
			Scale: rapid.Float64Range(valueobjects.MinScale, valueobjects.MaxScale).Draw(t, "scale"),
		}
		p.Apply(events.NewViewChanged(view, 0, testEpoch))

		r := p.Viewport()
		mm := testSurfaces().Minimap
		assert.GreaterOrEqual(t, r.Left, 0.0)
		assert.GreaterOrEqual(t, r.Top, 0.0)
		assert.LessOrEqual(t, r.Width, mm.Width)
		assert.LessOrEqual(t, r.Height, mm.Height)
		assert.LessOrEqual(t, r.Left+r.Width, mm.Width+1e-9)
		assert.LessOrEqual(t, r.Top+r.Height, mm.Height+1e-9)
	})
}

func TestMinimapProjector_RebuildMatchesIncremental(t *testing.T) {
	e := newEngine(testCatalog(), 5)
	incremental := NewMinimapProjector(testSurfaces(), nil)

	_, err := e.tabs.CreateTab()
	require.NoError(t, err)
	for _, p := range []valueobjects.PageID{"about", "team", "about", "features"} {
		_, err := e.tabs.Navigate(NavigateRequest{PageID: p, CreateSynapse: true})
		require.NoError(t, err)
	}
	_, err = e.tabs.OpenInNewTab("alpha", true)
	require.NoError(t, err)
	e.graph.RemoveNeuron(e.neuronFor("team"))
	feed(e, incremental)

	rebuilt := NewMinimapProjector(testSurfaces(), nil)
	rebuilt.Rebuild(e.graph, valueobjects.IdentityView())

	assert.Equal(t, rebuilt.View(), incremental.View())
}

func TestMinimapProjector_Resize(t *testing.T) {
	p := NewMinimapProjector(testSurfaces(), nil)
	before := p.Viewport()

	bigger := testSurfaces()
	bigger.Container = valueobjects.Size{Width: 1000, Height: 800}
	p.Resize(bigger)

	assert.NotEqual(t, before, p.Viewport())
	assert.Equal(t, valueobjects.Rect{Width: 200, Height: 160}, p.Viewport())
	assert.Len(t, p.GetUncommittedEvents(), 1)
}
