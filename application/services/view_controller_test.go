package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/domain/events"
)

func testSurfaces() Surfaces {
	return Surfaces{
		Brain:     valueobjects.Size{Width: 1000, Height: 800},
		Container: valueobjects.Size{Width: 500, Height: 400},
		Minimap:   valueobjects.Size{Width: 200, Height: 160},
	}
}

func TestViewController_Zoom(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float64
		want   float64
	}{
		{"zoom in", []float64{0.1}, 1.1},
		{"zoom out", []float64{-0.1, -0.1}, 0.8},
		{"clamped high", []float64{1, 1, 1}, valueobjects.MaxScale},
		{"clamped low", []float64{-1, -1}, valueobjects.MinScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewViewController(testSurfaces(), nil)
			var view valueobjects.ViewTransform
			for _, d := range tt.deltas {
				view = c.Zoom(d)
			}
			assert.InDelta(t, tt.want, view.Scale, 1e-9)
		})
	}
}

func TestViewController_PanAndReset(t *testing.T) {
	c := NewViewController(testSurfaces(), nil)

	c.Zoom(0.5)
	c.Pan(-120, 40)
	c.PanBy(20, -10)
	assert.Equal(t, valueobjects.ViewTransform{PanX: -100, PanY: 30, Scale: 1.5}, c.Transform())

	assert.Equal(t, valueobjects.IdentityView(), c.Reset())
	assert.Len(t, c.GetUncommittedEvents(), 4)

	c.MarkEventsAsCommitted()
	assert.Empty(t, c.GetUncommittedEvents())
}

func TestViewController_AnimatePanLastWriteWins(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	c := NewViewController(testSurfaces(), clock.Now)

	c.AnimatePan(100, 100)
	first, ok := c.Animation()
	require.True(t, ok)
	assert.Equal(t, PanAnimationDuration, first.Duration)

	clock.Advance(200 * time.Millisecond)
	view := c.AnimatePan(-50, 25)
	second, ok := c.Animation()
	require.True(t, ok)
	assert.Equal(t, 100.0, second.From.PanX, "the new animation starts from the superseded target")
	assert.Equal(t, view, second.To)
	assert.Equal(t, clock.now, second.StartedAt)

	// An immediate pan cancels the animation
	c.Pan(0, 0)
	_, ok = c.Animation()
	assert.False(t, ok)

	c.AnimatePan(10, 10)
	clock.Advance(PanAnimationDuration)
	_, ok = c.Animation()
	assert.False(t, ok, "finished animations are not reported")

	pending := c.GetUncommittedEvents()
	last, ok := pending[len(pending)-1].(events.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, PanAnimationDuration, last.Duration)
}

func TestViewController_Focus(t *testing.T) {
	c := NewViewController(testSurfaces(), nil)

	view := c.Focus(valueobjects.MustPosition(75, 25))

	// -(75% of 1000 - 500), -(25% of 800 - 400)
	assert.InDelta(t, -250, view.PanX, 1e-9)
	assert.InDelta(t, 200, view.PanY, 1e-9)
}

func TestViewController_MinimapTarget(t *testing.T) {
	c := NewViewController(testSurfaces(), nil)

	tests := []struct {
		px, py float64
		wantX  float64
		wantY  float64
	}{
		{0.5, 0.5, 0, 0},
		{0, 0, 500, 400},
		{1, 1, -500, -400},
		{0.75, 0.25, -250, 200},
	}

	for _, tt := range tests {
		x, y := c.MinimapTarget(tt.px, tt.py)
		assert.InDelta(t, tt.wantX, x, 1e-9)
		assert.InDelta(t, tt.wantY, y, 1e-9)
	}
}

func TestViewController_DragDelta(t *testing.T) {
	c := NewViewController(testSurfaces(), nil)

	dx, dy := c.DragDelta(100, 80)
	assert.InDelta(t, 10, dx, 1e-9)
	assert.InDelta(t, 10, dy, 1e-9)

	c.Zoom(1) // scale 2
	dx, dy = c.DragDelta(100, 80)
	assert.InDelta(t, 5, dx, 1e-9)
	assert.InDelta(t, 5, dy, 1e-9)
}

func TestViewController_Resize(t *testing.T) {
	c := NewViewController(testSurfaces(), nil)

	next := testSurfaces()
	next.Brain.Width = 2000
	require.NoError(t, c.Resize(next))
	assert.Equal(t, next, c.Surfaces())

	bad := testSurfaces()
	bad.Minimap.Height = 0
	assert.ErrorIs(t, c.Resize(bad), ErrEmptySurface)

	negative := testSurfaces()
	negative.Container.Width = -1
	assert.Error(t, c.Resize(negative))
	assert.Equal(t, next, c.Surfaces())
}
