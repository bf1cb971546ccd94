package services

import (
	"time"

	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/domain/events"
	"brainbrowser/pkg/utils"
)

// PanAnimationDuration is the smoothing time of animated pans
const PanAnimationDuration = 500 * time.Millisecond

// Surfaces are the pixel sizes the view maps between: the unscaled brain
// canvas, the visible container and the minimap
type Surfaces struct {
	Brain     valueobjects.Size `json:"brain"`
	Container valueobjects.Size `json:"container"`
	Minimap   valueobjects.Size `json:"minimap"`
}

// DefaultSurfaces are used until the renderer reports its layout
func DefaultSurfaces() Surfaces {
	return Surfaces{
		Brain:     valueobjects.Size{Width: 1600, Height: 1200},
		Container: valueobjects.Size{Width: 1200, Height: 800},
		Minimap:   valueobjects.Size{Width: 200, Height: 150},
	}
}

// PanAnimation is the in-flight smoothing of an animated pan. The target
// pan is applied immediately; the animation is a hint for renderers.
type PanAnimation struct {
	From      valueobjects.ViewTransform `json:"from"`
	To        valueobjects.ViewTransform `json:"to"`
	StartedAt time.Time                  `json:"startedAt"`
	Duration  time.Duration              `json:"duration"`
}

// Done reports whether the animation has finished at now
func (a PanAnimation) Done(now time.Time) bool {
	return !now.Before(a.StartedAt.Add(a.Duration))
}

// ViewController owns the primary view's pan and zoom
type ViewController struct {
	view      valueobjects.ViewTransform
	surfaces  Surfaces
	animation *PanAnimation
	now       func() time.Time
	events    []events.DomainEvent
}

// NewViewController starts at the identity view
func NewViewController(surfaces Surfaces, now func() time.Time) *ViewController {
	if now == nil {
		now = time.Now
	}
	return &ViewController{
		view:     valueobjects.IdentityView(),
		surfaces: surfaces,
		now:      now,
		events:   []events.DomainEvent{},
	}
}

// Zoom moves the scale by delta, clamped to the scale bounds
func (c *ViewController) Zoom(delta float64) valueobjects.ViewTransform {
	return c.set(c.view.Zoom(delta), 0)
}

// Reset returns to unit scale and no pan
func (c *ViewController) Reset() valueobjects.ViewTransform {
	return c.set(valueobjects.IdentityView(), 0)
}

// Pan moves the view immediately
func (c *ViewController) Pan(x, y float64) valueobjects.ViewTransform {
	return c.set(c.view.WithPan(x, y), 0)
}

// PanBy shifts the view by a pixel delta, as when dragging the canvas
func (c *ViewController) PanBy(dx, dy float64) valueobjects.ViewTransform {
	return c.Pan(c.view.PanX+dx, c.view.PanY+dy)
}

// AnimatePan moves the view with smoothing. A newer pan supersedes any
// animation still in flight.
func (c *ViewController) AnimatePan(x, y float64) valueobjects.ViewTransform {
	from := c.view
	to := c.set(c.view.WithPan(x, y), PanAnimationDuration)
	c.animation = &PanAnimation{From: from, To: to, StartedAt: c.now(), Duration: PanAnimationDuration}
	return to
}

// Focus animates the view so position is centred on the brain canvas
func (c *ViewController) Focus(position valueobjects.Position) valueobjects.ViewTransform {
	w, h := c.surfaces.Brain.Width, c.surfaces.Brain.Height
	return c.AnimatePan(
		-(position.X()/100*w - w/2),
		-(position.Y()/100*h - h/2),
	)
}

// MinimapTarget maps a click at minimap-relative fractions (px, py) to the
// primary pan that brings that spot to the centre
func (c *ViewController) MinimapTarget(px, py float64) (float64, float64) {
	return -(px - 0.5) * c.surfaces.Brain.Width, -(py - 0.5) * c.surfaces.Brain.Height
}

// NavigateMinimap animates to the spot clicked on the minimap
func (c *ViewController) NavigateMinimap(px, py float64) valueobjects.ViewTransform {
	x, y := c.MinimapTarget(px, py)
	return c.AnimatePan(x, y)
}

// DragDelta converts a pixel drag of a neuron into a layout-space delta at
// the current scale
func (c *ViewController) DragDelta(dxPx, dyPx float64) (float64, float64) {
	if c.surfaces.Brain.IsEmpty() {
		return 0, 0
	}
	return dxPx / c.surfaces.Brain.Width * 100 / c.view.Scale,
		dyPx / c.surfaces.Brain.Height * 100 / c.view.Scale
}

// Resize records new surface sizes
func (c *ViewController) Resize(s Surfaces) error {
	if err := utils.ValidateStruct(s); err != nil {
		return err
	}
	if s.Brain.IsEmpty() || s.Minimap.IsEmpty() {
		return ErrEmptySurface
	}
	c.surfaces = s
	return nil
}

// Transform returns the current view
func (c *ViewController) Transform() valueobjects.ViewTransform {
	return c.view
}

// Surfaces returns the current surface sizes
func (c *ViewController) Surfaces() Surfaces {
	return c.surfaces
}

// Animation returns the pan animation in flight at now, if any
func (c *ViewController) Animation() (PanAnimation, bool) {
	if c.animation == nil || c.animation.Done(c.now()) {
		return PanAnimation{}, false
	}
	return *c.animation, true
}

// GetUncommittedEvents returns all uncommitted view events
func (c *ViewController) GetUncommittedEvents() []events.DomainEvent {
	pending := make([]events.DomainEvent, len(c.events))
	copy(pending, c.events)
	return pending
}

// MarkEventsAsCommitted clears all uncommitted events
func (c *ViewController) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}

func (c *ViewController) set(view valueobjects.ViewTransform, duration time.Duration) valueobjects.ViewTransform {
	c.view = view.Normalize()
	if duration == 0 {
		c.animation = nil
	}
	c.events = append(c.events, events.NewViewChanged(c.view, duration, c.now()))
	return c.view
}
