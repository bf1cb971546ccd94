package services

import (
	"math"
	"sort"
	"time"

	"brainbrowser/application/dto"
	"brainbrowser/domain/core/aggregates"
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/domain/events"
	domainservices "brainbrowser/domain/services"
)

// Resync reasons carried by MinimapUpdated events
const (
	ReasonNeuronAdded    = "neuron_added"
	ReasonNeuronMoved    = "neuron_moved"
	ReasonNeuronRemoved  = "neuron_removed"
	ReasonSynapseAdded   = "synapse_added"
	ReasonSynapseRemoved = "synapse_removed"
	ReasonHighlight      = "highlight"
	ReasonView           = "view"
	ReasonResize         = "resize"
	ReasonRebuild        = "rebuild"
)

// MinimapProjector keeps a scaled projection of the graph and the primary
// viewport. Node positions share the 0-100 layout space with the primary
// view, so points are copied as percentages; only the viewport rectangle
// depends on pan and zoom. The projector is fed the events produced by the
// graph, tab manager and view controller.
type MinimapProjector struct {
	points   map[valueobjects.NeuronID]*dto.MinimapPoint
	lines    map[valueobjects.SynapseKey]*dto.MinimapLine
	view     valueobjects.ViewTransform
	surfaces Surfaces
	viewport valueobjects.Rect
	now      func() time.Time
	events   []events.DomainEvent
}

// NewMinimapProjector creates an empty projection
func NewMinimapProjector(surfaces Surfaces, now func() time.Time) *MinimapProjector {
	if now == nil {
		now = time.Now
	}
	p := &MinimapProjector{
		points:   make(map[valueobjects.NeuronID]*dto.MinimapPoint),
		lines:    make(map[valueobjects.SynapseKey]*dto.MinimapLine),
		view:     valueobjects.IdentityView(),
		surfaces: surfaces,
		now:      now,
		events:   []events.DomainEvent{},
	}
	p.viewport = p.computeViewport()
	return p
}

// Apply folds state-change events into the projection and raises one
// MinimapUpdated per distinct resync reason
func (p *MinimapProjector) Apply(evts ...events.DomainEvent) {
	var reasons []string
	seen := make(map[string]bool)
	mark := func(reason string) {
		if !seen[reason] {
			seen[reason] = true
			reasons = append(reasons, reason)
		}
	}

	for _, evt := range evts {
		switch e := evt.(type) {
		case events.NeuronCreated:
			p.points[e.NeuronID] = &dto.MinimapPoint{
				NeuronID: e.NeuronID,
				Left:     e.Position.X(),
				Top:      e.Position.Y(),
			}
			mark(ReasonNeuronAdded)
		case events.NeuronMoved:
			if pt, ok := p.points[e.NeuronID]; ok {
				pt.Left, pt.Top = e.NewPosition.X(), e.NewPosition.Y()
				p.refreshLinesTouching(e.NeuronID)
				mark(ReasonNeuronMoved)
			}
		case events.NeuronRemoved:
			delete(p.points, e.NeuronID)
			for key := range p.lines {
				if key.Touches(e.NeuronID) {
					delete(p.lines, key)
				}
			}
			mark(ReasonNeuronRemoved)
		case events.SynapseCreated:
			if line, ok := p.project(e.Key); ok {
				p.lines[e.Key] = line
				mark(ReasonSynapseAdded)
			}
		case events.SynapseRemoved:
			if _, ok := p.lines[e.Key]; ok {
				delete(p.lines, e.Key)
				mark(ReasonSynapseRemoved)
			}
		case events.TabActivated:
			p.highlight(e.CurrentNeuron, e.ActiveNeurons)
			mark(ReasonHighlight)
		case events.ViewChanged:
			p.view = e.Transform
			p.viewport = p.computeViewport()
			mark(ReasonView)
		}
	}

	for _, reason := range reasons {
		p.events = append(p.events, events.NewMinimapUpdated(reason, p.viewport, p.now()))
	}
}

// Resize records new surface sizes and recomputes the viewport
func (p *MinimapProjector) Resize(s Surfaces) {
	p.surfaces = s
	p.viewport = p.computeViewport()
	p.events = append(p.events, events.NewMinimapUpdated(ReasonResize, p.viewport, p.now()))
}

// Rebuild discards the projection and recomputes it from the graph
func (p *MinimapProjector) Rebuild(graph *aggregates.Graph, view valueobjects.ViewTransform) {
	p.points = make(map[valueobjects.NeuronID]*dto.MinimapPoint, graph.NeuronCount())
	p.lines = make(map[valueobjects.SynapseKey]*dto.MinimapLine, graph.SynapseCount())

	for _, n := range graph.Neurons() {
		p.points[n.ID()] = &dto.MinimapPoint{
			NeuronID: n.ID(),
			Left:     n.Position().X(),
			Top:      n.Position().Y(),
			Active:   n.IsActive(),
			Current:  n.IsCurrent(),
		}
	}
	for _, s := range graph.Synapses() {
		if line, ok := p.project(s.Key()); ok {
			p.lines[s.Key()] = line
		}
	}

	p.view = view
	p.viewport = p.computeViewport()
	p.events = append(p.events, events.NewMinimapUpdated(ReasonRebuild, p.viewport, p.now()))
}

// Viewport returns the primary view's rectangle in minimap pixels
func (p *MinimapProjector) Viewport() valueobjects.Rect {
	return p.viewport
}

// View returns the projection ordered by neuron id and synapse key
func (p *MinimapProjector) View() dto.MinimapView {
	view := dto.MinimapView{
		Points:   make([]dto.MinimapPoint, 0, len(p.points)),
		Lines:    make([]dto.MinimapLine, 0, len(p.lines)),
		Viewport: p.viewport,
		View:     p.view,
	}
	for _, pt := range p.points {
		view.Points = append(view.Points, *pt)
	}
	for _, line := range p.lines {
		view.Lines = append(view.Lines, *line)
	}
	sort.Slice(view.Points, func(i, j int) bool { return view.Points[i].NeuronID < view.Points[j].NeuronID })
	sort.Slice(view.Lines, func(i, j int) bool {
		return valueobjects.NewSynapseKey(view.Lines[i].From, view.Lines[i].To).
			Less(valueobjects.NewSynapseKey(view.Lines[j].From, view.Lines[j].To))
	})
	return view
}

// Point returns the projected point of a neuron
func (p *MinimapProjector) Point(id valueobjects.NeuronID) (dto.MinimapPoint, bool) {
	pt, ok := p.points[id]
	if !ok {
		return dto.MinimapPoint{}, false
	}
	return *pt, true
}

// Line returns the projected line of a synapse
func (p *MinimapProjector) Line(key valueobjects.SynapseKey) (dto.MinimapLine, bool) {
	line, ok := p.lines[key]
	if !ok {
		return dto.MinimapLine{}, false
	}
	return *line, true
}

// GetUncommittedEvents returns all uncommitted minimap events
func (p *MinimapProjector) GetUncommittedEvents() []events.DomainEvent {
	pending := make([]events.DomainEvent, len(p.events))
	copy(pending, p.events)
	return pending
}

// MarkEventsAsCommitted clears all uncommitted events
func (p *MinimapProjector) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *MinimapProjector) project(key valueobjects.SynapseKey) (*dto.MinimapLine, bool) {
	from, ok := p.points[key.From]
	if !ok {
		return nil, false
	}
	to, ok := p.points[key.To]
	if !ok {
		return nil, false
	}
	seg := domainservices.SegmentBetween(
		valueobjects.MustPosition(from.Left, from.Top),
		valueobjects.MustPosition(to.Left, to.Top),
	)
	return &dto.MinimapLine{
		From:     key.From,
		To:       key.To,
		Left:     seg.Left,
		Top:      seg.Top,
		Length:   seg.Length,
		AngleDeg: seg.AngleDeg,
	}, true
}

func (p *MinimapProjector) refreshLinesTouching(id valueobjects.NeuronID) {
	for key := range p.lines {
		if !key.Touches(id) {
			continue
		}
		if line, ok := p.project(key); ok {
			p.lines[key] = line
		}
	}
}

func (p *MinimapProjector) highlight(current valueobjects.NeuronID, active []valueobjects.NeuronID) {
	activeSet := make(map[valueobjects.NeuronID]bool, len(active))
	for _, id := range active {
		activeSet[id] = true
	}
	for id, pt := range p.points {
		pt.Active = activeSet[id]
		pt.Current = !current.IsZero() && id == current
	}
}

// computeViewport maps the container's visible area onto the minimap,
// keeping the rectangle inside the minimap bounds
func (p *MinimapProjector) computeViewport() valueobjects.Rect {
	brain, container, minimap := p.surfaces.Brain, p.surfaces.Container, p.surfaces.Minimap
	scale := p.view.Scale
	if brain.IsEmpty() || minimap.IsEmpty() || scale <= 0 {
		return valueobjects.Rect{}
	}

	scaleX := minimap.Width / (brain.Width * scale)
	scaleY := minimap.Height / (brain.Height * scale)

	left := (-p.view.PanX / scale) * scaleX
	top := (-p.view.PanY / scale) * scaleY
	width := (container.Width / scale) * scaleX
	height := (container.Height / scale) * scaleY

	return valueobjects.Rect{
		Left:   math.Max(0, math.Min(left, minimap.Width-width)),
		Top:    math.Max(0, math.Min(top, minimap.Height-height)),
		Width:  math.Min(width, minimap.Width),
		Height: math.Min(height, minimap.Height),
	}
}
