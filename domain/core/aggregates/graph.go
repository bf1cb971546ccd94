package aggregates

import (
	"fmt"
	"sort"
	"time"

	"brainbrowser/domain/core/entities"
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/domain/events"
)

// Placer computes the layout position of a neuron about to be created for
// pageID, given the neurons already in the graph.
type Placer interface {
	Place(pageID valueobjects.PageID, existing []*entities.Neuron) valueobjects.Position
}

// PlacerFunc adapts a function to Placer
type PlacerFunc func(pageID valueobjects.PageID, existing []*entities.Neuron) valueobjects.Position

// Place implements Placer
func (f PlacerFunc) Place(pageID valueobjects.PageID, existing []*entities.Neuron) valueobjects.Position {
	return f(pageID, existing)
}

// Graph is the aggregate root owning neurons and synapses.
// pageIndex and adjacency are auxiliary indexes kept consistent by the
// mutators below and never touched from outside.
type Graph struct {
	neurons      map[valueobjects.NeuronID]*entities.Neuron
	synapses     map[valueobjects.SynapseKey]*entities.Synapse
	pageIndex    map[valueobjects.PageID]valueobjects.NeuronID
	adjacency    map[valueobjects.NeuronID]map[valueobjects.SynapseKey]struct{}
	lastNeuronID valueobjects.NeuronID
	placer       Placer
	now          func() time.Time
	events       []events.DomainEvent
}

// NewGraph creates an empty graph. A nil clock defaults to time.Now.
func NewGraph(placer Placer, now func() time.Time) *Graph {
	if now == nil {
		now = time.Now
	}
	return &Graph{
		neurons:   make(map[valueobjects.NeuronID]*entities.Neuron),
		synapses:  make(map[valueobjects.SynapseKey]*entities.Synapse),
		pageIndex: make(map[valueobjects.PageID]valueobjects.NeuronID),
		adjacency: make(map[valueobjects.NeuronID]map[valueobjects.SynapseKey]struct{}),
		placer:    placer,
		now:       now,
		events:    []events.DomainEvent{},
	}
}

// SetPlacer swaps the layout strategy, e.g. after a config change
func (g *Graph) SetPlacer(placer Placer) {
	g.placer = placer
}

// GetOrCreateNeuron returns the neuron bound to pageID, creating it when the
// page has none. An existing neuron is returned unchanged: label and
// position are first-write-wins. A nil position asks the placer.
func (g *Graph) GetOrCreateNeuron(pageID valueobjects.PageID, label string, position *valueobjects.Position) (valueobjects.NeuronID, bool, error) {
	if pageID.IsZero() {
		return 0, false, ErrEmptyPageID
	}
	if id, ok := g.pageIndex[pageID]; ok {
		return id, false, nil
	}

	id := g.lastNeuronID.Next()
	pos := g.resolvePosition(pageID, position)
	if err := g.insert(id, pageID, label, pos, false); err != nil {
		return 0, false, err
	}
	g.lastNeuronID = id
	return id, true, nil
}

// RestoreNeuron recreates a persisted neuron at its exact position. The
// persisted id is kept when free; otherwise a fresh id is allocated. The
// returned id is the live one. A page that is already bound is rejected
// with ErrPageBound and the existing id.
func (g *Graph) RestoreNeuron(persisted valueobjects.NeuronID, pageID valueobjects.PageID, label string, position valueobjects.Position) (valueobjects.NeuronID, error) {
	if pageID.IsZero() {
		return 0, ErrEmptyPageID
	}
	if existing, ok := g.pageIndex[pageID]; ok {
		return existing, ErrPageBound
	}

	id := persisted
	if _, taken := g.neurons[id]; taken || id.IsZero() {
		id = g.lastNeuronID.Next()
	}
	if err := g.insert(id, pageID, label, position, true); err != nil {
		return 0, err
	}
	if id > g.lastNeuronID {
		g.lastNeuronID = id
	}
	return id, nil
}

// Connect adds the synapse from -> to. Re-connecting an existing pair
// returns its key with created=false and records a pulse.
func (g *Graph) Connect(from, to valueobjects.NeuronID) (valueobjects.SynapseKey, bool, error) {
	key := valueobjects.NewSynapseKey(from, to)
	if key.IsSelfLoop() {
		return key, false, ErrSelfLoop
	}
	if _, ok := g.neurons[from]; !ok {
		return key, false, fmt.Errorf("connect from %s: %w", from, ErrNeuronNotFound)
	}
	if _, ok := g.neurons[to]; !ok {
		return key, false, fmt.Errorf("connect to %s: %w", to, ErrNeuronNotFound)
	}

	now := g.now()
	if existing, ok := g.synapses[key]; ok {
		traversals := existing.Pulse(now)
		g.addEvent(events.NewSynapsePulsed(key, traversals, now))
		return key, false, nil
	}

	g.synapses[key] = entities.NewSynapse(key, now)
	g.link(from, key)
	g.link(to, key)
	g.addEvent(events.NewSynapseCreated(key, now))
	return key, true, nil
}

// RemoveNeuron deletes the neuron, its page mapping and every synapse it
// participates in, in either direction. Unknown ids are a no-op.
func (g *Graph) RemoveNeuron(id valueobjects.NeuronID) ([]valueobjects.SynapseKey, bool) {
	neuron, ok := g.neurons[id]
	if !ok {
		return nil, false
	}

	now := g.now()
	removed := g.IncidentSynapses(id)
	for _, key := range removed {
		delete(g.synapses, key)
		g.unlink(key.From, key)
		g.unlink(key.To, key)
		g.addEvent(events.NewSynapseRemoved(key, now))
	}

	delete(g.adjacency, id)
	delete(g.pageIndex, neuron.PageID())
	delete(g.neurons, id)
	g.addEvent(events.NewNeuronRemoved(id, neuron.PageID(), now))

	return removed, true
}

// MoveNeuron updates a neuron's position; relationships are unchanged
func (g *Graph) MoveNeuron(id valueobjects.NeuronID, position valueobjects.Position) error {
	neuron, ok := g.neurons[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrNeuronNotFound)
	}
	old := neuron.MoveTo(position)
	g.addEvent(events.NewNeuronMoved(id, old, position, g.now()))
	return nil
}

// Neuron returns a neuron by id
func (g *Graph) Neuron(id valueobjects.NeuronID) (*entities.Neuron, bool) {
	n, ok := g.neurons[id]
	return n, ok
}

// HasNeuron checks if a neuron exists
func (g *Graph) HasNeuron(id valueobjects.NeuronID) bool {
	_, ok := g.neurons[id]
	return ok
}

// NeuronForPage looks up the neuron bound to a page
func (g *Graph) NeuronForPage(pageID valueobjects.PageID) (valueobjects.NeuronID, bool) {
	id, ok := g.pageIndex[pageID]
	return id, ok
}

// Neurons returns all neurons ordered by id
func (g *Graph) Neurons() []*entities.Neuron {
	neurons := make([]*entities.Neuron, 0, len(g.neurons))
	for _, n := range g.neurons {
		neurons = append(neurons, n)
	}
	sort.Slice(neurons, func(i, j int) bool { return neurons[i].ID() < neurons[j].ID() })
	return neurons
}

// Synapses returns all synapses ordered by key
func (g *Graph) Synapses() []*entities.Synapse {
	synapses := make([]*entities.Synapse, 0, len(g.synapses))
	for _, s := range g.synapses {
		synapses = append(synapses, s)
	}
	sort.Slice(synapses, func(i, j int) bool { return synapses[i].Key().Less(synapses[j].Key()) })
	return synapses
}

// Synapse returns the synapse for key
func (g *Graph) Synapse(key valueobjects.SynapseKey) (*entities.Synapse, bool) {
	s, ok := g.synapses[key]
	return s, ok
}

// HasSynapse reports whether the ordered pair is connected
func (g *Graph) HasSynapse(from, to valueobjects.NeuronID) bool {
	_, ok := g.synapses[valueobjects.NewSynapseKey(from, to)]
	return ok
}

// IncidentSynapses returns the keys of every synapse touching id, ordered
func (g *Graph) IncidentSynapses(id valueobjects.NeuronID) []valueobjects.SynapseKey {
	incident := g.adjacency[id]
	keys := make([]valueobjects.SynapseKey, 0, len(incident))
	for key := range incident {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// PageIndex returns a copy of the pageID -> neuronID index
func (g *Graph) PageIndex() map[valueobjects.PageID]valueobjects.NeuronID {
	index := make(map[valueobjects.PageID]valueobjects.NeuronID, len(g.pageIndex))
	for k, v := range g.pageIndex {
		index[k] = v
	}
	return index
}

func (g *Graph) NeuronCount() int  { return len(g.neurons) }
func (g *Graph) SynapseCount() int { return len(g.synapses) }

// LastNeuronID is the highest id ever allocated
func (g *Graph) LastNeuronID() valueobjects.NeuronID {
	return g.lastNeuronID
}

// RaiseLastNeuronID moves the id counter forward, never backward
func (g *Graph) RaiseLastNeuronID(id valueobjects.NeuronID) {
	if id > g.lastNeuronID {
		g.lastNeuronID = id
	}
}

// RefreshFlags re-derives active/current for every neuron in one pass
func (g *Graph) RefreshFlags(active map[valueobjects.NeuronID]bool, current valueobjects.NeuronID) {
	for id, n := range g.neurons {
		n.SetFlags(active[id], !current.IsZero() && id == current)
	}
}

// Validate ensures graph invariants
func (g *Graph) Validate() error {
	if len(g.pageIndex) != len(g.neurons) {
		return fmt.Errorf("page index has %d entries for %d neurons", len(g.pageIndex), len(g.neurons))
	}
	for pageID, id := range g.pageIndex {
		n, ok := g.neurons[id]
		if !ok {
			return fmt.Errorf("page %s maps to removed neuron %s", pageID, id)
		}
		if n.PageID() != pageID {
			return fmt.Errorf("page %s maps to neuron %s bound to %s", pageID, id, n.PageID())
		}
	}
	for id := range g.neurons {
		if id > g.lastNeuronID {
			return fmt.Errorf("neuron %s above last allocated id %s", id, g.lastNeuronID)
		}
	}

	linked := 0
	for key := range g.synapses {
		if key.IsSelfLoop() {
			return fmt.Errorf("self-loop synapse %s", key)
		}
		if _, ok := g.neurons[key.From]; !ok {
			return fmt.Errorf("synapse %s references non-existent source", key)
		}
		if _, ok := g.neurons[key.To]; !ok {
			return fmt.Errorf("synapse %s references non-existent target", key)
		}
		if _, ok := g.adjacency[key.From][key]; !ok {
			return fmt.Errorf("synapse %s missing from source adjacency", key)
		}
		if _, ok := g.adjacency[key.To][key]; !ok {
			return fmt.Errorf("synapse %s missing from target adjacency", key)
		}
	}
	for _, keys := range g.adjacency {
		linked += len(keys)
	}
	if linked != 2*len(g.synapses) {
		return fmt.Errorf("adjacency holds %d links for %d synapses", linked, len(g.synapses))
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	pending := make([]events.DomainEvent, len(g.events))
	copy(pending, g.events)
	return pending
}

// MarkEventsAsCommitted clears all uncommitted events
func (g *Graph) MarkEventsAsCommitted() {
	g.events = []events.DomainEvent{}
}

// Private helper methods

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}

func (g *Graph) insert(id valueobjects.NeuronID, pageID valueobjects.PageID, label string, pos valueobjects.Position, restored bool) error {
	now := g.now()
	neuron, err := entities.NewNeuron(id, pageID, label, pos, now)
	if err != nil {
		return err
	}
	g.neurons[id] = neuron
	g.pageIndex[pageID] = id
	g.addEvent(events.NewNeuronCreated(id, pageID, neuron.Label(), pos, restored, now))
	return nil
}

func (g *Graph) resolvePosition(pageID valueobjects.PageID, explicit *valueobjects.Position) valueobjects.Position {
	if explicit != nil {
		return *explicit
	}
	if g.placer == nil {
		return valueobjects.MustPosition(50, 50)
	}
	return g.placer.Place(pageID, g.Neurons())
}

func (g *Graph) link(id valueobjects.NeuronID, key valueobjects.SynapseKey) {
	set, ok := g.adjacency[id]
	if !ok {
		set = make(map[valueobjects.SynapseKey]struct{})
		g.adjacency[id] = set
	}
	set[key] = struct{}{}
}

func (g *Graph) unlink(id valueobjects.NeuronID, key valueobjects.SynapseKey) {
	if set, ok := g.adjacency[id]; ok {
		delete(set, key)
		if len(set) == 0 {
			delete(g.adjacency, id)
		}
	}
}
