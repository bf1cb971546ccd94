package events

import (
	"time"

	"brainbrowser/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events.
// Events are the notifications the render boundary subscribes to.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event type names
const (
	TypeNeuronCreated  = "neuron.created"
	TypeNeuronMoved    = "neuron.moved"
	TypeNeuronRemoved  = "neuron.removed"
	TypeSynapseCreated = "synapse.created"
	TypeSynapsePulsed  = "synapse.pulsed"
	TypeSynapseRemoved = "synapse.removed"
	TypeTabCreated     = "tab.created"
	TypeTabNavigated   = "tab.navigated"
	TypeTabClosed      = "tab.closed"
	TypeTabActivated   = "tab.activated"
	TypeMinimapUpdated = "minimap.updated"
	TypeViewChanged    = "view.changed"
	TypeConfigApplied  = "config.applied"
)

// GraphAggregateID is the aggregate id used by graph events; a session owns
// exactly one graph.
const GraphAggregateID = "graph"

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Neuron Events

// NeuronCreated is raised when a page gets its neuron
type NeuronCreated struct {
	BaseEvent
	NeuronID valueobjects.NeuronID `json:"neuron_id"`
	PageID   valueobjects.PageID   `json:"page_id"`
	Label    string                `json:"label"`
	Position valueobjects.Position `json:"position"`
	Restored bool                  `json:"restored"`
}

// NewNeuronCreated creates a NeuronCreated event
func NewNeuronCreated(id valueobjects.NeuronID, pageID valueobjects.PageID, label string, pos valueobjects.Position, restored bool, timestamp time.Time) NeuronCreated {
	return NeuronCreated{
		BaseEvent: newBase(GraphAggregateID, TypeNeuronCreated, timestamp),
		NeuronID:  id,
		PageID:    pageID,
		Label:     label,
		Position:  pos,
		Restored:  restored,
	}
}

// NeuronMoved is raised when a neuron is dragged to a new position
type NeuronMoved struct {
	BaseEvent
	NeuronID    valueobjects.NeuronID `json:"neuron_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewNeuronMoved creates a NeuronMoved event
func NewNeuronMoved(id valueobjects.NeuronID, oldPos, newPos valueobjects.Position, timestamp time.Time) NeuronMoved {
	return NeuronMoved{
		BaseEvent:   newBase(GraphAggregateID, TypeNeuronMoved, timestamp),
		NeuronID:    id,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NeuronRemoved is raised after a neuron and its synapses are gone
type NeuronRemoved struct {
	BaseEvent
	NeuronID valueobjects.NeuronID `json:"neuron_id"`
	PageID   valueobjects.PageID   `json:"page_id"`
}

// NewNeuronRemoved creates a NeuronRemoved event
func NewNeuronRemoved(id valueobjects.NeuronID, pageID valueobjects.PageID, timestamp time.Time) NeuronRemoved {
	return NeuronRemoved{
		BaseEvent: newBase(GraphAggregateID, TypeNeuronRemoved, timestamp),
		NeuronID:  id,
		PageID:    pageID,
	}
}

// Synapse Events

// SynapseCreated is raised when a navigation adds a new edge
type SynapseCreated struct {
	BaseEvent
	Key valueobjects.SynapseKey `json:"key"`
}

// NewSynapseCreated creates a SynapseCreated event
func NewSynapseCreated(key valueobjects.SynapseKey, timestamp time.Time) SynapseCreated {
	return SynapseCreated{
		BaseEvent: newBase(GraphAggregateID, TypeSynapseCreated, timestamp),
		Key:       key,
	}
}

// SynapsePulsed is raised when an existing edge is traversed again
type SynapsePulsed struct {
	BaseEvent
	Key        valueobjects.SynapseKey `json:"key"`
	Traversals int                     `json:"traversals"`
}

// NewSynapsePulsed creates a SynapsePulsed event
func NewSynapsePulsed(key valueobjects.SynapseKey, traversals int, timestamp time.Time) SynapsePulsed {
	return SynapsePulsed{
		BaseEvent:  newBase(GraphAggregateID, TypeSynapsePulsed, timestamp),
		Key:        key,
		Traversals: traversals,
	}
}

// SynapseRemoved is raised when an endpoint removal cascades to an edge
type SynapseRemoved struct {
	BaseEvent
	Key valueobjects.SynapseKey `json:"key"`
}

// NewSynapseRemoved creates a SynapseRemoved event
func NewSynapseRemoved(key valueobjects.SynapseKey, timestamp time.Time) SynapseRemoved {
	return SynapseRemoved{
		BaseEvent: newBase(GraphAggregateID, TypeSynapseRemoved, timestamp),
		Key:       key,
	}
}
