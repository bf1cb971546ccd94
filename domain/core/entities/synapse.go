package entities

import (
	"time"

	"brainbrowser/domain/core/valueobjects"
)

// Synapse is a directed edge recording an observed navigation
type Synapse struct {
	key        valueobjects.SynapseKey
	createdAt  time.Time
	lastPulse  time.Time
	traversals int
}

// NewSynapse creates an edge for key
func NewSynapse(key valueobjects.SynapseKey, now time.Time) *Synapse {
	return &Synapse{key: key, createdAt: now, lastPulse: now, traversals: 1}
}

func (s *Synapse) Key() valueobjects.SynapseKey { return s.key }
func (s *Synapse) From() valueobjects.NeuronID  { return s.key.From }
func (s *Synapse) To() valueobjects.NeuronID    { return s.key.To }
func (s *Synapse) CreatedAt() time.Time         { return s.createdAt }
func (s *Synapse) LastPulse() time.Time         { return s.lastPulse }

// Traversals counts how often the navigation was observed
func (s *Synapse) Traversals() int {
	return s.traversals
}

// Pulse records another traversal of the edge
func (s *Synapse) Pulse(now time.Time) int {
	s.traversals++
	s.lastPulse = now
	return s.traversals
}
