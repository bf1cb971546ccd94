package valueobjects

import (
	"fmt"
	"strings"
)

// SynapseKey is the identity of a directed synapse: the ordered pair of its
// endpoint neurons. It is comparable and safe to use as a map key.
type SynapseKey struct {
	From NeuronID `json:"from"`
	To   NeuronID `json:"to"`
}

// NewSynapseKey builds the key for the edge from -> to
func NewSynapseKey(from, to NeuronID) SynapseKey {
	return SynapseKey{From: from, To: to}
}

// IsSelfLoop reports whether both endpoints are the same neuron
func (k SynapseKey) IsSelfLoop() bool {
	return k.From == k.To
}

// Touches reports whether id is either endpoint
func (k SynapseKey) Touches(id NeuronID) bool {
	return k.From == id || k.To == id
}

// Reverse returns the key of the opposite direction
func (k SynapseKey) Reverse() SynapseKey {
	return SynapseKey{From: k.To, To: k.From}
}

// Less orders keys by source then target
func (k SynapseKey) Less(other SynapseKey) bool {
	if k.From != other.From {
		return k.From < other.From
	}
	return k.To < other.To
}

func (k SynapseKey) String() string {
	return k.From.String() + "->" + k.To.String()
}

// ParseLegacySynapseKey decodes the underscore-joined form
// "neuron-1_neuron-2" found in older persisted records.
func ParseLegacySynapseKey(s string) (SynapseKey, error) {
	from, to, ok := strings.Cut(s, "_")
	if !ok {
		return SynapseKey{}, fmt.Errorf("invalid synapse key %q: missing separator", s)
	}
	fromID, err := ParseNeuronID(from)
	if err != nil {
		return SynapseKey{}, err
	}
	toID, err := ParseNeuronID(to)
	if err != nil {
		return SynapseKey{}, err
	}
	return SynapseKey{From: fromID, To: toID}, nil
}
