package dto

import (
	"fmt"

	"github.com/goccy/go-json"

	"brainbrowser/domain/core/valueobjects"
)

// RecordVersion is the current persisted record schema. Records without a
// version field are the legacy shape: neuron coordinates under left/top and
// synapses as "neuron-1_neuron-2" strings.
const RecordVersion = 2

// SessionRecord is the persisted snapshot of a browsing session. Tabs are
// not part of it.
type SessionRecord struct {
	Version      int                     `json:"version,omitempty"`
	Neurons      map[string]NeuronRecord `json:"neurons"`
	Synapses     []SynapseRecord         `json:"synapses"`
	PageNeurons  map[string]string       `json:"pageNeurons"`
	LastNeuronID uint64                  `json:"lastNeuronId"`
	LastTabID    uint64                  `json:"lastTabId"`
	Config       json.RawMessage         `json:"config,omitempty"`
}

// IsLegacy reports whether the record predates versioning
func (r *SessionRecord) IsLegacy() bool {
	return r.Version == 0
}

// NeuronRecord is one persisted neuron
type NeuronRecord struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	PageID string  `json:"pageId"`
	Label  string  `json:"label"`
}

// UnmarshalJSON accepts both x/y and the legacy left/top coordinates
func (n *NeuronRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		X      *float64 `json:"x"`
		Y      *float64 `json:"y"`
		Left   *float64 `json:"left"`
		Top    *float64 `json:"top"`
		PageID string   `json:"pageId"`
		Label  string   `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.PageID = raw.PageID
	n.Label = raw.Label
	n.X = firstOf(raw.X, raw.Left)
	n.Y = firstOf(raw.Y, raw.Top)
	return nil
}

// Position converts the stored coordinates
func (n NeuronRecord) Position() (valueobjects.Position, error) {
	return valueobjects.NewPosition(n.X, n.Y)
}

// SynapseRecord is one persisted synapse pair
type SynapseRecord struct {
	From valueobjects.NeuronID `json:"from"`
	To   valueobjects.NeuronID `json:"to"`
}

// Key returns the structural key
func (s SynapseRecord) Key() valueobjects.SynapseKey {
	return valueobjects.NewSynapseKey(s.From, s.To)
}

// UnmarshalJSON accepts {"from","to"} objects and legacy
// "neuron-1_neuron-2" strings
func (s *SynapseRecord) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		key, err := valueobjects.ParseLegacySynapseKey(legacy)
		if err != nil {
			return err
		}
		s.From, s.To = key.From, key.To
		return nil
	}

	var raw struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("synapse record: %w", err)
	}
	from, err := valueobjects.ParseNeuronID(raw.From)
	if err != nil {
		return err
	}
	to, err := valueobjects.ParseNeuronID(raw.To)
	if err != nil {
		return err
	}
	s.From, s.To = from, to
	return nil
}

func firstOf(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
