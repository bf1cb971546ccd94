package valueobjects

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	neuronIDPrefix = "neuron-"
	tabIDPrefix    = "tab-"
)

// NeuronID identifies a neuron. Ids are allocated monotonically from 1;
// the zero value means "no neuron".
type NeuronID uint64

// ParseNeuronID accepts both the canonical "neuron-N" form and a bare number.
func ParseNeuronID(s string) (NeuronID, error) {
	n, err := parseSequence(s, neuronIDPrefix)
	if err != nil {
		return 0, fmt.Errorf("invalid neuron id %q: %w", s, err)
	}
	return NeuronID(n), nil
}

// String returns the canonical "neuron-N" form
func (id NeuronID) String() string {
	return neuronIDPrefix + strconv.FormatUint(uint64(id), 10)
}

// IsZero reports whether the id is unset
func (id NeuronID) IsZero() bool {
	return id == 0
}

// Next returns the id following this one
func (id NeuronID) Next() NeuronID {
	return id + 1
}

// MarshalText lets NeuronID act as a JSON string and map key
func (id NeuronID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *NeuronID) UnmarshalText(data []byte) error {
	parsed, err := ParseNeuronID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// TabID identifies a tab, allocated monotonically from 1.
type TabID uint64

// ParseTabID accepts "tab-N" or a bare number.
func ParseTabID(s string) (TabID, error) {
	n, err := parseSequence(s, tabIDPrefix)
	if err != nil {
		return 0, fmt.Errorf("invalid tab id %q: %w", s, err)
	}
	return TabID(n), nil
}

func (id TabID) String() string {
	return tabIDPrefix + strconv.FormatUint(uint64(id), 10)
}

func (id TabID) IsZero() bool {
	return id == 0
}

func (id TabID) Next() TabID {
	return id + 1
}

func (id TabID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *TabID) UnmarshalText(data []byte) error {
	parsed, err := ParseTabID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseSequence(s, prefix string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty id")
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, prefix), 10, 64)
	if err != nil {
		return 0, errors.New("not a sequence number")
	}
	if n == 0 {
		return 0, errors.New("sequence numbers start at 1")
	}
	return n, nil
}
