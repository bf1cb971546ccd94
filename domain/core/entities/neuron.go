package entities

import (
	"time"

	"brainbrowser/domain/core/valueobjects"
	pkgerrors "brainbrowser/pkg/errors"
)

// Neuron is the graph node for one distinct page identity.
// The active and current flags are derived state owned by tab activation.
type Neuron struct {
	id        valueobjects.NeuronID
	pageID    valueobjects.PageID
	label     string
	position  valueobjects.Position
	active    bool
	current   bool
	createdAt time.Time
}

// NewNeuron creates a neuron bound to a page
func NewNeuron(id valueobjects.NeuronID, pageID valueobjects.PageID, label string, position valueobjects.Position, now time.Time) (*Neuron, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("neuron id cannot be zero")
	}
	if pageID.IsZero() {
		return nil, pkgerrors.NewValidationError("pageID cannot be empty")
	}
	if label == "" {
		label = pageID.String()
	}

	return &Neuron{
		id:        id,
		pageID:    pageID,
		label:     label,
		position:  position,
		createdAt: now,
	}, nil
}

// ID returns the neuron's identifier
func (n *Neuron) ID() valueobjects.NeuronID {
	return n.id
}

// PageID returns the page this neuron stands for
func (n *Neuron) PageID() valueobjects.PageID {
	return n.pageID
}

// Label returns the display label
func (n *Neuron) Label() string {
	return n.label
}

// Position returns the position in layout space
func (n *Neuron) Position() valueobjects.Position {
	return n.position
}

// IsActive reports whether some open tab is bound to this neuron
func (n *Neuron) IsActive() bool {
	return n.active
}

// IsCurrent reports whether the active tab is bound to this neuron
func (n *Neuron) IsCurrent() bool {
	return n.current
}

// CreatedAt returns when the neuron was created
func (n *Neuron) CreatedAt() time.Time {
	return n.createdAt
}

// MoveTo updates the position and returns the previous one
func (n *Neuron) MoveTo(position valueobjects.Position) valueobjects.Position {
	old := n.position
	n.position = position
	return old
}

// SetFlags replaces both derived flags
func (n *Neuron) SetFlags(active, current bool) {
	n.active = active
	n.current = current
}

// ClearFlags clears both derived flags
func (n *Neuron) ClearFlags() {
	n.active = false
	n.current = false
}
