package commands

import (
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/pkg/utils"
)

// ActivateNeuronCommand is a click on a neuron
type ActivateNeuronCommand struct {
	NeuronID valueobjects.NeuronID `json:"neuronId" validate:"required"`
}

// Validate validates the command
func (cmd ActivateNeuronCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// FocusNeuronCommand centres the view on a neuron
type FocusNeuronCommand struct {
	NeuronID valueobjects.NeuronID `json:"neuronId" validate:"required"`
}

// Validate validates the command
func (cmd FocusNeuronCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// ConnectToCurrentCommand links the active tab's neuron to NeuronID
type ConnectToCurrentCommand struct {
	NeuronID valueobjects.NeuronID `json:"neuronId" validate:"required"`
}

// Validate validates the command
func (cmd ConnectToCurrentCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// RemoveNeuronCommand deletes a neuron, its synapses and the tabs
// showing it
type RemoveNeuronCommand struct {
	NeuronID valueobjects.NeuronID `json:"neuronId" validate:"required"`
}

// Validate validates the command
func (cmd RemoveNeuronCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// MoveNeuronCommand places a neuron at layout coordinates in [0, 100]
type MoveNeuronCommand struct {
	NeuronID valueobjects.NeuronID `json:"neuronId" validate:"required"`
	X        float64               `json:"x" validate:"gte=0,lte=100"`
	Y        float64               `json:"y" validate:"gte=0,lte=100"`
}

// Validate validates the command
func (cmd MoveNeuronCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// DragNeuronCommand moves a neuron by a pixel delta
type DragNeuronCommand struct {
	NeuronID valueobjects.NeuronID `json:"neuronId" validate:"required"`
	DX       float64               `json:"dx"`
	DY       float64               `json:"dy"`
}

// Validate validates the command
func (cmd DragNeuronCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}
