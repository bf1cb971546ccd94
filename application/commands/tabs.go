package commands

import (
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/pkg/utils"
)

// CreateTabCommand opens a tab on the home page
type CreateTabCommand struct{}

// Validate validates the command
func (cmd CreateTabCommand) Validate() error { return nil }

// CloseTabCommand closes a tab. Its neuron stays in the graph.
type CloseTabCommand struct {
	TabID valueobjects.TabID `json:"tabId" validate:"required"`
}

// Validate validates the command
func (cmd CloseTabCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// ActivateTabCommand switches the active tab
type ActivateTabCommand struct {
	TabID valueobjects.TabID `json:"tabId" validate:"required"`
}

// Validate validates the command
func (cmd ActivateTabCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}
