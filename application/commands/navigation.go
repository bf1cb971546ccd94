package commands

import (
	"brainbrowser/application/services"
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/pkg/utils"
)

// NavigateCommand moves a tab to a catalog page. TabID zero means the
// active tab; CreateSynapse defaults to true.
type NavigateCommand struct {
	PageID         valueobjects.PageID   `json:"pageId" validate:"required,max=200"`
	TabID          valueobjects.TabID    `json:"tabId,omitempty"`
	SourceNeuronID valueobjects.NeuronID `json:"sourceNeuronId,omitempty"`
	CreateSynapse  *bool                 `json:"createSynapse,omitempty"`
}

// Validate validates the command
func (cmd NavigateCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// Request converts the command to a TabManager request
func (cmd NavigateCommand) Request() services.NavigateRequest {
	createSynapse := true
	if cmd.CreateSynapse != nil {
		createSynapse = *cmd.CreateSynapse
	}
	return services.NavigateRequest{
		PageID:         cmd.PageID,
		TabID:          cmd.TabID,
		SourceNeuronID: cmd.SourceNeuronID,
		CreateSynapse:  createSynapse,
	}
}

// SubmitURLCommand is URL bar input
type SubmitURLCommand struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// Validate validates the command
func (cmd SubmitURLCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// OpenInNewTabCommand opens a page in a new tab. FromActive defaults to
// true, linking the active tab's neuron to the page.
type OpenInNewTabCommand struct {
	PageID     valueobjects.PageID `json:"pageId" validate:"required,max=200"`
	FromActive *bool               `json:"fromActive,omitempty"`
}

// Validate validates the command
func (cmd OpenInNewTabCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// LinkFromActive resolves the FromActive default
func (cmd OpenInNewTabCommand) LinkFromActive() bool {
	return cmd.FromActive == nil || *cmd.FromActive
}
