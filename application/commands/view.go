package commands

import (
	"github.com/goccy/go-json"

	"brainbrowser/application/services"
	domainconfig "brainbrowser/domain/config"
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/pkg/utils"
)

// ZoomCommand changes the view scale by Delta
type ZoomCommand struct {
	Delta float64 `json:"delta" validate:"required,gte=-3,lte=3"`
}

// Validate validates the command
func (cmd ZoomCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// PanCommand moves the view to (X, Y) pixels
type PanCommand struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Animate bool    `json:"animate"`
}

// Validate validates the command
func (cmd PanCommand) Validate() error { return nil }

// ResetViewCommand returns to unit scale and no pan
type ResetViewCommand struct{}

// Validate validates the command
func (cmd ResetViewCommand) Validate() error { return nil }

// ResizeCommand reports new renderer surface sizes in pixels
type ResizeCommand struct {
	Brain     valueobjects.Size `json:"brain"`
	Container valueobjects.Size `json:"container"`
	Minimap   valueobjects.Size `json:"minimap"`
}

// Validate validates the command
func (cmd ResizeCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// Surfaces converts the command to view surfaces
func (cmd ResizeCommand) Surfaces() services.Surfaces {
	return services.Surfaces{Brain: cmd.Brain, Container: cmd.Container, Minimap: cmd.Minimap}
}

// MinimapClickCommand is a click at fractions of the minimap size
type MinimapClickCommand struct {
	PX float64 `json:"px" validate:"gte=0,lte=1"`
	PY float64 `json:"py" validate:"gte=0,lte=1"`
}

// Validate validates the command
func (cmd MinimapClickCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// ApplyConfigCommand merges a JSON object over the engine configuration
type ApplyConfigCommand struct {
	Patch json.RawMessage `json:"patch" validate:"required"`
}

// Validate validates the command
func (cmd ApplyConfigCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// ReplaceConfigCommand installs a complete engine configuration, as read
// from a watched config file
type ReplaceConfigCommand struct {
	Config domainconfig.EngineConfig `json:"config"`
}

// Validate validates the command
func (cmd ReplaceConfigCommand) Validate() error {
	return cmd.Config.Validate()
}

// RecordFrameRateCommand is a renderer frame-rate sample
type RecordFrameRateCommand struct {
	FPS float64 `json:"fps" validate:"gt=0,lte=1000"`
}

// Validate validates the command
func (cmd RecordFrameRateCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}
