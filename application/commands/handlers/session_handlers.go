// Package handlers binds the browsing commands to the session
package handlers

import (
	"context"

	"go.uber.org/zap"

	"brainbrowser/application/commands"
	"brainbrowser/application/commands/bus"
	"brainbrowser/application/services"
	"brainbrowser/application/session"
	domainconfig "brainbrowser/domain/config"
	"brainbrowser/domain/core/valueobjects"
)

// TabResult reports the tab a command opened
type TabResult struct {
	TabID valueobjects.TabID `json:"tabId"`
}

// SubmitURLResult reports how URL bar input was classified and where it
// led
type SubmitURLResult struct {
	Target     services.URLTarget      `json:"target"`
	Navigation services.NavigateResult `json:"navigation"`
}

// ConnectResult reports the synapse a connect command touched
type ConnectResult struct {
	Synapse valueobjects.SynapseKey `json:"synapse"`
}

// PositionResult reports where a dragged neuron landed
type PositionResult struct {
	NeuronID valueobjects.NeuronID `json:"neuronId"`
	Position valueobjects.Position `json:"position"`
}

// ConfigResult lists the effects of a configuration change
type ConfigResult struct {
	Effects []domainconfig.Effect     `json:"effects"`
	Config  domainconfig.EngineConfig `json:"config"`
}

// SessionHandlers executes commands against one session
type SessionHandlers struct {
	session *session.Session
	logger  *zap.Logger
}

// NewSessionHandlers creates the command handlers
func NewSessionHandlers(s *session.Session, logger *zap.Logger) *SessionHandlers {
	return &SessionHandlers{session: s, logger: logger}
}

// Register adds every command handler to the bus
func (h *SessionHandlers) Register(b *bus.CommandBus) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateTabCommand{}, bus.HandlerOf(h.CreateTab)},
		{commands.CloseTabCommand{}, bus.HandlerOf(h.CloseTab)},
		{commands.ActivateTabCommand{}, bus.HandlerOf(h.ActivateTab)},
		{commands.NavigateCommand{}, bus.HandlerOf(h.Navigate)},
		{commands.SubmitURLCommand{}, bus.HandlerOf(h.SubmitURL)},
		{commands.OpenInNewTabCommand{}, bus.HandlerOf(h.OpenInNewTab)},
		{commands.ActivateNeuronCommand{}, bus.HandlerOf(h.ActivateNeuron)},
		{commands.FocusNeuronCommand{}, bus.HandlerOf(h.FocusNeuron)},
		{commands.ConnectToCurrentCommand{}, bus.HandlerOf(h.ConnectToCurrent)},
		{commands.RemoveNeuronCommand{}, bus.HandlerOf(h.RemoveNeuron)},
		{commands.MoveNeuronCommand{}, bus.HandlerOf(h.MoveNeuron)},
		{commands.DragNeuronCommand{}, bus.HandlerOf(h.DragNeuron)},
		{commands.ZoomCommand{}, bus.HandlerOf(h.Zoom)},
		{commands.PanCommand{}, bus.HandlerOf(h.Pan)},
		{commands.ResetViewCommand{}, bus.HandlerOf(h.ResetView)},
		{commands.ResizeCommand{}, bus.HandlerOf(h.Resize)},
		{commands.MinimapClickCommand{}, bus.HandlerOf(h.MinimapClick)},
		{commands.ApplyConfigCommand{}, bus.HandlerOf(h.ApplyConfig)},
		{commands.ReplaceConfigCommand{}, bus.HandlerOf(h.ReplaceConfig)},
		{commands.RecordFrameRateCommand{}, bus.HandlerOf(h.RecordFrameRate)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	h.logger.Debug("Registered command handlers", zap.Int("count", len(registrations)))
	return nil
}

func (h *SessionHandlers) CreateTab(ctx context.Context, _ commands.CreateTabCommand) (TabResult, error) {
	id, err := h.session.CreateTab(ctx)
	return TabResult{TabID: id}, err
}

func (h *SessionHandlers) CloseTab(ctx context.Context, cmd commands.CloseTabCommand) (any, error) {
	return nil, h.session.CloseTab(ctx, cmd.TabID)
}

func (h *SessionHandlers) ActivateTab(ctx context.Context, cmd commands.ActivateTabCommand) (any, error) {
	return nil, h.session.ActivateTab(ctx, cmd.TabID)
}

func (h *SessionHandlers) Navigate(ctx context.Context, cmd commands.NavigateCommand) (services.NavigateResult, error) {
	return h.session.Navigate(ctx, cmd.Request())
}

func (h *SessionHandlers) SubmitURL(ctx context.Context, cmd commands.SubmitURLCommand) (SubmitURLResult, error) {
	target, result, err := h.session.SubmitURL(ctx, cmd.URL)
	return SubmitURLResult{Target: target, Navigation: result}, err
}

func (h *SessionHandlers) OpenInNewTab(ctx context.Context, cmd commands.OpenInNewTabCommand) (services.NavigateResult, error) {
	return h.session.OpenInNewTab(ctx, cmd.PageID, cmd.LinkFromActive())
}

func (h *SessionHandlers) ActivateNeuron(ctx context.Context, cmd commands.ActivateNeuronCommand) (services.NavigateResult, error) {
	return h.session.ActivateNeuron(ctx, cmd.NeuronID)
}

func (h *SessionHandlers) FocusNeuron(ctx context.Context, cmd commands.FocusNeuronCommand) (valueobjects.ViewTransform, error) {
	return h.session.FocusNeuron(ctx, cmd.NeuronID)
}

func (h *SessionHandlers) ConnectToCurrent(ctx context.Context, cmd commands.ConnectToCurrentCommand) (ConnectResult, error) {
	key, err := h.session.ConnectToCurrent(ctx, cmd.NeuronID)
	return ConnectResult{Synapse: key}, err
}

func (h *SessionHandlers) RemoveNeuron(ctx context.Context, cmd commands.RemoveNeuronCommand) (any, error) {
	return nil, h.session.RemoveNeuron(ctx, cmd.NeuronID)
}

func (h *SessionHandlers) MoveNeuron(ctx context.Context, cmd commands.MoveNeuronCommand) (PositionResult, error) {
	position, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return PositionResult{}, err
	}
	return PositionResult{NeuronID: cmd.NeuronID, Position: position}, h.session.MoveNeuron(ctx, cmd.NeuronID, position)
}

func (h *SessionHandlers) DragNeuron(ctx context.Context, cmd commands.DragNeuronCommand) (PositionResult, error) {
	position, err := h.session.DragNeuron(ctx, cmd.NeuronID, cmd.DX, cmd.DY)
	return PositionResult{NeuronID: cmd.NeuronID, Position: position}, err
}

func (h *SessionHandlers) Zoom(ctx context.Context, cmd commands.ZoomCommand) (valueobjects.ViewTransform, error) {
	return h.session.Zoom(ctx, cmd.Delta), nil
}

func (h *SessionHandlers) Pan(ctx context.Context, cmd commands.PanCommand) (valueobjects.ViewTransform, error) {
	return h.session.Pan(ctx, cmd.X, cmd.Y, cmd.Animate), nil
}

func (h *SessionHandlers) ResetView(ctx context.Context, _ commands.ResetViewCommand) (valueobjects.ViewTransform, error) {
	return h.session.ResetView(ctx), nil
}

func (h *SessionHandlers) Resize(ctx context.Context, cmd commands.ResizeCommand) (any, error) {
	return nil, h.session.Resize(ctx, cmd.Surfaces())
}

func (h *SessionHandlers) MinimapClick(ctx context.Context, cmd commands.MinimapClickCommand) (valueobjects.ViewTransform, error) {
	return h.session.ClickMinimap(ctx, cmd.PX, cmd.PY), nil
}

func (h *SessionHandlers) ApplyConfig(ctx context.Context, cmd commands.ApplyConfigCommand) (ConfigResult, error) {
	effects, err := h.session.ApplyConfig(ctx, cmd.Patch)
	return ConfigResult{Effects: effects, Config: h.session.Config()}, err
}

func (h *SessionHandlers) ReplaceConfig(ctx context.Context, cmd commands.ReplaceConfigCommand) (ConfigResult, error) {
	effects, err := h.session.ReplaceConfig(ctx, cmd.Config)
	return ConfigResult{Effects: effects, Config: h.session.Config()}, err
}

func (h *SessionHandlers) RecordFrameRate(_ context.Context, cmd commands.RecordFrameRateCommand) (any, error) {
	h.session.RecordFrameRate(cmd.FPS)
	return nil, nil
}
