package handlers

import (
	"net/http"

	"brainbrowser/application/commands"
	"brainbrowser/application/commands/bus"
	"brainbrowser/application/queries"
	querybus "brainbrowser/application/queries/bus"
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/pkg/common"
	pkgerrors "brainbrowser/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; config patches are the largest
const maxBodyBytes = 64 * 1024

// SessionHandler maps the browsing API onto the command and query buses
type SessionHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// send dispatches cmd and writes the result with status
func (h *SessionHandler) send(w http.ResponseWriter, r *http.Request, cmd bus.Command, status int) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	common.RespondJSON(w, status, result)
}

func (h *SessionHandler) ask(w http.ResponseWriter, r *http.Request, q querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// decode reads the JSON body into v, reporting false after writing a 400
func (h *SessionHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(r, v, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func (h *SessionHandler) neuronParam(w http.ResponseWriter, r *http.Request) (valueobjects.NeuronID, bool) {
	id, err := valueobjects.ParseNeuronID(chi.URLParam(r, "neuronID"))
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return 0, false
	}
	return id, true
}

func (h *SessionHandler) tabParam(w http.ResponseWriter, r *http.Request) (valueobjects.TabID, bool) {
	id, err := valueobjects.ParseTabID(chi.URLParam(r, "tabID"))
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return 0, false
	}
	return id, true
}

// CreateTab handles POST /tabs
func (h *SessionHandler) CreateTab(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.CreateTabCommand{}, http.StatusCreated)
}

// CloseTab handles DELETE /tabs/{tabID}
func (h *SessionHandler) CloseTab(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.tabParam(w, r); ok {
		h.send(w, r, commands.CloseTabCommand{TabID: id}, http.StatusOK)
	}
}

// ActivateTab handles POST /tabs/{tabID}/activate
func (h *SessionHandler) ActivateTab(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.tabParam(w, r); ok {
		h.send(w, r, commands.ActivateTabCommand{TabID: id}, http.StatusOK)
	}
}

// Navigate handles POST /navigate
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var cmd commands.NavigateCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusOK)
	}
}

// SubmitURL handles POST /navigate/url
func (h *SessionHandler) SubmitURL(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SubmitURLCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusOK)
	}
}

// OpenInNewTab handles POST /open-in-new-tab
func (h *SessionHandler) OpenInNewTab(w http.ResponseWriter, r *http.Request) {
	var cmd commands.OpenInNewTabCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusCreated)
	}
}

// ActivateNeuron handles POST /neurons/{neuronID}/activate
func (h *SessionHandler) ActivateNeuron(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.neuronParam(w, r); ok {
		h.send(w, r, commands.ActivateNeuronCommand{NeuronID: id}, http.StatusOK)
	}
}

// FocusNeuron handles POST /neurons/{neuronID}/focus
func (h *SessionHandler) FocusNeuron(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.neuronParam(w, r); ok {
		h.send(w, r, commands.FocusNeuronCommand{NeuronID: id}, http.StatusOK)
	}
}

// ConnectToCurrent handles POST /neurons/{neuronID}/connect
func (h *SessionHandler) ConnectToCurrent(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.neuronParam(w, r); ok {
		h.send(w, r, commands.ConnectToCurrentCommand{NeuronID: id}, http.StatusOK)
	}
}

// MoveNeuron handles PUT /neurons/{neuronID}/position
func (h *SessionHandler) MoveNeuron(w http.ResponseWriter, r *http.Request) {
	id, ok := h.neuronParam(w, r)
	if !ok {
		return
	}
	var body struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if h.decode(w, r, &body) {
		h.send(w, r, commands.MoveNeuronCommand{NeuronID: id, X: body.X, Y: body.Y}, http.StatusOK)
	}
}

// DragNeuron handles POST /neurons/{neuronID}/drag
func (h *SessionHandler) DragNeuron(w http.ResponseWriter, r *http.Request) {
	id, ok := h.neuronParam(w, r)
	if !ok {
		return
	}
	var body struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if h.decode(w, r, &body) {
		h.send(w, r, commands.DragNeuronCommand{NeuronID: id, DX: body.DX, DY: body.DY}, http.StatusOK)
	}
}

// RemoveNeuron handles DELETE /neurons/{neuronID}
func (h *SessionHandler) RemoveNeuron(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.neuronParam(w, r); ok {
		h.send(w, r, commands.RemoveNeuronCommand{NeuronID: id}, http.StatusOK)
	}
}

// Zoom handles POST /view/zoom
func (h *SessionHandler) Zoom(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ZoomCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusOK)
	}
}

// Pan handles POST /view/pan
func (h *SessionHandler) Pan(w http.ResponseWriter, r *http.Request) {
	var cmd commands.PanCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusOK)
	}
}

// ResetView handles POST /view/reset
func (h *SessionHandler) ResetView(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.ResetViewCommand{}, http.StatusOK)
}

// Resize handles POST /view/resize
func (h *SessionHandler) Resize(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ResizeCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusOK)
	}
}

// MinimapClick handles POST /minimap/click
func (h *SessionHandler) MinimapClick(w http.ResponseWriter, r *http.Request) {
	var cmd commands.MinimapClickCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusOK)
	}
}

// ApplyConfig handles PUT /config
func (h *SessionHandler) ApplyConfig(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ApplyConfigCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusOK)
	}
}

// RecordFrameRate handles POST /performance/frame-rate
func (h *SessionHandler) RecordFrameRate(w http.ResponseWriter, r *http.Request) {
	var cmd commands.RecordFrameRateCommand
	if h.decode(w, r, &cmd) {
		h.send(w, r, cmd, http.StatusOK)
	}
}

// GetGraph handles GET /graph
func (h *SessionHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetGraphQuery{})
}

// GetTabs handles GET /tabs
func (h *SessionHandler) GetTabs(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetTabsQuery{})
}

// GetMinimap handles GET /minimap
func (h *SessionHandler) GetMinimap(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetMinimapQuery{})
}

// GetStats handles GET /stats
func (h *SessionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetStatsQuery{})
}

// GetConfig handles GET /config
func (h *SessionHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetConfigQuery{})
}

// GetView handles GET /view
func (h *SessionHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetViewQuery{})
}
