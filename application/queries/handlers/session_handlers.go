// Package handlers answers the browsing read models from the session
package handlers

import (
	"context"

	"brainbrowser/application/dto"
	"brainbrowser/application/queries"
	"brainbrowser/application/queries/bus"
	"brainbrowser/application/services"
	"brainbrowser/application/session"
	domainconfig "brainbrowser/domain/config"
	"brainbrowser/domain/core/valueobjects"
)

// ViewResult is the primary view transform with any pan animation in
// flight
type ViewResult struct {
	Transform valueobjects.ViewTransform `json:"transform"`
	Animation *services.PanAnimation     `json:"animation,omitempty"`
}

// SessionQueries answers queries from one session
type SessionQueries struct {
	session *session.Session
}

// NewSessionQueries creates the query handlers
func NewSessionQueries(s *session.Session) *SessionQueries {
	return &SessionQueries{session: s}
}

// Register adds every query handler to the bus
func (h *SessionQueries) Register(b *bus.QueryBus) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetGraphQuery{}, bus.HandlerOf(h.Graph)},
		{queries.GetTabsQuery{}, bus.HandlerOf(h.Tabs)},
		{queries.GetMinimapQuery{}, bus.HandlerOf(h.Minimap)},
		{queries.GetStatsQuery{}, bus.HandlerOf(h.Stats)},
		{queries.GetConfigQuery{}, bus.HandlerOf(h.Config)},
		{queries.GetViewQuery{}, bus.HandlerOf(h.View)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *SessionQueries) Graph(_ context.Context, _ queries.GetGraphQuery) (dto.GraphView, error) {
	return h.session.Graph(), nil
}

func (h *SessionQueries) Tabs(_ context.Context, _ queries.GetTabsQuery) (dto.TabsView, error) {
	return h.session.Tabs(), nil
}

func (h *SessionQueries) Minimap(_ context.Context, _ queries.GetMinimapQuery) (dto.MinimapView, error) {
	return h.session.Minimap(), nil
}

func (h *SessionQueries) Stats(_ context.Context, _ queries.GetStatsQuery) (dto.StatsView, error) {
	return h.session.Stats(), nil
}

func (h *SessionQueries) Config(_ context.Context, _ queries.GetConfigQuery) (domainconfig.EngineConfig, error) {
	return h.session.Config(), nil
}

func (h *SessionQueries) View(_ context.Context, _ queries.GetViewQuery) (ViewResult, error) {
	transform, anim := h.session.View()
	return ViewResult{Transform: transform, Animation: anim}, nil
}
