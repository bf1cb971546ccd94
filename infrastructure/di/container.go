package di

import (
	"net/http"

	"brainbrowser/application/commands/bus"
	querybus "brainbrowser/application/queries/bus"
	"brainbrowser/application/session"
	"brainbrowser/infrastructure/config"
	"brainbrowser/infrastructure/messaging"
	"brainbrowser/infrastructure/observability"
	"brainbrowser/infrastructure/persistence"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logging    *observability.Logging
	Logger     *zap.Logger
	Collector  *observability.Collector
	Backend    StoreBackend
	Store      *persistence.ResilientStore
	Hub        *messaging.Hub
	Session    *session.Session
	Cache      *InMemoryCache
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Router     http.Handler
}
