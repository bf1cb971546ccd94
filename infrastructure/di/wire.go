//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"brainbrowser/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogging,
	ProvideLogger,
	ProvideCollector,
	ProvideCatalog,
	ProvideStoreBackend,
	ProvideStore,
	ProvideHub,
	ProvideRecorder,
	ProvideSession,
	ProvideCache,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup closes
// the hub, the cache and the store in reverse order of creation.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
