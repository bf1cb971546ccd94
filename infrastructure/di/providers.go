package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"brainbrowser/application/commands/bus"
	commandhandlers "brainbrowser/application/commands/handlers"
	"brainbrowser/application/ports"
	querybus "brainbrowser/application/queries/bus"
	queryhandlers "brainbrowser/application/queries/handlers"
	"brainbrowser/application/session"
	"brainbrowser/infrastructure/catalog"
	"brainbrowser/infrastructure/config"
	"brainbrowser/infrastructure/messaging"
	"brainbrowser/infrastructure/observability"
	"brainbrowser/infrastructure/persistence"
	"brainbrowser/infrastructure/persistence/badger"
	"brainbrowser/infrastructure/persistence/dynamodb"
	"brainbrowser/infrastructure/persistence/memory"
	"brainbrowser/infrastructure/persistence/sqlite"
	"brainbrowser/interfaces/http/rest"
	"brainbrowser/interfaces/websocket"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

const (
	// queryCacheTTL bounds how long a read model survives without a
	// command clearing it, in seconds
	queryCacheTTL = 60
	cacheSweep    = time.Minute
)

// StoreBackend is the configured session store. Leaser is set only for the
// DynamoDB backend.
type StoreBackend struct {
	Store  ports.KeyValueStore
	Leaser *dynamodb.Leaser
}

// ProvideLogging creates the process logger and its interaction log
func ProvideLogging(cfg *config.Config) (*observability.Logging, error) {
	return observability.NewLogging(cfg.Environment, cfg.LogLevel)
}

// ProvideLogger exposes the logger built by ProvideLogging
func ProvideLogger(logging *observability.Logging) *zap.Logger {
	return logging.Logger
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("brainbrowser")
}

// ProvideCatalog loads the embedded page catalog
func ProvideCatalog() (*catalog.Catalog, error) {
	return catalog.Default()
}

// ProvideStoreBackend opens the store named by cfg.Store.Backend. The
// cleanup closes it.
func ProvideStoreBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (StoreBackend, func(), error) {
	storeLogger := logger.Named("store")
	closeWith := func(name string, closer func() error) func() {
		return func() {
			if err := closer(); err != nil {
				storeLogger.Warn("Failed to close store", zap.String("backend", name), zap.Error(err))
			}
		}
	}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		store := memory.NewStore()
		return StoreBackend{Store: store}, closeWith(cfg.Store.Backend, store.Close), nil

	case config.BackendSQLite:
		path := cfg.Store.Path
		if path == "" {
			path = ":memory:"
		}
		store, err := sqlite.Open(ctx, path, storeLogger)
		if err != nil {
			return StoreBackend{}, nil, err
		}
		return StoreBackend{Store: store}, closeWith(cfg.Store.Backend, store.Close), nil

	case config.BackendBadger:
		store, err := badger.Open(badger.Config{
			Path:       cfg.Store.Path,
			InMemory:   cfg.Store.Path == "",
			SyncWrites: cfg.Store.SyncWrites,
		}, storeLogger)
		if err != nil {
			return StoreBackend{}, nil, err
		}
		return StoreBackend{Store: store}, closeWith(cfg.Store.Backend, store.Close), nil

	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return StoreBackend{}, nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		return StoreBackend{
			Store:  dynamodb.NewStore(client, cfg.Store.DynamoDBTable, storeLogger),
			Leaser: dynamodb.NewLeaser(client, cfg.Store.DynamoDBTable, storeLogger),
		}, func() {}, nil
	}
	return StoreBackend{}, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// ProvideStore puts the backend behind a circuit breaker
func ProvideStore(backend StoreBackend, logger *zap.Logger) *persistence.ResilientStore {
	return persistence.NewResilientStore(backend.Store, persistence.DefaultBreakerConfig("session-store"), logger)
}

// ProvideHub creates the event hub feeding websocket subscribers
func ProvideHub(collector *observability.Collector, logger *zap.Logger) (*messaging.Hub, func()) {
	hub := messaging.NewHub(collector.Subscribers, logger.Named("hub"))
	return hub, hub.Close
}

// ProvideRecorder creates the performance recorder
func ProvideRecorder(collector *observability.Collector) *observability.PerformanceRecorder {
	return observability.NewPerformanceRecorder(collector)
}

// ProvideSession assembles the browsing session. Start is left to the
// caller.
func ProvideSession(
	cfg *config.Config,
	pages *catalog.Catalog,
	store *persistence.ResilientStore,
	hub *messaging.Hub,
	recorder *observability.PerformanceRecorder,
	logging *observability.Logging,
) (*session.Session, error) {
	engine, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Catalog:    pages,
		Store:      store,
		StorageKey: cfg.Store.Key,
		Config:     engine,
		Publisher:  hub,
		Recorder:   recorder,
		History:    logging.Interactions,
		Levels:     logging,
		Logger:     logging.Logger.Named("session"),
	})
}

// ProvideCache creates the query result cache
func ProvideCache() (*InMemoryCache, func()) {
	cache := NewInMemoryCache(cacheSweep)
	return cache, cache.Close
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	s *session.Session,
	cache *InMemoryCache,
	collector *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.TracingMiddleware(),
		bus.MetricsMiddleware(collector),
		bus.InvalidationMiddleware(cache),
	)
	if err := commandhandlers.NewSessionHandlers(s, logger).Register(commandBus); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	s *session.Session,
	cache *InMemoryCache,
	collector *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.MetricsMiddleware(collector),
		querybus.CachingMiddleware(cache, queryCacheTTL),
	)
	if err := queryhandlers.NewSessionQueries(s).Register(queryBus); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideRouter builds the HTTP handler
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	s *session.Session,
	hub *messaging.Hub,
	collector *observability.Collector,
	logger *zap.Logger,
) http.Handler {
	opts := rest.RouterOptions{
		Events:     websocket.NewServer(hub, websocket.DefaultServerConfig(), logger.Named("ws")),
		Ready:      func(context.Context) error { return s.Validate() },
		EnableCORS: cfg.EnableCORS,
		Debug:      cfg.IsDevelopment(),
	}
	if cfg.EnableMetrics {
		opts.Metrics = collector
	}
	return rest.NewRouter(commandBus, queryBus, opts, logger.Named("http")).Setup()
}
