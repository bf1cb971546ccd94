package rest

import (
	"context"
	"net/http"

	"brainbrowser/application/commands/bus"
	querybus "brainbrowser/application/queries/bus"
	"brainbrowser/interfaces/http/rest/handlers"
	"brainbrowser/interfaces/http/rest/middleware"
	"brainbrowser/pkg/common"
	pkgerrors "brainbrowser/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Metrics is what the router needs from the metrics collector
type Metrics interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// RouterOptions holds the optional router collaborators
type RouterOptions struct {
	// Events serves /ws; nil leaves the route out
	Events http.Handler
	// Metrics serves /metrics and observes requests; nil leaves both out
	Metrics Metrics
	// Ready backs /ready; nil always reports ready
	Ready func(context.Context) error

	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	opts       RouterOptions
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	opts RouterOptions,
	logger *zap.Logger,
) *Router {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.Metrics != nil {
		router.Use(middleware.Metrics(rt.opts.Metrics))
	}

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck(errorHandler))
	if rt.opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.opts.Metrics.Handler())
	}
	if rt.opts.Events != nil {
		router.Method(http.MethodGet, "/ws", rt.opts.Events)
	}

	h := handlers.NewSessionHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/tabs", func(r chi.Router) {
			r.Get("/", h.GetTabs)
			r.Post("/", h.CreateTab)
			r.Delete("/{tabID}", h.CloseTab)
			r.Post("/{tabID}/activate", h.ActivateTab)
		})

		r.Post("/navigate", h.Navigate)
		r.Post("/navigate/url", h.SubmitURL)
		r.Post("/open-in-new-tab", h.OpenInNewTab)

		r.Route("/neurons/{neuronID}", func(r chi.Router) {
			r.Post("/activate", h.ActivateNeuron)
			r.Post("/focus", h.FocusNeuron)
			r.Post("/connect", h.ConnectToCurrent)
			r.Post("/drag", h.DragNeuron)
			r.Put("/position", h.MoveNeuron)
			r.Delete("/", h.RemoveNeuron)
		})

		r.Route("/view", func(r chi.Router) {
			r.Get("/", h.GetView)
			r.Post("/zoom", h.Zoom)
			r.Post("/pan", h.Pan)
			r.Post("/reset", h.ResetView)
			r.Post("/resize", h.Resize)
		})

		r.Get("/minimap", h.GetMinimap)
		r.Post("/minimap/click", h.MinimapClick)

		r.Get("/config", h.GetConfig)
		r.Put("/config", h.ApplyConfig)

		r.Get("/graph", h.GetGraph)
		r.Get("/stats", h.GetStats)
		r.Post("/performance/frame-rate", h.RecordFrameRate)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports whether the session state is consistent
func (rt *Router) readinessCheck(errorHandler *pkgerrors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if rt.opts.Ready != nil {
			if err := rt.opts.Ready(req.Context()); err != nil {
				errorHandler.Handle(w, req, pkgerrors.NewUnavailableError("session").WithCause(err))
				return
			}
		}
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
