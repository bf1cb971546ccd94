// Package session hosts the browsing engine's single execution context.
// Every command and query runs under one lock, so no two mutations ever
// interleave.
package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brainbrowser/application/dto"
	"brainbrowser/application/ports"
	"brainbrowser/application/services"
	domainconfig "brainbrowser/domain/config"
	"brainbrowser/domain/core/aggregates"
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/domain/events"
	domainservices "brainbrowser/domain/services"
	pkgerrors "brainbrowser/pkg/errors"
)

// recentInteractionCount is how many log entries Stats exposes
const recentInteractionCount = 10

// Options carries the session's collaborators. Store and Catalog are
// required; everything else has a quiet default.
type Options struct {
	Catalog    ports.ContentCatalog
	Store      ports.KeyValueStore
	StorageKey string
	Config     domainconfig.EngineConfig
	Surfaces   services.Surfaces
	Publisher  ports.EventPublisher
	Recorder   ports.PerformanceRecorder
	History    ports.InteractionHistory
	Levels     ports.LogLevelController
	Clock      ports.Clock
	Rand       *rand.Rand
	Logger     *zap.Logger
}

// Session owns the graph, tabs, view and minimap of one browsing session
type Session struct {
	mu sync.Mutex

	id         string
	graph      *aggregates.Graph
	layout     *domainservices.ClusterLayout
	tabs       *services.TabManager
	view       *services.ViewController
	minimap    *services.MinimapProjector
	codec      *services.PersistenceCodec
	classifier *services.URLClassifier
	catalog    ports.ContentCatalog
	config     domainconfig.EngineConfig

	publisher ports.EventPublisher
	recorder  ports.PerformanceRecorder
	history   ports.InteractionHistory
	levels    ports.LogLevelController
	clock     ports.Clock
	logger    *zap.Logger
}

// New assembles a session. Call Start to restore persisted state and open
// the first tab.
func New(opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, pkgerrors.NewValidationError("session requires a content catalog")
	}
	if opts.Store == nil {
		return nil, pkgerrors.NewValidationError("session requires a key-value store")
	}
	if opts.Config == (domainconfig.EngineConfig{}) {
		opts.Config = domainconfig.DefaultEngineConfig()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Surfaces == (services.Surfaces{}) {
		opts.Surfaces = services.DefaultSurfaces()
	}
	if opts.Publisher == nil {
		opts.Publisher = ports.NopPublisher{}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.History == nil {
		opts.History = nopHistory{}
	}
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	now := opts.Clock.Now
	layout := domainservices.NewClusterLayout(
		domainservices.NewRelatednessChecker(opts.Catalog),
		opts.Rand,
		layoutOptions(opts.Config),
	)
	graph := aggregates.NewGraph(layout, now)

	s := &Session{
		id:         uuid.NewString(),
		graph:      graph,
		layout:     layout,
		tabs:       services.NewTabManager(graph, opts.Catalog, opts.Logger.Named("tabs"), now),
		view:       services.NewViewController(opts.Surfaces, now),
		minimap:    services.NewMinimapProjector(opts.Surfaces, now),
		codec:      services.NewPersistenceCodec(opts.Store, opts.StorageKey, opts.Logger.Named("persistence")),
		classifier: services.NewURLClassifier(opts.Catalog),
		catalog:    opts.Catalog,
		config:     opts.Config,
		publisher:  opts.Publisher,
		recorder:   opts.Recorder,
		history:    opts.History,
		levels:     opts.Levels,
		clock:      opts.Clock,
		logger:     opts.Logger,
	}
	s.applyEffects(domainconfig.EngineConfig{}, s.config)
	return s, nil
}

// ID identifies the session in logs and stats
func (s *Session) ID() string {
	return s.id
}

// Start restores the persisted record, if any, then opens the first tab.
// A missing or unreadable record starts an empty session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	if record, found := s.codec.Load(ctx); found {
		previous := s.config
		cfg, report := s.codec.Apply(record, s.graph, s.tabs, s.config)
		s.config = cfg
		s.applyEffects(previous, cfg)
		s.logger.Info("Session restored",
			zap.String("sessionID", s.id),
			zap.Int("neurons", report.NeuronsRestored),
			zap.Int("synapses", report.SynapsesRestored),
		)
	}

	_, err := s.tabs.CreateTab()
	return s.commit(ctx, "start", started, true, err)
}

// CreateTab opens a tab on the home page
func (s *Session) CreateTab(ctx context.Context) (valueobjects.TabID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	id, err := s.tabs.CreateTab()
	return id, s.commit(ctx, "create_tab", started, true, err)
}

// CloseTab closes a tab; its neuron stays
func (s *Session) CloseTab(ctx context.Context, id valueobjects.TabID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	return s.commit(ctx, "close_tab", started, false, s.tabs.CloseTab(id))
}

// ActivateTab switches the active tab
func (s *Session) ActivateTab(ctx context.Context, id valueobjects.TabID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	return s.commit(ctx, "activate_tab", started, false, s.tabs.ActivateTab(id))
}

// Navigate moves a tab to a catalog page
func (s *Session) Navigate(ctx context.Context, req services.NavigateRequest) (services.NavigateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	result, err := s.tabs.Navigate(req)
	return result, s.commit(ctx, "navigate", started, true, err)
}

// NavigateToRealURL moves the active tab to an external site
func (s *Session) NavigateToRealURL(ctx context.Context, url string) (services.NavigateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	result, err := s.tabs.NavigateToRealURL(url)
	return result, s.commit(ctx, "navigate_url", started, true, err)
}

// SubmitURL handles URL bar input: a known page, an external site, or the
// home page as fallback
func (s *Session) SubmitURL(ctx context.Context, text string) (services.URLTarget, services.NavigateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	target := s.classifier.Classify(text)
	var (
		result services.NavigateResult
		err    error
	)
	if target.Kind == services.URLKindExternal {
		result, err = s.tabs.NavigateToRealURL(target.URL)
	} else {
		result, err = s.tabs.Navigate(services.NavigateRequest{PageID: target.PageID, CreateSynapse: true})
	}
	return target, result, s.commit(ctx, "submit_url", started, true, err)
}

// OpenInNewTab opens a page in a new tab. With fromActive the active
// tab's neuron is the synapse source.
func (s *Session) OpenInNewTab(ctx context.Context, pageID valueobjects.PageID, fromActive bool) (services.NavigateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	result, err := s.tabs.OpenInNewTab(pageID, fromActive)
	return result, s.commit(ctx, "open_in_new_tab", started, true, err)
}

// ActivateNeuron handles a click on a neuron
func (s *Session) ActivateNeuron(ctx context.Context, id valueobjects.NeuronID) (services.NavigateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	n, ok := s.graph.Neuron(id)
	if !ok {
		return services.NavigateResult{}, s.commit(ctx, "activate_neuron", started, false, aggregates.ErrNeuronNotFound)
	}
	result, err := s.tabs.ActivateNeuron(n.PageID())
	return result, s.commit(ctx, "activate_neuron", started, true, err)
}

// FocusNeuron pans the view so the neuron is centred
func (s *Session) FocusNeuron(ctx context.Context, id valueobjects.NeuronID) (valueobjects.ViewTransform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	n, ok := s.graph.Neuron(id)
	if !ok {
		return s.view.Transform(), s.commit(ctx, "focus_neuron", started, false, aggregates.ErrNeuronNotFound)
	}
	view := s.view.Focus(n.Position())
	return view, s.commit(ctx, "focus_neuron", started, false, nil)
}

// ConnectToCurrent links the active tab's neuron to id
func (s *Session) ConnectToCurrent(ctx context.Context, id valueobjects.NeuronID) (valueobjects.SynapseKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	key, _, err := s.tabs.ConnectToCurrent(id)
	return key, s.commit(ctx, "connect_to_current", started, true, err)
}

// RemoveNeuron closes every tab showing the neuron, then removes it with
// its synapses
func (s *Session) RemoveNeuron(ctx context.Context, id valueobjects.NeuronID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	if !s.graph.HasNeuron(id) {
		return s.commit(ctx, "remove_neuron", started, false, aggregates.ErrNeuronNotFound)
	}
	for _, tabID := range s.tabs.TabsBoundTo(id) {
		if err := s.tabs.CloseTab(tabID); err != nil {
			return s.commit(ctx, "remove_neuron", started, true, err)
		}
	}
	removed, _ := s.graph.RemoveNeuron(id)
	s.logger.Info("Removed neuron",
		zap.String("neuronID", id.String()),
		zap.Int("synapses", len(removed)),
	)
	return s.commit(ctx, "remove_neuron", started, true, nil)
}

// MoveNeuron places a neuron at an explicit layout position
func (s *Session) MoveNeuron(ctx context.Context, id valueobjects.NeuronID, position valueobjects.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	return s.commit(ctx, "move_neuron", started, true, s.graph.MoveNeuron(id, position))
}

// DragNeuron moves a neuron by a pixel delta at the current zoom
func (s *Session) DragNeuron(ctx context.Context, id valueobjects.NeuronID, dxPx, dyPx float64) (valueobjects.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	n, ok := s.graph.Neuron(id)
	if !ok {
		return valueobjects.Position{}, s.commit(ctx, "drag_neuron", started, false, aggregates.ErrNeuronNotFound)
	}
	dx, dy := s.view.DragDelta(dxPx, dyPx)
	target, err := n.Position().Translate(dx, dy)
	if err == nil {
		err = s.graph.MoveNeuron(id, target)
	}
	return target, s.commit(ctx, "drag_neuron", started, true, err)
}

// Zoom changes the view scale by delta
func (s *Session) Zoom(ctx context.Context, delta float64) valueobjects.ViewTransform {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	view := s.view.Zoom(delta)
	_ = s.commit(ctx, "zoom", started, false, nil)
	return view
}

// ResetView returns to unit scale and no pan
func (s *Session) ResetView(ctx context.Context) valueobjects.ViewTransform {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	view := s.view.Reset()
	_ = s.commit(ctx, "reset_view", started, false, nil)
	return view
}

// Pan moves the view, with smoothing when animate is set
func (s *Session) Pan(ctx context.Context, x, y float64, animate bool) valueobjects.ViewTransform {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	var view valueobjects.ViewTransform
	if animate {
		view = s.view.AnimatePan(x, y)
	} else {
		view = s.view.Pan(x, y)
	}
	_ = s.commit(ctx, "pan", started, false, nil)
	return view
}

// ClickMinimap pans to the spot clicked at minimap fractions (px, py)
func (s *Session) ClickMinimap(ctx context.Context, px, py float64) valueobjects.ViewTransform {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	view := s.view.NavigateMinimap(px, py)
	_ = s.commit(ctx, "minimap_click", started, false, nil)
	return view
}

// Resize records the renderer's surface sizes
func (s *Session) Resize(ctx context.Context, surfaces services.Surfaces) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	err := s.view.Resize(surfaces)
	if err == nil {
		s.minimap.Resize(surfaces)
	}
	return s.commit(ctx, "resize", started, false, err)
}

// ApplyConfig merges a JSON patch over the configuration. Only keys
// present in the patch change. It returns the enumerated effects.
func (s *Session) ApplyConfig(ctx context.Context, patch []byte) ([]domainconfig.Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	next, err := s.config.MergeJSON(patch)
	if err != nil {
		return nil, s.commit(ctx, "apply_config", started, false, err)
	}
	return s.replaceConfig(ctx, next, started), nil
}

// ReplaceConfig installs a complete configuration, e.g. from a watched
// file
func (s *Session) ReplaceConfig(ctx context.Context, next domainconfig.EngineConfig) ([]domainconfig.Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.clock.Now()

	if err := next.Validate(); err != nil {
		return nil, s.commit(ctx, "apply_config", started, false, err)
	}
	return s.replaceConfig(ctx, next, started), nil
}

// RecordFrameRate feeds a renderer frame-rate sample
func (s *Session) RecordFrameRate(fps float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config.PerformanceMonitoring && s.config.TrackFrameRate {
		s.recorder.RecordFrameRate(fps)
	}
}

// Queries

// Config returns the current configuration
func (s *Session) Config() domainconfig.EngineConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Graph returns the whole graph with synapse geometry
func (s *Session) Graph() dto.GraphView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := dto.GraphView{
		Neurons:      make([]dto.NeuronView, 0, s.graph.NeuronCount()),
		Synapses:     make([]dto.SynapseView, 0, s.graph.SynapseCount()),
		PageNeurons:  s.graph.PageIndex(),
		LastNeuronID: s.graph.LastNeuronID(),
	}
	for _, n := range s.graph.Neurons() {
		view.Neurons = append(view.Neurons, dto.NeuronView{
			ID:       n.ID(),
			PageID:   n.PageID(),
			Label:    n.Label(),
			Position: n.Position(),
			Active:   n.IsActive(),
			Current:  n.IsCurrent(),
		})
	}
	for _, syn := range s.graph.Synapses() {
		from, _ := s.graph.Neuron(syn.From())
		to, _ := s.graph.Neuron(syn.To())
		view.Synapses = append(view.Synapses, dto.SynapseView{
			From:       syn.From(),
			To:         syn.To(),
			Path:       domainservices.SynapsePath(from.Position(), to.Position()),
			Traversals: syn.Traversals(),
		})
	}
	return view
}

// Tabs lists the open tabs
func (s *Session) Tabs() dto.TabsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := dto.TabsView{
		Tabs:      make([]dto.TabView, 0, s.tabs.TabCount()),
		ActiveTab: s.tabs.ActiveTabID(),
		LastTabID: s.tabs.LastTabID(),
	}
	for _, t := range s.tabs.Tabs() {
		view.Tabs = append(view.Tabs, dto.TabView{
			ID:       t.ID(),
			PageID:   t.PageID(),
			NeuronID: t.NeuronID(),
			Title:    t.Title(),
			URL:      t.URL(),
			IsWebURL: t.IsWebURL(),
			Active:   t.ID() == s.tabs.ActiveTabID(),
		})
	}
	return view
}

// Minimap returns the minimap projection
func (s *Session) Minimap() dto.MinimapView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minimap.View()
}

// View returns the primary view transform and any pan animation in flight
func (s *Session) View() (valueobjects.ViewTransform, *services.PanAnimation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if anim, ok := s.view.Animation(); ok {
		return s.view.Transform(), &anim
	}
	return s.view.Transform(), nil
}

// Stats backs the debug panel
func (s *Session) Stats() dto.StatsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dto.StatsView{
		SessionID:          s.id,
		NeuronCount:        s.graph.NeuronCount(),
		SynapseCount:       s.graph.SynapseCount(),
		PageCount:          len(s.graph.PageIndex()),
		TabCount:           s.tabs.TabCount(),
		Config:             s.config,
		Performance:        s.recorder.Snapshot(),
		RecentInteractions: s.history.Recent(recentInteractionCount),
		InteractionCount:   s.history.Len(),
	}
}

// Record snapshots the session as it would be persisted
func (s *Session) Record() (*dto.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.Encode(s.graph, s.tabs, s.config)
}

// Validate checks graph and tab invariants
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.graph.Validate(), s.tabs.Validate())
}

// Private helper methods

func (s *Session) replaceConfig(ctx context.Context, next domainconfig.EngineConfig, started time.Time) []domainconfig.Effect {
	previous := s.config
	effects := previous.Diff(next)
	s.config = next
	s.applyEffects(previous, next)

	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = string(e)
	}
	s.logger.Info("Applied configuration", zap.Strings("effects", names))
	_ = s.commit(ctx, "apply_config", started, true, nil, events.NewConfigApplied(names, s.clock.Now()))
	return effects
}

// applyEffects pushes configuration into the collaborators it drives
func (s *Session) applyEffects(previous, next domainconfig.EngineConfig) {
	if previous.LogLevel != next.LogLevel && s.levels != nil {
		s.levels.SetLevel(next.LogLevel)
	}
	if previous.PerformanceMonitoring != next.PerformanceMonitoring || previous == (domainconfig.EngineConfig{}) {
		s.recorder.SetEnabled(next.PerformanceMonitoring)
	}
	if previous.TrackUserInteractions != next.TrackUserInteractions || previous == (domainconfig.EngineConfig{}) {
		s.history.SetTracking(next.TrackUserInteractions)
	}
	if opts := layoutOptions(next); opts != s.layout.Options() {
		s.layout = s.layout.WithOptions(opts)
		s.graph.SetPlacer(s.layout)
	}
}

// commit drains pending events from every component, feeds them to the
// minimap, publishes them and persists when the command mutated the graph.
// Unknown references and guard rejections are logged and returned
// unchanged; the state is untouched in that case.
func (s *Session) commit(ctx context.Context, kind string, started time.Time, persist bool, err error, extra ...events.DomainEvent) error {
	pending := s.graph.GetUncommittedEvents()
	s.graph.MarkEventsAsCommitted()
	pending = append(pending, s.tabs.GetUncommittedEvents()...)
	s.tabs.MarkEventsAsCommitted()
	pending = append(pending, s.view.GetUncommittedEvents()...)
	s.view.MarkEventsAsCommitted()
	pending = append(pending, extra...)

	s.minimap.Apply(pending...)
	pending = append(pending, s.minimap.GetUncommittedEvents()...)
	s.minimap.MarkEventsAsCommitted()

	elapsed := s.clock.Now().Sub(started)
	if s.config.PerformanceMonitoring {
		s.recorder.RecordInteraction(kind, elapsed)
		if createdNeuron(pending) {
			s.recorder.RecordRenderTime(elapsed)
		}
	}

	if err != nil {
		s.logRejection(kind, err)
	}
	if len(pending) == 0 {
		return err
	}

	s.publisher.Publish(ctx, pending...)
	if persist && mutatesGraph(pending) {
		s.codec.Save(ctx, s.graph, s.tabs, s.config)
	}
	if n := s.graph.NeuronCount(); n > s.config.MaxVisibleNeurons {
		s.logger.Warn("Neuron count above visible ceiling",
			zap.Int("neurons", n),
			zap.Int("maxVisibleNeurons", s.config.MaxVisibleNeurons),
		)
	}
	return err
}

func (s *Session) logRejection(kind string, err error) {
	fields := []zap.Field{zap.String("command", kind), zap.Error(err)}
	switch {
	case pkgerrors.IsNotFound(err):
		s.logger.Warn("Command ignored: unknown reference", fields...)
	case pkgerrors.IsValidation(err), pkgerrors.IsConflict(err):
		s.logger.Debug("Command rejected", fields...)
	default:
		s.logger.Error("Command failed", fields...)
	}
}

func layoutOptions(cfg domainconfig.EngineConfig) domainservices.LayoutOptions {
	return domainservices.LayoutOptions{
		Enabled: cfg.ClusteringEnabled,
		Jitter:  cfg.ClusteringMaxDistance,
	}
}

func createdNeuron(evts []events.DomainEvent) bool {
	for _, e := range evts {
		if e.GetEventType() == events.TypeNeuronCreated {
			return true
		}
	}
	return false
}

// mutatesGraph reports whether any event changed persisted state
func mutatesGraph(evts []events.DomainEvent) bool {
	for _, e := range evts {
		switch e.GetEventType() {
		case events.TypeNeuronCreated, events.TypeNeuronMoved, events.TypeNeuronRemoved,
			events.TypeSynapseCreated, events.TypeSynapseRemoved, events.TypeTabCreated,
			events.TypeConfigApplied:
			return true
		}
	}
	return false
}

type nopRecorder struct{}

func (nopRecorder) RecordRenderTime(time.Duration)          {}
func (nopRecorder) RecordInteraction(string, time.Duration) {}
func (nopRecorder) RecordFrameRate(float64)                 {}
func (nopRecorder) Snapshot() ports.PerformanceSnapshot     { return ports.PerformanceSnapshot{} }
func (nopRecorder) SetEnabled(bool)                         {}

type nopHistory struct{}

func (nopHistory) Recent(int) []ports.InteractionEntry { return nil }
func (nopHistory) Len() int                            { return 0 }
func (nopHistory) SetTracking(bool)                    {}
