package services

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"brainbrowser/application/ports"
	"brainbrowser/domain/core/aggregates"
	"brainbrowser/domain/core/entities"
	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/domain/events"
)

// NavigateRequest describes one navigation. A zero TabID targets the active
// tab; a zero SourceNeuronID means the navigation has no explicit origin.
type NavigateRequest struct {
	PageID         valueobjects.PageID
	TabID          valueobjects.TabID
	SourceNeuronID valueobjects.NeuronID
	CreateSynapse  bool
}

// NavigateResult reports what a navigation did to the graph
type NavigateResult struct {
	TabID         valueobjects.TabID       `json:"tabId"`
	NeuronID      valueobjects.NeuronID    `json:"neuronId"`
	NeuronCreated bool                     `json:"neuronCreated"`
	Synapse       *valueobjects.SynapseKey `json:"synapse,omitempty"`
	SynapseAdded  bool                     `json:"synapseAdded"`
	Embeddable    bool                     `json:"embeddable"`
}

// TabManager owns tab lifecycle, the tab to page to neuron binding and the
// single active-tab pointer. It drives the graph as navigation occurs.
type TabManager struct {
	graph   *aggregates.Graph
	catalog ports.ContentCatalog
	logger  *zap.Logger
	now     func() time.Time

	tabs      map[valueobjects.TabID]*entities.Tab
	order     []valueobjects.TabID
	active    valueobjects.TabID
	lastTabID valueobjects.TabID
	events    []events.DomainEvent
}

// NewTabManager creates a tab manager over the graph
func NewTabManager(graph *aggregates.Graph, catalog ports.ContentCatalog, logger *zap.Logger, now func() time.Time) *TabManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &TabManager{
		graph:   graph,
		catalog: catalog,
		logger:  logger,
		now:     now,
		tabs:    make(map[valueobjects.TabID]*entities.Tab),
		events:  []events.DomainEvent{},
	}
}

// CreateTab opens a tab, activates it and navigates it to the home page
func (m *TabManager) CreateTab() (valueobjects.TabID, error) {
	id := m.lastTabID.Next()
	m.lastTabID = id
	m.tabs[id] = entities.NewTab(id)
	m.order = append(m.order, id)
	m.addEvent(events.NewTabCreated(id, m.now()))

	m.logger.Info("Created tab", zap.String("tabID", id.String()))

	if err := m.ActivateTab(id); err != nil {
		return id, err
	}
	if _, err := m.Navigate(NavigateRequest{PageID: valueobjects.HomePage, TabID: id, CreateSynapse: true}); err != nil {
		return id, fmt.Errorf("navigate new tab home: %w", err)
	}
	return id, nil
}

// Navigate binds a tab to a catalog page, creating the page's neuron on
// first visit. Synapse policy in priority order: an explicit source that
// differs from the destination is connected to it; otherwise the tab's
// previous neuron is, when the tab was on a different page.
func (m *TabManager) Navigate(req NavigateRequest) (NavigateResult, error) {
	tab, err := m.resolveTab(req.TabID)
	if err != nil {
		return NavigateResult{}, err
	}
	page, ok := m.catalog.Lookup(req.PageID)
	if !ok {
		return NavigateResult{}, fmt.Errorf("navigate to %q: %w", req.PageID, ErrUnknownPage)
	}

	prevPage, prevNeuron := tab.PageID(), tab.NeuronID()

	neuronID, created, err := m.graph.GetOrCreateNeuron(page.ID, page.Title, nil)
	if err != nil {
		return NavigateResult{}, err
	}
	url, _ := m.catalog.URLFor(page.ID)
	tab.Bind(page.ID, neuronID, page.Title, url, false)
	m.addEvent(events.NewTabNavigated(tab.ID(), page.ID, neuronID, page.Title, url, false, m.now()))

	result := NavigateResult{TabID: tab.ID(), NeuronID: neuronID, NeuronCreated: created, Embeddable: true}

	switch {
	case !req.SourceNeuronID.IsZero() && req.SourceNeuronID != neuronID && req.CreateSynapse:
		m.connect(&result, req.SourceNeuronID, neuronID)
	case !prevPage.IsZero() && prevPage != page.ID && req.CreateSynapse:
		m.connect(&result, prevNeuron, neuronID)
	}

	m.logger.Debug("Navigated tab",
		zap.String("tabID", tab.ID().String()),
		zap.String("pageID", page.ID.String()),
		zap.String("neuronID", neuronID.String()),
		zap.Bool("neuronCreated", created),
	)

	return result, m.ActivateTab(tab.ID())
}

// NavigateToRealURL binds the active tab, or a new one when none is
// active, to a synthetic web:<hostname> page. The previous neuron is
// connected when the tab was on a different page.
func (m *TabManager) NavigateToRealURL(raw string) (NavigateResult, error) {
	normalized, host, err := NormalizeURL(raw)
	if err != nil {
		// Fall back to the raw text as hostname
		host = strings.ToLower(strings.TrimSpace(raw))
		normalized = strings.TrimSpace(raw)
		if host == "" {
			return NavigateResult{}, fmt.Errorf("navigate to %q: %w", raw, err)
		}
	}

	if m.active.IsZero() {
		if _, err := m.CreateTab(); err != nil {
			m.logger.Warn("Failed to prepare tab for web navigation", zap.Error(err))
		}
	}
	tab, err := m.resolveTab(0)
	if err != nil {
		return NavigateResult{}, err
	}

	pageID := valueobjects.WebPageID(host)
	prevPage, prevNeuron := tab.PageID(), tab.NeuronID()

	neuronID, created, err := m.graph.GetOrCreateNeuron(pageID, host, nil)
	if err != nil {
		return NavigateResult{}, err
	}
	tab.Bind(pageID, neuronID, host, normalized, true)
	m.addEvent(events.NewTabNavigated(tab.ID(), pageID, neuronID, host, normalized, true, m.now()))

	result := NavigateResult{
		TabID:         tab.ID(),
		NeuronID:      neuronID,
		NeuronCreated: created,
		Embeddable:    Embeddable(host),
	}
	if !prevPage.IsZero() && prevPage != pageID && !prevNeuron.IsZero() {
		m.connect(&result, prevNeuron, neuronID)
	}

	m.logger.Info("Navigated to web page",
		zap.String("url", normalized),
		zap.String("pageID", pageID.String()),
		zap.Bool("embeddable", result.Embeddable),
	)

	return result, m.ActivateTab(tab.ID())
}

// ActivateNeuron handles a click on a neuron: a tab already showing the
// page is activated; otherwise the active tab, or a new tab, navigates
// there without creating a synapse.
func (m *TabManager) ActivateNeuron(pageID valueobjects.PageID) (NavigateResult, error) {
	for _, id := range m.order {
		tab := m.tabs[id]
		if tab.PageID() == pageID {
			return NavigateResult{TabID: id, NeuronID: tab.NeuronID(), Embeddable: true}, m.ActivateTab(id)
		}
	}

	tabID := m.active
	if tabID.IsZero() {
		created, err := m.CreateTab()
		if err != nil {
			return NavigateResult{}, err
		}
		tabID = created
	}
	return m.Navigate(NavigateRequest{PageID: pageID, TabID: tabID, CreateSynapse: false})
}

// OpenInNewTab opens pageID in a fresh tab. With fromActive the active
// tab's neuron, captured before the new tab exists, becomes the source.
func (m *TabManager) OpenInNewTab(pageID valueobjects.PageID, fromActive bool) (NavigateResult, error) {
	if _, ok := m.catalog.Lookup(pageID); !ok {
		return NavigateResult{}, fmt.Errorf("open %q: %w", pageID, ErrUnknownPage)
	}

	var source valueobjects.NeuronID
	if fromActive {
		if tab, ok := m.tabs[m.active]; ok {
			source = tab.NeuronID()
		}
	}

	tabID, err := m.CreateTab()
	if err != nil {
		return NavigateResult{}, err
	}
	return m.Navigate(NavigateRequest{PageID: pageID, TabID: tabID, SourceNeuronID: source, CreateSynapse: true})
}

// ConnectToCurrent connects the active tab's neuron to neuronID when the
// active tab shows a different page
func (m *TabManager) ConnectToCurrent(neuronID valueobjects.NeuronID) (valueobjects.SynapseKey, bool, error) {
	target, ok := m.graph.Neuron(neuronID)
	if !ok {
		return valueobjects.SynapseKey{}, false, fmt.Errorf("connect to %s: %w", neuronID, aggregates.ErrNeuronNotFound)
	}
	tab, err := m.resolveTab(0)
	if err != nil {
		return valueobjects.SynapseKey{}, false, err
	}
	if !tab.IsBound() || tab.PageID() == target.PageID() {
		return valueobjects.SynapseKey{}, false, ErrSamePage
	}
	current, ok := m.graph.NeuronForPage(tab.PageID())
	if !ok {
		return valueobjects.SynapseKey{}, false, fmt.Errorf("current page %q: %w", tab.PageID(), aggregates.ErrNeuronNotFound)
	}
	return m.graph.Connect(current, neuronID)
}

// CloseTab removes a tab. Its neuron stays in the graph. Closing the active
// tab activates the first remaining tab in opening order, or none.
func (m *TabManager) CloseTab(id valueobjects.TabID) error {
	if _, ok := m.tabs[id]; !ok {
		return fmt.Errorf("close %s: %w", id, ErrTabNotFound)
	}

	delete(m.tabs, id)
	for i, tabID := range m.order {
		if tabID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.addEvent(events.NewTabClosed(id, m.now()))
	m.logger.Info("Closed tab", zap.String("tabID", id.String()))

	if m.active != id {
		m.refreshFlags()
		return nil
	}
	if len(m.order) > 0 {
		return m.ActivateTab(m.order[0])
	}
	m.active = 0
	m.refreshFlags()
	m.addEvent(events.NewTabActivated(0, 0, nil, m.now()))
	return nil
}

// ActivateTab makes id the active tab and re-derives every neuron's
// active/current flags from the open tabs
func (m *TabManager) ActivateTab(id valueobjects.TabID) error {
	if _, ok := m.tabs[id]; !ok {
		return fmt.Errorf("activate %s: %w", id, ErrTabNotFound)
	}
	m.active = id
	current, active := m.refreshFlags()
	m.addEvent(events.NewTabActivated(id, current, active, m.now()))
	return nil
}

// TabsBoundTo lists the tabs showing neuronID, in opening order
func (m *TabManager) TabsBoundTo(neuronID valueobjects.NeuronID) []valueobjects.TabID {
	var bound []valueobjects.TabID
	for _, id := range m.order {
		if m.tabs[id].NeuronID() == neuronID {
			bound = append(bound, id)
		}
	}
	return bound
}

// Tab returns a tab by id
func (m *TabManager) Tab(id valueobjects.TabID) (*entities.Tab, bool) {
	t, ok := m.tabs[id]
	return t, ok
}

// Tabs returns the open tabs in opening order
func (m *TabManager) Tabs() []*entities.Tab {
	tabs := make([]*entities.Tab, 0, len(m.order))
	for _, id := range m.order {
		tabs = append(tabs, m.tabs[id])
	}
	return tabs
}

// ActiveTab returns the active tab, if any
func (m *TabManager) ActiveTab() (*entities.Tab, bool) {
	t, ok := m.tabs[m.active]
	return t, ok
}

func (m *TabManager) ActiveTabID() valueobjects.TabID { return m.active }
func (m *TabManager) LastTabID() valueobjects.TabID   { return m.lastTabID }
func (m *TabManager) TabCount() int                   { return len(m.tabs) }

// RaiseLastTabID moves the id counter forward, never backward
func (m *TabManager) RaiseLastTabID(id valueobjects.TabID) {
	if id > m.lastTabID {
		m.lastTabID = id
	}
}

// Validate checks that every bound tab references a live neuron on the
// same page and that the active pointer is valid
func (m *TabManager) Validate() error {
	if len(m.order) != len(m.tabs) {
		return fmt.Errorf("tab order has %d entries for %d tabs", len(m.order), len(m.tabs))
	}
	if !m.active.IsZero() {
		if _, ok := m.tabs[m.active]; !ok {
			return fmt.Errorf("active tab %s is not open", m.active)
		}
	}
	for id, tab := range m.tabs {
		if id > m.lastTabID {
			return fmt.Errorf("tab %s above last allocated id %s", id, m.lastTabID)
		}
		if tab.NeuronID().IsZero() {
			continue
		}
		n, ok := m.graph.Neuron(tab.NeuronID())
		if !ok {
			return fmt.Errorf("tab %s bound to removed neuron %s", id, tab.NeuronID())
		}
		if n.PageID() != tab.PageID() {
			return fmt.Errorf("tab %s on page %s bound to neuron of %s", id, tab.PageID(), n.PageID())
		}
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted tab events
func (m *TabManager) GetUncommittedEvents() []events.DomainEvent {
	pending := make([]events.DomainEvent, len(m.events))
	copy(pending, m.events)
	return pending
}

// MarkEventsAsCommitted clears all uncommitted events
func (m *TabManager) MarkEventsAsCommitted() {
	m.events = []events.DomainEvent{}
}

func (m *TabManager) addEvent(event events.DomainEvent) {
	m.events = append(m.events, event)
}

func (m *TabManager) resolveTab(id valueobjects.TabID) (*entities.Tab, error) {
	if id.IsZero() {
		if m.active.IsZero() {
			return nil, ErrNoActiveTab
		}
		id = m.active
	}
	tab, ok := m.tabs[id]
	if !ok {
		return nil, fmt.Errorf("tab %s: %w", id, ErrTabNotFound)
	}
	return tab, nil
}

func (m *TabManager) connect(result *NavigateResult, from, to valueobjects.NeuronID) {
	key, created, err := m.graph.Connect(from, to)
	if err != nil {
		m.logger.Debug("Synapse not created",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err),
		)
		return
	}
	result.Synapse = &key
	result.SynapseAdded = created
}

// refreshFlags recomputes active/current for all neurons in one pass over
// tabs and neurons and returns the derived state
func (m *TabManager) refreshFlags() (valueobjects.NeuronID, []valueobjects.NeuronID) {
	active := make(map[valueobjects.NeuronID]bool, len(m.tabs))
	var activeList []valueobjects.NeuronID
	for _, id := range m.order {
		n := m.tabs[id].NeuronID()
		if n.IsZero() || active[n] {
			continue
		}
		active[n] = true
		activeList = append(activeList, n)
	}

	var current valueobjects.NeuronID
	if tab, ok := m.tabs[m.active]; ok {
		current = tab.NeuronID()
	}
	m.graph.RefreshFlags(active, current)
	return current, activeList
}
