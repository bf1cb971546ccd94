package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"brainbrowser/domain/core/aggregates"
	"brainbrowser/domain/core/entities"
	"brainbrowser/domain/core/valueobjects"
	domainservices "brainbrowser/domain/services"
)

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeCatalog struct {
	pages []entities.Page
	urls  map[valueobjects.PageID]string
}

func newFakeCatalog(pages ...entities.Page) *fakeCatalog {
	c := &fakeCatalog{urls: make(map[valueobjects.PageID]string)}
	for _, p := range pages {
		c.pages = append(c.pages, p)
		c.urls[p.ID] = "https://brainbrowser.example/" + string(p.ID)
	}
	return c
}

func (c *fakeCatalog) Lookup(id valueobjects.PageID) (entities.Page, bool) {
	for _, p := range c.pages {
		if p.ID == id {
			return p, true
		}
	}
	return entities.Page{}, false
}

func (c *fakeCatalog) URLFor(id valueobjects.PageID) (string, bool) {
	url, ok := c.urls[id]
	return url, ok
}

func (c *fakeCatalog) Pages() []entities.Page {
	return c.pages
}

func page(id, title string, links ...string) entities.Page {
	p := entities.Page{ID: valueobjects.PageID(id), Title: title}
	for _, l := range links {
		p.Links = append(p.Links, valueobjects.PageID(l))
	}
	return p
}

func testCatalog() *fakeCatalog {
	return newFakeCatalog(
		page("home", "Start", "about"),
		page("about", "About Brain Browser", "team", "home"),
		page("team", "Our Team", "about"),
		page("features", "Features"),
		page("alpha", "Neural Memory"),
		page("beta", "Memory Palace"),
		page("gamma", "Memory Systems"),
	)
}

type engine struct {
	clock   *fakeClock
	catalog *fakeCatalog
	graph   *aggregates.Graph
	tabs    *TabManager
}

func newEngine(catalog *fakeCatalog, seed uint64) *engine {
	clock := &fakeClock{now: testEpoch}
	layout := domainservices.NewClusterLayout(
		domainservices.NewRelatednessChecker(catalog),
		rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		domainservices.DefaultLayoutOptions(),
	)
	graph := aggregates.NewGraph(layout, clock.Now)
	return &engine{
		clock:   clock,
		catalog: catalog,
		graph:   graph,
		tabs:    NewTabManager(graph, catalog, zap.NewNop(), clock.Now),
	}
}

func (e *engine) neuronFor(pageID string) valueobjects.NeuronID {
	id, _ := e.graph.NeuronForPage(valueobjects.PageID(pageID))
	return id
}

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

var errStoreDown = errors.New("store down")
