// Package catalog provides the read-only mock content catalog.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"brainbrowser/domain/core/entities"
	"brainbrowser/domain/core/valueobjects"
)

//go:embed pages.yaml
var defaultPages []byte

type pageEntry struct {
	entities.Page `yaml:",inline"`
	URL           string `yaml:"url"`
}

type document struct {
	Pages []pageEntry `yaml:"pages"`
}

// Catalog is an in-memory page catalog. It implements ports.ContentCatalog
// and is safe for concurrent reads.
type Catalog struct {
	pages []entities.Page
	index map[valueobjects.PageID]int
	urls  map[valueobjects.PageID]string
}

// Default loads the embedded mock catalog
func Default() (*Catalog, error) {
	return Parse(defaultPages)
}

// MustDefault is Default for wiring code; the embedded document is static
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from a YAML document listing pages in URL
// match order
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		pages: make([]entities.Page, 0, len(doc.Pages)),
		index: make(map[valueobjects.PageID]int, len(doc.Pages)),
		urls:  make(map[valueobjects.PageID]string, len(doc.Pages)),
	}
	for _, entry := range doc.Pages {
		if entry.ID.IsZero() {
			return nil, fmt.Errorf("catalog entry %d has no id", len(c.pages))
		}
		if _, dup := c.index[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog page %q", entry.ID)
		}
		c.index[entry.ID] = len(c.pages)
		c.pages = append(c.pages, entry.Page)
		if entry.URL != "" {
			c.urls[entry.ID] = entry.URL
		}
	}

	for _, p := range c.pages {
		for _, link := range p.Links {
			if _, ok := c.index[link]; !ok {
				return nil, fmt.Errorf("page %q links to unknown page %q", p.ID, link)
			}
		}
	}
	return c, nil
}

// Lookup returns the page for id
func (c *Catalog) Lookup(id valueobjects.PageID) (entities.Page, bool) {
	i, ok := c.index[id]
	if !ok {
		return entities.Page{}, false
	}
	return c.pages[i], true
}

// URLFor returns the canonical URL of a page
func (c *Catalog) URLFor(id valueobjects.PageID) (string, bool) {
	url, ok := c.urls[id]
	return url, ok
}

// Pages returns every page in catalog order
func (c *Catalog) Pages() []entities.Page {
	pages := make([]entities.Page, len(c.pages))
	copy(pages, c.pages)
	return pages
}

// Len returns the number of pages
func (c *Catalog) Len() int {
	return len(c.pages)
}

// FindByURL returns the page whose canonical URL equals url, ignoring case
// and a trailing slash
func (c *Catalog) FindByURL(url string) (valueobjects.PageID, bool) {
	want := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(url)), "/")
	for _, p := range c.pages {
		if strings.ToLower(c.urls[p.ID]) == want {
			return p.ID, true
		}
	}
	return "", false
}
