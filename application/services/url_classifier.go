package services

import (
	"net/url"
	"strings"

	"brainbrowser/application/ports"
	"brainbrowser/domain/core/valueobjects"
)

// URLKind is the outcome of URL bar classification
type URLKind string

const (
	URLKindPage     URLKind = "page"
	URLKindExternal URLKind = "external"
	URLKindHome     URLKind = "home"
)

// URLTarget is a classified URL bar entry
type URLTarget struct {
	Kind   URLKind             `json:"kind"`
	PageID valueobjects.PageID `json:"pageId,omitempty"`
	URL    string              `json:"url,omitempty"`
}

// frameBlockedDomains refuse to render inside an embedded frame
var frameBlockedDomains = []string{
	"google.com", "facebook.com", "instagram.com", "twitter.com",
	"netflix.com", "amazon.com", "youtube.com", "linkedin.com",
	"github.com", "microsoft.com", "apple.com", "yahoo.com",
	"bankofamerica.com", "chase.com", "wellsfargo.com", "paypal.com",
}

// URLClassifier turns URL bar text into a navigation target
type URLClassifier struct {
	catalog ports.ContentCatalog
}

// NewURLClassifier creates a classifier over the catalog
func NewURLClassifier(catalog ports.ContentCatalog) *URLClassifier {
	return &URLClassifier{catalog: catalog}
}

// Classify resolves text to a known page when it equals a canonical URL or
// contains a page id, taking the first match in catalog order. Otherwise
// a well-formed URL is external and anything else falls back to home.
func (c *URLClassifier) Classify(text string) URLTarget {
	text = strings.TrimSpace(text)
	if text == "" {
		return URLTarget{Kind: URLKindHome, PageID: valueobjects.HomePage}
	}

	for _, page := range c.catalog.Pages() {
		canonical, _ := c.catalog.URLFor(page.ID)
		if text == canonical || strings.Contains(text, string(page.ID)) {
			return URLTarget{Kind: URLKindPage, PageID: page.ID, URL: canonical}
		}
	}

	if normalized, _, err := NormalizeURL(text); err == nil {
		return URLTarget{Kind: URLKindExternal, URL: normalized}
	}
	return URLTarget{Kind: URLKindHome, PageID: valueobjects.HomePage}
}

// NormalizeURL prefixes https:// when raw has no scheme and returns the
// normalized URL with its hostname
func NormalizeURL(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if strings.ContainsAny(raw, " \t\n") {
		return "", "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", "", ErrInvalidURL
	}
	return raw, strings.ToLower(u.Hostname()), nil
}

// Embeddable reports whether a host is expected to allow framing. Any
// host containing a blocked domain is treated as blocked.
func Embeddable(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range frameBlockedDomains {
		if strings.Contains(host, domain) {
			return false
		}
	}
	return true
}
