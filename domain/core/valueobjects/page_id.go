package valueobjects

import "strings"

const webPagePrefix = "web:"

// PageID is a stable key into the content catalog. External sites use the
// synthetic form "web:<hostname>".
type PageID string

// HomePage is the page every new tab is navigated to.
const HomePage PageID = "home"

// WebPageID builds the synthetic page id for an external host
func WebPageID(hostname string) PageID {
	return PageID(webPagePrefix + strings.ToLower(hostname))
}

func (p PageID) String() string {
	return string(p)
}

// IsZero reports whether the page id is empty
func (p PageID) IsZero() bool {
	return p == ""
}

// IsWeb reports whether the page stands for an external site
func (p PageID) IsWeb() bool {
	return strings.HasPrefix(string(p), webPagePrefix)
}

// Hostname returns the host part of a web page id, or "" otherwise
func (p PageID) Hostname() string {
	if !p.IsWeb() {
		return ""
	}
	return strings.TrimPrefix(string(p), webPagePrefix)
}
