package entities

import "brainbrowser/domain/core/valueobjects"

// Page is a read-only content catalog entry
type Page struct {
	ID      valueobjects.PageID   `json:"id" yaml:"id"`
	Title   string                `json:"title" yaml:"title"`
	Content string                `json:"content" yaml:"content"`
	Links   []valueobjects.PageID `json:"links" yaml:"links"`
}

// LinksTo reports whether the page references other in its content
func (p Page) LinksTo(other valueobjects.PageID) bool {
	for _, link := range p.Links {
		if link == other {
			return true
		}
	}
	return false
}
