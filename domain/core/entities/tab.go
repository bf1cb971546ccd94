package entities

import (
	"brainbrowser/domain/core/valueobjects"
)

// Tab is a viewport bound to one page and neuron at a time. A freshly
// created tab is unbound until its first navigation.
type Tab struct {
	id       valueobjects.TabID
	pageID   valueobjects.PageID
	neuronID valueobjects.NeuronID
	title    string
	url      string
	isWebURL bool
}

// NewTab creates an unbound tab
func NewTab(id valueobjects.TabID) *Tab {
	return &Tab{id: id, title: "New Tab"}
}

func (t *Tab) ID() valueobjects.TabID          { return t.id }
func (t *Tab) PageID() valueobjects.PageID     { return t.pageID }
func (t *Tab) NeuronID() valueobjects.NeuronID { return t.neuronID }
func (t *Tab) Title() string                   { return t.title }
func (t *Tab) URL() string                     { return t.url }
func (t *Tab) IsWebURL() bool                  { return t.isWebURL }

// IsBound reports whether the tab has been navigated
func (t *Tab) IsBound() bool {
	return !t.pageID.IsZero()
}

// Bind points the tab at a page and its neuron
func (t *Tab) Bind(pageID valueobjects.PageID, neuronID valueobjects.NeuronID, title, url string, isWebURL bool) {
	t.pageID = pageID
	t.neuronID = neuronID
	t.title = title
	t.url = url
	t.isWebURL = isWebURL
}
