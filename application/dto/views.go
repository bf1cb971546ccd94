package dto

import (
	"brainbrowser/application/ports"
	domainconfig "brainbrowser/domain/config"
	"brainbrowser/domain/core/valueobjects"
)

// NeuronView is a read model of one neuron
type NeuronView struct {
	ID       valueobjects.NeuronID `json:"id"`
	PageID   valueobjects.PageID   `json:"pageId"`
	Label    string                `json:"label"`
	Position valueobjects.Position `json:"position"`
	Active   bool                  `json:"active"`
	Current  bool                  `json:"current"`
}

// SynapseView is a read model of one synapse with its curve geometry
type SynapseView struct {
	From       valueobjects.NeuronID `json:"from"`
	To         valueobjects.NeuronID `json:"to"`
	Path       string                `json:"path"`
	Traversals int                   `json:"traversals"`
}

// GraphView is the whole graph
type GraphView struct {
	Neurons      []NeuronView                                  `json:"neurons"`
	Synapses     []SynapseView                                 `json:"synapses"`
	PageNeurons  map[valueobjects.PageID]valueobjects.NeuronID `json:"pageNeurons"`
	LastNeuronID valueobjects.NeuronID                         `json:"lastNeuronId"`
}

// TabView is a read model of one tab
type TabView struct {
	ID       valueobjects.TabID    `json:"id"`
	PageID   valueobjects.PageID   `json:"pageId"`
	NeuronID valueobjects.NeuronID `json:"neuronId"`
	Title    string                `json:"title"`
	URL      string                `json:"url"`
	IsWebURL bool                  `json:"isWebUrl"`
	Active   bool                  `json:"active"`
}

// TabsView lists open tabs in opening order
type TabsView struct {
	Tabs      []TabView          `json:"tabs"`
	ActiveTab valueobjects.TabID `json:"activeTab"`
	LastTabID valueobjects.TabID `json:"lastTabId"`
}

// MinimapPoint is a neuron projected onto the minimap, in percent
type MinimapPoint struct {
	NeuronID valueobjects.NeuronID `json:"neuronId"`
	Left     float64               `json:"left"`
	Top      float64               `json:"top"`
	Active   bool                  `json:"active"`
	Current  bool                  `json:"current"`
}

// MinimapLine is a synapse projected onto the minimap: a segment starting
// at (Left, Top), Length percent long, rotated by AngleDeg.
type MinimapLine struct {
	From     valueobjects.NeuronID `json:"from"`
	To       valueobjects.NeuronID `json:"to"`
	Left     float64               `json:"left"`
	Top      float64               `json:"top"`
	Length   float64               `json:"length"`
	AngleDeg float64               `json:"angleDeg"`
}

// MinimapView is the whole projection
type MinimapView struct {
	Points   []MinimapPoint             `json:"points"`
	Lines    []MinimapLine              `json:"lines"`
	Viewport valueobjects.Rect          `json:"viewport"`
	View     valueobjects.ViewTransform `json:"view"`
}

// StatsView backs the debug panel
type StatsView struct {
	SessionID          string                    `json:"sessionId"`
	NeuronCount        int                       `json:"neuronCount"`
	SynapseCount       int                       `json:"synapseCount"`
	PageCount          int                       `json:"pageCount"`
	TabCount           int                       `json:"tabCount"`
	Config             domainconfig.EngineConfig `json:"config"`
	Performance        ports.PerformanceSnapshot `json:"performance"`
	RecentInteractions []ports.InteractionEntry  `json:"recentInteractions"`
	InteractionCount   int                       `json:"interactionCount"`
}
