package events

import (
	"time"

	"brainbrowser/domain/core/valueobjects"
)

// Tab Events

// TabCreated is raised when a new tab is opened
type TabCreated struct {
	BaseEvent
	TabID valueobjects.TabID `json:"tab_id"`
}

// NewTabCreated creates a TabCreated event
func NewTabCreated(id valueobjects.TabID, timestamp time.Time) TabCreated {
	return TabCreated{
		BaseEvent: newBase(id.String(), TypeTabCreated, timestamp),
		TabID:     id,
	}
}

// TabNavigated is raised when a tab is bound to a new page
type TabNavigated struct {
	BaseEvent
	TabID    valueobjects.TabID    `json:"tab_id"`
	PageID   valueobjects.PageID   `json:"page_id"`
	NeuronID valueobjects.NeuronID `json:"neuron_id"`
	Title    string                `json:"title"`
	URL      string                `json:"url"`
	IsWebURL bool                  `json:"is_web_url"`
}

// NewTabNavigated creates a TabNavigated event
func NewTabNavigated(id valueobjects.TabID, pageID valueobjects.PageID, neuronID valueobjects.NeuronID, title, url string, isWeb bool, timestamp time.Time) TabNavigated {
	return TabNavigated{
		BaseEvent: newBase(id.String(), TypeTabNavigated, timestamp),
		TabID:     id,
		PageID:    pageID,
		NeuronID:  neuronID,
		Title:     title,
		URL:       url,
		IsWebURL:  isWeb,
	}
}

// TabClosed is raised when a tab is closed
type TabClosed struct {
	BaseEvent
	TabID valueobjects.TabID `json:"tab_id"`
}

// NewTabClosed creates a TabClosed event
func NewTabClosed(id valueobjects.TabID, timestamp time.Time) TabClosed {
	return TabClosed{
		BaseEvent: newBase(id.String(), TypeTabClosed, timestamp),
		TabID:     id,
	}
}

// TabActivated carries the re-derived neuron flags after an activation.
// TabID is zero when the last tab was closed.
type TabActivated struct {
	BaseEvent
	TabID         valueobjects.TabID      `json:"tab_id"`
	CurrentNeuron valueobjects.NeuronID   `json:"current_neuron"`
	ActiveNeurons []valueobjects.NeuronID `json:"active_neurons"`
}

// NewTabActivated creates a TabActivated event
func NewTabActivated(id valueobjects.TabID, current valueobjects.NeuronID, active []valueobjects.NeuronID, timestamp time.Time) TabActivated {
	return TabActivated{
		BaseEvent:     newBase(id.String(), TypeTabActivated, timestamp),
		TabID:         id,
		CurrentNeuron: current,
		ActiveNeurons: active,
	}
}

// View Events

// MinimapUpdated is raised whenever the projection is resynchronized
type MinimapUpdated struct {
	BaseEvent
	Reason   string            `json:"reason"`
	Viewport valueobjects.Rect `json:"viewport"`
}

// NewMinimapUpdated creates a MinimapUpdated event
func NewMinimapUpdated(reason string, viewport valueobjects.Rect, timestamp time.Time) MinimapUpdated {
	return MinimapUpdated{
		BaseEvent: newBase("minimap", TypeMinimapUpdated, timestamp),
		Reason:    reason,
		Viewport:  viewport,
	}
}

// ViewChanged is raised on pan or zoom. Duration is zero for immediate
// changes and the smoothing time for animated pans.
type ViewChanged struct {
	BaseEvent
	Transform valueobjects.ViewTransform `json:"transform"`
	Duration  time.Duration              `json:"duration"`
}

// NewViewChanged creates a ViewChanged event
func NewViewChanged(transform valueobjects.ViewTransform, duration time.Duration, timestamp time.Time) ViewChanged {
	return ViewChanged{
		BaseEvent: newBase("view", TypeViewChanged, timestamp),
		Transform: transform,
		Duration:  duration,
	}
}

// ConfigApplied lists the enumerated effects of a configuration change
type ConfigApplied struct {
	BaseEvent
	Effects []string `json:"effects"`
}

// NewConfigApplied creates a ConfigApplied event
func NewConfigApplied(effects []string, timestamp time.Time) ConfigApplied {
	return ConfigApplied{
		BaseEvent: newBase("config", TypeConfigApplied, timestamp),
		Effects:   effects,
	}
}
