package queries

// GetGraphQuery returns every neuron and synapse
type GetGraphQuery struct{}

// Validate validates the GetGraphQuery
func (q GetGraphQuery) Validate() error { return nil }

// GetTabsQuery lists open tabs
type GetTabsQuery struct{}

// Validate validates the GetTabsQuery
func (q GetTabsQuery) Validate() error { return nil }

// GetMinimapQuery returns the minimap projection
type GetMinimapQuery struct{}

// Validate validates the GetMinimapQuery
func (q GetMinimapQuery) Validate() error { return nil }

// GetStatsQuery backs the debug panel
type GetStatsQuery struct{}

// Validate validates the GetStatsQuery
func (q GetStatsQuery) Validate() error { return nil }

// Uncached keeps the interaction log and latency averages live
func (q GetStatsQuery) Uncached() {}

// GetConfigQuery returns the engine configuration
type GetConfigQuery struct{}

// Validate validates the GetConfigQuery
func (q GetConfigQuery) Validate() error { return nil }

// GetViewQuery returns the view transform and pan animation
type GetViewQuery struct{}

// Validate validates the GetViewQuery
func (q GetViewQuery) Validate() error { return nil }

// Uncached keeps pan animations out of the query cache
func (q GetViewQuery) Uncached() {}
