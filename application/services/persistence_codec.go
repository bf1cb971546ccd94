package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"brainbrowser/application/dto"
	"brainbrowser/application/ports"
	domainconfig "brainbrowser/domain/config"
	"brainbrowser/domain/core/aggregates"
	"brainbrowser/domain/core/valueobjects"
	pkgerrors "brainbrowser/pkg/errors"
)

// DefaultStorageKey is the store key holding the session record
const DefaultStorageKey = "brainBrowser"

// RestoreReport summarizes one Apply
type RestoreReport struct {
	NeuronsRestored  int
	NeuronsSkipped   int
	SynapsesRestored int
	SynapsesSkipped  int
	ConfigRestored   bool
	// Translation maps each persisted neuron id to its live id
	Translation map[valueobjects.NeuronID]valueobjects.NeuronID
}

// PersistenceCodec converts the graph, tab counters and configuration to a
// versioned record and back. Store failures are logged and never returned
// to the session.
type PersistenceCodec struct {
	store  ports.KeyValueStore
	key    string
	logger *zap.Logger
}

// NewPersistenceCodec creates a codec writing under key
func NewPersistenceCodec(store ports.KeyValueStore, key string, logger *zap.Logger) *PersistenceCodec {
	if key == "" {
		key = DefaultStorageKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersistenceCodec{store: store, key: key, logger: logger}
}

// Key returns the store key
func (c *PersistenceCodec) Key() string {
	return c.key
}

// Encode snapshots the session. Tabs are not included, only the tab id
// counter.
func (c *PersistenceCodec) Encode(graph *aggregates.Graph, tabs *TabManager, cfg domainconfig.EngineConfig) (*dto.SessionRecord, error) {
	rawConfig, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	record := &dto.SessionRecord{
		Version:      dto.RecordVersion,
		Neurons:      make(map[string]dto.NeuronRecord, graph.NeuronCount()),
		Synapses:     make([]dto.SynapseRecord, 0, graph.SynapseCount()),
		PageNeurons:  make(map[string]string, graph.NeuronCount()),
		LastNeuronID: uint64(graph.LastNeuronID()),
		Config:       rawConfig,
	}
	if tabs != nil {
		record.LastTabID = uint64(tabs.LastTabID())
	}

	for _, n := range graph.Neurons() {
		record.Neurons[n.ID().String()] = dto.NeuronRecord{
			X:      n.Position().X(),
			Y:      n.Position().Y(),
			PageID: n.PageID().String(),
			Label:  n.Label(),
		}
	}
	for _, s := range graph.Synapses() {
		record.Synapses = append(record.Synapses, dto.SynapseRecord{From: s.From(), To: s.To()})
	}
	for pageID, id := range graph.PageIndex() {
		record.PageNeurons[pageID.String()] = id.String()
	}
	return record, nil
}

// Marshal encodes a record as JSON
func (c *PersistenceCodec) Marshal(record *dto.SessionRecord) ([]byte, error) {
	return json.Marshal(record)
}

// Unmarshal decodes a current or legacy record
func (c *PersistenceCodec) Unmarshal(data []byte) (*dto.SessionRecord, error) {
	var record dto.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("corrupt session record: %v", err))
	}
	return &record, nil
}

// Save encodes the session and writes it to the store. It reports whether
// the write succeeded; failures are logged only.
func (c *PersistenceCodec) Save(ctx context.Context, graph *aggregates.Graph, tabs *TabManager, cfg domainconfig.EngineConfig) bool {
	record, err := c.Encode(graph, tabs, cfg)
	if err != nil {
		c.logger.Error("Failed to encode session", zap.Error(err))
		return false
	}
	data, err := c.Marshal(record)
	if err != nil {
		c.logger.Error("Failed to marshal session", zap.Error(err))
		return false
	}
	if err := c.store.Set(ctx, c.key, string(data)); err != nil {
		c.logger.Error("Failed to save session",
			zap.String("key", c.key),
			zap.Error(err),
		)
		return false
	}
	c.logger.Debug("Saved session",
		zap.Int("neurons", len(record.Neurons)),
		zap.Int("synapses", len(record.Synapses)),
	)
	return true
}

// Load reads the persisted record. Absent, unreadable and corrupt records
// all report found=false.
func (c *PersistenceCodec) Load(ctx context.Context) (*dto.SessionRecord, bool) {
	raw, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.logger.Error("Failed to read session", zap.String("key", c.key), zap.Error(err))
		return nil, false
	}
	if !found || raw == "" {
		c.logger.Info("No saved session found", zap.String("key", c.key))
		return nil, false
	}

	record, err := c.Unmarshal([]byte(raw))
	if err != nil {
		c.logger.Error("Failed to decode session", zap.String("key", c.key), zap.Error(err))
		return nil, false
	}
	return record, true
}

// Apply reconstructs a record over the live state. Configuration comes
// first and is merged over base. Neurons whose page is already bound map
// to the existing neuron; the rest are recreated at their saved position,
// keeping their id when it is free. Synapses are remapped through the
// resulting translation and re-connected unless already present. Id
// counters only move forward.
func (c *PersistenceCodec) Apply(record *dto.SessionRecord, graph *aggregates.Graph, tabs *TabManager, base domainconfig.EngineConfig) (domainconfig.EngineConfig, RestoreReport) {
	report := RestoreReport{Translation: make(map[valueobjects.NeuronID]valueobjects.NeuronID)}
	cfg := base
	if record == nil {
		return cfg, report
	}

	if len(record.Config) > 0 {
		merged, err := base.MergeJSON(record.Config)
		if err != nil {
			c.logger.Warn("Ignoring invalid persisted config", zap.Error(err))
		} else {
			cfg = merged
			report.ConfigRestored = true
		}
	}

	pageByNeuron := make(map[string]string, len(record.PageNeurons))
	for pageID, neuronID := range record.PageNeurons {
		pageByNeuron[neuronID] = pageID
	}

	for _, entry := range sortedNeuronRecords(record.Neurons) {
		if entry.err != nil {
			c.logger.Warn("Skipping neuron with invalid id", zap.String("id", entry.raw), zap.Error(entry.err))
			report.NeuronsSkipped++
			continue
		}
		pageID := valueobjects.PageID(entry.record.PageID)
		if pageID.IsZero() {
			pageID = valueobjects.PageID(pageByNeuron[entry.raw])
		}
		pos, err := entry.record.Position()
		if err != nil {
			c.logger.Warn("Skipping neuron with invalid position", zap.String("id", entry.raw), zap.Error(err))
			report.NeuronsSkipped++
			continue
		}

		live, err := graph.RestoreNeuron(entry.id, pageID, entry.record.Label, pos)
		switch {
		case err == nil:
			report.NeuronsRestored++
		case pkgerrors.IsConflict(err):
			report.NeuronsSkipped++
		default:
			c.logger.Warn("Skipping neuron", zap.String("id", entry.raw), zap.Error(err))
			report.NeuronsSkipped++
			continue
		}
		report.Translation[entry.id] = live
	}

	for _, s := range record.Synapses {
		from, okFrom := report.Translation[s.From]
		to, okTo := report.Translation[s.To]
		if !okFrom || !okTo || graph.HasSynapse(from, to) {
			report.SynapsesSkipped++
			continue
		}
		if _, _, err := graph.Connect(from, to); err != nil {
			c.logger.Debug("Skipping synapse", zap.String("key", s.Key().String()), zap.Error(err))
			report.SynapsesSkipped++
			continue
		}
		report.SynapsesRestored++
	}

	graph.RaiseLastNeuronID(valueobjects.NeuronID(record.LastNeuronID))
	if tabs != nil {
		tabs.RaiseLastTabID(valueobjects.TabID(record.LastTabID))
	}

	c.logger.Info("Restored session",
		zap.Int("neuronsRestored", report.NeuronsRestored),
		zap.Int("neuronsSkipped", report.NeuronsSkipped),
		zap.Int("synapsesRestored", report.SynapsesRestored),
		zap.Bool("legacy", record.IsLegacy()),
	)
	return cfg, report
}

type neuronEntry struct {
	raw    string
	id     valueobjects.NeuronID
	err    error
	record dto.NeuronRecord
}

// sortedNeuronRecords orders persisted neurons by id so restores are
// deterministic; unparseable ids sort last
func sortedNeuronRecords(neurons map[string]dto.NeuronRecord) []neuronEntry {
	entries := make([]neuronEntry, 0, len(neurons))
	for raw, record := range neurons {
		id, err := valueobjects.ParseNeuronID(raw)
		entries = append(entries, neuronEntry{raw: raw, id: id, err: err, record: record})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.err == nil) != (b.err == nil) {
			return a.err == nil
		}
		if a.id != b.id {
			return a.id < b.id
		}
		return a.raw < b.raw
	})
	return entries
}
