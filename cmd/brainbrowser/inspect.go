package main

import (
	"context"
	"fmt"
	"os"

	"brainbrowser/application/services"
	"brainbrowser/infrastructure/config"
	"brainbrowser/infrastructure/di"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inspectRaw bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a summary of the persisted session record",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "print the whole record")
}

type recordSummary struct {
	Backend      string `json:"backend"`
	Key          string `json:"key"`
	Found        bool   `json:"found"`
	Version      int    `json:"version,omitempty"`
	Legacy       bool   `json:"legacy,omitempty"`
	Neurons      int    `json:"neurons"`
	Synapses     int    `json:"synapses"`
	Pages        int    `json:"pages"`
	LastNeuronID uint64 `json:"lastNeuronId"`
	LastTabID    uint64 `json:"lastTabId"`
}

// runInspect reads the record without starting a session, so nothing is
// written back
func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := zap.NewNop()

	backend, cleanup, err := di.ProvideStoreBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	codec := services.NewPersistenceCodec(backend.Store, cfg.Store.Key, logger)
	record, found := codec.Load(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if inspectRaw && found {
		return enc.Encode(record)
	}

	summary := recordSummary{Backend: cfg.Store.Backend, Key: codec.Key(), Found: found}
	if found {
		summary.Version = record.Version
		summary.Legacy = record.IsLegacy()
		summary.Neurons = len(record.Neurons)
		summary.Synapses = len(record.Synapses)
		summary.Pages = len(record.PageNeurons)
		summary.LastNeuronID = record.LastNeuronID
		summary.LastTabID = record.LastTabID
	}
	return enc.Encode(summary)
}
