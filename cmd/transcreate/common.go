package main

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dusk-indust/transcreate/internal/config"
	"github.com/dusk-indust/transcreate/internal/graph"
)

// stringList collects a repeatable string flag such as -avoid. Each
// occurrence is one item, commas included.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ", ") }

func (l *stringList) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*l = append(*l, v)
	}
	return nil
}

// commonFlags are shared by every command that loads the knowledge graph.
type commonFlags struct {
	ConfigDir string
	KG        string
	Backend   string
	Verbose   bool
}

// loadConfig reads the project config and lets explicit flags win.
func (f commonFlags) loadConfig() (*config.ProjectConfig, error) {
	cfg, err := config.Load(f.ConfigDir)
	if err != nil {
		return nil, err
	}
	if f.KG != "" {
		cfg.Graph.Path = f.KG
	}
	if f.Backend != "" {
		cfg.Graph.Backend = f.Backend
	}
	if f.Verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore builds the configured graph backend from the graph file.
func openStore(gc config.GraphConfig, logger *zap.Logger) (graph.Store, error) {
	if gc.Path == "" {
		return nil, fmt.Errorf("knowledge graph path required (-kg or graph.path in transcreate.yml)")
	}

	doc, err := graph.ReadDocument(gc.Path)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, fmt.Errorf("knowledge graph file %q not found", gc.Path)
		}
		return nil, err
	}

	var store graph.Store
	switch gc.BackendName() {
	case config.BackendKuzu:
		if gc.DBPath != "" {
			store, err = graph.NewKuzuFileStore(gc.DBPath, doc, logger)
		} else {
			store, err = graph.NewKuzuStore(doc, logger)
		}
		if err != nil {
			return nil, fmt.Errorf("open kuzu graph: %w", err)
		}
	default:
		store = graph.NewIndex(doc)
	}

	stats := store.Stats()
	logger.Info("knowledge graph loaded",
		zap.String("path", gc.Path),
		zap.String("backend", gc.BackendName()),
		zap.Int("nodes", stats.NodeCount),
		zap.Int("cultures", stats.CultureCount),
	)
	return store, nil
}
