package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/dusk-indust/transcreate/internal/config"
	"github.com/dusk-indust/transcreate/internal/export"
	"github.com/dusk-indust/transcreate/internal/graph"
)

// runDiagram prints the knowledge graph as a Mermaid diagram.
func runDiagram(args []string) error {
	var kg, configDir string
	var opts export.MermaidOptions

	fs := flag.NewFlagSet("diagram", flag.ContinueOnError)
	fs.StringVar(&kg, "kg", "", "path to the knowledge graph JSON (overrides graph.path)")
	fs.StringVar(&configDir, "config", ".", "directory holding transcreate.yml")
	fs.StringVar(&opts.Culture, "culture", "", "only draw this culture")
	fs.StringVar(&opts.Type, "type", "", "only draw attributes of this type, e.g. FOOD")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if kg == "" {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}
		kg = cfg.Graph.Path
	}
	if kg == "" {
		return fmt.Errorf("usage: transcreate diagram -kg kg.json [-culture Japan] [-type FOOD]")
	}

	doc, err := graph.ReadDocument(kg)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return fmt.Errorf("knowledge graph file %q not found", kg)
		}
		return err
	}

	fmt.Print(export.GenerateMermaid(doc, opts))
	return nil
}
