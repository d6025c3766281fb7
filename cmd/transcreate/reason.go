package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/dusk-indust/transcreate/internal/archive"
	"github.com/dusk-indust/transcreate/internal/logging"
	"github.com/dusk-indust/transcreate/internal/orchestrator"
	"github.com/dusk-indust/transcreate/internal/plan"
	"github.com/dusk-indust/transcreate/internal/reasoning"
	"github.com/dusk-indust/transcreate/internal/scene"
)

// runReason runs the cultural reasoning stage over one scene graph and saves
// the resulting Transcreation Plan.
func runReason(args []string) error {
	var (
		common      commonFlags
		avoid       stringList
		input       string
		target      string
		output      string
		concurrency int
		archivePath string
		quiet       bool
	)

	fs := flag.NewFlagSet("reason", flag.ContinueOnError)
	fs.StringVar(&input, "input", "", "path to the perception scene graph JSON")
	fs.StringVar(&target, "target", "", "target culture, e.g. Japan")
	fs.StringVar(&output, "output", "", "path to write the Transcreation Plan JSON")
	fs.Var(&avoid, "avoid", "item to avoid (repeat the flag for several items)")
	fs.StringVar(&common.KG, "kg", "", "path to the knowledge graph JSON (overrides graph.path)")
	fs.StringVar(&common.Backend, "backend", "", "graph backend: memory or kuzu (overrides graph.backend)")
	fs.StringVar(&common.ConfigDir, "config", ".", "directory holding transcreate.yml and .env")
	fs.IntVar(&concurrency, "concurrency", 0, "objects analyzed in parallel (overrides concurrency)")
	fs.StringVar(&archivePath, "archive", "", "SQLite archive to record the run in (overrides archive)")
	fs.BoolVar(&quiet, "quiet", false, "suppress per-object progress lines")
	fs.BoolVar(&common.Verbose, "verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if input == "" || target == "" || output == "" {
		return fmt.Errorf("usage: transcreate reason -input scene.json -target <culture> -kg kg.json -output plan.json [-avoid item]...")
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if archivePath != "" {
		cfg.ArchivePath = archivePath
	}

	logger := logging.New(cfg.Verbose)
	defer logger.Sync()

	sg, err := scene.ReadFile(input)
	if err != nil {
		if errors.Is(err, scene.ErrNotFound) {
			return fmt.Errorf("input file %q not found", input)
		}
		return err
	}

	store, err := openStore(cfg.Graph, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	reasoner, err := reasoning.New(cfg.LLM.Reasoning(), logger)
	if err != nil {
		return err
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithConcurrency(cfg.Concurrency),
	}
	var reporter *orchestrator.ProgressReporter
	done := make(chan struct{})
	if !quiet {
		reporter = orchestrator.NewProgressReporter()
		opts = append(opts, orchestrator.WithProgress(reporter.Emit))
		go func() {
			defer close(done)
			for ev := range reporter.Subscribe() {
				fmt.Fprintln(os.Stderr, orchestrator.FormatProgress(ev))
			}
		}()
	} else {
		close(done)
	}
	engine := orchestrator.NewEngine(store, reasoner, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Running Cultural Reasoning for target: %s...\n", target)
	p, err := engine.Analyze(ctx, orchestrator.Input{
		Scene:         sg,
		TargetCulture: target,
		AvoidList:     avoid,
	})
	if reporter != nil {
		reporter.Close()
	}
	<-done
	if err != nil {
		return fmt.Errorf("reasoning interrupted: %w", err)
	}

	if err := plan.WriteFile(output, p); err != nil {
		return err
	}
	fmt.Printf("Transcreation Plan saved to: %s\n", output)

	if cfg.ArchivePath != "" {
		a, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer a.Close()
		run, err := a.Save(ctx, "cli", p)
		if err != nil {
			return err
		}
		logger.Info("run archived", zap.String("run_id", run.ID), zap.String("archive", cfg.ArchivePath))
		fmt.Printf("Run id: %s\n", run.ID)
	}
	return nil
}
