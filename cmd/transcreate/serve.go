package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dusk-indust/transcreate/internal/api"
	"github.com/dusk-indust/transcreate/internal/archive"
	"github.com/dusk-indust/transcreate/internal/config"
	"github.com/dusk-indust/transcreate/internal/graph"
	"github.com/dusk-indust/transcreate/internal/logging"
	"github.com/dusk-indust/transcreate/internal/mcptools"
	"github.com/dusk-indust/transcreate/internal/orchestrator"
	"github.com/dusk-indust/transcreate/internal/reasoning"
)

// stack is the shared wiring behind serve and serve-mcp.
type stack struct {
	cfg     *config.ProjectConfig
	logger  *zap.Logger
	store   graph.Store
	engine  *orchestrator.Engine
	archive *archive.Store
}

func newStack(common commonFlags, archivePath string) (*stack, error) {
	cfg, err := common.loadConfig()
	if err != nil {
		return nil, err
	}
	if archivePath != "" {
		cfg.ArchivePath = archivePath
	}

	// serve-mcp owns stdout for the protocol; logging.New writes to stderr.
	logger := logging.New(cfg.Verbose)

	store, err := openStore(cfg.Graph, logger)
	if err != nil {
		return nil, err
	}
	reasoner, err := reasoning.New(cfg.LLM.Reasoning(), logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	s := &stack{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: orchestrator.NewEngine(store, reasoner,
			orchestrator.WithLogger(logger),
			orchestrator.WithConcurrency(cfg.Concurrency)),
	}
	if cfg.ArchivePath != "" {
		a, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			store.Close()
			return nil, err
		}
		s.archive = a
	}
	return s, nil
}

func (s *stack) Close() {
	if s.archive != nil {
		s.archive.Close()
	}
	s.store.Close()
	s.logger.Sync()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runServe starts the HTTP API.
func runServe(args []string) error {
	var common commonFlags
	var addr, archivePath string

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&common.KG, "kg", "", "path to the knowledge graph JSON (overrides graph.path)")
	fs.StringVar(&common.Backend, "backend", "", "graph backend: memory or kuzu")
	fs.StringVar(&common.ConfigDir, "config", ".", "directory holding transcreate.yml and .env")
	fs.StringVar(&addr, "addr", "", "listen address (overrides server.addr, default :8080)")
	fs.StringVar(&archivePath, "archive", "", "SQLite archive for run history")
	fs.BoolVar(&common.Verbose, "verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := newStack(common, archivePath)
	if err != nil {
		return err
	}
	defer s.Close()

	if addr == "" {
		addr = s.cfg.Server.Addr
	}
	if addr == "" {
		addr = ":8080"
	}

	opts := []api.Option{api.WithLogger(s.logger)}
	if s.archive != nil {
		opts = append(opts, api.WithArchive(s.archive))
	}
	if len(s.cfg.Server.AllowedOrigins) > 0 {
		opts = append(opts, api.WithAllowedOrigins(s.cfg.Server.AllowedOrigins))
	}

	ctx, stop := signalContext()
	defer stop()
	return api.NewServer(s.store, s.engine, opts...).ListenAndServe(ctx, addr)
}

// runServeMCP exposes the tools over stdio, or streamable HTTP with -http.
func runServeMCP(args []string) error {
	var common commonFlags
	var httpAddr, archivePath string

	fs := flag.NewFlagSet("serve-mcp", flag.ContinueOnError)
	fs.StringVar(&common.KG, "kg", "", "path to the knowledge graph JSON (overrides graph.path)")
	fs.StringVar(&common.Backend, "backend", "", "graph backend: memory or kuzu")
	fs.StringVar(&common.ConfigDir, "config", ".", "directory holding transcreate.yml and .env")
	fs.StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	fs.StringVar(&archivePath, "archive", "", "SQLite archive for run history")
	fs.BoolVar(&common.Verbose, "verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := newStack(common, archivePath)
	if err != nil {
		return err
	}
	defer s.Close()

	server := mcptools.NewTranscreateMCPServer(
		mcptools.NewTranscreateService(s.store, s.engine, s.archive, s.logger))

	ctx, stop := signalContext()
	defer stop()

	if httpAddr != "" {
		s.logger.Info("MCP server listening", zap.String("addr", httpAddr))
		return mcptools.RunHTTP(ctx, server, httpAddr)
	}
	if err := mcptools.RunStdio(ctx, server); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}
