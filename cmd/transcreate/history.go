package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/transcreate/internal/archive"
	"github.com/dusk-indust/transcreate/internal/config"
	"github.com/dusk-indust/transcreate/internal/export"
	"github.com/dusk-indust/transcreate/internal/plan"
)

// runHistory exports archived runs as JSON on stdout.
func runHistory(args []string) error {
	var archivePath, configDir string
	var opts export.HistoryOptions

	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.StringVar(&archivePath, "archive", "", "SQLite archive to read (overrides archive)")
	fs.StringVar(&configDir, "config", ".", "directory holding transcreate.yml")
	fs.IntVar(&opts.Limit, "limit", 20, "most recent runs to export; 0 exports all")
	fs.BoolVar(&opts.IncludePlans, "plans", false, "include each run's full plan")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if archivePath == "" {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}
		archivePath = cfg.ArchivePath
	}
	if archivePath == "" {
		return fmt.Errorf("usage: transcreate history -archive runs.db [-limit N] [-plans]")
	}
	if err := requireFile(archivePath, "archive"); err != nil {
		return err
	}

	store, err := archive.Open(archivePath)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := export.ExportHistory(context.Background(), store, opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	out, err := plan.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
