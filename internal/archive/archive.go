// Package archive keeps a SQLite history of produced Transcreation Plans.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/dusk-indust/transcreate/internal/plan"
)

// Schema creates the runs table.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	source          TEXT NOT NULL,
	target_culture  TEXT NOT NULL,
	transformations INTEGER NOT NULL,
	preservations   INTEGER NOT NULL,
	plan_json       TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("archive: run not found")

// Run is one archived analysis. Plan is only populated by Get.
type Run struct {
	ID              string                  `json:"id"`
	Source          string                  `json:"source"`
	TargetCulture   string                  `json:"target_culture"`
	Transformations int                     `json:"transformations"`
	Preservations   int                     `json:"preservations"`
	CreatedAt       time.Time               `json:"created_at"`
	Plan            *plan.TranscreationPlan `json:"plan,omitempty"`
}

// Store is a SQLite-backed run archive. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the archive database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records p under a new run id. source names the producing surface
// (cli, api, mcp).
func (s *Store) Save(ctx context.Context, source string, p *plan.TranscreationPlan) (Run, error) {
	data, err := plan.Marshal(p)
	if err != nil {
		return Run{}, fmt.Errorf("encode plan: %w", err)
	}

	run := Run{
		ID:              uuid.New().String(),
		Source:          source,
		TargetCulture:   p.TargetCulture,
		Transformations: len(p.Transformations),
		Preservations:   len(p.Preservations),
		CreatedAt:       s.now().UTC(),
		Plan:            p,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, target_culture, transformations, preservations, plan_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.TargetCulture, run.Transformations, run.Preservations,
		string(data), run.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Get loads a run with its plan. The stored plan is re-validated.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, target_culture, transformations, preservations, created_at, plan_json
		 FROM runs WHERE id = ?`, id)

	var (
		run      Run
		created  string
		planJSON string
	)
	err := row.Scan(&run.ID, &run.Source, &run.TargetCulture, &run.Transformations, &run.Preservations, &created, &planJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}

	v, err := plan.Parse(plan.KindTranscreation, []byte(planJSON))
	if err != nil {
		return Run{}, fmt.Errorf("decode archived plan %s: %w", id, err)
	}
	p := v.(plan.TranscreationPlan)
	run.Plan = &p
	return run, nil
}

// List returns up to limit runs, newest first, without their plans.
// A limit of zero or less returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, target_culture, transformations, preservations, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run     Run
			created string
		)
		if err := rows.Scan(&run.ID, &run.Source, &run.TargetCulture, &run.Transformations, &run.Preservations, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
