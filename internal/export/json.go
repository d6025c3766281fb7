package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dusk-indust/transcreate/internal/archive"
)

// HistoryExport is the top-level JSON export of the run archive.
type HistoryExport struct {
	ExportedAt string           `json:"exportedAt"`
	Runs       []archive.Run    `json:"runs"`
	Cultures   []CultureSummary `json:"cultures"`
}

// CultureSummary totals the archived runs for one target culture.
type CultureSummary struct {
	TargetCulture   string `json:"targetCulture"`
	Runs            int    `json:"runs"`
	Transformations int    `json:"transformations"`
	Preservations   int    `json:"preservations"`
}

// HistoryOptions controls ExportHistory.
type HistoryOptions struct {
	Limit        int  // most recent runs to include; <= 0 means all
	IncludePlans bool // load each run's full plan
	Now          func() time.Time
}

// ExportHistory builds a HistoryExport from the archive, newest run first.
func ExportHistory(ctx context.Context, store *archive.Store, opts HistoryOptions) (*HistoryExport, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	runs, err := store.List(ctx, opts.Limit)
	if err != nil {
		return nil, err
	}

	if opts.IncludePlans {
		for i, r := range runs {
			full, err := store.Get(ctx, r.ID)
			if err != nil {
				return nil, fmt.Errorf("load run %s: %w", r.ID, err)
			}
			runs[i] = full
		}
	}

	return &HistoryExport{
		ExportedAt: now().UTC().Format(time.RFC3339),
		Runs:       runs,
		Cultures:   summarize(runs),
	}, nil
}

// summarize groups runs by target culture, cultures sorted by name.
func summarize(runs []archive.Run) []CultureSummary {
	byCulture := make(map[string]*CultureSummary)
	for _, r := range runs {
		s, ok := byCulture[r.TargetCulture]
		if !ok {
			s = &CultureSummary{TargetCulture: r.TargetCulture}
			byCulture[r.TargetCulture] = s
		}
		s.Runs++
		s.Transformations += r.Transformations
		s.Preservations += r.Preservations
	}

	out := make([]CultureSummary, 0, len(byCulture))
	for _, s := range byCulture {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetCulture < out[j].TargetCulture })
	return out
}
