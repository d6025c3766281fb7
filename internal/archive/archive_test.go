package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dusk-indust/transcreate/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlan() *plan.TranscreationPlan {
	p := plan.NewTranscreationPlan("日本")
	p.Transformations = append(p.Transformations, plan.Transformation{
		OriginalObject: "Burger", OriginalType: "FOOD", TargetObject: "寿司", Rationale: "Better fit", Confidence: 0.9,
	})
	p.Preservations = append(p.Preservations, plan.Preservation{OriginalObject: "Chair", Rationale: "Universal"})
	return p
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "cli", samplePlan())
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)
	assert.Equal(t, 1, saved.Transformations)
	assert.Equal(t, 1, saved.Preservations)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "cli", got.Source)
	assert.Equal(t, "日本", got.TargetCulture)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Plan)
	assert.Equal(t, samplePlan(), got.Plan)
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, culture := range []string{"Japan", "India", "Brazil"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		run, err := s.Save(ctx, "api", plan.NewTranscreationPlan(culture))
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, "Brazil", runs[0].TargetCulture)
	assert.Nil(t, runs[0].Plan)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestList_Empty(t *testing.T) {
	runs, err := openTestStore(t).List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.Save(context.Background(), "cli", samplePlan())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, "日本", got.TargetCulture)
}
