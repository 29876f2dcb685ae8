package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, strategy := range []string{engine.StrategyFloodFill, engine.StrategyAStar, engine.StrategyBFS} {
		require.NoError(t, store.Record(ctx, service.HistoryRecord{
			SessionID:  "s1",
			Maze:       "classic",
			Strategy:   strategy,
			Pass:       1,
			Moves:      40 + i,
			PathLength: 21,
			Duration:   time.Millisecond,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.Record(ctx, service.HistoryRecord{Maze: "spiral", Strategy: engine.StrategyDFS, PathLength: 13}))

	records, err := store.ListByMaze(ctx, "classic", service.HistoryOptions{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, engine.StrategyBFS, records[0].Strategy, "newest first")
	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, time.Millisecond, records[0].Duration)
	assert.True(t, records[2].CreatedAt.Equal(base))

	filtered, err := store.ListByMaze(ctx, "classic", service.HistoryOptions{Strategy: engine.StrategyAStar, Limit: 10})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 41, filtered[0].Moves)

	limited, err := store.ListByMaze(ctx, "classic", service.HistoryOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := store.ListByMaze(ctx, "unknown", service.HistoryOptions{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Best(ctx, "medium")
	assert.True(t, errors.Is(err, ErrNoRecords))

	records := []service.HistoryRecord{
		{Maze: "medium", Strategy: "dfs", PathLength: 15, Moves: 30},
		{Maze: "medium", Strategy: "astar", PathLength: 9, Moves: 25},
		{Maze: "medium", Strategy: "bfs", PathLength: 9, Moves: 20},
		{Maze: "medium", Strategy: "floodfill", Aborted: true, Error: "crashed"},
	}
	for _, rec := range records {
		require.NoError(t, store.Record(ctx, rec))
	}

	best, err := store.Best(ctx, "medium")
	require.NoError(t, err)
	assert.Equal(t, "bfs", best.Strategy)
	assert.Equal(t, 9, best.PathLength)
}

func TestRecordReport(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := &engine.RunReport{
		Strategy: engine.StrategyAStar,
		Passes: []*engine.PassReport{
			{ID: "p1", Pass: 1, Strategy: engine.StrategyAStar, Moves: 12, Path: engine.Path{{X: 0, Y: 0}, {X: 0, Y: 1}}},
			{ID: "p2", Pass: 2, Strategy: engine.StrategyAStar, Moves: 3, Aborted: true, Error: "crashed"},
		},
	}
	settings := engine.Config{Strategy: engine.StrategyAStar, Heuristic: "manhattan"}
	require.NoError(t, store.RecordReport(ctx, "sess", "tiny", settings, report))

	records, err := store.ListByMaze(ctx, "tiny", service.HistoryOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "manhattan", rec.Heuristic)
		assert.Equal(t, "sess", rec.SessionID)
	}

	// IDs are primary keys; recording the same report twice fails.
	assert.Error(t, store.RecordReport(ctx, "sess", "tiny", settings, report))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), service.HistoryRecord{Maze: "open", Strategy: "bfs", PathLength: 5}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	best, err := reopened.Best(context.Background(), "open")
	require.NoError(t, err)
	assert.Equal(t, 5, best.PathLength)
}
