package maze

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/micromouse/game/engine"
)

func loadTestMaze(t *testing.T, name string) *Maze {
	t.Helper()
	cfg, err := LoadConfigByName(filepath.Join("..", "..", "configs"), name)
	require.NoError(t, err)
	m, err := Parse(cfg)
	require.NoError(t, err)
	return m
}

// checkRoute verifies that p is a wall-free walk from the origin into the goal region.
func checkRoute(t *testing.T, m *Maze, p engine.Path) {
	t.Helper()
	g, err := engine.NewGrid(m.Width(), m.Height())
	require.NoError(t, err)
	require.NotEmpty(t, p)
	assert.Equal(t, engine.Origin, p[0])
	assert.True(t, g.IsGoal(p[len(p)-1]))
	for i := 1; i < len(p); i++ {
		o, ok := engine.DirectionBetween(p[i-1], p[i])
		require.True(t, ok, "%v -> %v", p[i-1], p[i])
		assert.False(t, m.Wall(p[i-1], o), "route crosses a wall at %v -> %v", p[i-1], p[i])
	}
}

func TestStrategiesSolveConfiguredMazes(t *testing.T) {
	for _, name := range []string{"tiny", "spiral", "open", "small", "medium", "classic"} {
		m := loadTestMaze(t, name)
		shortest, err := m.ShortestPath()
		require.NoError(t, err)

		for _, strategy := range engine.Strategies() {
			t.Run(name+"/"+strategy, func(t *testing.T) {
				sim := NewSimulator(m)
				eng, err := engine.New(sim, engine.WithLogger(log.New(io.Discard, "", 0)))
				require.NoError(t, err)
				ctrl, err := engine.NewControllerFromConfig(eng, engine.Config{Strategy: strategy, Passes: 2})
				require.NoError(t, err)

				report, err := ctrl.Run(context.Background())
				require.NoError(t, err)

				checkRoute(t, m, report.Best)
				assert.GreaterOrEqual(t, len(report.Best), len(shortest))
				assert.Zero(t, sim.Stats().Crashes)
				assert.Equal(t, report.Best[len(report.Best)-1], sim.Pose().Cell)
			})
		}
	}
}

func TestStrategiesSolveGeneratedMazes(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m, err := Generate(10, 10, seed)
		require.NoError(t, err)
		m.OpenCentre()

		for _, strategy := range engine.Strategies() {
			sim := NewSimulator(m)
			eng, err := engine.New(sim, engine.WithLogger(log.New(io.Discard, "", 0)))
			require.NoError(t, err)
			s, err := engine.NewStrategy(strategy, engine.StrategyOptions{})
			require.NoError(t, err)

			report, err := eng.RunPass(s)
			require.NoError(t, err, "seed %d strategy %s", seed, strategy)
			checkRoute(t, m, report.Path)
			assert.Zero(t, sim.Stats().Crashes)
		}
	}
}

func TestDriveReturnOnSimulator(t *testing.T) {
	m := loadTestMaze(t, "medium")
	sim := NewSimulator(m)
	eng, err := engine.New(sim, engine.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	ctrl, err := engine.NewControllerFromConfig(eng, engine.Config{Strategy: engine.StrategyAStar, Passes: 3, Return: engine.ReturnDrive})
	require.NoError(t, err)

	_, err = ctrl.Explore(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, engine.RunState{Cell: engine.Origin, Facing: engine.InitialFacing}, sim.Pose())
	assert.Zero(t, sim.Stats().Resets)
	assert.Zero(t, sim.Stats().Crashes)
}
