package maze

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/micromouse/game/engine"
)

var spiralLayout = []string{
	"+---+---+---+---+",
	"|               |",
	"+---+---+---+   +",
	"|       |   |   |",
	"+   +---+   +   +",
	"|   |       |   |",
	"+   +---+---+   +",
	"|               |",
	"+---+---+---+---+",
}

func spiralConfig() *Config {
	return &Config{
		Name:        "spiral",
		Description: "test corridor",
		Width:       4,
		Height:      4,
		Layout:      append([]string(nil), spiralLayout...),
	}
}

func TestParseSpiral(t *testing.T) {
	m, err := Parse(spiralConfig())
	require.NoError(t, err)

	tests := []struct {
		cell     engine.Cell
		side     engine.Orientation
		expected bool
	}{
		{engine.Cell{X: 0, Y: 0}, engine.North, true},
		{engine.Cell{X: 0, Y: 0}, engine.West, true},
		{engine.Cell{X: 0, Y: 0}, engine.East, false},
		{engine.Cell{X: 0, Y: 0}, engine.South, true},
		{engine.Cell{X: 1, Y: 0}, engine.North, true},
		{engine.Cell{X: 1, Y: 0}, engine.East, false},
		{engine.Cell{X: 1, Y: 1}, engine.East, true},
		{engine.Cell{X: 1, Y: 2}, engine.West, true},
		{engine.Cell{X: 0, Y: 3}, engine.South, false},
		{engine.Cell{X: 3, Y: 3}, engine.South, true},
	}
	for _, tt := range tests {
		if got := m.Wall(tt.cell, tt.side); got != tt.expected {
			t.Errorf("Wall(%v, %v): expected %v, got %v", tt.cell, tt.side, tt.expected, got)
		}
	}

	path, err := m.ShortestPath()
	require.NoError(t, err)
	assert.Len(t, path, 13)
	assert.Equal(t, engine.Cell{X: 1, Y: 1}, path[len(path)-1])
	assert.Equal(t, 13, m.Reachable())
	assert.Equal(t, spiralLayout, m.Render())
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"missing name", func(c *Config) { c.Name = "" }, "name is required"},
		{"missing description", func(c *Config) { c.Description = "" }, "description is required"},
		{"bad width", func(c *Config) { c.Width = 0 }, "width must be between"},
		{"bad height", func(c *Config) { c.Height = engine.MaxMazeSize + 1 }, "height must be between"},
		{"line count", func(c *Config) { c.Layout = c.Layout[:7] }, "must have 9 lines"},
		{"line length", func(c *Config) { c.Layout[3] = c.Layout[3] + " " }, "must have 17 characters"},
		{"corner", func(c *Config) { c.Layout[2] = "x" + c.Layout[2][1:] }, "expected '+'"},
		{"edge char", func(c *Config) { c.Layout[0] = "+-#-" + c.Layout[0][4:] }, "invalid character"},
		{"open boundary", func(c *Config) { c.Layout[1] = " " + c.Layout[1][1:] }, "outer boundary is open"},
		{"unreachable goal", func(c *Config) { c.Layout[4] = "+---+---+   +   +" }, "not reachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := spiralConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.substr)
		})
	}

	assert.Error(t, ValidateConfig(nil))
}

func TestGenerateIsPerfectAndDeterministic(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {2, 3}, {8, 8}, {16, 16}, {5, 9}}
	for _, size := range sizes {
		a, err := Generate(size.w, size.h, 99)
		require.NoError(t, err)
		b, err := Generate(size.w, size.h, 99)
		require.NoError(t, err)

		assert.Equal(t, a.Render(), b.Render())
		assert.Equal(t, size.w*size.h, a.Reachable(), "every cell joins the tree")

		// A spanning tree has exactly cells-1 passages.
		passages := 0
		for x := 0; x < size.w; x++ {
			for y := 0; y < size.h; y++ {
				passages += len(a.Open(engine.Cell{X: x, Y: y}))
			}
		}
		assert.Equal(t, size.w*size.h-1, passages/2)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	m, err := Generate(7, 5, 3)
	require.NoError(t, err)
	m.OpenCentre()

	parsed, err := Parse(m.ToConfig("gen", "generated"))
	require.NoError(t, err)
	assert.Equal(t, m.Render(), parsed.Render())
}

func TestLoadConfigByName(t *testing.T) {
	dir := filepath.Join("..", "..", "configs")
	cfg, err := LoadConfigByName(dir, "spiral")
	require.NoError(t, err)
	assert.Equal(t, "spiral", cfg.Name)
	assert.Equal(t, spiralLayout, cfg.Layout)

	_, err = LoadConfigByName(dir, "does-not-exist")
	assert.True(t, errors.Is(err, ErrConfigMissing))
}

func TestSimulatorSensingAndCrash(t *testing.T) {
	m, err := Parse(spiralConfig())
	require.NoError(t, err)
	sim := NewSimulator(m)

	front, _ := sim.WallFront()
	left, _ := sim.WallLeft()
	right, _ := sim.WallRight()
	assert.False(t, front)
	assert.True(t, left, "north boundary")
	assert.True(t, right, "wall to the south of the origin")

	require.NoError(t, sim.MoveForward(3))
	assert.Equal(t, engine.Cell{X: 0, Y: 3}, sim.Pose().Cell)

	err = sim.MoveForward(1)
	assert.True(t, errors.Is(err, engine.ErrCrashed))
	assert.Equal(t, engine.Cell{X: 0, Y: 3}, sim.Pose().Cell, "a crash does not move the mouse")

	require.NoError(t, sim.TurnRight())
	require.NoError(t, sim.MoveForward(0))
	assert.Equal(t, engine.RunState{Cell: engine.Cell{X: 1, Y: 3}, Facing: engine.South}, sim.Pose())

	sim.RequestReset()
	reset, _ := sim.WasReset()
	assert.True(t, reset)
	require.NoError(t, sim.AckReset())
	reset, _ = sim.WasReset()
	assert.False(t, reset)
	assert.Equal(t, engine.Origin, sim.Pose().Cell)

	stats := sim.Stats()
	assert.Equal(t, 4, stats.Moves)
	assert.Equal(t, 1, stats.Crashes)
	assert.Equal(t, 1, stats.Turns)
	assert.Equal(t, 3, stats.SensorReads)
	assert.Equal(t, 1, stats.Resets)
}

func TestSimulatorDisplay(t *testing.T) {
	m, err := New(3, 3)
	require.NoError(t, err)
	sim := NewSimulator(m)

	require.NoError(t, sim.SetColor(engine.Cell{X: 1, Y: 1}, engine.ColorDarkYellow))
	assert.Error(t, sim.SetColor(engine.Cell{X: 1, Y: 1}, engine.Color('z')))
	require.NoError(t, sim.SetText(engine.Cell{X: 2, Y: 2}, "7"))
	require.NoError(t, sim.SetWall(engine.Cell{X: 0, Y: 0}, engine.South))
	assert.Error(t, sim.SetWall(engine.Cell{X: 5, Y: 0}, engine.South))

	out := sim.Render()
	assert.Contains(t, out, " > ")
	assert.Contains(t, out, " Y ")
	assert.Contains(t, out, "7  ")

	require.NoError(t, sim.ClearAllColor())
	require.NoError(t, sim.ClearText(engine.Cell{X: 2, Y: 2}))
	assert.Empty(t, sim.Colors())
	assert.Equal(t, "", sim.Text(engine.Cell{X: 2, Y: 2}))
	assert.False(t, strings.Contains(sim.Render(), " Y "))
}
