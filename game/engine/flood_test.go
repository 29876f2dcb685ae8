package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloodFieldSeedSixteen(t *testing.T) {
	g, err := NewGrid(16, 16)
	require.NoError(t, err)
	f := NewFloodField(g)

	for _, c := range g.Goals() {
		assert.Equal(t, 0, f.Value(c), "goal %v", c)
	}
	assert.Equal(t, 14, f.Value(Cell{0, 0}))
	assert.Equal(t, 14, f.Value(Cell{15, 15}))
	assert.Equal(t, 14, f.Value(Cell{0, 15}))
	assert.Equal(t, 7, f.Value(Cell{0, 7}))
	assert.Equal(t, 1, f.Value(Cell{6, 7}))

	// Four-way symmetry.
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			v := f.Value(Cell{x, y})
			assert.Equal(t, v, f.Value(Cell{15 - x, y}))
			assert.Equal(t, v, f.Value(Cell{x, 15 - y}))
		}
	}
}

func TestFloodFieldSeedOdd(t *testing.T) {
	g, err := NewGrid(5, 5)
	require.NoError(t, err)
	f := NewFloodField(g)

	assert.Equal(t, 0, f.Value(Cell{2, 2}))
	assert.Equal(t, 4, f.Value(Cell{0, 0}))
	assert.Equal(t, 1, f.Value(Cell{1, 2}))
}

func TestRelaxRaisesBehindWall(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)
	w := NewWallModel(g)
	f := NewFloodField(g)

	// (0,1) is one step from the centre until its south side is walled off.
	require.Equal(t, 1, f.Value(Cell{0, 1}))
	w.Record(Cell{0, 1}, East, false, true, false)

	raises, err := f.Relax(Cell{0, 1}, w)
	require.NoError(t, err)
	assert.Greater(t, raises, 0)
	assert.Equal(t, 3, f.Value(Cell{0, 1}))
	assert.Equal(t, 0, f.Value(Cell{1, 1}))
}

func TestRelaxIsMonotone(t *testing.T) {
	g, err := NewGrid(6, 6)
	require.NoError(t, err)
	w := NewWallModel(g)
	f := NewFloodField(g)

	walls := []struct {
		cell   Cell
		facing Orientation
	}{
		{Cell{1, 1}, East}, {Cell{1, 2}, South}, {Cell{2, 1}, East}, {Cell{3, 3}, North}, {Cell{0, 2}, South},
	}
	for _, wall := range walls {
		before := f.Rows()
		w.Record(wall.cell, wall.facing, true, true, true)
		_, err := f.Relax(wall.cell, w)
		require.NoError(t, err)

		after := f.Rows()
		for x := range before {
			for y := range before[x] {
				assert.GreaterOrEqual(t, after[x][y], before[x][y], "cell (%d,%d) decreased", x, y)
			}
		}
	}
	for _, c := range g.Goals() {
		assert.Equal(t, 0, f.Value(c))
	}
}

func TestRelaxDetectsUnreachableGoal(t *testing.T) {
	g, err := NewGrid(4, 4)
	require.NoError(t, err)
	w := NewWallModel(g)
	f := NewFloodField(g)

	// Close (0,0) and (0,1) off from the rest of the maze.
	w.MarkBlocked(Origin, Cell{1, 0})
	w.MarkBlocked(Cell{0, 1}, Cell{0, 2})
	w.MarkBlocked(Cell{0, 1}, Cell{1, 1})

	_, err = f.Relax(Cell{0, 1}, w)
	assert.True(t, errors.Is(err, ErrGoalUnreachable), "got %v", err)
}

func TestFloodRowsRestore(t *testing.T) {
	g, err := NewGrid(4, 4)
	require.NoError(t, err)
	f := NewFloodField(g)
	rows := f.Rows()
	rows[0][0] = 9
	rows[1][1] = 5 // goal cells stay pinned

	f.restore(rows)

	assert.Equal(t, 9, f.Value(Cell{0, 0}))
	assert.Equal(t, 0, f.Value(Cell{1, 1}))
}
