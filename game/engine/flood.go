package engine

import (
	"fmt"

	"github.com/zyedidia/generic/stack"
)

// FloodField holds the estimated distance from every cell to the goal region.
// Values only ever increase, and goal cells stay at 0.
type FloodField struct {
	grid   *Grid
	values []int
}

// NewFloodField seeds the field with the open-maze distance to the centre.
func NewFloodField(g *Grid) *FloodField {
	f := &FloodField{grid: g, values: make([]int, g.Size())}
	for i := range f.values {
		c := g.CellAt(i)
		f.values[i] = axisDistance(c.X, g.Width()) + axisDistance(c.Y, g.Height())
	}
	return f
}

// Value returns the current estimate for c.
func (f *FloodField) Value(c Cell) int {
	return f.values[f.grid.Index(c)]
}

// Solved reports whether c is in the goal region.
func (f *FloodField) Solved(c Cell) bool {
	return f.Value(c) == 0
}

// Relax re-propagates distances from seed until every affected cell exceeds the
// minimum of its open neighbours by exactly one. It returns the number of raises.
func (f *FloodField) Relax(seed Cell, walls *WallModel) (int, error) {
	limit := f.grid.Size() - 1
	pending := stack.New[Cell]()
	pending.Push(seed)

	raises := 0
	for pending.Size() > 0 {
		c := pending.Pop()
		idx := f.grid.Index(c)
		if f.values[idx] == 0 {
			continue
		}
		open := walls.Open(c)
		if len(open) == 0 {
			continue
		}

		lowest := f.Value(open[0])
		for _, n := range open[1:] {
			if v := f.Value(n); v < lowest {
				lowest = v
			}
		}
		if f.values[idx] > lowest {
			continue
		}

		f.values[idx] = lowest + 1
		raises++
		if f.values[idx] > limit {
			return raises, fmt.Errorf("%w: estimate at %v exceeds %d", ErrGoalUnreachable, c, limit)
		}
		for _, n := range open {
			pending.Push(n)
		}
	}
	return raises, nil
}

// Rows returns a copy of the field indexed [x][y].
func (f *FloodField) Rows() [][]int {
	rows := make([][]int, f.grid.Width())
	for x := range rows {
		rows[x] = make([]int, f.grid.Height())
		for y := range rows[x] {
			rows[x][y] = f.values[f.grid.Index(Cell{X: x, Y: y})]
		}
	}
	return rows
}

// restore loads rows produced by Rows, keeping the seed value where a row is missing.
func (f *FloodField) restore(rows [][]int) {
	for x := 0; x < len(rows) && x < f.grid.Width(); x++ {
		for y := 0; y < len(rows[x]) && y < f.grid.Height(); y++ {
			c := Cell{X: x, Y: y}
			if f.grid.IsGoal(c) {
				continue
			}
			if v := rows[x][y]; v > f.values[f.grid.Index(c)] {
				f.values[f.grid.Index(c)] = v
			}
		}
	}
}
