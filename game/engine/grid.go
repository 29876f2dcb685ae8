package engine

import "fmt"

// scanOrder is the order in which neighbours are listed and tie-broken.
var scanOrder = [...]Orientation{North, West, East, South}

// Grid holds the maze dimensions, the precomputed adjacency table and the goal region.
type Grid struct {
	width     int
	height    int
	neighbors [][]Cell
	goals     []Cell
}

// NewGrid builds the adjacency table for a width x height maze.
func NewGrid(width, height int) (*Grid, error) {
	if width < MinMazeSize || width > MaxMazeSize || height < MinMazeSize || height > MaxMazeSize {
		return nil, fmt.Errorf("%w: %dx%d (allowed %d-%d)", ErrInvalidDimensions, width, height, MinMazeSize, MaxMazeSize)
	}

	g := &Grid{
		width:     width,
		height:    height,
		neighbors: make([][]Cell, width*height),
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			c := Cell{X: x, Y: y}
			adj := make([]Cell, 0, 4)
			for _, o := range scanOrder {
				if n := c.Step(o); g.InBounds(n) {
					adj = append(adj, n)
				}
			}
			g.neighbors[g.Index(c)] = adj
		}
	}

	xs, ys := centerBand(width), centerBand(height)
	for _, x := range xs {
		for _, y := range ys {
			g.goals = append(g.goals, Cell{X: x, Y: y})
		}
	}
	return g, nil
}

// centerBand returns the centre indices of an axis of length n.
func centerBand(n int) []int {
	if n%2 == 0 {
		return []int{n/2 - 1, n / 2}
	}
	return []int{n / 2}
}

// axisDistance is the distance from i to the centre band of an axis of length n.
func axisDistance(i, n int) int {
	lo, hi := (n-1)/2, n/2
	switch {
	case i < lo:
		return lo - i
	case i > hi:
		return i - hi
	}
	return 0
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Size is the number of cells.
func (g *Grid) Size() int { return g.width * g.height }

// InBounds reports whether c lies inside the maze.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// Index is the row-major linear index of an in-bounds cell.
func (g *Grid) Index(c Cell) int {
	return c.X*g.height + c.Y
}

// CellAt is the inverse of Index.
func (g *Grid) CellAt(i int) Cell {
	return Cell{X: i / g.height, Y: i % g.height}
}

// Neighbors returns the in-bounds 4-neighbours of c in scan order.
// The returned slice is shared and must not be modified.
func (g *Grid) Neighbors(c Cell) []Cell {
	return g.neighbors[g.Index(c)]
}

// Goals returns the goal region.
func (g *Grid) Goals() []Cell {
	return g.goals
}

// IsGoal reports whether c belongs to the goal region.
func (g *Grid) IsGoal(c Cell) bool {
	return axisDistance(c.X, g.width) == 0 && axisDistance(c.Y, g.height) == 0
}
