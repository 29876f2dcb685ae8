package maze

import (
	"fmt"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
)

// Maze is a fully known wall layout. Walls are always symmetric.
// Cell (x, y) is row x and column y of the rendered layout.
type Maze struct {
	width  int
	height int
	walls  [][4]bool
}

// New returns a maze with only the outer boundary walled.
func New(width, height int) (*Maze, error) {
	if _, err := engine.NewGrid(width, height); err != nil {
		return nil, err
	}
	m := &Maze{width: width, height: height, walls: make([][4]bool, width*height)}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			c := engine.Cell{X: x, Y: y}
			for o := engine.North; o <= engine.West; o++ {
				if !m.InBounds(c.Step(o)) {
					m.walls[m.index(c)][o] = true
				}
			}
		}
	}
	return m, nil
}

// NewClosed returns a maze with every wall present, ready for carving.
func NewClosed(width, height int) (*Maze, error) {
	m, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for i := range m.walls {
		m.walls[i] = [4]bool{true, true, true, true}
	}
	return m, nil
}

func (m *Maze) Width() int  { return m.width }
func (m *Maze) Height() int { return m.height }

func (m *Maze) index(c engine.Cell) int { return c.X*m.height + c.Y }

// InBounds reports whether c lies inside the maze.
func (m *Maze) InBounds(c engine.Cell) bool {
	return c.X >= 0 && c.X < m.width && c.Y >= 0 && c.Y < m.height
}

// Wall reports whether side o of c is walled. Every side facing outside the maze is.
func (m *Maze) Wall(c engine.Cell, o engine.Orientation) bool {
	if !m.InBounds(c) {
		return true
	}
	return m.walls[m.index(c)][o]
}

// SetWall adds or removes the wall on side o of c and on the matching side of its
// neighbour. Boundary walls cannot be removed.
func (m *Maze) SetWall(c engine.Cell, o engine.Orientation, present bool) {
	n := c.Step(o)
	if !m.InBounds(c) || !m.InBounds(n) {
		return
	}
	m.walls[m.index(c)][o] = present
	m.walls[m.index(n)][o.Opposite()] = present
}

// Open lists the neighbours reachable from c without crossing a wall.
func (m *Maze) Open(c engine.Cell) []engine.Cell {
	var out []engine.Cell
	for _, o := range []engine.Orientation{engine.North, engine.West, engine.East, engine.South} {
		if !m.Wall(c, o) {
			out = append(out, c.Step(o))
		}
	}
	return out
}

// ShortestPath returns a shortest route from the origin into the goal region.
func (m *Maze) ShortestPath() (engine.Path, error) {
	g, err := engine.NewGrid(m.width, m.height)
	if err != nil {
		return nil, err
	}
	parent := make(map[engine.Cell]engine.Cell, m.width*m.height)
	parent[engine.Origin] = engine.Origin
	queue := []engine.Cell{engine.Origin}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if g.IsGoal(c) {
			path := engine.Path{c}
			for c != engine.Origin {
				c = parent[c]
				path = append(path, c)
			}
			return path.Reversed(), nil
		}
		for _, n := range m.Open(c) {
			if _, seen := parent[n]; !seen {
				parent[n] = c
				queue = append(queue, n)
			}
		}
	}
	return nil, engine.ErrGoalUnreachable
}

// Reachable counts the cells connected to the origin.
func (m *Maze) Reachable() int {
	seen := map[engine.Cell]bool{engine.Origin: true}
	stack := []engine.Cell{engine.Origin}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range m.Open(c) {
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return len(seen)
}

// DeadEnds counts cells with exactly one open side.
func (m *Maze) DeadEnds() int {
	count := 0
	for x := 0; x < m.width; x++ {
		for y := 0; y < m.height; y++ {
			if len(m.Open(engine.Cell{X: x, Y: y})) == 1 {
				count++
			}
		}
	}
	return count
}

// Render draws the maze as layout lines.
func (m *Maze) Render() []string {
	return m.render(nil)
}

// render draws the maze and lets mark fill the three interior characters of a cell.
func (m *Maze) render(mark func(engine.Cell) string) []string {
	lines := make([]string, 0, 2*m.width+1)
	for x := 0; x <= m.width; x++ {
		var edge strings.Builder
		edge.WriteByte('+')
		for y := 0; y < m.height; y++ {
			if x == m.width || m.Wall(engine.Cell{X: x, Y: y}, engine.North) {
				edge.WriteString("---+")
			} else {
				edge.WriteString("   +")
			}
		}
		lines = append(lines, edge.String())
		if x == m.width {
			break
		}

		var row strings.Builder
		for y := 0; y < m.height; y++ {
			c := engine.Cell{X: x, Y: y}
			if m.Wall(c, engine.West) {
				row.WriteByte('|')
			} else {
				row.WriteByte(' ')
			}
			inner := "   "
			if mark != nil {
				if s := mark(c); s != "" {
					inner = fmt.Sprintf("%-3.3s", s)
				}
			}
			row.WriteString(inner)
		}
		row.WriteByte('|')
		lines = append(lines, row.String())
	}
	return lines
}

// String renders the maze as one block of text.
func (m *Maze) String() string {
	return strings.Join(m.Render(), "\n")
}
