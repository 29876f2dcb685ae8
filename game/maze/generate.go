package maze

import (
	"math/rand"

	"github.com/wricardo/micromouse/game/engine"
)

var directions = []engine.Orientation{engine.North, engine.East, engine.South, engine.West}

// Generate carves a perfect maze with Wilson's algorithm: loop-erased random walks
// from unvisited cells until every cell joins the tree. The same seed always yields
// the same maze.
func Generate(width, height int, seed int64) (*Maze, error) {
	m, err := NewClosed(width, height)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))

	inTree := make([]bool, width*height)
	remaining := width*height - 1
	inTree[m.index(engine.Cell{X: rng.Intn(width), Y: rng.Intn(height)})] = true

	exit := make([]engine.Orientation, width*height)
	for remaining > 0 {
		start := engine.Cell{X: rng.Intn(width), Y: rng.Intn(height)}
		if inTree[m.index(start)] {
			continue
		}

		// Walk until the tree is hit, remembering only the last exit from each cell,
		// which erases any loops.
		for c := start; !inTree[m.index(c)]; {
			o := directions[rng.Intn(len(directions))]
			n := c.Step(o)
			if !m.InBounds(n) {
				continue
			}
			exit[m.index(c)] = o
			c = n
		}

		for c := start; !inTree[m.index(c)]; {
			o := exit[m.index(c)]
			m.SetWall(c, o, false)
			inTree[m.index(c)] = true
			remaining--
			c = c.Step(o)
		}
	}
	return m, nil
}

// OpenCentre removes the walls inside the goal region, as competition mazes do.
func (m *Maze) OpenCentre() {
	g, err := engine.NewGrid(m.width, m.height)
	if err != nil {
		return
	}
	for _, c := range g.Goals() {
		for _, o := range directions {
			if g.IsGoal(c.Step(o)) && m.InBounds(c.Step(o)) {
				m.SetWall(c, o, false)
			}
		}
	}
}
