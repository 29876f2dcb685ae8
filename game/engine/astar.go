package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/zyedidia/generic/heap"
)

// Heuristic estimates the distance between two cells on grid g.
type Heuristic func(a, b Cell, g *Grid) float64

// DefaultHeuristic is the A* estimate used when none is configured.
const DefaultHeuristic = "euclidean"

// DefaultEuclideanWeight scales the Euclidean estimate when no weight is configured.
const DefaultEuclideanWeight = 4.0

var heuristics = map[string]Heuristic{
	"manhattan": func(a, b Cell, _ *Grid) float64 {
		dx, dy := absDiff(a, b)
		return dx + dy
	},
	"euclidean": func(a, b Cell, _ *Grid) float64 {
		dx, dy := absDiff(a, b)
		return math.Hypot(dx, dy)
	},
	"octile": func(a, b Cell, _ *Grid) float64 {
		dx, dy := absDiff(a, b)
		return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
	},
	"chebyshev": func(a, b Cell, _ *Grid) float64 {
		dx, dy := absDiff(a, b)
		return math.Max(dx, dy)
	},
	"diagonal": func(a, b Cell, _ *Grid) float64 {
		dx, dy := absDiff(a, b)
		return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
	},
	"centroid": func(a, b Cell, g *Grid) float64 {
		cx, cy := float64(g.Width()/2), float64(g.Height()/2)
		dx, dy := absDiff(a, b)
		return math.Hypot(dx, dy) +
			math.Hypot(float64(a.X)-cx, float64(a.Y)-cy) +
			math.Hypot(float64(b.X)-cx, float64(b.Y)-cy)
	},
	"none": func(Cell, Cell, *Grid) float64 { return 0 },
}

func absDiff(a, b Cell) (float64, float64) {
	return math.Abs(float64(a.X - b.X)), math.Abs(float64(a.Y - b.Y))
}

// Heuristics lists the registered heuristic names in sorted order.
func Heuristics() []string {
	names := make([]string, 0, len(heuristics))
	for name := range heuristics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// node is an A* search-tree entry. Parents are arena indices; -1 marks the root.
type node struct {
	cell   Cell
	parent int
	g      int
	f      float64
}

type aStar struct {
	name      string
	heuristic Heuristic
	weight    float64
}

func newAStar(name string, weight float64) (*aStar, error) {
	if name == "" {
		name = DefaultHeuristic
	}
	fn, ok := heuristics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
	}
	if weight < 0 {
		return nil, fmt.Errorf("%w: heuristic weight %v is negative", ErrInvalidOptions, weight)
	}
	if weight == 0 {
		weight = 1
		if name == "euclidean" {
			weight = DefaultEuclideanWeight
		}
	}
	return &aStar{name: name, heuristic: fn, weight: weight}, nil
}

func (*aStar) Name() string { return StrategyAStar }

// estimate is the weighted heuristic to the closest goal cell.
func (a *aStar) estimate(c Cell, g *Grid) float64 {
	best := math.Inf(1)
	for _, goal := range g.Goals() {
		if v := a.heuristic(c, goal, g); v < best {
			best = v
		}
	}
	return a.weight * best
}

func (a *aStar) explore(h *harness) (Path, error) {
	e := h.e
	size := e.grid.Size()
	closed := make([]bool, size)
	queued := make([]bool, size)

	arena := []node{{cell: h.position(), parent: -1}}
	open := heap.New[int](func(i, j int) bool {
		if arena[i].f != arena[j].f {
			return arena[i].f < arena[j].f
		}
		return i < j
	})
	open.Push(0)
	queued[e.grid.Index(arena[0].cell)] = true

	lineage := func(i int) []Cell {
		var out []Cell
		for ; i >= 0; i = arena[i].parent {
			out = append(out, arena[i].cell)
		}
		return out
	}

	last := 0
	for open.Size() > 0 {
		cur, _ := open.Pop()
		c := arena[cur].cell
		queued[e.grid.Index(c)] = false
		closed[e.grid.Index(c)] = true

		if err := h.replay(lineage(last), lineage(cur)); err != nil {
			return nil, err
		}
		if h.position() != c {
			return nil, fmt.Errorf("%w: replay stopped at %v, expected %v", ErrNoRoute, h.position(), c)
		}
		last = cur

		if e.grid.IsGoal(c) {
			return Path(lineage(cur)).Reversed(), nil
		}

		for _, n := range e.walls.Open(c) {
			ni := e.grid.Index(n)
			if closed[ni] || queued[ni] {
				continue
			}
			g := arena[cur].g + 1
			arena = append(arena, node{
				cell:   n,
				parent: cur,
				g:      g,
				f:      float64(g) + a.estimate(n, e.grid),
			})
			open.Push(len(arena) - 1)
			queued[ni] = true
		}
	}
	return nil, ErrNoPath
}
