package engine

import (
	"fmt"

	"github.com/zyedidia/generic/queue"
	"github.com/zyedidia/generic/stack"
)

// frontier is the pending-cell container of an uninformed search.
type frontier interface {
	push(c Cell)
	pop() Cell
	empty() bool
}

type fifo struct{ q *queue.Queue[Cell] }

func (f fifo) push(c Cell) { f.q.Enqueue(c) }
func (f fifo) pop() Cell   { return f.q.Dequeue() }
func (f fifo) empty() bool { return f.q.Empty() }

type lifo struct{ s *stack.Stack[Cell] }

func (l lifo) push(c Cell) { l.s.Push(c) }
func (l lifo) pop() Cell   { return l.s.Pop() }
func (l lifo) empty() bool { return l.s.Size() == 0 }

// treeSearch is breadth-first or depth-first exploration depending on its frontier.
// Parents are kept in a dense array indexed by cell; -1 marks the root.
type treeSearch struct {
	name        string
	newFrontier func() frontier
}

func newBFS() *treeSearch {
	return &treeSearch{
		name:        StrategyBFS,
		newFrontier: func() frontier { return fifo{q: queue.New[Cell]()} },
	}
}

func newDFS() *treeSearch {
	return &treeSearch{
		name:        StrategyDFS,
		newFrontier: func() frontier { return lifo{s: stack.New[Cell]()} },
	}
}

func (t *treeSearch) Name() string { return t.name }

func (t *treeSearch) explore(h *harness) (Path, error) {
	e := h.e
	parent := make([]int, e.grid.Size())
	discovered := make([]bool, e.grid.Size())

	lineage := func(c Cell) []Cell {
		out := []Cell{c}
		for i := parent[e.grid.Index(c)]; i >= 0; i = parent[i] {
			out = append(out, e.grid.CellAt(i))
		}
		return out
	}

	start := h.position()
	parent[e.grid.Index(start)] = -1
	discovered[e.grid.Index(start)] = true

	pending := t.newFrontier()
	pending.push(start)
	for !pending.empty() {
		c := pending.pop()
		if err := h.replay(lineage(h.position()), lineage(c)); err != nil {
			return nil, err
		}
		if h.position() != c {
			return nil, fmt.Errorf("%w: replay stopped at %v, expected %v", ErrNoRoute, h.position(), c)
		}
		if e.grid.IsGoal(c) {
			return Path(lineage(c)).Reversed(), nil
		}
		for _, n := range e.walls.Open(c) {
			ni := e.grid.Index(n)
			if discovered[ni] {
				continue
			}
			discovered[ni] = true
			parent[ni] = e.grid.Index(c)
			pending.push(n)
		}
	}
	return nil, ErrNoPath
}
