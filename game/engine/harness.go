package engine

import (
	"fmt"
)

// harness carries what every strategy needs during one pass: sensing, movement,
// the physical trace and the replay used to hop between search-tree branches.
type harness struct {
	e     *Engine
	pass  int
	trace []Cell
}

func newHarness(e *Engine, pass int) *harness {
	return &harness{e: e, pass: pass, trace: []Cell{e.move.State().Cell}}
}

func (h *harness) position() Cell { return h.e.move.State().Cell }

func (h *harness) facing() Orientation { return h.e.move.State().Facing }

// sense reads the three sensors at the current cell unless walls are already recorded there.
func (h *harness) sense() error {
	cur := h.position()
	if h.e.walls.HasRecord(cur) {
		return nil
	}
	left, err := h.e.mouse.WallLeft()
	if err != nil {
		return fmt.Errorf("failed to read left sensor: %w", err)
	}
	front, err := h.e.mouse.WallFront()
	if err != nil {
		return fmt.Errorf("failed to read front sensor: %w", err)
	}
	right, err := h.e.mouse.WallRight()
	if err != nil {
		return fmt.Errorf("failed to read right sensor: %w", err)
	}
	if h.e.walls.Record(cur, h.facing(), left, right, front) {
		h.e.emit(Event{
			Type:    EventSensed,
			Pass:    h.pass,
			Cell:    cur,
			Facing:  h.facing(),
			Blocked: h.e.walls.BlockedFrom(cur),
		})
	}
	return nil
}

// step moves one cell and appends it to the trace when the mouse actually moved.
func (h *harness) step(target Cell) error {
	moved, err := h.e.move.MoveTo(target)
	if err != nil {
		return err
	}
	if !moved {
		if target != h.position() {
			h.e.logger.Printf("engine: pass %d could not reach %v from %v", h.pass, target, h.position())
		}
		return nil
	}
	h.trace = append(h.trace, target)
	h.e.paint(target, ColorBlue)
	h.e.emit(Event{Type: EventMoved, Pass: h.pass, Cell: target, Facing: h.facing()})
	return nil
}

// replay walks from the end of the `from` lineage to the end of the `to` lineage
// through their deepest common ancestor, sensing at every cell on the way.
// Both lineages run from the node back to the root.
func (h *harness) replay(from, to []Cell) error {
	for _, c := range stitch(from, to) {
		if err := h.step(c); err != nil {
			return err
		}
		if err := h.sense(); err != nil {
			return err
		}
	}
	return nil
}

// stitch joins two root-ward lineages at the first cell of `from` that also lies on `to`.
func stitch(from, to []Cell) []Cell {
	pos := make(map[Cell]int, len(to))
	for i, c := range to {
		if _, seen := pos[c]; !seen {
			pos[c] = i
		}
	}
	for i, c := range from {
		j, ok := pos[c]
		if !ok {
			continue
		}
		out := make([]Cell, 0, i+1+j+1)
		out = append(out, from[:i+1]...)
		for k := j; k >= 0; k-- {
			out = append(out, to[k])
		}
		return out
	}
	return nil
}
