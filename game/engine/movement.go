package engine

import (
	"fmt"
	"log"
)

// TurnPlan returns the minimal in-place rotations that change heading from `from` to `to`.
// A reversal is two left turns.
func TurnPlan(from, to Orientation) []Turn {
	switch (to - from).normalize() {
	case 1:
		return []Turn{TurnRight}
	case 2:
		return []Turn{TurnLeft, TurnLeft}
	case 3:
		return []Turn{TurnLeft}
	}
	return nil
}

// Translator converts absolute cell targets into relative turn and move commands
// and tracks the mouse's pose.
type Translator struct {
	mouse  Mouse
	grid   *Grid
	walls  *WallModel
	state  RunState
	logger *log.Logger

	moves int
	turns int
}

// NewTranslator returns a translator posed at the origin facing InitialFacing.
func NewTranslator(m Mouse, g *Grid, w *WallModel, logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.Default()
	}
	return &Translator{
		mouse:  m,
		grid:   g,
		walls:  w,
		state:  RunState{Cell: Origin, Facing: InitialFacing},
		logger: logger,
	}
}

// State returns the current pose.
func (t *Translator) State() RunState {
	return t.state
}

// Reset poses the translator at the origin facing InitialFacing. It issues no commands.
func (t *Translator) Reset() {
	t.state = RunState{Cell: Origin, Facing: InitialFacing}
}

// Counters returns the number of forward moves and turns issued so far.
func (t *Translator) Counters() (moves, turns int) {
	return t.moves, t.turns
}

// MoveTo drives the mouse one cell to target.
// It returns whether the mouse moved. Targets equal to the current cell and targets
// behind a recorded wall are silent no-ops. Non-adjacent targets yield ErrNotAdjacent.
func (t *Translator) MoveTo(target Cell) (bool, error) {
	cur := t.state.Cell
	if target == cur {
		return false, nil
	}
	dir, ok := DirectionBetween(cur, target)
	if !ok || !t.grid.InBounds(target) {
		return false, fmt.Errorf("%w: %v -> %v", ErrNotAdjacent, cur, target)
	}
	if t.walls.Blocked(cur, target) {
		t.logger.Printf("engine: skipping move %v -> %v, wall recorded", cur, target)
		return false, nil
	}
	if err := t.Face(dir); err != nil {
		return false, err
	}
	if err := t.mouse.MoveForward(0); err != nil {
		return false, fmt.Errorf("failed to move %v -> %v: %w", cur, target, err)
	}
	t.moves++
	t.state.Cell = target
	return true, nil
}

// Face rotates in place until the mouse heads toward o.
func (t *Translator) Face(o Orientation) error {
	for _, turn := range TurnPlan(t.state.Facing, o) {
		var err error
		if turn == TurnRight {
			err = t.mouse.TurnRight()
		} else {
			err = t.mouse.TurnLeft()
		}
		if err != nil {
			return fmt.Errorf("failed to turn %s: %w", turn, err)
		}
		t.turns++
		if turn == TurnRight {
			t.state.Facing = t.state.Facing.Right()
		} else {
			t.state.Facing = t.state.Facing.Left()
		}
	}
	return nil
}
