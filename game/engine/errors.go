package engine

import "errors"

var (
	// ErrCrashed is returned when the mouse refuses a forward move because of a wall.
	ErrCrashed = errors.New("mouse crashed")
	// ErrNotAdjacent indicates a move target that is not 4-adjacent to the mouse.
	ErrNotAdjacent = errors.New("target is not adjacent")
	// ErrNoRoute is returned when every neighbour of the current cell has been ruled out.
	ErrNoRoute = errors.New("no open neighbour")
	// ErrGoalUnreachable is returned when wall knowledge proves the goal cannot be reached.
	ErrGoalUnreachable = errors.New("goal unreachable")
	// ErrNoPath is returned when a search frontier empties before reaching the goal.
	ErrNoPath = errors.New("frontier exhausted before reaching goal")
	// ErrNoBestPath is returned when a replay is requested before any pass succeeded.
	ErrNoBestPath = errors.New("no recorded path")

	ErrInvalidDimensions = errors.New("invalid maze dimensions")
	ErrUnknownStrategy   = errors.New("unknown strategy")
	ErrUnknownHeuristic  = errors.New("unknown heuristic")
	ErrInvalidOptions    = errors.New("invalid options")
)
