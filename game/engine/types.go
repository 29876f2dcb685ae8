package engine

import (
	"fmt"
	"strings"
	"time"
)

// Grid bounds accepted by the engine
const (
	MinMazeSize = 1
	MaxMazeSize = 64
)

// DefaultPasses is the number of exploration passes a run performs when not configured.
const DefaultPasses = 5

// Cell is a grid coordinate. X runs along the width, Y along the height.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Origin is the start cell of every pass.
var Origin = Cell{X: 0, Y: 0}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Step returns the adjacent cell in direction o. The result may be out of bounds.
func (c Cell) Step(o Orientation) Cell {
	v := o.Vector()
	return Cell{X: c.X + v.X, Y: c.Y + v.Y}
}

// Orientation is the absolute heading of the mouse.
type Orientation int

const (
	North Orientation = iota
	East
	South
	West
)

// InitialFacing is the heading at the start of every pass.
const InitialFacing = East

var orientationNames = [...]string{"north", "east", "south", "west"}

// vectors maps each orientation to its unit displacement.
var vectors = [...]Cell{
	North: {X: -1, Y: 0},
	East:  {X: 0, Y: 1},
	South: {X: 1, Y: 0},
	West:  {X: 0, Y: -1},
}

func (o Orientation) String() string {
	if o < North || o > West {
		return fmt.Sprintf("orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// Vector returns the unit displacement of o.
func (o Orientation) Vector() Cell {
	return vectors[o.normalize()]
}

// Right is o rotated a quarter turn clockwise.
func (o Orientation) Right() Orientation {
	return (o + 1).normalize()
}

// Left is o rotated a quarter turn counter-clockwise.
func (o Orientation) Left() Orientation {
	return (o + 3).normalize()
}

// Opposite is o rotated half a turn.
func (o Orientation) Opposite() Orientation {
	return (o + 2).normalize()
}

func (o Orientation) normalize() Orientation {
	return ((o % 4) + 4) % 4
}

// ParseOrientation accepts the full name or its first letter, case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range orientationNames {
		if s == name || (len(s) == 1 && s[0] == name[0]) {
			return Orientation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// DirectionBetween returns the orientation that leads from a to b when they are 4-adjacent.
func DirectionBetween(a, b Cell) (Orientation, bool) {
	d := Cell{X: b.X - a.X, Y: b.Y - a.Y}
	for o, v := range vectors {
		if v == d {
			return Orientation(o), true
		}
	}
	return 0, false
}

// Turn is a single in-place rotation command.
type Turn int

const (
	TurnLeft Turn = iota
	TurnRight
)

func (t Turn) String() string {
	if t == TurnRight {
		return "right"
	}
	return "left"
}

// Path is an ordered list of cells, root first.
type Path []Cell

// Len is the number of cells on the path.
func (p Path) Len() int { return len(p) }

// Contains reports whether c appears on the path.
func (p Path) Contains(c Cell) bool {
	for _, pc := range p {
		if pc == c {
			return true
		}
	}
	return false
}

// Reversed returns a copy of p in reverse order.
func (p Path) Reversed() Path {
	out := make(Path, len(p))
	for i, c := range p {
		out[len(p)-1-i] = c
	}
	return out
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, " -> ")
}

// RunState is the mouse's pose during a pass.
type RunState struct {
	Cell   Cell        `json:"cell"`
	Facing Orientation `json:"facing"`
}

// PassReport summarises one exploration pass.
type PassReport struct {
	ID       string        `json:"id"`
	Pass     int           `json:"pass"`
	Strategy string        `json:"strategy"`
	Moves    int           `json:"moves"`
	Raw      []Cell        `json:"raw,omitempty"`
	Path     Path          `json:"path,omitempty"`
	Duration time.Duration `json:"duration"`
	Aborted  bool          `json:"aborted"`
	Error    string        `json:"error,omitempty"`
}

// RunReport summarises a sequence of passes and the optional final replay.
type RunReport struct {
	Strategy string        `json:"strategy"`
	Passes   []*PassReport `json:"passes"`
	Best     Path          `json:"best,omitempty"`
	Replayed bool          `json:"replayed"`
	Duration time.Duration `json:"duration"`
}
