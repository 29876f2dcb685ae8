package maze

import (
	"fmt"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
)

// Stats counts the commands a simulator has served.
type Stats struct {
	Moves       int `json:"moves"`
	Turns       int `json:"turns"`
	SensorReads int `json:"sensor_reads"`
	Crashes     int `json:"crashes"`
	Resets      int `json:"resets"`
}

// Simulator is a virtual mouse inside a known maze. It implements engine.Mouse and
// engine.Display. A Simulator is not safe for concurrent use.
type Simulator struct {
	maze   *Maze
	pos    engine.Cell
	facing engine.Orientation
	stats  Stats

	resetRequested bool
	colors         map[engine.Cell]engine.Color
	texts          map[engine.Cell]string
	marked         map[engine.Cell][4]bool
	onMove         func(engine.RunState)
}

var (
	_ engine.Mouse   = (*Simulator)(nil)
	_ engine.Display = (*Simulator)(nil)
)

// NewSimulator places a mouse at the origin facing engine.InitialFacing.
func NewSimulator(m *Maze) *Simulator {
	return &Simulator{
		maze:   m,
		pos:    engine.Origin,
		facing: engine.InitialFacing,
		colors: make(map[engine.Cell]engine.Color),
		texts:  make(map[engine.Cell]string),
		marked: make(map[engine.Cell][4]bool),
	}
}

// OnMove registers a callback invoked after every successful forward step.
func (s *Simulator) OnMove(fn func(engine.RunState)) { s.onMove = fn }

func (s *Simulator) Maze() *Maze { return s.maze }

// Pose returns the true position and heading of the mouse.
func (s *Simulator) Pose() engine.RunState {
	return engine.RunState{Cell: s.pos, Facing: s.facing}
}

func (s *Simulator) Stats() Stats { return s.stats }

// RequestReset simulates the operator pressing the reset button.
func (s *Simulator) RequestReset() { s.resetRequested = true }

func (s *Simulator) MazeWidth() (int, error)  { return s.maze.Width(), nil }
func (s *Simulator) MazeHeight() (int, error) { return s.maze.Height(), nil }

func (s *Simulator) WallFront() (bool, error) { return s.sense(s.facing), nil }
func (s *Simulator) WallLeft() (bool, error)  { return s.sense(s.facing.Left()), nil }
func (s *Simulator) WallRight() (bool, error) { return s.sense(s.facing.Right()), nil }

func (s *Simulator) sense(o engine.Orientation) bool {
	s.stats.SensorReads++
	return s.maze.Wall(s.pos, o)
}

// MoveForward advances up to distance cells and stops at the first wall with ErrCrashed.
func (s *Simulator) MoveForward(distance int) error {
	if distance <= 0 {
		distance = 1
	}
	for i := 0; i < distance; i++ {
		if s.maze.Wall(s.pos, s.facing) {
			s.stats.Crashes++
			return fmt.Errorf("%w: wall %s of %v", engine.ErrCrashed, s.facing, s.pos)
		}
		s.pos = s.pos.Step(s.facing)
		s.stats.Moves++
		if s.onMove != nil {
			s.onMove(s.Pose())
		}
	}
	return nil
}

func (s *Simulator) TurnLeft() error {
	s.facing = s.facing.Left()
	s.stats.Turns++
	return nil
}

func (s *Simulator) TurnRight() error {
	s.facing = s.facing.Right()
	s.stats.Turns++
	return nil
}

// AckReset returns the mouse to the origin facing engine.InitialFacing.
func (s *Simulator) AckReset() error {
	s.pos, s.facing = engine.Origin, engine.InitialFacing
	s.resetRequested = false
	s.stats.Resets++
	return nil
}

func (s *Simulator) WasReset() (bool, error) { return s.resetRequested, nil }

func (s *Simulator) SetWall(c engine.Cell, side engine.Orientation) error {
	return s.markWall(c, side, true)
}

func (s *Simulator) ClearWall(c engine.Cell, side engine.Orientation) error {
	return s.markWall(c, side, false)
}

func (s *Simulator) markWall(c engine.Cell, side engine.Orientation, on bool) error {
	if !s.maze.InBounds(c) {
		return fmt.Errorf("cell %v is outside the maze", c)
	}
	m := s.marked[c]
	m[side] = on
	s.marked[c] = m
	return nil
}

func (s *Simulator) SetColor(c engine.Cell, color engine.Color) error {
	if !color.Valid() {
		return fmt.Errorf("unknown colour %q", byte(color))
	}
	s.colors[c] = color
	return nil
}

func (s *Simulator) ClearColor(c engine.Cell) error {
	delete(s.colors, c)
	return nil
}

func (s *Simulator) ClearAllColor() error {
	s.colors = make(map[engine.Cell]engine.Color)
	return nil
}

func (s *Simulator) SetText(c engine.Cell, text string) error {
	s.texts[c] = text
	return nil
}

func (s *Simulator) ClearText(c engine.Cell) error {
	delete(s.texts, c)
	return nil
}

func (s *Simulator) ClearAllText() error {
	s.texts = make(map[engine.Cell]string)
	return nil
}

// Colors returns a copy of the painted cells.
func (s *Simulator) Colors() map[engine.Cell]engine.Color {
	out := make(map[engine.Cell]engine.Color, len(s.colors))
	for c, col := range s.colors {
		out[c] = col
	}
	return out
}

// Text returns the label set on c.
func (s *Simulator) Text(c engine.Cell) string { return s.texts[c] }

var arrows = map[engine.Orientation]string{
	engine.North: " ^ ",
	engine.East:  " > ",
	engine.South: " v ",
	engine.West:  " < ",
}

// Render draws the maze with the mouse and any painted cells.
func (s *Simulator) Render() string {
	lines := s.maze.render(func(c engine.Cell) string {
		if c == s.pos {
			return arrows[s.facing]
		}
		if text, ok := s.texts[c]; ok {
			return text
		}
		if col, ok := s.colors[c]; ok {
			return " " + string(byte(col)) + " "
		}
		return ""
	})
	return strings.Join(lines, "\n")
}
