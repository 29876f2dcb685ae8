package engine

import "fmt"

// fakeMouse is a perfect-sensor maze with symmetric walls.
type fakeMouse struct {
	width, height int
	walls         map[[2]Cell]bool
	pos           Cell
	facing        Orientation

	commands []string
	senses   int
	acks     int
}

func newFakeMouse(width, height int) *fakeMouse {
	return &fakeMouse{
		width:  width,
		height: height,
		walls:  make(map[[2]Cell]bool),
		facing: InitialFacing,
	}
}

// wall blocks the edge between two adjacent cells in both directions.
func (m *fakeMouse) wall(a, b Cell) *fakeMouse {
	m.walls[[2]Cell{a, b}] = true
	m.walls[[2]Cell{b, a}] = true
	return m
}

func (m *fakeMouse) blocked(c Cell, o Orientation) bool {
	n := c.Step(o)
	if n.X < 0 || n.X >= m.width || n.Y < 0 || n.Y >= m.height {
		return true
	}
	return m.walls[[2]Cell{c, n}]
}

func (m *fakeMouse) MazeWidth() (int, error)  { return m.width, nil }
func (m *fakeMouse) MazeHeight() (int, error) { return m.height, nil }

func (m *fakeMouse) WallFront() (bool, error) {
	m.senses++
	return m.blocked(m.pos, m.facing), nil
}

func (m *fakeMouse) WallLeft() (bool, error) {
	m.senses++
	return m.blocked(m.pos, m.facing.Left()), nil
}

func (m *fakeMouse) WallRight() (bool, error) {
	m.senses++
	return m.blocked(m.pos, m.facing.Right()), nil
}

func (m *fakeMouse) MoveForward(distance int) error {
	if distance == 0 {
		distance = 1
	}
	for i := 0; i < distance; i++ {
		if m.blocked(m.pos, m.facing) {
			m.commands = append(m.commands, "crash")
			return fmt.Errorf("%w at %v facing %v", ErrCrashed, m.pos, m.facing)
		}
		m.pos = m.pos.Step(m.facing)
	}
	m.commands = append(m.commands, "forward")
	return nil
}

func (m *fakeMouse) TurnLeft() error {
	m.facing = m.facing.Left()
	m.commands = append(m.commands, "left")
	return nil
}

func (m *fakeMouse) TurnRight() error {
	m.facing = m.facing.Right()
	m.commands = append(m.commands, "right")
	return nil
}

func (m *fakeMouse) AckReset() error {
	m.acks++
	m.pos, m.facing = Origin, InitialFacing
	return nil
}

func (m *fakeMouse) WasReset() (bool, error) { return false, nil }

// spiralMouse is a 4x4 maze whose only route to the centre follows the border
// clockwise and enters the goal region at (1,1). The shortest path has 13 cells.
func spiralMouse() *fakeMouse {
	m := newFakeMouse(4, 4)
	m.wall(Cell{0, 0}, Cell{1, 0}).
		wall(Cell{0, 1}, Cell{1, 1}).
		wall(Cell{0, 2}, Cell{1, 2}).
		wall(Cell{1, 1}, Cell{1, 2}).
		wall(Cell{1, 1}, Cell{2, 1}).
		wall(Cell{1, 2}, Cell{1, 3}).
		wall(Cell{2, 0}, Cell{2, 1}).
		wall(Cell{2, 1}, Cell{3, 1}).
		wall(Cell{2, 2}, Cell{3, 2}).
		wall(Cell{2, 2}, Cell{2, 3})
	return m
}
