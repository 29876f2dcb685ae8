package engine

// Mouse is the movement and sensing capability the engine drives.
// Every call is a blocking round trip to the robot or simulator.
type Mouse interface {
	MazeWidth() (int, error)
	MazeHeight() (int, error)

	WallFront() (bool, error)
	WallLeft() (bool, error)
	WallRight() (bool, error)

	// MoveForward advances distance cells; 0 means the device default of one cell.
	// A collision is reported as ErrCrashed.
	MoveForward(distance int) error
	TurnLeft() error
	TurnRight() error

	AckReset() error
	WasReset() (bool, error)
}

// Display is the optional visualisation capability of a simulator.
// The engine uses it only when the Mouse also implements it.
type Display interface {
	SetWall(c Cell, side Orientation) error
	ClearWall(c Cell, side Orientation) error
	SetColor(c Cell, color Color) error
	ClearColor(c Cell) error
	ClearAllColor() error
	SetText(c Cell, text string) error
	ClearText(c Cell) error
	ClearAllText() error
}

// Color is a simulator cell colour, encoded as its protocol character.
type Color byte

const (
	ColorBlack      Color = 'k'
	ColorBlue       Color = 'b'
	ColorCyan       Color = 'c'
	ColorGray       Color = 'a'
	ColorGreen      Color = 'g'
	ColorOrange     Color = 'o'
	ColorRed        Color = 'r'
	ColorWhite      Color = 'w'
	ColorYellow     Color = 'y'
	ColorDarkBlue   Color = 'B'
	ColorDarkCyan   Color = 'C'
	ColorDarkGray   Color = 'A'
	ColorDarkGreen  Color = 'G'
	ColorDarkRed    Color = 'R'
	ColorDarkYellow Color = 'Y'
)

var colorNames = map[Color]string{
	ColorBlack:      "black",
	ColorBlue:       "blue",
	ColorCyan:       "cyan",
	ColorGray:       "gray",
	ColorGreen:      "green",
	ColorOrange:     "orange",
	ColorRed:        "red",
	ColorWhite:      "white",
	ColorYellow:     "yellow",
	ColorDarkBlue:   "dark_blue",
	ColorDarkCyan:   "dark_cyan",
	ColorDarkGray:   "dark_gray",
	ColorDarkGreen:  "dark_green",
	ColorDarkRed:    "dark_red",
	ColorDarkYellow: "dark_yellow",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return string(c)
}

// Valid reports whether c is part of the simulator palette.
func (c Color) Valid() bool {
	_, ok := colorNames[c]
	return ok
}
