package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/wricardo/micromouse/game/engine"
)

// Command names
const (
	CmdMazeWidth     = "mazeWidth"
	CmdMazeHeight    = "mazeHeight"
	CmdWallFront     = "wallFront"
	CmdWallRight     = "wallRight"
	CmdWallLeft      = "wallLeft"
	CmdMoveForward   = "moveForward"
	CmdTurnRight     = "turnRight"
	CmdTurnLeft      = "turnLeft"
	CmdSetWall       = "setWall"
	CmdClearWall     = "clearWall"
	CmdSetColor      = "setColor"
	CmdClearColor    = "clearColor"
	CmdClearAllColor = "clearAllColor"
	CmdSetText       = "setText"
	CmdClearText     = "clearText"
	CmdClearAllText  = "clearAllText"
	CmdWasReset      = "wasReset"
	CmdAckReset      = "ackReset"
)

// Responses
const (
	RespAck   = "ack"
	RespCrash = "crash"
	RespTrue  = "true"
	RespFalse = "false"
)

// ErrProtocolMismatch is returned when a response cannot be parsed as the expected type.
var ErrProtocolMismatch = errors.New("protocol mismatch")

// Mouse drives a simulator over a line protocol. Calls are serialised so each
// command is paired with its own response.
type Mouse struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out *bufio.Writer
}

var (
	_ engine.Mouse   = (*Mouse)(nil)
	_ engine.Display = (*Mouse)(nil)
)

// NewMouse reads responses from r and writes commands to w.
func NewMouse(r io.Reader, w io.Writer) *Mouse {
	return &Mouse{in: bufio.NewReader(r), out: bufio.NewWriter(w)}
}

// send writes one command line. When reply is set it reads and returns one response line.
func (m *Mouse) send(reply bool, name string, args ...interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	line := name
	for _, a := range args {
		line += " " + fmt.Sprint(a)
	}
	if _, err := m.out.WriteString(line + "\n"); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := m.out.Flush(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if !reply {
		return "", nil
	}

	resp, err := m.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && resp != "") {
		return "", fmt.Errorf("failed to read %s response: %w", name, err)
	}
	return strings.TrimSpace(resp), nil
}

func (m *Mouse) queryInt(name string) (int, error) {
	resp, err := m.send(true, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(resp)
	if err != nil {
		return 0, fmt.Errorf("%w: %s answered %q, want integer", ErrProtocolMismatch, name, resp)
	}
	return n, nil
}

func (m *Mouse) queryBool(name string) (bool, error) {
	resp, err := m.send(true, name)
	if err != nil {
		return false, err
	}
	switch resp {
	case RespTrue:
		return true, nil
	case RespFalse:
		return false, nil
	}
	return false, fmt.Errorf("%w: %s answered %q, want true or false", ErrProtocolMismatch, name, resp)
}

func (m *Mouse) expectAck(name string, args ...interface{}) error {
	resp, err := m.send(true, name, args...)
	if err != nil {
		return err
	}
	if resp != RespAck {
		return fmt.Errorf("%w: %s answered %q, want %s", ErrProtocolMismatch, name, resp, RespAck)
	}
	return nil
}

func (m *Mouse) MazeWidth() (int, error)  { return m.queryInt(CmdMazeWidth) }
func (m *Mouse) MazeHeight() (int, error) { return m.queryInt(CmdMazeHeight) }

func (m *Mouse) WallFront() (bool, error) { return m.queryBool(CmdWallFront) }
func (m *Mouse) WallLeft() (bool, error)  { return m.queryBool(CmdWallLeft) }
func (m *Mouse) WallRight() (bool, error) { return m.queryBool(CmdWallRight) }
func (m *Mouse) WasReset() (bool, error)  { return m.queryBool(CmdWasReset) }

// MoveForward sends moveForward, with the distance argument only when it is positive.
// A crash response is returned as engine.ErrCrashed.
func (m *Mouse) MoveForward(distance int) error {
	var args []interface{}
	if distance > 0 {
		args = append(args, distance)
	}
	resp, err := m.send(true, CmdMoveForward, args...)
	if err != nil {
		return err
	}
	switch resp {
	case RespAck:
		return nil
	case RespCrash:
		return engine.ErrCrashed
	}
	return fmt.Errorf("%w: %s answered %q", ErrProtocolMismatch, CmdMoveForward, resp)
}

func (m *Mouse) TurnLeft() error  { return m.expectAck(CmdTurnLeft) }
func (m *Mouse) TurnRight() error { return m.expectAck(CmdTurnRight) }
func (m *Mouse) AckReset() error  { return m.expectAck(CmdAckReset) }

func (m *Mouse) SetWall(c engine.Cell, side engine.Orientation) error {
	_, err := m.send(false, CmdSetWall, c.X, c.Y, side.String()[:1])
	return err
}

func (m *Mouse) ClearWall(c engine.Cell, side engine.Orientation) error {
	_, err := m.send(false, CmdClearWall, c.X, c.Y, side.String()[:1])
	return err
}

func (m *Mouse) SetColor(c engine.Cell, color engine.Color) error {
	if !color.Valid() {
		return fmt.Errorf("unknown color %q", string(color))
	}
	_, err := m.send(false, CmdSetColor, c.X, c.Y, string(color))
	return err
}

func (m *Mouse) ClearColor(c engine.Cell) error {
	_, err := m.send(false, CmdClearColor, c.X, c.Y)
	return err
}

func (m *Mouse) ClearAllColor() error {
	_, err := m.send(false, CmdClearAllColor)
	return err
}

func (m *Mouse) SetText(c engine.Cell, text string) error {
	_, err := m.send(false, CmdSetText, c.X, c.Y, text)
	return err
}

func (m *Mouse) ClearText(c engine.Cell) error {
	_, err := m.send(false, CmdClearText, c.X, c.Y)
	return err
}

func (m *Mouse) ClearAllText() error {
	_, err := m.send(false, CmdClearAllText)
	return err
}
