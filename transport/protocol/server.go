package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
)

// Robot is what ServeRobot drives: a mouse that can also draw on the maze display.
type Robot interface {
	engine.Mouse
	engine.Display
}

var letterSides = map[string]engine.Orientation{
	"n": engine.North,
	"e": engine.East,
	"s": engine.South,
	"w": engine.West,
}

// ServeRobot answers protocol commands read from r by calling robot and writing responses
// to w. It returns nil when r is exhausted. ServeRobot lets a Mouse client run against a
// local simulator over a pipe.
func ServeRobot(robot Robot, r io.Reader, w io.Writer) error {
	in := bufio.NewScanner(r)
	out := bufio.NewWriter(w)
	for in.Scan() {
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		resp, reply, err := dispatchRobot(robot, fields[0], fields[1:])
		if err != nil {
			return err
		}
		if !reply {
			continue
		}
		if _, err := out.WriteString(resp + "\n"); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return in.Err()
}

func dispatchRobot(robot Robot, name string, args []string) (string, bool, error) {
	switch name {
	case CmdMazeWidth:
		n, err := robot.MazeWidth()
		return strconv.Itoa(n), true, err
	case CmdMazeHeight:
		n, err := robot.MazeHeight()
		return strconv.Itoa(n), true, err
	case CmdWallFront:
		return boolReply(robot.WallFront())
	case CmdWallLeft:
		return boolReply(robot.WallLeft())
	case CmdWallRight:
		return boolReply(robot.WallRight())
	case CmdWasReset:
		return boolReply(robot.WasReset())
	case CmdTurnLeft:
		return RespAck, true, robot.TurnLeft()
	case CmdTurnRight:
		return RespAck, true, robot.TurnRight()
	case CmdAckReset:
		return RespAck, true, robot.AckReset()
	case CmdMoveForward:
		distance := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return "", false, fmt.Errorf("%w: bad distance %q", ErrProtocolMismatch, args[0])
			}
			distance = n
		}
		if err := robot.MoveForward(distance); err != nil {
			if errors.Is(err, engine.ErrCrashed) {
				return RespCrash, true, nil
			}
			return "", false, err
		}
		return RespAck, true, nil
	case CmdClearAllColor:
		return "", false, robot.ClearAllColor()
	case CmdClearAllText:
		return "", false, robot.ClearAllText()
	}

	c, rest, err := cellArgs(name, args)
	if err != nil {
		return "", false, err
	}
	switch name {
	case CmdSetWall, CmdClearWall:
		if len(rest) != 1 {
			return "", false, fmt.Errorf("%w: %s needs a side", ErrProtocolMismatch, name)
		}
		side, ok := letterSides[rest[0]]
		if !ok {
			return "", false, fmt.Errorf("%w: unknown side %q", ErrProtocolMismatch, rest[0])
		}
		if name == CmdSetWall {
			return "", false, robot.SetWall(c, side)
		}
		return "", false, robot.ClearWall(c, side)
	case CmdSetColor:
		if len(rest) != 1 || len(rest[0]) != 1 {
			return "", false, fmt.Errorf("%w: %s needs a colour", ErrProtocolMismatch, name)
		}
		return "", false, robot.SetColor(c, engine.Color(rest[0][0]))
	case CmdClearColor:
		return "", false, robot.ClearColor(c)
	case CmdSetText:
		return "", false, robot.SetText(c, strings.Join(rest, " "))
	case CmdClearText:
		return "", false, robot.ClearText(c)
	}
	return "", false, fmt.Errorf("%w: unknown command %q", ErrProtocolMismatch, name)
}

func boolReply(v bool, err error) (string, bool, error) {
	return strconv.FormatBool(v), true, err
}

func cellArgs(name string, args []string) (engine.Cell, []string, error) {
	if len(args) < 2 {
		return engine.Cell{}, nil, fmt.Errorf("%w: %s needs x and y", ErrProtocolMismatch, name)
	}
	x, errX := strconv.Atoi(args[0])
	y, errY := strconv.Atoi(args[1])
	if errX != nil || errY != nil {
		return engine.Cell{}, nil, fmt.Errorf("%w: %s has bad coordinates %q %q", ErrProtocolMismatch, name, args[0], args[1])
	}
	return engine.Cell{X: x, Y: y}, args[2:], nil
}
