package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
)

// ErrUnknownCommand is returned by Serve for a command it does not implement.
var ErrUnknownCommand = errors.New("unknown command")

// Serve answers protocol commands read from r on behalf of mouse, writing responses
// to w. Display commands are applied when mouse also implements engine.Display and
// ignored otherwise. It returns nil when r is exhausted.
func Serve(ctx context.Context, r io.Reader, w io.Writer, mouse engine.Mouse) error {
	display, _ := mouse.(engine.Display)
	scanner := bufio.NewScanner(r)
	out := bufio.NewWriter(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp, err := dispatch(mouse, display, strings.Fields(line))
		if err != nil {
			return fmt.Errorf("%q: %w", line, err)
		}
		if resp == "" {
			continue
		}
		if _, err := out.WriteString(resp + "\n"); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func dispatch(mouse engine.Mouse, display engine.Display, fields []string) (string, error) {
	name, args := fields[0], fields[1:]
	switch name {
	case CmdMazeWidth:
		return intResp(mouse.MazeWidth())
	case CmdMazeHeight:
		return intResp(mouse.MazeHeight())
	case CmdWallFront:
		return boolResp(mouse.WallFront())
	case CmdWallLeft:
		return boolResp(mouse.WallLeft())
	case CmdWallRight:
		return boolResp(mouse.WallRight())
	case CmdWasReset:
		return boolResp(mouse.WasReset())
	case CmdMoveForward:
		distance := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return "", fmt.Errorf("bad distance: %w", err)
			}
			distance = n
		}
		if err := mouse.MoveForward(distance); err != nil {
			if errors.Is(err, engine.ErrCrashed) {
				return RespCrash, nil
			}
			return "", err
		}
		return RespAck, nil
	case CmdTurnLeft:
		return ackResp(mouse.TurnLeft())
	case CmdTurnRight:
		return ackResp(mouse.TurnRight())
	case CmdAckReset:
		return ackResp(mouse.AckReset())
	}

	if !isDisplayCommand(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if display == nil {
		return "", nil
	}
	return "", applyDisplay(display, name, args)
}

func isDisplayCommand(name string) bool {
	switch name {
	case CmdSetWall, CmdClearWall, CmdSetColor, CmdClearColor, CmdClearAllColor,
		CmdSetText, CmdClearText, CmdClearAllText:
		return true
	}
	return false
}

func applyDisplay(d engine.Display, name string, args []string) error {
	switch name {
	case CmdClearAllColor:
		return d.ClearAllColor()
	case CmdClearAllText:
		return d.ClearAllText()
	}

	c, rest, err := parseCell(args)
	if err != nil {
		return err
	}
	switch name {
	case CmdClearColor:
		return d.ClearColor(c)
	case CmdClearText:
		return d.ClearText(c)
	case CmdSetText:
		return d.SetText(c, strings.Join(rest, " "))
	}

	if len(rest) != 1 {
		return fmt.Errorf("%s needs a third argument", name)
	}
	switch name {
	case CmdSetColor:
		if len(rest[0]) != 1 || !engine.Color(rest[0][0]).Valid() {
			return fmt.Errorf("unknown color %q", rest[0])
		}
		return d.SetColor(c, engine.Color(rest[0][0]))
	default:
		side, err := engine.ParseOrientation(rest[0])
		if err != nil {
			return err
		}
		if name == CmdSetWall {
			return d.SetWall(c, side)
		}
		return d.ClearWall(c, side)
	}
}

func parseCell(args []string) (engine.Cell, []string, error) {
	if len(args) < 2 {
		return engine.Cell{}, nil, errors.New("missing cell coordinates")
	}
	x, errX := strconv.Atoi(args[0])
	y, errY := strconv.Atoi(args[1])
	if errX != nil || errY != nil {
		return engine.Cell{}, nil, fmt.Errorf("bad cell %s %s", args[0], args[1])
	}
	return engine.Cell{X: x, Y: y}, args[2:], nil
}

func intResp(n int, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func boolResp(b bool, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(b), nil
}

func ackResp(err error) (string, error) {
	if err != nil {
		return "", err
	}
	return RespAck, nil
}
