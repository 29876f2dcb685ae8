// Command mouse is the maze-solving agent. It speaks the simulator line protocol on
// stdin/stdout, so it can be launched directly by mms. Logs go to stderr.
//
// Usage:
//
//	mouse [--strategy floodfill] [--passes 5] [--return reset]
//	mouse simulate --maze classic [--config-dir configs]
//	mouse simulate --width 16 --height 16 --seed 7
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mouse: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. stdin and stdout carry the protocol; stderr gets logs.
func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "mouse",
		Usage:     "explore a maze and race the shortest route to its centre",
		Flags:     runFlags(),
		Writer:    stderr,
		ErrWriter: stderr,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, logger, err := settingsFrom(cmd, stderr)
			if err != nil {
				return err
			}
			_, err = runProtocol(ctx, stdin, stdout, settings, logger, cmd.String("history"))
			return err
		},
		Commands: []*cli.Command{
			{
				Name:  "simulate",
				Usage: "run the agent against a built-in simulator and print the result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "maze", Aliases: []string{"m"}, Usage: "maze config name", Sources: cli.EnvVars("MOUSE_MAZE")},
					&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing maze configs", Sources: cli.EnvVars("CONFIG_DIR")},
					&cli.IntFlag{Name: "width", Value: 16, Usage: "generated maze width when no --maze is given"},
					&cli.IntFlag{Name: "height", Value: 16, Usage: "generated maze height when no --maze is given"},
					&cli.Int64Flag{Name: "seed", Value: 1, Usage: "generator seed"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					settings, logger, err := settingsFrom(cmd, stderr)
					if err != nil {
						return err
					}
					return simulate(ctx, cmd, settings, logger, stdout)
				},
			},
		},
	}
}

// runFlags are defined on the root command and inherited by subcommands.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Value: "floodfill", Usage: "floodfill, astar, bfs or dfs", Sources: cli.EnvVars("MOUSE_STRATEGY")},
		&cli.IntFlag{Name: "passes", Aliases: []string{"n"}, Value: 5, Usage: "exploration passes before the final run", Sources: cli.EnvVars("MOUSE_PASSES")},
		&cli.StringFlag{Name: "heuristic", Usage: "A* heuristic: manhattan, euclidean, octile, chebyshev, diagonal, centroid or none", Sources: cli.EnvVars("MOUSE_HEURISTIC")},
		&cli.FloatFlag{Name: "weight", Usage: "A* heuristic weight", Sources: cli.EnvVars("MOUSE_WEIGHT")},
		&cli.StringFlag{Name: "return", Value: "reset", Usage: "how to get back to the start between passes: reset or drive", Sources: cli.EnvVars("MOUSE_RETURN")},
		&cli.BoolFlag{Name: "paint", Usage: "colour explored cells and the final route"},
		&cli.BoolFlag{Name: "continue-after-crash", Usage: "keep exploring after a pass crashes"},
		&cli.StringFlag{Name: "history", Usage: "SQLite database to record pass results in", Sources: cli.EnvVars("HISTORY_DB")},
		&cli.BoolFlag{Name: "debug", Usage: "log file and line numbers"},
	}
}
