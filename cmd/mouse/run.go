package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/history"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/transport/protocol"
)

// settingsFrom reads the run flags of cmd into a validated engine config.
func settingsFrom(cmd *cli.Command, stderr io.Writer) (engine.Config, *log.Logger, error) {
	flags := log.LstdFlags
	if cmd.Bool("debug") {
		flags |= log.Lshortfile
	}
	logger := log.New(stderr, "", flags)

	settings := engine.Config{
		Strategy:           cmd.String("strategy"),
		Heuristic:          cmd.String("heuristic"),
		Weight:             cmd.Float("weight"),
		Passes:             int(cmd.Int("passes")),
		Return:             engine.ReturnPolicy(strings.ToLower(cmd.String("return"))),
		ContinueAfterCrash: cmd.Bool("continue-after-crash"),
		Paint:              cmd.Bool("paint"),
	}
	if err := settings.Validate(); err != nil {
		return settings, nil, err
	}
	return settings, logger, nil
}

// runMouse explores with mouse, replays the best route and logs a summary.
func runMouse(ctx context.Context, mouse engine.Mouse, settings engine.Config, logger *log.Logger) (*engine.RunReport, error) {
	eng, err := engine.New(mouse, engine.WithLogger(logger), engine.WithPaint(settings.Paint))
	if err != nil {
		return nil, err
	}
	ctrl, err := engine.NewControllerFromConfig(eng, settings)
	if err != nil {
		return nil, err
	}

	logger.Printf("Running %s", settings.Describe())
	report, err := ctrl.Run(ctx)
	if report != nil {
		for _, p := range report.Passes {
			if p.Aborted {
				logger.Printf("pass %d aborted after %d moves: %s", p.Pass, p.Moves, p.Error)
				continue
			}
			logger.Printf("pass %d: %d moves, path length %d, took %s", p.Pass, p.Moves, len(p.Path), p.Duration)
		}
		if report.Replayed {
			logger.Printf("Best path of length %d replayed", len(report.Best))
		}
	}
	if err != nil {
		return report, fmt.Errorf("run failed: %w", err)
	}
	return report, nil
}

// runProtocol runs the agent against a simulator on the other end of r and w.
func runProtocol(ctx context.Context, r io.Reader, w io.Writer, settings engine.Config, logger *log.Logger, historyDB string) (*engine.RunReport, error) {
	report, err := runMouse(ctx, protocol.NewMouse(r, w), settings, logger)
	if recErr := recordHistory(ctx, historyDB, "protocol", settings, report); recErr != nil {
		logger.Printf("Warning: %v", recErr)
	}
	return report, err
}

// recordHistory stores the passes of report when a database is configured.
func recordHistory(ctx context.Context, path, mazeName string, settings engine.Config, report *engine.RunReport) error {
	if path == "" || report == nil {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordReport(ctx, "cli-"+uuid.NewString()[:8], mazeName, settings, report)
}

// simulate runs the agent over the protocol against a maze simulator in this process.
func simulate(ctx context.Context, cmd *cli.Command, settings engine.Config, logger *log.Logger, out io.Writer) error {
	m, name, err := loadMaze(cmd)
	if err != nil {
		return err
	}
	sim := maze.NewSimulator(m)

	cmdR, cmdW := io.Pipe()
	respR, respW := io.Pipe()
	served := make(chan error, 1)
	go func() {
		err := protocol.Serve(ctx, cmdR, respW, sim)
		respW.Close()
		served <- err
	}()

	report, runErr := runMouse(ctx, protocol.NewMouse(respR, cmdW), settings, logger)
	cmdW.Close()
	if err := <-served; err != nil && runErr == nil {
		runErr = fmt.Errorf("simulator: %w", err)
	}
	if err := recordHistory(ctx, cmd.String("history"), name, settings, report); err != nil {
		logger.Printf("Warning: %v", err)
	}

	fmt.Fprintln(out, sim.Render())
	stats := sim.Stats()
	fmt.Fprintf(out, "maze %s: %d moves, %d turns, %d crashes\n", name, stats.Moves, stats.Turns, stats.Crashes)
	if report != nil {
		optimal := 0
		if p, err := m.ShortestPath(); err == nil {
			optimal = len(p)
		}
		fmt.Fprintf(out, "best path %d (optimal %d) after %d passes\n", len(report.Best), optimal, len(report.Passes))
	}
	return runErr
}

// loadMaze reads the named config or generates a maze from the size and seed flags.
func loadMaze(cmd *cli.Command) (*maze.Maze, string, error) {
	if name := cmd.String("maze"); name != "" {
		cfg, err := maze.LoadConfigByName(cmd.String("config-dir"), name)
		if err != nil {
			return nil, "", err
		}
		m, err := maze.Parse(cfg)
		return m, strings.TrimSuffix(filepath.Base(name), ".json"), err
	}
	width, height, seed := int(cmd.Int("width")), int(cmd.Int("height")), cmd.Int64("seed")
	m, err := maze.Generate(width, height, seed)
	if err != nil {
		return nil, "", err
	}
	m.OpenCentre()
	return m, fmt.Sprintf("generated-%dx%d-%d", width, height, seed), nil
}
