// Command analyze prints quick, human-readable statistics about the maze configs in
// the project's configs directory: size, dead ends, branch points, the true
// shortest route, and how many moves each strategy needs for a first pass.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
)

// Analysis summarises one maze config.
type Analysis struct {
	Name        string
	Width       int
	Height      int
	Reachable   int
	DeadEnds    int
	Branches    int
	Shortest    int
	Turns       int
	FirstPasses []StrategyTrial
}

// StrategyTrial is the outcome of one strategy's first pass through a maze.
type StrategyTrial struct {
	Strategy string
	Moves    int
	Found    int
	Err      error
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No maze configs found in %s\n", dir)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		a, err := analyzeConfig(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, a)
	}
}

func analyzeConfig(file string) (*Analysis, error) {
	cfg, err := maze.LoadConfig(file)
	if err != nil {
		return nil, err
	}
	m, err := maze.Parse(cfg)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Name:      cfg.Name,
		Width:     m.Width(),
		Height:    m.Height(),
		Reachable: m.Reachable(),
		DeadEnds:  m.DeadEnds(),
	}
	for x := 0; x < m.Width(); x++ {
		for y := 0; y < m.Height(); y++ {
			if len(m.Open(engine.Cell{X: x, Y: y})) >= 3 {
				a.Branches++
			}
		}
	}

	path, err := m.ShortestPath()
	if err != nil {
		return nil, err
	}
	a.Shortest = len(path)
	a.Turns = countTurns(path)

	for _, name := range engine.Strategies() {
		a.FirstPasses = append(a.FirstPasses, firstPass(m, name))
	}
	return a, nil
}

// countTurns counts heading changes along path, including the one needed at the
// start when the first step is not in the initial heading.
func countTurns(path engine.Path) int {
	turns := 0
	heading := engine.InitialFacing
	for i := 1; i < len(path); i++ {
		o, ok := engine.DirectionBetween(path[i-1], path[i])
		if !ok {
			continue
		}
		if o != heading {
			turns++
			heading = o
		}
	}
	return turns
}

// firstPass runs a single exploration pass of strategy on a fresh simulator.
func firstPass(m *maze.Maze, strategy string) StrategyTrial {
	trial := StrategyTrial{Strategy: strategy}
	eng, err := engine.New(maze.NewSimulator(m), engine.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		trial.Err = err
		return trial
	}
	ctrl, err := engine.NewControllerFromConfig(eng, engine.Config{Strategy: strategy, Passes: 1})
	if err != nil {
		trial.Err = err
		return trial
	}
	report, err := ctrl.Explore(context.Background(), 1)
	if report != nil && len(report.Passes) > 0 {
		trial.Moves = report.Passes[0].Moves
		trial.Found = len(report.Passes[0].Path)
	}
	trial.Err = err
	return trial
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Reachable Cells: %d/%d\n", a.Reachable, a.Width*a.Height)
	fmt.Fprintf(w, "Dead Ends: %d\n", a.DeadEnds)
	fmt.Fprintf(w, "Branch Points: %d\n", a.Branches)
	fmt.Fprintf(w, "Shortest Path: %d cells, %d turns\n", a.Shortest, a.Turns)

	fmt.Fprintf(w, "First pass:\n")
	for _, t := range a.FirstPasses {
		if t.Err != nil {
			fmt.Fprintf(w, "   %-10s ⚠️  %v\n", t.Strategy, t.Err)
			continue
		}
		mark := "✅"
		if t.Found > a.Shortest {
			mark = "  "
		}
		fmt.Fprintf(w, "   %-10s %s %4d moves, route %d\n", t.Strategy, mark, t.Moves, t.Found)
	}
	if a.Reachable < a.Width*a.Height {
		fmt.Fprintf(w, "⚠️  WARNING: %d cells cannot be reached from the start\n", a.Width*a.Height-a.Reachable)
	}
}
