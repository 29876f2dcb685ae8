package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/micromouse/game/engine"
)

func TestAnalyzeConfig(t *testing.T) {
	tests := []struct {
		file     string
		size     int
		shortest int
	}{
		{"spiral.json", 4, 13},
		{"small.json", 6, 5},
		{"medium.json", 8, 9},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join("..", "..", "configs", tt.file)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Skipf("Config file %s not found", path)
			}

			a, err := analyzeConfig(path)
			if err != nil {
				t.Fatalf("Failed to analyze: %v", err)
			}
			if a.Width != tt.size || a.Height != tt.size {
				t.Errorf("Expected %dx%d, got %dx%d", tt.size, tt.size, a.Width, a.Height)
			}
			if a.Shortest != tt.shortest {
				t.Errorf("Expected shortest path %d, got %d", tt.shortest, a.Shortest)
			}
			if len(a.FirstPasses) != len(engine.Strategies()) {
				t.Fatalf("Expected a trial per strategy, got %d", len(a.FirstPasses))
			}
			for _, trial := range a.FirstPasses {
				if trial.Err != nil {
					t.Errorf("%s failed: %v", trial.Strategy, trial.Err)
				}
				if trial.Found < a.Shortest {
					t.Errorf("%s found a route of %d, shorter than the optimum %d", trial.Strategy, trial.Found, a.Shortest)
				}
			}
		})
	}
}

func TestAnalyzeConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := analyzeConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"name":"x","description":"x","width":2,"height":2,"layout":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := analyzeConfig(bad); err == nil {
		t.Error("Expected error for invalid layout")
	}
}

func TestCountTurns(t *testing.T) {
	tests := []struct {
		name string
		path engine.Path
		want int
	}{
		{"single cell", engine.Path{{X: 0, Y: 0}}, 0},
		{"straight east", engine.Path{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}}, 0},
		{"south first", engine.Path{{X: 0, Y: 0}, {X: 1, Y: 0}}, 1},
		{"zigzag", engine.Path{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countTurns(tt.path); got != tt.want {
				t.Errorf("countTurns() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrintAnalysis(t *testing.T) {
	a := &Analysis{
		Name: "demo", Width: 4, Height: 4, Reachable: 15, DeadEnds: 3, Shortest: 7, Turns: 2,
		FirstPasses: []StrategyTrial{
			{Strategy: "floodfill", Moves: 9, Found: 7},
			{Strategy: "dfs", Moves: 20, Found: 9},
		},
	}
	var buf bytes.Buffer
	printAnalysis(&buf, a)
	out := buf.String()

	for _, want := range []string{"Grid Size: 4 x 4", "Reachable Cells: 15/16", "Shortest Path: 7 cells, 2 turns", "floodfill", "1 cells cannot be reached"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}
