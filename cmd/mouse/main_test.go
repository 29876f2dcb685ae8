package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/history"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/service"
	"github.com/wricardo/micromouse/transport/protocol"
)

const configDir = "../../configs"

func TestSimulate(t *testing.T) {
	var out, logs bytes.Buffer
	app := newApp(strings.NewReader(""), &out, &logs)

	err := app.Run(context.Background(), []string{"mouse", "simulate", "--maze", "spiral", "--config-dir", configDir, "--passes", "2"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "maze spiral:")
	assert.Contains(t, out.String(), "best path 13 (optimal 13) after 2 passes")
	assert.Contains(t, logs.String(), "Running floodfill passes=2 return=reset")
}

func TestSimulate_GeneratedWithHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	var out, logs bytes.Buffer
	app := newApp(strings.NewReader(""), &out, &logs)

	err := app.Run(context.Background(), []string{"mouse", "simulate",
		"--width", "6", "--height", "6", "--seed", "3",
		"--strategy", "astar", "--heuristic", "manhattan", "--passes", "3", "--history", db})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "maze generated-6x6-3:")

	store, err := history.Open(db)
	require.NoError(t, err)
	defer store.Close()
	records, err := store.ListByMaze(context.Background(), "generated-6x6-3", service.HistoryOptions{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "manhattan", records[0].Heuristic)
}

func TestInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown strategy", []string{"mouse", "--strategy", "teleport"}},
		{"unknown heuristic", []string{"mouse", "--strategy", "astar", "--heuristic", "psychic"}},
		{"too many passes", []string{"mouse", "--passes", "1000"}},
		{"bad return policy", []string{"mouse", "--return", "fly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(strings.NewReader(""), io.Discard, io.Discard)
			assert.Error(t, app.Run(context.Background(), tt.args))
		})
	}
}

func TestSimulate_MissingMaze(t *testing.T) {
	app := newApp(strings.NewReader(""), io.Discard, io.Discard)
	err := app.Run(context.Background(), []string{"mouse", "simulate", "--maze", "nope", "--config-dir", configDir})
	assert.Error(t, err)
}

// TestProtocolMode runs the root command with a simulator on the other end of stdin/stdout.
func TestProtocolMode(t *testing.T) {
	cfg, err := maze.LoadConfigByName(configDir, "small")
	require.NoError(t, err)
	m, err := maze.Parse(cfg)
	require.NoError(t, err)
	sim := maze.NewSimulator(m)

	cmdR, cmdW := io.Pipe()
	respR, respW := io.Pipe()
	served := make(chan error, 1)
	go func() {
		err := protocol.Serve(context.Background(), cmdR, respW, sim)
		respW.Close()
		served <- err
	}()

	var logs bytes.Buffer
	app := newApp(respR, cmdW, &logs)
	err = app.Run(context.Background(), []string{"mouse", "--strategy", "bfs", "--passes", "2", "--return", "drive", "--paint"})
	cmdW.Close()
	require.NoError(t, err)
	require.NoError(t, <-served)

	assert.Contains(t, logs.String(), "Best path of length 5 replayed")
	assert.Equal(t, 0, sim.Stats().Crashes)
	assert.NotEmpty(t, sim.Colors())
	assert.True(t, m.InBounds(sim.Pose().Cell))
}

func TestRunMouse_CrashStopsRun(t *testing.T) {
	var logs bytes.Buffer
	// Only east is open at the start, and the first step into it crashes.
	in := strings.NewReader("4\n4\ntrue\nfalse\ntrue\ncrash\n")
	settings := engine.Config{Passes: 1}
	require.NoError(t, settings.Validate())

	_, err := runMouse(context.Background(), protocol.NewMouse(in, io.Discard), settings, newTestLogger(&logs))
	assert.ErrorIs(t, err, engine.ErrCrashed)
}

func newTestLogger(w io.Writer) *log.Logger { return log.New(w, "", 0) }
