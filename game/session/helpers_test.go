package session

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/wricardo/micromouse/game/config"
	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/service"
)

func init() {
	log.SetOutput(io.Discard)
}

func testConfig(t *testing.T) *maze.Config {
	t.Helper()
	cfg, err := maze.LoadConfigByName("../../configs", "small")
	if err != nil {
		t.Fatalf("Failed to load maze config: %v", err)
	}
	return cfg
}

func testConfigManager(t *testing.T) *config.Manager {
	t.Helper()
	manager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	return manager
}

// explored runs two flood fill passes so the session has knowledge worth saving.
func explored(t *testing.T, sess *service.Session) {
	t.Helper()
	ctrl, err := engine.NewControllerFromConfig(sess.Engine, sess.Settings)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	report, err := ctrl.Explore(context.Background(), 2)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	sess.Reports = append(sess.Reports, report)
}
