package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/micromouse/game/engine"
)

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	cfg := testConfig(t)

	t.Run("create with specific ID", func(t *testing.T) {
		session, err := manager.Create("Test1", "small", cfg, engine.Config{})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test1" {
			t.Errorf("Expected normalised ID 'test1', got '%s'", session.ID)
		}
		if session.Engine == nil || session.Simulator == nil || session.Maze == nil {
			t.Fatal("Expected engine, simulator and maze to be set")
		}
		if session.Settings.Strategy != engine.StrategyFloodFill || session.Settings.Passes != engine.DefaultPasses {
			t.Errorf("Expected default settings, got %+v", session.Settings)
		}
	})

	t.Run("create with empty ID generates one", func(t *testing.T) {
		session, err := manager.Create("", "small", cfg, engine.Config{})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got '%s'", session.ID)
		}
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		_, err := manager.Create("TEST1", "small", cfg, engine.Config{})
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("../etc", "small", cfg, engine.Config{})
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := manager.Create("bad", "small", cfg, engine.Config{Strategy: "teleport"})
		if !errors.Is(err, engine.ErrUnknownStrategy) {
			t.Errorf("Expected ErrUnknownStrategy, got %v", err)
		}
	})
}

func TestManager_GetAndDelete(t *testing.T) {
	manager := NewManager()
	cfg := testConfig(t)
	if _, err := manager.Create("abc", "small", cfg, engine.Config{}); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := manager.Get("ABC"); err != nil {
		t.Errorf("Expected case-insensitive lookup to succeed: %v", err)
	}
	if _, err := manager.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	if err := manager.Delete("abc"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if err := manager.Delete("abc"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected no sessions, got %d", manager.Count())
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	cfg := testConfig(t)

	first, err := manager.GetOrCreate("same", "small", cfg, engine.Config{})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := manager.GetOrCreate("same", "small", cfg, engine.Config{Strategy: engine.StrategyDFS})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("Expected the existing session to be returned")
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	cfg := testConfig(t)

	old, _ := manager.Create("old", "small", cfg, engine.Config{})
	manager.Create("new", "small", cfg, engine.Config{})
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("old"); err == nil {
		t.Error("Expired session should be gone")
	}
	if _, err := manager.Get("new"); err != nil {
		t.Errorf("Fresh session should remain: %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("touch", "small", testConfig(t), engine.Config{})
	before := session.LastAccessedAt
	time.Sleep(5 * time.Millisecond)

	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected last accessed time to advance")
	}
	if err := manager.UpdateLastAccessed("nobody"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	cfg := testConfig(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			if _, err := manager.Create(id, "small", cfg, engine.Config{}); err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(id); err != nil {
				errs <- err
			}
			manager.List()
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error: %v", err)
	}
	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	cfg := testConfig(t)
	a, _ := manager.Create("a", "small", cfg, engine.Config{})
	b, _ := manager.Create("b", "small", cfg, engine.Config{})

	explored(t, a)

	if a.Engine.PassesRun() != 2 {
		t.Errorf("Expected 2 passes in session a, got %d", a.Engine.PassesRun())
	}
	if b.Engine.PassesRun() != 0 || b.Engine.Walls().Known() != 0 {
		t.Error("Session b must not share knowledge with session a")
	}
	if a.Simulator == b.Simulator || a.Maze == b.Maze {
		t.Error("Sessions must not share a simulator or maze")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	cfg := testConfig(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", "small", cfg, engine.Config{})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if seen[session.ID] {
			t.Fatalf("Duplicate session ID %s", session.ID)
		}
		if strings.ToLower(session.ID) != session.ID {
			t.Errorf("Expected lower-case ID, got %s", session.ID)
		}
		seen[session.ID] = true
	}
}
