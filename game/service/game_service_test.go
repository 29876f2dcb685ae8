package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id, mazeName string, cfg *maze.Config, settings engine.Config) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	session, err := service.NewSession(id, mazeName, cfg, settings)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*maze.Config
}

func NewMockConfigManager(t *testing.T) *MockConfigManager {
	t.Helper()
	m := &MockConfigManager{configs: make(map[string]*maze.Config)}
	for _, name := range []string{"small", "spiral"} {
		cfg, err := maze.LoadConfigByName("../../configs", name)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", name, err)
		}
		m.configs[name] = cfg
	}
	return m
}

func (m *MockConfigManager) LoadConfig(name string) (*maze.Config, error) {
	cfg, exists := m.configs[name]
	if !exists {
		return nil, errors.New("config not found")
	}
	return cfg, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.MazeInfo, error) {
	result := make([]*service.MazeInfo, 0, len(m.configs))
	for name, cfg := range m.configs {
		result = append(result, &service.MazeInfo{
			Filename: name + ".json",
			ConfigID: name,
			Name:     cfg.Name,
			Width:    cfg.Width,
			Height:   cfg.Height,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *maze.Config { return m.configs["small"] }
func (m *MockConfigManager) DefaultName() string      { return "small" }

func (m *MockConfigManager) SaveConfig(name string, cfg *maze.Config) error {
	if err := maze.ValidateConfig(cfg); err != nil {
		return err
	}
	m.configs[name] = cfg
	return nil
}

// MockHistory implements service.HistoryStore in memory
type MockHistory struct {
	records []service.HistoryRecord
}

func (h *MockHistory) Record(ctx context.Context, rec service.HistoryRecord) error {
	h.records = append(h.records, rec)
	return nil
}

func (h *MockHistory) ListByMaze(ctx context.Context, name string, opts service.HistoryOptions) ([]service.HistoryRecord, error) {
	var out []service.HistoryRecord
	for _, r := range h.records {
		if r.Maze == name && (opts.Strategy == "" || r.Strategy == opts.Strategy) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (h *MockHistory) Best(ctx context.Context, name string) (*service.HistoryRecord, error) {
	var best *service.HistoryRecord
	for i, r := range h.records {
		if r.Maze != name || r.Aborted {
			continue
		}
		if best == nil || r.PathLength < best.PathLength {
			best = &h.records[i]
		}
	}
	if best == nil {
		return nil, errors.New("no records")
	}
	return best, nil
}

// MockSink collects broadcast event names
type MockSink struct {
	mu     sync.Mutex
	events map[string]int
}

func (s *MockSink) BroadcastEvent(sessionID string, event string, data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		s.events = make(map[string]int)
	}
	s.events[event]++
}

func newService(t *testing.T, opts ...service.Option) (service.MazeService, *MockSessionManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	return service.NewMazeService(sessions, NewMockConfigManager(t), opts...), sessions
}

// Test cases
func TestMazeService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	tests := []struct {
		name     string
		req      service.CreateSessionRequest
		wantMaze string
		wantErr  bool
	}{
		{
			name:     "create with default maze",
			req:      service.CreateSessionRequest{},
			wantMaze: "small",
		},
		{
			name:     "create with specific maze",
			req:      service.CreateSessionRequest{Maze: "spiral.json"},
			wantMaze: "spiral",
		},
		{
			name:    "create with missing maze",
			req:     service.CreateSessionRequest{Maze: "nonexistent"},
			wantErr: true,
		},
		{
			name:    "create with unknown strategy",
			req:     service.CreateSessionRequest{Settings: engine.Config{Strategy: "wallfollower"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if info.MazeName != tt.wantMaze {
				t.Errorf("Expected maze %s, got %s", tt.wantMaze, info.MazeName)
			}
			if info.Pose.Cell != engine.Origin || info.Pose.Facing != engine.InitialFacing {
				t.Errorf("Expected mouse at origin, got %+v", info.Pose)
			}
			if info.Settings.Strategy != engine.StrategyFloodFill {
				t.Errorf("Expected default strategy, got %s", info.Settings.Strategy)
			}
		})
	}
}

func TestMazeService_MissingMazeListsAvailable(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateSession(context.Background(), service.CreateSessionRequest{Maze: "nope"})
	if !errors.Is(err, service.ErrMazeNotFound) {
		t.Fatalf("Expected ErrMazeNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "small") || !strings.Contains(err.Error(), "spiral") {
		t.Errorf("Expected available mazes in error, got %v", err)
	}
}

func TestMazeService_Explore(t *testing.T) {
	ctx := context.Background()
	history := &MockHistory{}
	sink := &MockSink{}
	svc, sessions := newService(t, service.WithHistory(history), service.WithEventSink(sink))

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{
		Maze:     "small",
		Settings: engine.Config{Strategy: "astar", Passes: 2},
	})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	result, err := svc.Explore(ctx, info.ID, 0)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(result.Report.Passes) != 2 {
		t.Errorf("Expected the configured 2 passes, got %d", len(result.Report.Passes))
	}
	if result.Session.PassesRun != 2 {
		t.Errorf("Expected 2 passes run, got %d", result.Session.PassesRun)
	}
	if result.Optimal != 5 {
		t.Errorf("Expected optimal length 5, got %d", result.Optimal)
	}
	if result.Session.BestLength < result.Optimal {
		t.Errorf("Best path %d is shorter than the optimal %d", result.Session.BestLength, result.Optimal)
	}
	if len(history.records) != 2 {
		t.Errorf("Expected 2 history records, got %d", len(history.records))
	}
	for _, rec := range history.records {
		if rec.Heuristic != engine.DefaultHeuristic {
			t.Errorf("Expected heuristic %s recorded, got %q", engine.DefaultHeuristic, rec.Heuristic)
		}
	}
	if sink.events[engine.EventPassCompleted] != 2 {
		t.Errorf("Expected 2 pass_completed events, got %d", sink.events[engine.EventPassCompleted])
	}
	if sink.events[service.EventSessionCreated] != 1 {
		t.Errorf("Expected one session_created event, got %d", sink.events[service.EventSessionCreated])
	}
	if sessions.saves == 0 {
		t.Error("Expected the session to be saved after exploring")
	}

	// A second call keeps learning on the same engine
	result, err = svc.Explore(ctx, info.ID, 1)
	if err != nil {
		t.Fatalf("Second explore failed: %v", err)
	}
	if result.Session.PassesRun != 3 {
		t.Errorf("Expected 3 passes run, got %d", result.Session.PassesRun)
	}
}

func TestMazeService_ExploreInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	if _, err := svc.Explore(ctx, "missing", 1); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svc.Explore(ctx, info.ID, engine.MaxPasses+1); !errors.Is(err, engine.ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions, got %v", err)
	}
}

func TestMazeService_Replay(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{Maze: "spiral"})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := svc.Replay(ctx, info.ID); !errors.Is(err, engine.ErrNoBestPath) {
		t.Fatalf("Expected ErrNoBestPath before exploring, got %v", err)
	}

	if _, err := svc.Explore(ctx, info.ID, 2); err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	replay, err := svc.Replay(ctx, info.ID)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if replay.Length != 13 || replay.Optimal != 13 {
		t.Errorf("Expected a 13 cell replay on the spiral, got %d (optimal %d)", replay.Length, replay.Optimal)
	}
	if replay.Stats.Crashes != 0 {
		t.Errorf("Expected no crashes, got %d", replay.Stats.Crashes)
	}

	session, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session.Pose.Cell != replay.Path[len(replay.Path)-1] {
		t.Errorf("Expected mouse at %v after replay, got %v", replay.Path[len(replay.Path)-1], session.Pose.Cell)
	}
}

func TestMazeService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svc.Explore(ctx, info.ID, 2); err != nil {
		t.Fatalf("Explore failed: %v", err)
	}

	reset, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if reset.PassesRun != 0 || reset.BestLength != 0 {
		t.Errorf("Expected knowledge to be cleared, got passes=%d best=%d", reset.PassesRun, reset.BestLength)
	}
	if reset.Pose.Cell != engine.Origin {
		t.Errorf("Expected mouse at origin, got %v", reset.Pose.Cell)
	}

	view, err := svc.GetKnowledge(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}
	if view.Known != 0 {
		t.Errorf("Expected no known cells after reset, got %d", view.Known)
	}
}

func TestMazeService_Knowledge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svc.Explore(ctx, info.ID, 1); err != nil {
		t.Fatalf("Explore failed: %v", err)
	}

	view, err := svc.GetKnowledge(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}
	if view.Known == 0 {
		t.Error("Expected some cells to be known")
	}
	if view.Knowledge.Width != 6 || len(view.Knowledge.Paths) != 1 {
		t.Errorf("Unexpected knowledge: width=%d paths=%d", view.Knowledge.Width, len(view.Knowledge.Paths))
	}

	origin, err := svc.DescribeCell(ctx, info.ID, engine.Origin)
	if err != nil {
		t.Fatalf("DescribeCell failed: %v", err)
	}
	if !origin.Known || !origin.OnBest {
		t.Errorf("Expected origin known and on the best path, got %+v", origin)
	}
	// Readings toward the outer boundary are not recorded
	if len(origin.Open) != 1 || origin.Open[0] != engine.East {
		t.Errorf("Expected only the east side of origin open, got %v", origin.Open)
	}
	if len(origin.Blocked) != 1 || origin.Blocked[0] != engine.South {
		t.Errorf("Expected only the south side of origin blocked, got %v", origin.Blocked)
	}

	goal, err := svc.DescribeCell(ctx, info.ID, engine.Cell{X: 2, Y: 2})
	if err != nil {
		t.Fatalf("DescribeCell failed: %v", err)
	}
	if !goal.Goal || goal.Flood != 0 {
		t.Errorf("Expected goal cell with flood 0, got %+v", goal)
	}

	if _, err := svc.DescribeCell(ctx, info.ID, engine.Cell{X: 6, Y: 0}); err == nil {
		t.Error("Expected error for a cell outside the maze")
	}
}

func TestMazeService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	var ids []string
	for i := 0; i < 3; i++ {
		info, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
		if err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
		ids = append(ids, info.ID)
	}

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, ids[0]); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if err := svc.DeleteSession(ctx, ids[0]); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if _, err := svc.GetSession(ctx, ids[0]); err == nil {
		t.Error("Expected deleted session to be gone")
	}
}

func TestMazeService_Mazes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mazes, err := svc.ListMazes(ctx)
	if err != nil {
		t.Fatalf("ListMazes failed: %v", err)
	}
	if len(mazes) != 2 {
		t.Errorf("Expected 2 mazes, got %d", len(mazes))
	}

	m, err := maze.Generate(4, 4, 7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := svc.SaveMaze(ctx, "generated", m.ToConfig("generated", "seed 7")); err != nil {
		t.Fatalf("SaveMaze failed: %v", err)
	}
	cfg, err := svc.LoadMaze(ctx, "generated")
	if err != nil {
		t.Fatalf("LoadMaze failed: %v", err)
	}
	if cfg.Width != 4 || cfg.Height != 4 {
		t.Errorf("Expected a 4x4 maze, got %dx%d", cfg.Width, cfg.Height)
	}

	if err := svc.SaveMaze(ctx, "broken", &maze.Config{Width: 3}); err == nil {
		t.Error("Expected invalid maze to be rejected")
	}
	if _, err := svc.LoadMaze(ctx, "broken"); !errors.Is(err, service.ErrMazeNotFound) {
		t.Errorf("Expected ErrMazeNotFound, got %v", err)
	}
}

func TestMazeService_ListStrategies(t *testing.T) {
	svc, _ := newService(t)

	strategies := svc.ListStrategies(context.Background())
	if len(strategies) != len(engine.Strategies()) {
		t.Fatalf("Expected %d strategies, got %d", len(engine.Strategies()), len(strategies))
	}
	for _, s := range strategies {
		if s.Description == "" {
			t.Errorf("Strategy %s has no description", s.Name)
		}
		if (s.Name == engine.StrategyAStar) != (len(s.Heuristics) > 0) {
			t.Errorf("Unexpected heuristics for %s: %v", s.Name, s.Heuristics)
		}
	}
}

func TestMazeService_MazeHistory(t *testing.T) {
	ctx := context.Background()

	svc, _ := newService(t)
	if _, err := svc.MazeHistory(ctx, "small", service.HistoryOptions{}); !errors.Is(err, service.ErrHistoryDisabled) {
		t.Errorf("Expected ErrHistoryDisabled, got %v", err)
	}

	history := &MockHistory{}
	svc, _ = newService(t, service.WithHistory(history))
	for _, strategy := range []string{"bfs", "dfs"} {
		info, err := svc.CreateSession(ctx, service.CreateSessionRequest{Settings: engine.Config{Strategy: strategy}})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if _, err := svc.Explore(ctx, info.ID, 1); err != nil {
			t.Fatalf("Explore failed: %v", err)
		}
	}

	resp, err := svc.MazeHistory(ctx, "small", service.HistoryOptions{Strategy: "bfs"})
	if err != nil {
		t.Fatalf("MazeHistory failed: %v", err)
	}
	if len(resp.Records) != 1 || resp.Records[0].Strategy != "bfs" {
		t.Errorf("Expected one bfs record, got %+v", resp.Records)
	}
	if resp.Best == nil {
		t.Error("Expected a best record")
	}
}
