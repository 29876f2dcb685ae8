package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
)

// Errors returned by the service layer
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMazeNotFound    = errors.New("maze not found")
	ErrHistoryDisabled = errors.New("history store is not configured")
)

// Live event names sent to the EventSink besides the engine's own event types.
const (
	EventSessionCreated = "session_created"
	EventKnowledgeReset = "knowledge_reset"
)

// mazeServiceImpl implements the MazeService interface
type mazeServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	history  HistoryStore
	events   EventSink
	mu       sync.RWMutex
}

// Option configures the service
type Option func(*mazeServiceImpl)

// WithHistory records every pass in h.
func WithHistory(h HistoryStore) Option {
	return func(s *mazeServiceImpl) { s.history = h }
}

// WithEventSink forwards run events to sink.
func WithEventSink(sink EventSink) Option {
	return func(s *mazeServiceImpl) { s.events = sink }
}

// NewMazeService creates a new service instance
func NewMazeService(sessions SessionManager, configs ConfigManager, opts ...Option) MazeService {
	s := &mazeServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a session on the requested maze, or on the default maze
func (s *mazeServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSuffix(strings.TrimSpace(req.Maze), ".json")
	var cfg *maze.Config
	if name == "" {
		name, cfg = s.configs.DefaultName(), s.configs.GetDefault()
	} else {
		var err error
		if cfg, err = s.configs.LoadConfig(name); err != nil {
			return nil, s.mazeError(name, err)
		}
	}

	sess, err := s.sessions.Create("", name, cfg, req.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	info := buildSessionInfo(sess)
	s.broadcast(sess.ID, EventSessionCreated, info)
	return info, nil
}

// mazeError lists the available mazes when name does not exist.
func (s *mazeServiceImpl) mazeError(name string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("%w: '%s': %v", ErrMazeNotFound, name, err)
	}
	ids := make([]string, 0, len(available))
	for _, m := range available {
		ids = append(ids, m.ConfigID)
	}
	return fmt.Errorf("%w: '%s'. Available mazes: %v", ErrMazeNotFound, name, ids)
}

func (s *mazeServiceImpl) getSession(id string) (*Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.sessions.UpdateLastAccessed(id)
	return sess, nil
}

// GetSession retrieves session information
func (s *mazeServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return buildSessionInfo(sess), nil
}

// ListSessions returns all sessions, oldest first
func (s *mazeServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.Before(sessions[j].CreatedAt) })

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, buildSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *mazeServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// Explore runs passes with the session's settings. A zero count uses the
// configured number of passes. The report is kept even when a pass fails.
func (s *mazeServiceImpl) Explore(ctx context.Context, sessionID string, passes int) (*ExploreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	ctrl, err := engine.NewControllerFromConfig(sess.Engine, sess.Settings)
	if err != nil {
		return nil, err
	}
	detach := s.observe(sess)
	report, runErr := ctrl.Explore(ctx, passes)
	detach()

	if report != nil {
		sess.Reports = append(sess.Reports, report)
		s.recordHistory(ctx, sess, report)
	}
	s.save(sess, "explore")

	result := &ExploreResult{
		SessionID: sess.ID,
		Report:    report,
		Session:   buildSessionInfo(sess),
		Optimal:   optimal(sess),
	}
	if runErr != nil {
		result.Error = runErr.Error()
		return result, fmt.Errorf("explore failed: %w", runErr)
	}
	return result, nil
}

// Replay drives the best known path from the origin
func (s *mazeServiceImpl) Replay(ctx context.Context, sessionID string) (*ReplayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	ctrl, err := engine.NewControllerFromConfig(sess.Engine, sess.Settings)
	if err != nil {
		return nil, err
	}

	detach := s.observe(sess)
	path, err := ctrl.ReplayBest(ctx)
	detach()
	if err != nil {
		return nil, err
	}
	s.save(sess, "replay")

	return &ReplayResult{
		SessionID: sess.ID,
		Path:      path,
		Length:    len(path),
		Optimal:   optimal(sess),
		Stats:     sess.Simulator.Stats(),
		Board:     sess.Simulator.Render(),
	}, nil
}

// Reset forgets everything the session's engine learned and returns the mouse home
func (s *mazeServiceImpl) Reset(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Simulator.AckReset(); err != nil {
		return nil, err
	}
	sess.Simulator.ClearAllColor()
	sess.Simulator.ClearAllText()
	sess.Engine.Forget()
	sess.Reports = nil
	s.save(sess, "reset")

	info := buildSessionInfo(sess)
	s.broadcast(sess.ID, EventKnowledgeReset, info)
	return info, nil
}

// GetKnowledge returns the session's wall knowledge, flood field and paths
func (s *mazeServiceImpl) GetKnowledge(ctx context.Context, sessionID string) (*KnowledgeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	k := sess.Engine.Snapshot()
	return &KnowledgeView{
		SessionID: sess.ID,
		Knowledge: k,
		Known:     len(k.Walls),
		Board:     sess.Simulator.Render(),
	}, nil
}

// DescribeCell reports what the mouse knows about one cell
func (s *mazeServiceImpl) DescribeCell(ctx context.Context, sessionID string, cell engine.Cell) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	grid := sess.Engine.Grid()
	if !grid.InBounds(cell) {
		return nil, fmt.Errorf("cell %v is outside the %dx%d maze", cell, grid.Width(), grid.Height())
	}

	info := &CellInfo{
		Cell:    cell,
		Goal:    grid.IsGoal(cell),
		Flood:   sess.Engine.Flood().Value(cell),
		Blocked: []engine.Orientation{},
		Open:    []engine.Orientation{},
	}
	for _, o := range []engine.Orientation{engine.North, engine.East, engine.South, engine.West} {
		switch sess.Engine.Walls().Edge(cell, o) {
		case engine.EdgeBlocked:
			info.Blocked = append(info.Blocked, o)
		case engine.EdgeOpen:
			info.Open = append(info.Open, o)
		}
	}
	info.Known = len(info.Blocked)+len(info.Open) > 0
	if best, ok := sess.Engine.Best(); ok {
		info.OnBest = best.Contains(cell)
	}
	return info, nil
}

// ListMazes returns the available maze configurations
func (s *mazeServiceImpl) ListMazes(ctx context.Context) ([]*MazeInfo, error) {
	return s.configs.ListConfigs()
}

// LoadMaze loads a maze configuration
func (s *mazeServiceImpl) LoadMaze(ctx context.Context, name string) (*maze.Config, error) {
	cfg, err := s.configs.LoadConfig(name)
	if err != nil {
		return nil, s.mazeError(name, err)
	}
	return cfg, nil
}

// SaveMaze validates and stores a maze configuration
func (s *mazeServiceImpl) SaveMaze(ctx context.Context, name string, cfg *maze.Config) error {
	return s.configs.SaveConfig(name, cfg)
}

var strategyDescriptions = map[string]string{
	engine.StrategyFloodFill: "Flood fill: follow decreasing distance-to-goal values, re-flooding when a wall is found",
	engine.StrategyAStar:     "A*: best-first search on f = g + weight * heuristic, assuming unknown walls are open",
	engine.StrategyBFS:       "Breadth-first search: expands cells level by level, shortest routes in known mazes",
	engine.StrategyDFS:       "Depth-first search: follows one corridor as deep as possible before backtracking",
}

// ListStrategies describes the exploration strategies
func (s *mazeServiceImpl) ListStrategies(ctx context.Context) []*StrategyInfo {
	var result []*StrategyInfo
	for _, name := range engine.Strategies() {
		info := &StrategyInfo{Name: name, Description: strategyDescriptions[name]}
		if name == engine.StrategyAStar {
			info.Heuristics = engine.Heuristics()
		}
		result = append(result, info)
	}
	return result
}

// MazeHistory returns stored pass results for a maze
func (s *mazeServiceImpl) MazeHistory(ctx context.Context, name string, opts HistoryOptions) (*HistoryResponse, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	records, err := s.history.ListByMaze(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	resp := &HistoryResponse{Maze: name, Records: records}
	if best, err := s.history.Best(ctx, name); err == nil {
		resp.Best = best
	}
	return resp, nil
}

// observe forwards engine events to the sink until the returned func is called.
func (s *mazeServiceImpl) observe(sess *Session) func() {
	if s.events == nil {
		return func() {}
	}
	id := sess.ID
	sess.Engine.SetObserver(func(ev engine.Event) {
		s.events.BroadcastEvent(id, ev.Type, ev)
	})
	return func() { sess.Engine.SetObserver(nil) }
}

func (s *mazeServiceImpl) broadcast(sessionID, event string, data interface{}) {
	if s.events != nil {
		s.events.BroadcastEvent(sessionID, event, data)
	}
}

func (s *mazeServiceImpl) recordHistory(ctx context.Context, sess *Session, report *engine.RunReport) {
	if s.history == nil {
		return
	}
	for _, rec := range HistoryFromReport(sess.ID, sess.MazeName, sess.Settings, report) {
		if err := s.history.Record(ctx, rec); err != nil {
			log.Printf("Warning: Failed to record pass %d of session %s: %v", rec.Pass, sess.ID, err)
		}
	}
}

func (s *mazeServiceImpl) save(sess *Session, after string) {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", sess.ID, after, err)
	}
}

func optimal(sess *Session) int {
	p, err := sess.Maze.ShortestPath()
	if err != nil {
		return 0
	}
	return len(p)
}

func buildSessionInfo(sess *Session) *SessionInfo {
	best, _ := sess.Engine.Best()
	return &SessionInfo{
		ID:             sess.ID,
		MazeName:       sess.MazeName,
		Width:          sess.Maze.Width(),
		Height:         sess.Maze.Height(),
		Settings:       sess.Settings,
		Pose:           sess.Simulator.Pose(),
		PassesRun:      sess.Engine.PassesRun(),
		Best:           best,
		BestLength:     len(best),
		Stats:          sess.Simulator.Stats(),
		Board:          sess.Simulator.Render(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
	}
}
