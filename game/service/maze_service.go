package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
)

// MazeService defines all session, run and maze operations
type MazeService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Runs
	Explore(ctx context.Context, sessionID string, passes int) (*ExploreResult, error)
	Replay(ctx context.Context, sessionID string) (*ReplayResult, error)
	Reset(ctx context.Context, sessionID string) (*SessionInfo, error)

	// Knowledge
	GetKnowledge(ctx context.Context, sessionID string) (*KnowledgeView, error)
	DescribeCell(ctx context.Context, sessionID string, cell engine.Cell) (*CellInfo, error)

	// Mazes
	ListMazes(ctx context.Context) ([]*MazeInfo, error)
	LoadMaze(ctx context.Context, name string) (*maze.Config, error)
	SaveMaze(ctx context.Context, name string, cfg *maze.Config) error
	ListStrategies(ctx context.Context) []*StrategyInfo
	MazeHistory(ctx context.Context, name string, opts HistoryOptions) (*HistoryResponse, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, mazeName string, cfg *maze.Config, settings engine.Config) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles maze configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*maze.Config, error)
	ListConfigs() ([]*MazeInfo, error)
	GetDefault() *maze.Config
	DefaultName() string
	SaveConfig(name string, cfg *maze.Config) error
}

// HistoryStore keeps pass results across sessions and restarts
type HistoryStore interface {
	Record(ctx context.Context, rec HistoryRecord) error
	ListByMaze(ctx context.Context, maze string, opts HistoryOptions) ([]HistoryRecord, error)
	Best(ctx context.Context, maze string) (*HistoryRecord, error)
}

// EventSink receives run events for live viewers
type EventSink interface {
	BroadcastEvent(sessionID string, event string, data interface{})
}

// Session is one simulated mouse in one maze with everything its engine has learned
type Session struct {
	ID             string
	MazeName       string
	MazeConfig     *maze.Config
	Maze           *maze.Maze
	Simulator      *maze.Simulator
	Engine         *engine.Engine
	Settings       engine.Config
	Reports        []*engine.RunReport
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewSession parses cfg, places a simulated mouse at the origin and attaches a fresh
// engine to it. Settings are validated and their defaults filled.
func NewSession(id, mazeName string, cfg *maze.Config, settings engine.Config) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	m, err := maze.Parse(cfg)
	if err != nil {
		return nil, err
	}
	sim := maze.NewSimulator(m)
	eng, err := engine.New(sim, engine.WithPaint(settings.Paint))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	now := time.Now()
	return &Session{
		ID:             id,
		MazeName:       mazeName,
		MazeConfig:     cfg,
		Maze:           m,
		Simulator:      sim,
		Engine:         eng,
		Settings:       settings,
		CreatedAt:      now,
		LastAccessedAt: now,
	}, nil
}
