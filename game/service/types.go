package service

import (
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
)

// SessionInfo provides information about a mouse session
type SessionInfo struct {
	ID             string          `json:"id"`
	MazeName       string          `json:"maze_name"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	Settings       engine.Config   `json:"settings"`
	Pose           engine.RunState `json:"pose"`
	PassesRun      int             `json:"passes_run"`
	Best           engine.Path     `json:"best,omitempty"`
	BestLength     int             `json:"best_length"`
	Stats          maze.Stats      `json:"stats"`
	Board          string          `json:"board"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
}

// CreateSessionRequest selects the maze and run settings of a new session.
// An empty maze name selects the default maze.
type CreateSessionRequest struct {
	Maze     string        `json:"maze"`
	Settings engine.Config `json:"settings"`
}

// ExploreResult contains the passes run by one explore call
type ExploreResult struct {
	SessionID string            `json:"session_id"`
	Report    *engine.RunReport `json:"report"`
	Session   *SessionInfo      `json:"session"`
	// Optimal is the length of the true shortest route, for comparison with Best.
	Optimal int `json:"optimal"`
	// Error is set when a pass stopped the run early. Completed passes are still reported.
	Error string `json:"error,omitempty"`
}

// ReplayResult describes a replay of the best known path
type ReplayResult struct {
	SessionID string      `json:"session_id"`
	Path      engine.Path `json:"path"`
	Length    int         `json:"length"`
	Optimal   int         `json:"optimal"`
	Stats     maze.Stats  `json:"stats"`
	Board     string      `json:"board"`
}

// KnowledgeView is what a session's engine has learned so far
type KnowledgeView struct {
	SessionID string            `json:"session_id"`
	Knowledge *engine.Knowledge `json:"knowledge"`
	Known     int               `json:"known_cells"`
	Board     string            `json:"board"`
}

// CellInfo describes one cell of a session's maze as the mouse knows it
type CellInfo struct {
	Cell    engine.Cell          `json:"cell"`
	Goal    bool                 `json:"goal"`
	Flood   int                  `json:"flood"`
	Known   bool                 `json:"known"`
	Blocked []engine.Orientation `json:"blocked"`
	Open    []engine.Orientation `json:"open"`
	OnBest  bool                 `json:"on_best"`
}

// MazeInfo provides information about a maze configuration
type MazeInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`
	Description  string `json:"description"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ShortestPath int    `json:"shortest_path"`
	DeadEnds     int    `json:"dead_ends"`
}

// StrategyInfo describes an exploration strategy
type StrategyInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Heuristics  []string `json:"heuristics,omitempty"`
}

// HistoryRecord is one stored pass result
type HistoryRecord struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id"`
	Maze       string        `json:"maze"`
	Strategy   string        `json:"strategy"`
	Heuristic  string        `json:"heuristic,omitempty"`
	Pass       int           `json:"pass"`
	Moves      int           `json:"moves"`
	PathLength int           `json:"path_length"`
	Aborted    bool          `json:"aborted"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Limit    int    `json:"limit"`
	Strategy string `json:"strategy,omitempty"`
}

// HistoryResponse contains stored pass results for a maze
type HistoryResponse struct {
	Maze    string          `json:"maze"`
	Records []HistoryRecord `json:"records"`
	Best    *HistoryRecord  `json:"best,omitempty"`
}

// HistoryFromReport converts the passes of a run report to history records.
func HistoryFromReport(sessionID, maze string, settings engine.Config, report *engine.RunReport) []HistoryRecord {
	if report == nil {
		return nil
	}
	records := make([]HistoryRecord, 0, len(report.Passes))
	for _, p := range report.Passes {
		if p == nil {
			continue
		}
		rec := HistoryRecord{
			ID:         p.ID,
			SessionID:  sessionID,
			Maze:       maze,
			Strategy:   p.Strategy,
			Pass:       p.Pass,
			Moves:      p.Moves,
			PathLength: len(p.Path),
			Aborted:    p.Aborted,
			Error:      p.Error,
			Duration:   p.Duration,
		}
		if p.Strategy == engine.StrategyAStar {
			rec.Heuristic = settings.Heuristic
		}
		records = append(records, rec)
	}
	return records
}
