package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. The maze layout is kept
// alongside the knowledge so a later edit of the config cannot invalidate it.
type PersistedSessionData struct {
	ID             string              `json:"id"`
	MazeName       string              `json:"maze_name"`
	MazeConfig     *maze.Config        `json:"maze_config,omitempty"`
	Settings       engine.Config       `json:"settings"`
	Knowledge      *engine.Knowledge   `json:"knowledge"`
	Reports        []*engine.RunReport `json:"reports,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
}

func encodeSession(session *service.Session) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	data := PersistedSessionData{
		ID:             session.ID,
		MazeName:       session.MazeName,
		MazeConfig:     session.MazeConfig,
		Settings:       session.Settings,
		Knowledge:      session.Engine.Snapshot(),
		Reports:        session.Reports,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return jsonData, nil
}

// decodeSession rebuilds a session with a fresh simulator at the origin and the
// stored knowledge. configs is consulted only when the layout was not stored.
func decodeSession(jsonData []byte, configs service.ConfigManager) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	cfg := data.MazeConfig
	if cfg == nil {
		if configs == nil {
			return nil, fmt.Errorf("session %s has no maze layout", data.ID)
		}
		var err error
		if cfg, err = configs.LoadConfig(data.MazeName); err != nil {
			return nil, fmt.Errorf("failed to load maze '%s': %w", data.MazeName, err)
		}
	}

	session, err := service.NewSession(data.ID, data.MazeName, cfg, data.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild session: %w", err)
	}
	if data.Knowledge != nil {
		if err := session.Engine.Restore(data.Knowledge); err != nil {
			return nil, fmt.Errorf("failed to restore knowledge: %w", err)
		}
	}
	session.Reports = data.Reports
	session.CreatedAt = data.CreatedAt
	session.LastAccessedAt = data.LastAccessedAt
	return session, nil
}
