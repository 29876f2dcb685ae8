package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles mouse session lifecycle. IDs are case-insensitive.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates a new in-memory session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// NewManagerWithPersistence creates a new session manager backed by persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

func normalizeID(id string) string { return strings.ToLower(strings.TrimSpace(id)) }

func validID(id string) bool {
	return id != "" && len(id) <= 64 && !strings.ContainsAny(id, "/\\ .:")
}

// Create builds a session for the given maze. An empty id generates one.
func (m *Manager) Create(id, mazeName string, cfg *maze.Config, settings engine.Config) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	}
	id = normalizeID(id)
	if !validID(id) {
		return nil, ErrInvalidSessionID
	}

	session, err := service.NewSession(id, mazeName, cfg, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.mu.Lock()
	if _, exists := m.sessions[id]; exists {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}
	m.sessions[id] = session
	m.mu.Unlock()

	m.persist(session, "creation")
	return session, nil
}

// Get retrieves a session, loading it from persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	id = normalizeID(id)

	m.mu.RLock()
	session, exists := m.sessions[id]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil || !validID(id) || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	m.sessions[id] = loaded
	return loaded, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id, mazeName string, cfg *maze.Config, settings engine.Config) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, mazeName, cfg, settings)
	}
	return nil, err
}

// List returns all sessions in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	id = normalizeID(id)

	m.mu.Lock()
	_, inMemory := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.persistence != nil && validID(id) && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session without touching persistence
func (m *Manager) DeleteFromMemory(id string) error {
	id = normalizeID(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// UpdateLastAccessed touches a session
func (m *Manager) UpdateLastAccessed(id string) error {
	id = normalizeID(id)

	m.mu.Lock()
	session, exists := m.sessions[id]
	if exists {
		session.LastAccessedAt = time.Now()
	}
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}
	return nil
}

// Save writes a session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[normalizeID(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}
	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions not accessed within maxAge. Evicted
// sessions are saved first so they can be reloaded on demand.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*service.Session
	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			expired = append(expired, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		m.persist(session, "eviction")
	}
	return len(expired)
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a random 4-character hex ID that is not in use
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	for {
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)

		m.mu.RLock()
		_, taken := m.sessions[id]
		m.mu.RUnlock()
		if !taken && (m.persistence == nil || !m.persistence.Exists(id)) {
			return id
		}
	}
}

func (m *Manager) persist(session *service.Session, reason string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		// Log error but don't fail the caller
		log.Printf("Warning: Failed to persist session %s after %s: %v", session.ID, reason, err)
	}
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loadedCount := 0
	for _, id := range sessionIDs {
		id = normalizeID(id)
		m.mu.RLock()
		_, exists := m.sessions[id]
		m.mu.RUnlock()
		if exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			log.Printf("Warning: Failed to load persisted session %s: %v", id, err)
			continue
		}

		m.mu.Lock()
		m.sessions[id] = session
		m.mu.Unlock()
		loadedCount++
	}

	if loadedCount > 0 {
		log.Printf("Loaded %d persisted sessions from storage", loadedCount)
	}
	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	errorCount := 0
	for _, session := range m.List() {
		if err := m.persistence.Save(session); err != nil {
			log.Printf("Warning: Failed to save session %s: %v", session.ID, err)
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}
	return nil
}
