package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/service"
)

var (
	ErrConfigNotFound = errors.New("maze configuration not found")
	ErrInvalidConfig  = errors.New("invalid maze configuration")
)

// DefaultMaze is loaded as the default when present.
const DefaultMaze = "classic"

// Manager handles maze configuration loading and caching
type Manager struct {
	configDir   string
	defaultName string
	defaultCfg  *maze.Config
	configs     map[string]*maze.Config
	mu          sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*maze.Config),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a maze configuration by name (the file name without .json)
func (m *Manager) LoadConfig(name string) (*maze.Config, error) {
	name = strings.TrimSuffix(name, ".json")
	if err := checkName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if cfg, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return cfg, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cfg, exists := m.configs[name]; exists {
		return cfg, nil
	}

	data, err := os.ReadFile(m.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg maze.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, name, err)
	}
	if err := maze.ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	m.configs[name] = &cfg
	return &cfg, nil
}

// ListConfigs returns information about all valid configurations, sorted by name
func (m *Manager) ListConfigs() ([]*service.MazeInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var infos []*service.MazeInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")

		cfg, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid configs
			continue
		}
		info, err := Describe(name, cfg)
		if err != nil {
			continue
		}
		info.Filename = entry.Name()
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ConfigID < infos[j].ConfigID })
	return infos, nil
}

// Describe summarises a maze configuration.
func Describe(name string, cfg *maze.Config) (*service.MazeInfo, error) {
	mz, err := maze.Parse(cfg)
	if err != nil {
		return nil, err
	}
	shortest, err := mz.ShortestPath()
	if err != nil {
		return nil, err
	}
	return &service.MazeInfo{
		Filename:     name + ".json",
		ConfigID:     name,
		Name:         cfg.Name,
		Description:  cfg.Description,
		Width:        cfg.Width,
		Height:       cfg.Height,
		ShortestPath: len(shortest),
		DeadEnds:     mz.DeadEnds(),
	}, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *maze.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultCfg
}

// DefaultName returns the identifier of the default configuration
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	cfg, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName, m.defaultCfg = name, cfg
	return nil
}

// RefreshCache drops cached configurations and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*maze.Config)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default configuration, falling back to the first
// valid config and finally to a small open maze.
func (m *Manager) loadDefaultConfig() error {
	name := DefaultMaze
	cfg, err := m.LoadConfig(name)
	if err != nil {
		infos, listErr := m.ListConfigs()
		if listErr != nil || len(infos) == 0 {
			name, cfg = "default", minimalConfig()
		} else {
			name = infos[0].ConfigID
			if cfg, err = m.LoadConfig(name); err != nil {
				name, cfg = "default", minimalConfig()
			}
		}
	}

	m.mu.Lock()
	m.defaultName, m.defaultCfg = name, cfg
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a configuration and writes it to disk
func (m *Manager) SaveConfig(name string, cfg *maze.Config) error {
	name = strings.TrimSuffix(name, ".json")
	if err := checkName(name); err != nil {
		return err
	}
	if err := maze.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = cfg
	m.mu.Unlock()

	return nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.configDir, name+".json")
}

// checkName rejects names that would escape the config directory.
func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: bad name %q", ErrConfigNotFound, name)
	}
	return nil
}

// minimalConfig is an open 4x4 maze used when no configs are available.
func minimalConfig() *maze.Config {
	m, _ := maze.New(4, 4)
	return m.ToConfig("default", "Open 4x4 maze used when no configurations are available")
}
