package maze

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
)

// Config is a maze definition as stored in the configs directory.
type Config struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Layout      []string `json:"layout"`
}

var (
	ErrInvalidConfig = errors.New("invalid maze config")
	ErrConfigMissing = errors.New("maze config not found")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// ValidateConfig checks the metadata, the layout drawing and that the goal can be
// reached from the origin.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return invalid("config is nil")
	}
	if cfg.Name == "" {
		return invalid("name is required")
	}
	if cfg.Description == "" {
		return invalid("description is required")
	}
	if cfg.Width < engine.MinMazeSize || cfg.Width > engine.MaxMazeSize {
		return invalid("width must be between %d and %d, got %d", engine.MinMazeSize, engine.MaxMazeSize, cfg.Width)
	}
	if cfg.Height < engine.MinMazeSize || cfg.Height > engine.MaxMazeSize {
		return invalid("height must be between %d and %d, got %d", engine.MinMazeSize, engine.MaxMazeSize, cfg.Height)
	}

	m, err := parseLayout(cfg)
	if err != nil {
		return err
	}
	if _, err := m.ShortestPath(); err != nil {
		return invalid("goal region is not reachable from (0,0)")
	}
	return nil
}

// Parse validates cfg and builds the maze it describes.
func Parse(cfg *Config) (*Maze, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return parseLayout(cfg)
}

func parseLayout(cfg *Config) (*Maze, error) {
	wantLines, wantCols := 2*cfg.Width+1, 4*cfg.Height+1
	if len(cfg.Layout) != wantLines {
		return nil, invalid("layout must have %d lines for width %d, got %d", wantLines, cfg.Width, len(cfg.Layout))
	}
	for i, line := range cfg.Layout {
		if len(line) != wantCols {
			return nil, invalid("layout line %d must have %d characters for height %d, got %d", i+1, wantCols, cfg.Height, len(line))
		}
	}

	m, err := New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	for i, line := range cfg.Layout {
		for j := 0; j < len(line); j++ {
			ch := line[j]
			switch {
			case i%2 == 0 && j%4 == 0:
				if ch != '+' {
					return nil, invalid("expected '+' at line %d, column %d, got %q", i+1, j+1, ch)
				}
			case i%2 == 0:
				if ch != '-' && ch != ' ' {
					return nil, invalid("invalid character %q at line %d, column %d", ch, i+1, j+1)
				}
			case j%4 == 0:
				if ch != '|' && ch != ' ' {
					return nil, invalid("invalid character %q at line %d, column %d", ch, i+1, j+1)
				}
			}
		}
	}

	for x := 0; x < cfg.Width; x++ {
		top, row, bottom := cfg.Layout[2*x], cfg.Layout[2*x+1], cfg.Layout[2*x+2]
		for y := 0; y < cfg.Height; y++ {
			c := engine.Cell{X: x, Y: y}
			north, south := top[4*y+2] == '-', bottom[4*y+2] == '-'
			west, east := row[4*y] == '|', row[4*y+4] == '|'
			if !m.InBounds(c.Step(engine.North)) && !north ||
				!m.InBounds(c.Step(engine.South)) && !south ||
				!m.InBounds(c.Step(engine.West)) && !west ||
				!m.InBounds(c.Step(engine.East)) && !east {
				return nil, invalid("outer boundary is open at cell (%d,%d)", x, y)
			}
			if south {
				m.SetWall(c, engine.South, true)
			}
			if east {
				m.SetWall(c, engine.East, true)
			}
		}
	}
	return m, nil
}

// ToConfig describes the maze as a config.
func (m *Maze) ToConfig(name, description string) *Config {
	return &Config{
		Name:        name,
		Description: description,
		Width:       m.width,
		Height:      m.height,
		Layout:      m.Render(),
	}
}

// LoadConfig reads and validates a maze config file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, filename)
		}
		return nil, fmt.Errorf("failed to read maze config '%s': %w", filename, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse maze config '%s': %w", filename, err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid maze config '%s': %w", filename, err)
	}
	return &cfg, nil
}

// LoadConfigByName loads <dir>/<name>.json.
func LoadConfigByName(dir, name string) (*Config, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return LoadConfig(filepath.Join(dir, name))
}
