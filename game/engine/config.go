package engine

import (
	"fmt"
	"strings"
)

// Config gathers every knob of a navigation run. The zero value is valid and
// selects flood fill, five passes and the reset return policy.
type Config struct {
	Strategy           string       `json:"strategy"`
	Heuristic          string       `json:"heuristic,omitempty"`
	Weight             float64      `json:"weight,omitempty"`
	Passes             int          `json:"passes"`
	Return             ReturnPolicy `json:"return"`
	ContinueAfterCrash bool         `json:"continue_after_crash,omitempty"`
	Paint              bool         `json:"paint,omitempty"`
}

// Validate normalises names and fills defaults.
func (c *Config) Validate() error {
	c.Strategy = strings.ToLower(strings.TrimSpace(c.Strategy))
	if c.Strategy == "" {
		c.Strategy = StrategyFloodFill
	}
	c.Heuristic = strings.ToLower(strings.TrimSpace(c.Heuristic))

	if c.Strategy == StrategyAStar {
		a, err := newAStar(c.Heuristic, c.Weight)
		if err != nil {
			return err
		}
		c.Heuristic, c.Weight = a.name, a.weight
	} else if _, err := NewStrategy(c.Strategy, StrategyOptions{}); err != nil {
		return err
	}

	run := c.RunOptions()
	if err := run.Validate(); err != nil {
		return err
	}
	c.Passes, c.Return = run.Passes, run.Return
	return nil
}

func (c Config) StrategyOptions() StrategyOptions {
	return StrategyOptions{Heuristic: c.Heuristic, Weight: c.Weight}
}

func (c Config) RunOptions() RunOptions {
	return RunOptions{Passes: c.Passes, Return: c.Return, ContinueAfterCrash: c.ContinueAfterCrash}
}

// Describe is a one-line summary used in logs.
func (c Config) Describe() string {
	if c.Strategy == StrategyAStar {
		return fmt.Sprintf("%s(%s x%g) passes=%d return=%s", c.Strategy, c.Heuristic, c.Weight, c.Passes, c.Return)
	}
	return fmt.Sprintf("%s passes=%d return=%s", c.Strategy, c.Passes, c.Return)
}

// NewControllerFromConfig validates cfg and builds the matching strategy and controller.
func NewControllerFromConfig(e *Engine, cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := NewStrategy(cfg.Strategy, cfg.StrategyOptions())
	if err != nil {
		return nil, err
	}
	return NewController(e, s, cfg.RunOptions())
}
