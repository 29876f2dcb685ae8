package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ReturnPolicy decides how the mouse gets back to the origin between passes.
type ReturnPolicy string

const (
	// ReturnReset acknowledges the simulator reset, which teleports the mouse home.
	ReturnReset ReturnPolicy = "reset"
	// ReturnDrive drives the pass's path backwards and turns to face InitialFacing.
	ReturnDrive ReturnPolicy = "drive"
)

// MaxPasses bounds the number of passes a single run may request.
const MaxPasses = 100

// RunOptions configures a Controller.
type RunOptions struct {
	Passes             int          `json:"passes"`
	Return             ReturnPolicy `json:"return"`
	ContinueAfterCrash bool         `json:"continue_after_crash"`
}

// Validate fills defaults and rejects out-of-range values.
func (o *RunOptions) Validate() error {
	if o.Passes == 0 {
		o.Passes = DefaultPasses
	}
	if o.Passes < 1 || o.Passes > MaxPasses {
		return fmt.Errorf("%w: passes must be between 1 and %d, got %d", ErrInvalidOptions, MaxPasses, o.Passes)
	}
	switch o.Return {
	case "":
		o.Return = ReturnReset
	case ReturnReset, ReturnDrive:
	default:
		return fmt.Errorf("%w: unknown return policy %q", ErrInvalidOptions, o.Return)
	}
	return nil
}

// Controller runs exploration passes on an Engine and replays the best result.
type Controller struct {
	engine   *Engine
	strategy Strategy
	opts     RunOptions
}

// NewController validates opts and binds a strategy to an engine.
func NewController(e *Engine, s Strategy, opts RunOptions) (*Controller, error) {
	if e == nil || s == nil {
		return nil, fmt.Errorf("%w: engine and strategy are required", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Controller{engine: e, strategy: s, opts: opts}, nil
}

func (c *Controller) Options() RunOptions { return c.opts }

// Explore runs up to passes passes (the configured count when passes <= 0). The mouse
// is brought to the origin before the first pass and after every pass. The context is checked between passes.
func (c *Controller) Explore(ctx context.Context, passes int) (*RunReport, error) {
	if passes <= 0 {
		passes = c.opts.Passes
	}
	if passes > MaxPasses {
		return nil, fmt.Errorf("%w: passes must be at most %d", ErrInvalidOptions, MaxPasses)
	}

	if err := c.ensureHome(); err != nil {
		return nil, err
	}

	report := &RunReport{Strategy: c.strategy.Name()}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	for i := 0; i < passes; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		pass, err := c.engine.RunPass(c.strategy)
		report.Passes = append(report.Passes, pass)
		if err != nil {
			if !c.opts.ContinueAfterCrash || !errors.Is(err, ErrCrashed) {
				return report, fmt.Errorf("pass %d failed: %w", pass.Pass, err)
			}
			if err := c.returnHome(nil); err != nil {
				return report, err
			}
			continue
		}
		if err := c.returnHome(pass.Path); err != nil {
			return report, err
		}
	}
	report.Best, _ = c.engine.Best()
	return report, nil
}

// ReplayBest returns the mouse to the origin and drives the shortest recorded path.
func (c *Controller) ReplayBest(ctx context.Context) (Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	best, ok := c.engine.Best()
	if !ok {
		return nil, ErrNoBestPath
	}
	if err := c.ensureHome(); err != nil {
		return nil, err
	}
	c.engine.logger.Printf("engine: replaying best path of length %d", len(best))
	start := time.Now()
	if err := c.engine.Replay(best); err != nil {
		return nil, fmt.Errorf("replay failed: %w", err)
	}
	c.engine.logger.Printf("engine: replay took %s", time.Since(start))
	return best, nil
}

// Run explores the configured number of passes and then replays the best path.
func (c *Controller) Run(ctx context.Context) (*RunReport, error) {
	report, err := c.Explore(ctx, c.opts.Passes)
	if err != nil {
		return report, err
	}
	if _, err := c.ReplayBest(ctx); err != nil {
		return report, err
	}
	report.Replayed = true
	return report, nil
}

// ensureHome returns the mouse to the origin when an earlier run left it elsewhere,
// typically at the goal after a replay.
func (c *Controller) ensureHome() error {
	st := c.engine.State()
	if st.Cell == Origin && st.Facing == InitialFacing {
		return nil
	}
	best, _ := c.engine.Best()
	if len(best) == 0 || best[len(best)-1] != st.Cell {
		best = nil
	}
	return c.returnHome(best)
}

// returnHome brings the mouse back to the origin. Driving needs a path from the
// origin to the current cell; without one the simulator reset is used instead.
func (c *Controller) returnHome(path Path) error {
	if c.opts.Return == ReturnDrive && len(path) > 0 {
		if err := c.engine.ReturnToStart(path); err != nil {
			return fmt.Errorf("failed to drive back to start: %w", err)
		}
		return nil
	}
	if err := c.engine.mouse.AckReset(); err != nil {
		return fmt.Errorf("failed to acknowledge reset: %w", err)
	}
	c.engine.ResetPose()
	return nil
}
