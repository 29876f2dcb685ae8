package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Strategy names
const (
	StrategyFloodFill = "floodfill"
	StrategyAStar     = "astar"
	StrategyBFS       = "bfs"
	StrategyDFS       = "dfs"
)

// Strategy is an online search that drives the mouse from its current cell to the goal.
type Strategy interface {
	Name() string
	explore(h *harness) (Path, error)
}

// StrategyOptions tunes strategy construction. Heuristic settings apply to A* only.
type StrategyOptions struct {
	Heuristic string  `json:"heuristic,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
}

// NewStrategy builds a strategy by name.
func NewStrategy(name string, opts StrategyOptions) (Strategy, error) {
	switch name {
	case StrategyFloodFill, "":
		return floodFill{}, nil
	case StrategyAStar:
		return newAStar(opts.Heuristic, opts.Weight)
	case StrategyBFS:
		return newBFS(), nil
	case StrategyDFS:
		return newDFS(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Strategies lists the available strategy names.
func Strategies() []string {
	names := []string{StrategyFloodFill, StrategyAStar, StrategyBFS, StrategyDFS}
	sort.Strings(names)
	return names
}

// Event types emitted to an Observer
const (
	EventPassStarted     = "pass_started"
	EventSensed          = "sensed"
	EventMoved           = "moved"
	EventPassCompleted   = "pass_completed"
	EventPassAborted     = "pass_aborted"
	EventReplayStarted   = "replay_started"
	EventReplayCompleted = "replay_completed"
)

// Event describes something the engine did.
type Event struct {
	Type     string      `json:"type"`
	Pass     int         `json:"pass,omitempty"`
	Strategy string      `json:"strategy,omitempty"`
	Cell     Cell        `json:"cell"`
	Facing   Orientation `json:"facing"`
	Blocked  []Cell      `json:"blocked,omitempty"`
	Path     Path        `json:"path,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Observer receives engine events synchronously.
type Observer func(Event)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver registers a callback for engine events.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithPaint colours explored and replayed cells when the mouse supports Display.
func WithPaint(enabled bool) Option {
	return func(e *Engine) { e.paintOn = enabled }
}

// Engine owns the knowledge gathered about one maze: walls, flood field and
// discovered paths. Knowledge outlives passes; the pose resets between them.
// An Engine is not safe for concurrent use.
type Engine struct {
	mouse    Mouse
	display  Display
	grid     *Grid
	walls    *WallModel
	flood    *FloodField
	move     *Translator
	registry *PathRegistry

	logger   *log.Logger
	observer Observer
	paintOn  bool
	passes   int
}

// New queries the maze dimensions from the mouse and prepares empty knowledge.
func New(m Mouse, opts ...Option) (*Engine, error) {
	width, err := m.MazeWidth()
	if err != nil {
		return nil, fmt.Errorf("failed to read maze width: %w", err)
	}
	height, err := m.MazeHeight()
	if err != nil {
		return nil, fmt.Errorf("failed to read maze height: %w", err)
	}
	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		mouse:    m,
		grid:     grid,
		walls:    NewWallModel(grid),
		flood:    NewFloodField(grid),
		registry: NewPathRegistry(),
		logger:   log.Default(),
	}
	if d, ok := m.(Display); ok {
		e.display = d
	}
	for _, opt := range opts {
		opt(e)
	}
	e.move = NewTranslator(m, grid, e.walls, e.logger)
	return e, nil
}

func (e *Engine) Grid() *Grid             { return e.grid }
func (e *Engine) Walls() *WallModel       { return e.walls }
func (e *Engine) Flood() *FloodField      { return e.flood }
func (e *Engine) Registry() *PathRegistry { return e.registry }
func (e *Engine) Translator() *Translator { return e.move }
func (e *Engine) State() RunState         { return e.move.State() }
func (e *Engine) SetObserver(o Observer)  { e.observer = o }
func (e *Engine) Best() (Path, bool)      { return e.registry.Best() }
func (e *Engine) PassesRun() int          { return e.passes }

// RunPass explores from the current pose to the goal with s and records the
// loop-free path on success. Failures return the partial report and the error.
func (e *Engine) RunPass(s Strategy) (*PassReport, error) {
	e.passes++
	report := &PassReport{
		ID:       uuid.NewString(),
		Pass:     e.passes,
		Strategy: s.Name(),
	}
	h := newHarness(e, report.Pass)
	e.emit(Event{Type: EventPassStarted, Pass: report.Pass, Strategy: s.Name(), Cell: h.position(), Facing: h.facing()})
	e.logger.Printf("engine: pass %d (%s) starting at %v", report.Pass, s.Name(), h.position())

	start := time.Now()
	path, err := s.explore(h)
	report.Duration = time.Since(start)
	report.Raw = h.trace
	report.Moves = len(h.trace) - 1

	if err != nil {
		report.Aborted = true
		report.Error = err.Error()
		e.emit(Event{Type: EventPassAborted, Pass: report.Pass, Strategy: s.Name(), Cell: h.position(), Facing: h.facing(), Error: err.Error()})
		e.logger.Printf("engine: pass %d aborted after %d moves: %v", report.Pass, report.Moves, err)
		return report, err
	}

	report.Path = Simplify(path)
	e.registry.Record(report.Path)
	e.emit(Event{Type: EventPassCompleted, Pass: report.Pass, Strategy: s.Name(), Cell: h.position(), Facing: h.facing(), Path: report.Path})
	e.logger.Printf("engine: pass %d reached %v in %d moves, path length %d, took %s",
		report.Pass, h.position(), report.Moves, len(report.Path), report.Duration)
	return report, nil
}

// Replay resets the pose and drives p without sensing or searching.
func (e *Engine) Replay(p Path) error {
	if len(p) == 0 {
		return ErrNoBestPath
	}
	e.move.Reset()
	e.emit(Event{Type: EventReplayStarted, Cell: e.State().Cell, Facing: e.State().Facing, Path: p})
	for _, c := range p {
		e.paint(c, ColorDarkYellow)
		if _, err := e.move.MoveTo(c); err != nil {
			return err
		}
		e.emit(Event{Type: EventMoved, Cell: c, Facing: e.State().Facing})
	}
	e.emit(Event{Type: EventReplayCompleted, Cell: e.State().Cell, Facing: e.State().Facing, Path: p})
	return nil
}

// ReturnToStart retraces p backwards from its last cell and turns to the initial facing.
func (e *Engine) ReturnToStart(p Path) error {
	if e.State().Cell == Origin {
		return e.move.Face(InitialFacing)
	}
	if len(p) == 0 || p[len(p)-1] != e.State().Cell {
		return fmt.Errorf("%w: mouse at %v is not at the end of the path", ErrNoRoute, e.State().Cell)
	}
	for _, c := range p.Reversed() {
		if _, err := e.move.MoveTo(c); err != nil {
			return err
		}
	}
	if e.State().Cell != Origin {
		return fmt.Errorf("%w: return stopped at %v", ErrNoRoute, e.State().Cell)
	}
	return e.move.Face(InitialFacing)
}

// ResetPose poses the engine at the origin without moving the mouse.
func (e *Engine) ResetPose() {
	e.move.Reset()
}

// Knowledge is a serialisable snapshot of everything an Engine has learned.
type Knowledge struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Walls  []CellWalls `json:"walls,omitempty"`
	Flood  [][]int     `json:"flood"`
	Paths  []Path      `json:"paths,omitempty"`
	Passes int         `json:"passes"`
}

// Snapshot captures the engine's knowledge.
func (e *Engine) Snapshot() *Knowledge {
	return &Knowledge{
		Width:  e.grid.Width(),
		Height: e.grid.Height(),
		Walls:  e.walls.Snapshot(),
		Flood:  e.flood.Rows(),
		Paths:  e.registry.Snapshot(),
		Passes: e.passes,
	}
}

// Restore replaces the engine's knowledge with k. The dimensions must match.
func (e *Engine) Restore(k *Knowledge) error {
	if k == nil {
		return errors.New("knowledge cannot be nil")
	}
	if k.Width != e.grid.Width() || k.Height != e.grid.Height() {
		return fmt.Errorf("%w: snapshot is %dx%d, maze is %dx%d",
			ErrInvalidDimensions, k.Width, k.Height, e.grid.Width(), e.grid.Height())
	}
	e.walls.restore(k.Walls)
	e.flood = NewFloodField(e.grid)
	e.flood.restore(k.Flood)
	e.registry = NewPathRegistry()
	for _, p := range k.Paths {
		e.registry.Record(p)
	}
	e.passes = k.Passes
	return nil
}

// Forget discards all knowledge and resets the pose.
func (e *Engine) Forget() {
	e.walls.restore(nil)
	e.flood = NewFloodField(e.grid)
	e.registry = NewPathRegistry()
	e.passes = 0
	e.move.Reset()
}

func (e *Engine) emit(ev Event) {
	if e.observer != nil {
		e.observer(ev)
	}
}

func (e *Engine) paint(c Cell, color Color) {
	if !e.paintOn || e.display == nil {
		return
	}
	if err := e.display.SetColor(c, color); err != nil {
		e.logger.Printf("engine: failed to colour %v: %v", c, err)
	}
}
