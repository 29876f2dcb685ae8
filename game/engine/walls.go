package engine

// EdgeState is the knowledge about one side of a cell.
type EdgeState uint8

const (
	EdgeUnknown EdgeState = iota
	EdgeOpen
	EdgeBlocked
)

func (s EdgeState) String() string {
	switch s {
	case EdgeOpen:
		return "open"
	case EdgeBlocked:
		return "blocked"
	}
	return "unknown"
}

// WallModel is the mouse's knowledge of walls, stored per cell and per absolute side.
// Knowledge is directional: a wall seen leaving A toward B says nothing about B toward A.
type WallModel struct {
	grid  *Grid
	edges [][4]EdgeState
}

// NewWallModel returns a model with every edge unknown.
func NewWallModel(g *Grid) *WallModel {
	return &WallModel{
		grid:  g,
		edges: make([][4]EdgeState, g.Size()),
	}
}

// Record stores sensor readings taken at cur while facing the given orientation.
// Readings toward out-of-bounds neighbours are dropped and edges already known are
// left as they are. It reports whether anything changed.
func (w *WallModel) Record(cur Cell, facing Orientation, left, right, front bool) bool {
	changed := false
	readings := [...]struct {
		side    Orientation
		blocked bool
	}{
		{facing.Left(), left},
		{facing, front},
		{facing.Right(), right},
	}
	idx := w.grid.Index(cur)
	for _, r := range readings {
		if !w.grid.InBounds(cur.Step(r.side)) {
			continue
		}
		if w.edges[idx][r.side] != EdgeUnknown {
			continue
		}
		if r.blocked {
			w.edges[idx][r.side] = EdgeBlocked
		} else {
			w.edges[idx][r.side] = EdgeOpen
		}
		changed = true
	}
	return changed
}

// MarkBlocked records a single blocked edge. It is used when restoring snapshots.
func (w *WallModel) MarkBlocked(from, to Cell) bool {
	o, ok := DirectionBetween(from, to)
	if !ok || !w.grid.InBounds(from) || !w.grid.InBounds(to) {
		return false
	}
	w.edges[w.grid.Index(from)][o] = EdgeBlocked
	return true
}

// Edge returns the knowledge about side o of c.
func (w *WallModel) Edge(c Cell, o Orientation) EdgeState {
	return w.edges[w.grid.Index(c)][o.normalize()]
}

// Blocked reports whether a wall is recorded from `from` toward the adjacent cell `to`.
func (w *WallModel) Blocked(from, to Cell) bool {
	o, ok := DirectionBetween(from, to)
	if !ok || !w.grid.InBounds(from) {
		return false
	}
	return w.edges[w.grid.Index(from)][o] == EdgeBlocked
}

// HasRecord reports whether at least one blocked neighbour is recorded for c.
func (w *WallModel) HasRecord(c Cell) bool {
	for _, s := range w.edges[w.grid.Index(c)] {
		if s == EdgeBlocked {
			return true
		}
	}
	return false
}

// BlockedFrom lists the recorded blocked neighbours of c in scan order.
func (w *WallModel) BlockedFrom(c Cell) []Cell {
	var out []Cell
	for _, n := range w.grid.Neighbors(c) {
		if w.Blocked(c, n) {
			out = append(out, n)
		}
	}
	return out
}

// Open lists the neighbours of c not known to be blocked, in scan order.
func (w *WallModel) Open(c Cell) []Cell {
	adj := w.grid.Neighbors(c)
	out := make([]Cell, 0, len(adj))
	for _, n := range adj {
		if !w.Blocked(c, n) {
			out = append(out, n)
		}
	}
	return out
}

// Known counts the edges that are no longer unknown.
func (w *WallModel) Known() int {
	n := 0
	for _, sides := range w.edges {
		for _, s := range sides {
			if s != EdgeUnknown {
				n++
			}
		}
	}
	return n
}

// CellWalls is the serialisable wall record of one cell.
type CellWalls struct {
	Cell    Cell   `json:"cell"`
	Blocked []Cell `json:"blocked,omitempty"`
	Open    []Cell `json:"open,omitempty"`
}

// Snapshot lists every cell with at least one known edge.
func (w *WallModel) Snapshot() []CellWalls {
	var out []CellWalls
	for i, sides := range w.edges {
		c := w.grid.CellAt(i)
		var rec CellWalls
		for _, o := range scanOrder {
			switch sides[o] {
			case EdgeBlocked:
				rec.Blocked = append(rec.Blocked, c.Step(o))
			case EdgeOpen:
				rec.Open = append(rec.Open, c.Step(o))
			}
		}
		if rec.Blocked != nil || rec.Open != nil {
			rec.Cell = c
			out = append(out, rec)
		}
	}
	return out
}

// restore replaces the model's contents with a snapshot, ignoring invalid entries.
func (w *WallModel) restore(records []CellWalls) {
	w.edges = make([][4]EdgeState, w.grid.Size())
	for _, rec := range records {
		if !w.grid.InBounds(rec.Cell) {
			continue
		}
		for _, n := range rec.Blocked {
			w.MarkBlocked(rec.Cell, n)
		}
		for _, n := range rec.Open {
			if o, ok := DirectionBetween(rec.Cell, n); ok && w.grid.InBounds(n) {
				w.edges[w.grid.Index(rec.Cell)][o] = EdgeOpen
			}
		}
	}
}
