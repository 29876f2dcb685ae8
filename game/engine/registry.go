package engine

import "sort"

// PathRegistry keeps the most recent path discovered for each path length.
type PathRegistry struct {
	paths map[int]Path
}

func NewPathRegistry() *PathRegistry {
	return &PathRegistry{paths: make(map[int]Path)}
}

// Record stores a copy of p under its length, replacing any path of the same length.
// Empty paths are ignored. It returns the length used as key.
func (r *PathRegistry) Record(p Path) int {
	if len(p) == 0 {
		return 0
	}
	r.paths[len(p)] = append(Path(nil), p...)
	return len(p)
}

// Best returns the shortest recorded path.
func (r *PathRegistry) Best() (Path, bool) {
	lengths := r.Lengths()
	if len(lengths) == 0 {
		return nil, false
	}
	return append(Path(nil), r.paths[lengths[0]]...), true
}

// Lengths returns the recorded lengths in ascending order.
func (r *PathRegistry) Lengths() []int {
	out := make([]int, 0, len(r.paths))
	for n := range r.paths {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (r *PathRegistry) Len() int { return len(r.paths) }

// Snapshot returns every recorded path ordered by length.
func (r *PathRegistry) Snapshot() []Path {
	out := make([]Path, 0, len(r.paths))
	for _, n := range r.Lengths() {
		out = append(out, append(Path(nil), r.paths[n]...))
	}
	return out
}
