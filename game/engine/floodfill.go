package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// floodFill descends the flood field greedily, re-flooding whenever the field
// stops pointing at a reachable lower cell.
type floodFill struct{}

func (floodFill) Name() string { return StrategyFloodFill }

func (s floodFill) explore(h *harness) (Path, error) {
	e := h.e
	for !e.flood.Solved(h.position()) {
		if err := h.sense(); err != nil {
			return nil, err
		}
		next, err := s.decide(h, h.position(), mapset.New[Cell]())
		if err != nil {
			return nil, err
		}
		if err := h.step(next); err != nil {
			return nil, err
		}
	}
	return Path(h.trace), nil
}

// decide picks the neighbour to move to next.
func (s floodFill) decide(h *harness, cur Cell, ignore mapset.Set[Cell]) (Cell, error) {
	e := h.e
	for {
		var candidates []Cell
		for _, n := range e.grid.Neighbors(cur) {
			if !ignore.Has(n) {
				candidates = append(candidates, n)
			}
		}
		if len(candidates) == 0 {
			return Cell{}, fmt.Errorf("%w at %v", ErrNoRoute, cur)
		}

		next := candidates[0]
		lowest := e.flood.Value(next)
		for _, n := range candidates[1:] {
			if v := e.flood.Value(n); v < lowest {
				next, lowest = n, v
			}
		}
		ahead := cur.Step(h.facing())
		for _, n := range candidates {
			if n == ahead && e.flood.Value(n) == lowest {
				next = n
				break
			}
		}

		if e.walls.Blocked(cur, next) {
			if _, err := e.flood.Relax(cur, e.walls); err != nil {
				return Cell{}, err
			}
			ignore.Put(next)
			continue
		}
		if e.flood.Value(cur) <= lowest {
			if _, err := e.flood.Relax(cur, e.walls); err != nil {
				return Cell{}, err
			}
			continue
		}
		return next, nil
	}
}
