package engine

// Simplify removes loops from a visitation list. Whenever a cell reappears later in
// the list, everything from its first to its last occurrence collapses onto that
// last occurrence. The result keeps the first and last cells of steps, contains no
// duplicates and is a subsequence of steps.
func Simplify(steps []Cell) Path {
	last := make(map[Cell]int, len(steps))
	for i, c := range steps {
		last[c] = i
	}

	out := make(Path, 0, len(steps))
	for i := 0; i < len(steps); i++ {
		i = last[steps[i]]
		out = append(out, steps[i])
	}
	return out
}
