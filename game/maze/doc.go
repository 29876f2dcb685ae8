// Package maze provides fully known mazes and a simulated mouse that drives them.
//
// Mazes are stored as JSON configs whose layout is ASCII art:
//
//	+---+---+---+
//	|           |
//	+   +---+   +
//	|   |       |
//	+---+---+---+
//
// A width x height maze has 2*width+1 lines of 4*height+1 characters. Line 2x holds
// the north edges of row x, line 2x+1 holds its west and east walls. The origin is
// the top-left cell and the goal region is the centre.
//
// Usage:
//
//	cfg, err := maze.LoadConfigByName("configs", "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	m, err := maze.Parse(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sim := maze.NewSimulator(m)
//	eng, err := engine.New(sim)
//
// Generate builds random perfect mazes with Wilson's algorithm for tests and new configs.
package maze
