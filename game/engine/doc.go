// Package engine implements micromouse navigation: discovering a short route from
// the corner of an unknown grid maze to its centre using only local wall sensing
// and physical moves.
//
// The engine includes:
//   - WallModel, directional wall knowledge with explicit unknown edges
//   - Translator, which turns absolute cell targets into turn and move commands
//   - FloodField, the distance-to-goal estimate relaxed as walls are found
//   - Four interchangeable strategies: flood fill, A*, breadth-first, depth-first
//   - Simplify and PathRegistry, which keep the shortest loop-free route found
//   - Controller, which runs passes and replays the best route
//
// Core Types:
//
// Mouse is the only way the engine touches the robot. Every sensor read and
// move is a blocking call, so strategies never teleport: the tree searches walk
// back through the deepest common ancestor when they switch branches.
// Knowledge held by an Engine persists across passes; the pose does not.
//
// Usage:
//
//	eng, err := engine.New(mouse)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctrl, err := engine.NewControllerFromConfig(eng, engine.Config{Strategy: "astar", Passes: 5})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := ctrl.Run(context.Background())
//
// Coordinates:
//
// Cells are (X, Y) with the origin at (0,0) facing East. North is -X, South is +X,
// East is +Y and West is -Y. The goal region is the centre of the grid: 2x2 cells
// when both dimensions are even.
package engine
