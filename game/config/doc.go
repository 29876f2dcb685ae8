// Package config manages the maze configurations stored as JSON files.
//
// Each file in the configs directory holds one maze.Config. The file name without
// its .json extension is the maze's identifier. Configs are validated on load and
// cached; invalid files are skipped when listing.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := manager.LoadConfig("spiral")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// classic, or the first valid config when classic is missing
//	def := manager.GetDefault()
//
//	mazes, err := manager.ListConfigs()
package config
