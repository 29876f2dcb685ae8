// Package session keeps mouse sessions: one simulated mouse in one maze together
// with the knowledge its engine has gathered.
//
// Manager stores sessions in memory under case-insensitive 4-character IDs and
// optionally writes them through a SessionPersistence. Two backends exist:
// FilePersistence writes one JSON file per session and RedisPersistence stores
// them in Redis so several servers can share sessions. The stored form keeps the
// maze layout, the run settings and the engine's knowledge (walls, flood values and
// discovered paths); a restored session starts with its mouse at the origin.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", "classic", cfg, engine.Config{Strategy: "astar"})
package session
