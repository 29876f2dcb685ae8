// Package service provides the business logic layer for the micromouse server.
//
// The service package implements:
//   - Multi-session mouse management, one simulated mouse per session
//   - Exploration and replay runs driven by the navigation engine
//   - Maze configuration listing, loading and saving
//   - Pass history through an optional HistoryStore
//
// Core Interfaces:
//
// MazeService is the main service interface used by the HTTP, WebSocket and
// MCP transports. SessionManager stores sessions and ConfigManager loads
// maze layouts. HistoryStore and EventSink are optional.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewMazeService(sessionMgr, configMgr,
//		service.WithHistory(store), service.WithEventSink(hub))
//
//	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{Maze: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := svc.Explore(ctx, info.ID, 3)
//
// Each session owns its own simulator and engine, so sessions never share
// knowledge. Calls are serialised by the service.
package service
