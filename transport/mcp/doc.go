// Package mcp exposes the micromouse server to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST API
// and the JSON response is rendered as text for the agent.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - explore, replay, reset_knowledge
//   - knowledge, describe_cell
//   - list_mazes, list_strategies, maze_history
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode, mounted next to the REST API
//	router.PathPrefix("/mcp").Handler(server.NewStreamableHTTPServer(client.GetMCPServer()))
package mcp
