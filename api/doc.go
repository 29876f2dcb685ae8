// Package api provides the HTTP REST API of the micromouse server.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                     create a session {"maze": "classic", "settings": {...}}
//   - GET    /api/sessions                     list sessions (?sort=created|accessed&order=asc|desc&limit=&maze=)
//   - GET    /api/sessions/{id}                session summary with pose, best path and board
//   - DELETE /api/sessions/{id}                delete a session
//
// Runs:
//   - POST /api/sessions/{id}/explore          run passes {"passes": 3}
//   - POST /api/sessions/{id}/replay           drive the best known path
//   - POST /api/sessions/{id}/reset            forget all knowledge
//
// Knowledge:
//   - GET /api/sessions/{id}/knowledge         walls, flood field and recorded paths
//   - GET /api/sessions/{id}/cells/{x}/{y}     what the mouse knows about one cell
//
// Mazes:
//   - GET  /api/mazes                          list maze configurations
//   - POST /api/mazes                          save a maze configuration
//   - POST /api/mazes/generate                 generate and save a perfect maze
//   - GET  /api/mazes/{name}                   load a maze configuration
//   - GET  /api/mazes/{name}/history           stored pass results (?strategy=&limit=)
//   - GET  /api/strategies                     exploration strategies and heuristics
//
// Live events are streamed on /ws?session={id}.
//
// Errors are returned as JSON with an HTTP status derived from the error:
//
//	{"error": "session not found: a1b2"}
//
// A pass that crashes does not fail the explore request. The response carries
// the passes run so far and an "error" field.
package api
