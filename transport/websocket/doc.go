// Package websocket streams live run events to browser viewers.
//
// A central Hub keeps the connections of each session. The service layer calls
// Hub.BroadcastEvent for every engine event (pass started, wall sensed, mouse
// moved, pass completed, replay) and the hub fans the JSON message out to the
// clients watching that session:
//
//	{"session_id": "a1b2", "event": "moved", "data": {...}, "time": "..."}
//
// Clients connect to /ws?session=<id> and only listen. Each connection has a
// read pump that answers pings and a write pump that sends one message per frame.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	svc := service.NewMazeService(sessions, configs, service.WithEventSink(hub))
package websocket
