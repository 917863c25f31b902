// Package websocket pushes Valor Lanes state to browsers and bots.
//
// A single Hub owns every connection. Clients join a session with
// /ws?session=<id> and then only listen: each accepted action, reset or
// deletion on that session is broadcast to them as JSON.
//
// Message Protocol:
//
//	{"session_id": "a1b2", "event": "state_update",
//	 "game_state": {...snapshot and threat level...},
//	 "events": [...history entries produced by the action...]}
//
// Other events are "game_reset" and "session_deleted".
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	// inside an HTTP handler
//	hub.ServeWS(w, r, sessionID)
//
//	// after an action
//	hub.BroadcastToSession(sessionID, result.GameState, result.Events...)
//
// Concurrency:
//
// Broadcasts are queued on a buffered channel and fanned out by the Run
// loop, so callers never block on slow clients. A client whose send
// buffer is full is disconnected.
package websocket
