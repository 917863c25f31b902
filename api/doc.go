// Package api provides the HTTP REST API for Legends of Valor sessions.
//
// Endpoints:
//
// Health:
//   - GET /api/health - Liveness with the number of active sessions
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "hard", "seed": 42})
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Snapshot with threat level and local view
//   - POST /api/sessions/{id}/actions - Act for the active hero
//   - GET /api/sessions/{id}/teleport-candidates?target=H2 - Legal teleport cells
//   - POST /api/sessions/{id}/reset - Restart from the session's config
//   - GET /api/sessions/{id}/history - Paginated events (page, limit, order)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Validate and save a configuration
//
// WebSocket:
//   - GET /ws?session={id} - Live state updates for one session
//
// Actions are posted as JSON:
//
//	{"type": "move", "direction": "up"}
//	{"type": "attack", "target": "M2"}
//	{"type": "cast", "spell": "Fireball", "target": "M1"}
//	{"type": "teleport", "target": "H3", "position": {"row": 6, "col": 7}}
//	{"type": "recall"}
//	{"type": "remove_obstacle", "position": {"row": 4, "col": 1}}
//	{"type": "pass"}
//
// A rule violation answers 200 with "success": false and a "reason"; the
// state is unchanged and the same hero acts again. Errors are JSON objects
// with an "error" field: 404 for unknown sessions or configs, 409 once the
// game is over, 400 for malformed input.
package api
