// Package mcp exposes Legends of Valor to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request
// against a running API server, and the JSON answer is rendered as text
// for the agent.
//
// MCP Tools:
//   - create_session: Start a game with an optional config_id and seed
//   - list_sessions: List all active sessions
//   - get_session: Session details with the current state
//   - game_state: Board, heroes, monsters, threat level and local view
//   - act: One action for the active hero (move, attack, cast, teleport,
//     recall, remove_obstacle, pass, cancel, info)
//   - teleport_candidates: Legal teleport cells next to a hero
//   - reset_game: Restart a session from its config
//   - action_history: Paginated event log
//   - list_configs: Available configurations
//   - game_instructions: Rules and strategy notes
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
