// Package mcp exposes the game as Model Context Protocol tools.
//
// The Client does not hold any game state. Each tool call is proxied to the
// REST API, so the MCP surface can run in-process (mounted at /mcp) or as a
// stdio server pointed at a remote API.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: both boards as text, enemy board fogged
//   - place_ship, auto_place
//   - fire: the reply includes any computer shots the player's shot passed
//     the turn to
//   - shot_history
//   - list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
