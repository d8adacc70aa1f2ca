// Package api exposes the game service over HTTP with gorilla/mux.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                {config_id?, seed?, auto_place?}
//   - GET    /api/sessions                ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/{id}
//   - DELETE /api/sessions/{id}
//
// Play:
//   - GET  /api/sessions/{id}/state       the player's view, enemy board fogged
//   - POST /api/sessions/{id}/ships       {size, row, col, orientation} or {size, placement:"H09"}
//   - POST /api/sessions/{id}/ships/auto  place the rest of the fleet at random
//   - POST /api/sessions/{id}/fire        {row, col} or {coord:"B4"}
//   - GET  /api/sessions/{id}/history     ?page=&limit=&order=
//
// Configuration:
//   - GET  /api/configs
//   - POST /api/configs                   a GameConfig, optionally with config_id
//   - GET  /api/configs/{name}
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id}                WebSocket state feed
//
// A fire request runs the player's shot and then every computer shot that
// follows while the computer holds the turn, so one response covers a full
// exchange.
//
// Errors are returned as {"error": "..."} with 404 for unknown sessions or
// presets, 400 for rejected placements and unparseable input, and 409 for
// actions in the wrong phase or after the game ended.
package api
