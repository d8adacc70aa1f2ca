// Package websocket pushes game state to browser or tool clients watching a
// session.
//
// A single Hub goroutine owns the client registry. Clients attach with
// ServeWS under a session ID and receive JSON Message frames:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//	{"session_id":"ab12","event":"shot","data":[{"type":"sunk",...}]}
//
// Clients never send commands; the read side only keeps the connection alive.
// A client whose outbound queue fills up is dropped.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID, initialView)
//	hub.BroadcastToSession(sessionID, view)
package websocket
