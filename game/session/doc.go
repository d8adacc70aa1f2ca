// Package session provides session management for the Battleship game.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Seeding each session's engine and computer shooter
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Sessions are service.Session values, each with its own engine instance,
// computer shooter and metadata like creation and last access time.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive and generated IDs never collide with live ones.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config, seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// Sessions are never persisted. RunCleanup drops sessions idle for longer
// than a maximum age.
package session
