// Package service provides the business logic layer for the Battleship game.
//
// The service package implements:
//   - Multi-session game management
//   - Rule preset selection and seeding
//   - Ship placement and shot processing
//   - Running the computer's turns after each player shot
//   - Shot history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages rule preset loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine and computer shooter, both
// drawing from a generator seeded at creation, so a session's seed reproduces
// its fleets and the computer's shots.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{AutoPlace: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Fire(ctx, info.ID, engine.Coord{Row: 3, Col: 4})
//
// Views:
//
// GameView is what the player may see: their own board in full and the
// computer's board fogged until the game ends.
package service
