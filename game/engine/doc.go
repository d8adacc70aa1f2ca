// Package engine provides the core game logic for the Battleship game.
//
// The engine package implements the game mechanics including:
//   - Cell state and ship hit tracking
//   - Fleet placement with the no-touching adjacency rule
//   - Shot resolution, sink detection and moat reveal
//   - Shooter strategies (manual and uniform random)
//   - The turn state machine between the player and the computer
//
// Core Types:
//
// Board owns one side's grid and fleet and exposes only PlaceShip and FireAt
// as mutators, plus Snapshot and Fog as read projections. GameEngine pairs
// two boards and drives the phases PlacementPlayer, PlacementComputer, Active
// and GameOver. GameConfig selects the rule options and message texts.
//
// Usage:
//
//	rng := engine.NewRand(seed)
//	game, err := engine.NewEngine(engine.DefaultGameConfig(), rng)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Place the fleets
//	_ = game.AutoPlacePlayerFleet()
//	_ = game.PlaceComputerFleet()
//
//	// Fire at the computer's board
//	result, err := game.Fire(engine.Coord{Row: 3, Col: 4})
//
// Game Rules:
//
// Each side has ten ships of sizes 4, 3, 3, 2, 2, 2, 1, 1, 1, 1 on a 10x10
// grid, never overlapping or touching, diagonals included. A miss passes the
// turn; a hit keeps it. Firing at a cell already hit or missed is a no-op that
// does not use up the turn. The first side to sink the whole enemy fleet wins.
//
// The engine performs no I/O. All randomness comes from the *rand.Rand passed
// to NewEngine and NewRandomShooter.
package engine
