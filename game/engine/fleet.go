package engine

import (
	"errors"
	"math/rand"
)

// maxPlacementAttempts bounds the random search for a single ship's position.
const maxPlacementAttempts = 10000

var ErrPlacementExhausted = errors.New("could not find a valid position for ship")

// AutoPlaceFleet places every fleet size still missing from the board at random
// positions drawn from rng. The same rng state always yields the same layout.
// On failure the ships it placed are removed again.
func AutoPlaceFleet(board *Board, rng *rand.Rand) error {
	placedBefore := len(board.ships)
	for _, size := range board.RemainingSizes() {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			orientation := Horizontal
			if rng.Intn(2) == 1 {
				orientation = Vertical
			}
			origin := Coord{Row: rng.Intn(BoardSize), Col: rng.Intn(BoardSize)}

			if _, err := board.PlaceShip(origin, size, orientation); err == nil {
				placed = true
				break
			}
		}
		if !placed {
			board.truncate(placedBefore)
			return ErrPlacementExhausted
		}
	}
	return nil
}

// NewRand returns a generator seeded with seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
