package engine

import "fmt"

// ShotResult describes what a single shot did to a board
type ShotResult struct {
	Coord    Coord   `json:"coord"`
	Outcome  Outcome `json:"outcome"`
	Sunk     bool    `json:"sunk,omitempty"`
	ShipID   ShipID  `json:"ship_id,omitempty"`
	ShipSize int     `json:"ship_size,omitempty"`
	// Revealed lists empty cells around a newly sunk ship that were marked as misses.
	Revealed []Coord `json:"revealed,omitempty"`
}

// Board is one side's grid and fleet. After setup FireAt is its only mutator.
type Board struct {
	grid       Grid
	ships      []*Ship
	owners     map[Coord]*Ship
	moatReveal bool
}

// NewBoard creates an empty board. moatReveal controls whether sinking a ship
// marks its empty surroundings as misses.
func NewBoard(moatReveal bool) *Board {
	return &Board{
		owners:     make(map[Coord]*Ship),
		moatReveal: moatReveal,
	}
}

// RemainingSizes returns the fleet sizes not yet placed, largest first.
func (b *Board) RemainingSizes() []int {
	placed := make(map[int]int)
	for _, s := range b.ships {
		placed[s.Size()]++
	}
	var out []int
	for _, size := range FleetSizes {
		if placed[size] > 0 {
			placed[size]--
			continue
		}
		out = append(out, size)
	}
	return out
}

// FleetComplete reports whether every fleet size has been placed.
func (b *Board) FleetComplete() bool {
	return len(b.RemainingSizes()) == 0
}

// CanPlace reports whether a ship could be placed without committing it.
func (b *Board) CanPlace(origin Coord, size int, orientation Orientation) bool {
	return b.CheckPlacement(origin, size, orientation) == nil
}

// CheckPlacement validates a proposed ship against the grid and the remaining
// fleet. A ship is also rejected when, once placed, the sizes still missing
// could no longer all be placed.
func (b *Board) CheckPlacement(origin Coord, size int, orientation Orientation) error {
	if err := CheckPlacement(&b.grid, origin, size, orientation); err != nil {
		return err
	}

	remaining := b.RemainingSizes()
	rest := make([]int, 0, len(remaining))
	found := false
	for _, s := range remaining {
		if s == size && !found {
			found = true
			continue
		}
		rest = append(rest, s)
	}
	if !found {
		return fmt.Errorf("%w: size %d", ErrFleetFull, size)
	}
	if len(rest) == 0 {
		return nil
	}

	grid := b.grid
	for _, c := range shipCoords(origin, size, orientation) {
		grid[c.Row][c.Col] = CellShip
	}
	if !fleetFits(grid, rest) {
		return fmt.Errorf("%w: size %d at %s", ErrFleetBlocked, size, origin)
	}
	return nil
}

// PlaceShip validates and commits a ship. On error nothing changes.
func (b *Board) PlaceShip(origin Coord, size int, orientation Orientation) (ShipID, error) {
	if err := b.CheckPlacement(origin, size, orientation); err != nil {
		return 0, err
	}

	ship := newShip(ShipID(len(b.ships)+1), shipCoords(origin, size, orientation))
	for _, c := range ship.coords {
		b.grid[c.Row][c.Col] = CellShip
		b.owners[c] = ship
	}
	b.ships = append(b.ships, ship)
	return ship.id, nil
}

// truncate removes every ship placed after the first n.
func (b *Board) truncate(n int) {
	for _, ship := range b.ships[n:] {
		for _, c := range ship.coords {
			b.grid[c.Row][c.Col] = CellEmpty
			delete(b.owners, c)
		}
	}
	b.ships = b.ships[:n]
}

// Fire applies a shot, rejecting coordinates that are off the board.
func (b *Board) Fire(c Coord) (ShotResult, error) {
	if !c.InBounds() {
		return ShotResult{}, fmt.Errorf("%w: shot at %s", ErrOutOfBounds, c)
	}
	return b.FireAt(c), nil
}

// FireAt applies a shot to an in-bounds coordinate. Firing at a cell that is
// already hit or missed returns OutcomeAlreadyFired and changes nothing.
func (b *Board) FireAt(c Coord) ShotResult {
	result := ShotResult{Coord: c}

	switch b.grid[c.Row][c.Col] {
	case CellHit, CellMiss:
		result.Outcome = OutcomeAlreadyFired
		return result
	case CellEmpty:
		b.grid[c.Row][c.Col] = CellMiss
		result.Outcome = OutcomeMiss
		return result
	}

	b.grid[c.Row][c.Col] = CellHit
	result.Outcome = OutcomeHit

	ship := b.owners[c]
	if ship == nil {
		return result
	}
	wasSunk := ship.IsSunk()
	ship.hit(c)
	result.ShipID = ship.id
	result.ShipSize = ship.Size()

	if !wasSunk && ship.IsSunk() {
		result.Sunk = true
		if b.moatReveal {
			result.Revealed = b.revealMoat(ship)
		}
	}
	return result
}

// revealMoat marks every empty neighbour of the ship as a miss.
func (b *Board) revealMoat(ship *Ship) []Coord {
	var revealed []Coord
	for _, c := range ship.coords {
		for _, n := range c.neighbors() {
			if b.grid[n.Row][n.Col] == CellEmpty {
				b.grid[n.Row][n.Col] = CellMiss
				revealed = append(revealed, n)
			}
		}
	}
	return revealed
}

// AllSunk reports whether the board has a fleet and every ship in it is sunk.
func (b *Board) AllSunk() bool {
	if len(b.ships) == 0 {
		return false
	}
	for _, s := range b.ships {
		if !s.IsSunk() {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of every cell, ships included.
func (b *Board) Snapshot() Grid {
	return b.grid
}

// Fog returns the view an opponent is allowed to see: unhit ship cells read as empty.
func (b *Board) Fog() Grid {
	g := b.grid
	for r := range g {
		for c := range g[r] {
			if g[r][c] == CellShip {
				g[r][c] = CellEmpty
			}
		}
	}
	return g
}

// Ships returns the status of every ship in placement order.
func (b *Board) Ships() []ShipStatus {
	out := make([]ShipStatus, len(b.ships))
	for i, s := range b.ships {
		out[i] = s.Status()
	}
	return out
}

// ShipAt returns the ship covering c, if any.
func (b *Board) ShipAt(c Coord) (ShipStatus, bool) {
	s, ok := b.owners[c]
	if !ok {
		return ShipStatus{}, false
	}
	return s.Status(), true
}

// ShipsAfloat returns how many ships are not yet sunk.
func (b *Board) ShipsAfloat() int {
	n := 0
	for _, s := range b.ships {
		if !s.IsSunk() {
			n++
		}
	}
	return n
}
