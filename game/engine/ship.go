package engine

// ShipID identifies a ship within its board, in placement order starting at 1.
type ShipID int

// Ship is a contiguous run of cells and the subset of them that has been hit
type Ship struct {
	id     ShipID
	coords []Coord
	hits   map[Coord]bool
}

func newShip(id ShipID, coords []Coord) *Ship {
	return &Ship{
		id:     id,
		coords: coords,
		hits:   make(map[Coord]bool, len(coords)),
	}
}

// ID returns the ship's identifier.
func (s *Ship) ID() ShipID { return s.id }

// Size returns the number of cells the ship occupies.
func (s *Ship) Size() int { return len(s.coords) }

// Coords returns a copy of the ship's coordinates in placement order.
func (s *Ship) Coords() []Coord {
	out := make([]Coord, len(s.coords))
	copy(out, s.coords)
	return out
}

// Occupies reports whether the ship covers c.
func (s *Ship) Occupies(c Coord) bool {
	for _, own := range s.coords {
		if own == c {
			return true
		}
	}
	return false
}

// HitCount returns the number of distinct cells hit so far.
func (s *Ship) HitCount() int { return len(s.hits) }

// IsSunk reports whether the hit set equals the occupied set.
func (s *Ship) IsSunk() bool {
	if len(s.hits) != len(s.coords) {
		return false
	}
	for _, c := range s.coords {
		if !s.hits[c] {
			return false
		}
	}
	return true
}

// hit records a hit on c. Coordinates the ship does not occupy are ignored,
// keeping the hit set a subset of the occupied set.
func (s *Ship) hit(c Coord) {
	if s.Occupies(c) {
		s.hits[c] = true
	}
}

// ShipStatus is a serialisable summary of a ship
type ShipStatus struct {
	ID     ShipID  `json:"id"`
	Size   int     `json:"size"`
	Coords []Coord `json:"coords"`
	Hits   int     `json:"hits"`
	Sunk   bool    `json:"sunk"`
}

// Status summarises the ship.
func (s *Ship) Status() ShipStatus {
	return ShipStatus{
		ID:     s.id,
		Size:   s.Size(),
		Coords: s.Coords(),
		Hits:   s.HitCount(),
		Sunk:   s.IsSunk(),
	}
}
