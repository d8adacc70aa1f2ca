package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds     = errors.New("placement out of bounds")
	ErrOverlap         = errors.New("placement overlaps another ship")
	ErrAdjacent        = errors.New("placement touches another ship")
	ErrInvalidShipSize = errors.New("invalid ship size")
	ErrFleetFull       = errors.New("no ship of that size left to place")
	ErrFleetBlocked    = errors.New("placement leaves no room for the rest of the fleet")
)

// maxFitSteps bounds the search in fleetFits. A search that runs out is
// treated as no fit.
const maxFitSteps = 200000

// PlacementErrorKind classifies why a placement was rejected
type PlacementErrorKind uint8

const (
	OutOfBounds PlacementErrorKind = iota
	Overlap
	Adjacent
)

func (k PlacementErrorKind) String() string {
	switch k {
	case OutOfBounds:
		return "out_of_bounds"
	case Overlap:
		return "overlap"
	case Adjacent:
		return "adjacent"
	default:
		return "unknown"
	}
}

// PlacementError reports the first rule a proposed placement broke and the
// cell that broke it.
type PlacementError struct {
	Kind PlacementErrorKind
	Cell Coord
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%v at %s", e.sentinel(), e.Cell)
}

func (e *PlacementError) sentinel() error {
	switch e.Kind {
	case OutOfBounds:
		return ErrOutOfBounds
	case Overlap:
		return ErrOverlap
	default:
		return ErrAdjacent
	}
}

// Is lets errors.Is match a PlacementError against ErrOutOfBounds, ErrOverlap
// or ErrAdjacent.
func (e *PlacementError) Is(target error) bool {
	return target == e.sentinel()
}

// CheckPlacement returns nil if a ship of the given size can be placed at
// origin along orientation, or a *PlacementError naming the first failure.
// It never mutates anything.
func CheckPlacement(grid *Grid, origin Coord, size int, orientation Orientation) error {
	if size < MinShipSize || size > MaxShipSize {
		return fmt.Errorf("%w: %d", ErrInvalidShipSize, size)
	}
	for i := 0; i < size; i++ {
		cell := orientation.step(origin, i)
		if !cell.InBounds() {
			return &PlacementError{Kind: OutOfBounds, Cell: cell}
		}
		if grid.At(cell) != CellEmpty {
			return &PlacementError{Kind: Overlap, Cell: cell}
		}
		for _, n := range cell.neighbors() {
			if grid.At(n) == CellShip {
				return &PlacementError{Kind: Adjacent, Cell: cell}
			}
		}
	}
	return nil
}

// CanPlace reports whether CheckPlacement would accept the placement.
func CanPlace(grid *Grid, origin Coord, size int, orientation Orientation) bool {
	return CheckPlacement(grid, origin, size, orientation) == nil
}

// shipCoords lists the cells a ship would occupy.
func shipCoords(origin Coord, size int, orientation Orientation) []Coord {
	coords := make([]Coord, size)
	for i := range coords {
		coords[i] = orientation.step(origin, i)
	}
	return coords
}

// fleetFits reports whether every size in sizes can still be placed on grid.
// sizes must be ordered largest first.
func fleetFits(grid Grid, sizes []int) bool {
	budget := maxFitSteps
	return fitFrom(&grid, sizes, 0, &budget)
}

// fitFrom places sizes[0] at every candidate from start onward and recurses
// on the rest. Ships of equal size are only tried in increasing candidate order.
func fitFrom(grid *Grid, sizes []int, start int, budget *int) bool {
	if len(sizes) == 0 {
		return true
	}
	size, rest := sizes[0], sizes[1:]
	for pos := start; pos < 2*BoardSize*BoardSize; pos++ {
		*budget--
		if *budget < 0 {
			return false
		}
		cell := pos / 2
		origin := Coord{Row: cell / BoardSize, Col: cell % BoardSize}
		orientation := Orientation(pos % 2)
		if CheckPlacement(grid, origin, size, orientation) != nil {
			continue
		}

		coords := shipCoords(origin, size, orientation)
		for _, c := range coords {
			grid[c.Row][c.Col] = CellShip
		}
		next := 0
		if len(rest) > 0 && rest[0] == size {
			next = pos + 1
		}
		fits := fitFrom(grid, rest, next, budget)
		for _, c := range coords {
			grid[c.Row][c.Col] = CellEmpty
		}
		if fits {
			return true
		}
	}
	return false
}
