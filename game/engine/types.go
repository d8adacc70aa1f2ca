package engine

import "fmt"

const (
	// BoardSize is the width and height of every board.
	BoardSize = 10

	MinShipSize = 1
	MaxShipSize = 4
)

// FleetSizes is the fixed fleet every board must carry.
var FleetSizes = []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

// FleetCells is the number of cells the full fleet occupies.
const FleetCells = 20

// CellState is the state of a single grid cell
type CellState uint8

const (
	CellEmpty CellState = iota
	CellShip
	CellHit
	CellMiss
)

// Terminal reports whether the cell has already been fired upon.
func (c CellState) Terminal() bool {
	return c == CellHit || c == CellMiss
}

func (c CellState) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellShip:
		return "ship"
	case CellHit:
		return "hit"
	case CellMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// MarshalText encodes the cell state as its lowercase name.
func (c CellState) MarshalText() ([]byte, error) {
	if c > CellMiss {
		return nil, fmt.Errorf("invalid cell state %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a cell state name.
func (c *CellState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*c = CellEmpty
	case "ship":
		*c = CellShip
	case "hit":
		*c = CellHit
	case "miss":
		*c = CellMiss
	default:
		return fmt.Errorf("invalid cell state %q", text)
	}
	return nil
}

// Coord is a (row, col) position on a board
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the coordinate lies on the board.
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// neighbors returns the in-bounds 8-directional neighbours of c.
func (c Coord) neighbors() []Coord {
	out := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if n.InBounds() {
				out = append(out, n)
			}
		}
	}
	return out
}

// Orientation is the axis a ship extends along from its origin
type Orientation uint8

const (
	// Horizontal ships grow along increasing columns.
	Horizontal Orientation = iota
	// Vertical ships grow along increasing rows.
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// MarshalText encodes the orientation as its name.
func (o Orientation) MarshalText() ([]byte, error) {
	if o > Vertical {
		return nil, fmt.Errorf("invalid orientation %d", o)
	}
	return []byte(o.String()), nil
}

// UnmarshalText accepts "horizontal"/"h" and "vertical"/"v".
func (o *Orientation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "horizontal", "h", "H":
		*o = Horizontal
	case "vertical", "v", "V":
		*o = Vertical
	default:
		return fmt.Errorf("invalid orientation %q", text)
	}
	return nil
}

// step returns the coordinate i cells from origin along o.
func (o Orientation) step(origin Coord, i int) Coord {
	if o == Vertical {
		return Coord{Row: origin.Row + i, Col: origin.Col}
	}
	return Coord{Row: origin.Row, Col: origin.Col + i}
}

// Side identifies who owns a board or holds the turn
type Side uint8

const (
	Player Side = iota
	Computer
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Player {
		return Computer
	}
	return Player
}

func (s Side) String() string {
	switch s {
	case Player:
		return "player"
	case Computer:
		return "computer"
	default:
		return "unknown"
	}
}

// MarshalText encodes the side as its name.
func (s Side) MarshalText() ([]byte, error) {
	if s > Computer {
		return nil, fmt.Errorf("invalid side %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a side name.
func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*s = Player
	case "computer":
		*s = Computer
	default:
		return fmt.Errorf("invalid side %q", text)
	}
	return nil
}

// Phase is the turn controller's state
type Phase uint8

const (
	PhasePlacementPlayer Phase = iota
	PhasePlacementComputer
	PhaseActive
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhasePlacementPlayer:
		return "placement_player"
	case PhasePlacementComputer:
		return "placement_computer"
	case PhaseActive:
		return "active"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase as its name.
func (p Phase) MarshalText() ([]byte, error) {
	if p > PhaseGameOver {
		return nil, fmt.Errorf("invalid phase %d", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := PhasePlacementPlayer; candidate <= PhaseGameOver; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid phase %q", text)
}

// Outcome is the result of a single shot
type Outcome uint8

const (
	OutcomeMiss Outcome = iota
	OutcomeHit
	OutcomeAlreadyFired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeAlreadyFired:
		return "already_fired"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) {
	if o > OutcomeAlreadyFired {
		return nil, fmt.Errorf("invalid outcome %d", o)
	}
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "miss":
		*o = OutcomeMiss
	case "hit":
		*o = OutcomeHit
	case "already_fired":
		*o = OutcomeAlreadyFired
	default:
		return fmt.Errorf("invalid outcome %q", text)
	}
	return nil
}

// Grid is a read-only copy of a board's cells, indexed [row][col]
type Grid [BoardSize][BoardSize]CellState

// At returns the state at c. Off-board coordinates read as empty.
func (g Grid) At(c Coord) CellState {
	if !c.InBounds() {
		return CellEmpty
	}
	return g[c.Row][c.Col]
}

// Count returns how many cells are in the given state.
func (g Grid) Count(state CellState) int {
	n := 0
	for r := range g {
		for _, cell := range g[r] {
			if cell == state {
				n++
			}
		}
	}
	return n
}
