package engine

import (
	"errors"
	"testing"
)

// knownFleet is a valid layout with a 1-cell ship at (0,0).
var knownFleet = []struct {
	origin      Coord
	size        int
	orientation Orientation
}{
	{Coord{0, 0}, 1, Horizontal},
	{Coord{2, 0}, 4, Horizontal},
	{Coord{4, 0}, 3, Horizontal},
	{Coord{6, 0}, 3, Horizontal},
	{Coord{8, 0}, 2, Horizontal},
	{Coord{0, 2}, 2, Horizontal},
	{Coord{0, 5}, 2, Horizontal},
	{Coord{0, 8}, 1, Horizontal},
	{Coord{9, 9}, 1, Horizontal},
	{Coord{9, 7}, 1, Horizontal},
}

func placeKnownFleet(t *testing.T, b *Board) {
	t.Helper()
	for _, s := range knownFleet {
		if _, err := b.PlaceShip(s.origin, s.size, s.orientation); err != nil {
			t.Fatalf("Failed to place ship of size %d at %s: %v", s.size, s.origin, err)
		}
	}
}

func unhitShipCells(b *Board) int {
	total := 0
	for _, s := range b.Ships() {
		total += s.Size - s.Hits
	}
	return total
}

func TestBoard_PlaceShip(t *testing.T) {
	b := NewBoard(true)

	id, err := b.PlaceShip(Coord{Row: 0, Col: 0}, 4, Horizontal)
	if err != nil {
		t.Fatalf("Failed to place ship: %v", err)
	}
	if id != 1 {
		t.Errorf("Expected first ship ID 1, got %d", id)
	}

	grid := b.Snapshot()
	for col := 0; col < 4; col++ {
		if grid[0][col] != CellShip {
			t.Errorf("Expected ship at (0,%d), got %s", col, grid[0][col])
		}
	}
	if grid[0][4] != CellEmpty {
		t.Errorf("Expected (0,4) to stay empty, got %s", grid[0][4])
	}

	id, err = b.PlaceShip(Coord{Row: 5, Col: 5}, 3, Vertical)
	if err != nil {
		t.Fatalf("Failed to place vertical ship: %v", err)
	}
	if id != 2 {
		t.Errorf("Expected second ship ID 2, got %d", id)
	}
	grid = b.Snapshot()
	for row := 5; row < 8; row++ {
		if grid[row][5] != CellShip {
			t.Errorf("Expected ship at (%d,5), got %s", row, grid[row][5])
		}
	}
}

func TestBoard_PlaceShip_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(b *Board)
		origin      Coord
		size        int
		orientation Orientation
		wantErr     error
		wantKind    PlacementErrorKind
	}{
		{
			name:        "horizontal past right edge",
			origin:      Coord{0, 7},
			size:        4,
			orientation: Horizontal,
			wantErr:     ErrOutOfBounds,
			wantKind:    OutOfBounds,
		},
		{
			name:        "vertical past bottom edge",
			origin:      Coord{8, 0},
			size:        3,
			orientation: Vertical,
			wantErr:     ErrOutOfBounds,
			wantKind:    OutOfBounds,
		},
		{
			name:        "negative origin",
			origin:      Coord{-1, 3},
			size:        1,
			orientation: Horizontal,
			wantErr:     ErrOutOfBounds,
			wantKind:    OutOfBounds,
		},
		{
			name: "overlapping",
			setup: func(b *Board) {
				b.PlaceShip(Coord{0, 0}, 4, Horizontal)
			},
			origin:      Coord{0, 2},
			size:        3,
			orientation: Vertical,
			wantErr:     ErrOverlap,
			wantKind:    Overlap,
		},
		{
			name: "side by side",
			setup: func(b *Board) {
				b.PlaceShip(Coord{0, 0}, 4, Horizontal)
			},
			origin:      Coord{1, 0},
			size:        3,
			orientation: Horizontal,
			wantErr:     ErrAdjacent,
			wantKind:    Adjacent,
		},
		{
			name: "diagonal touch",
			setup: func(b *Board) {
				b.PlaceShip(Coord{0, 0}, 4, Horizontal)
			},
			origin:      Coord{1, 4},
			size:        1,
			orientation: Horizontal,
			wantErr:     ErrAdjacent,
			wantKind:    Adjacent,
		},
		{
			name: "end to end",
			setup: func(b *Board) {
				b.PlaceShip(Coord{0, 0}, 2, Horizontal)
			},
			origin:      Coord{0, 2},
			size:        2,
			orientation: Horizontal,
			wantErr:     ErrAdjacent,
			wantKind:    Adjacent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(true)
			if tt.setup != nil {
				tt.setup(b)
			}
			before := b.Snapshot()
			shipsBefore := len(b.Ships())

			_, err := b.PlaceShip(tt.origin, tt.size, tt.orientation)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			var perr *PlacementError
			if !errors.As(err, &perr) {
				t.Fatalf("Expected *PlacementError, got %T", err)
			}
			if perr.Kind != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, perr.Kind)
			}
			if b.Snapshot() != before {
				t.Error("Expected grid to be unchanged after rejected placement")
			}
			if len(b.Ships()) != shipsBefore {
				t.Errorf("Expected %d ships, got %d", shipsBefore, len(b.Ships()))
			}
		})
	}
}

func TestBoard_PlaceShip_AllOrNothing(t *testing.T) {
	b := NewBoard(true)
	if _, err := b.PlaceShip(Coord{5, 5}, 1, Horizontal); err != nil {
		t.Fatalf("Failed to place ship: %v", err)
	}

	// The first two cells are valid, the third touches the ship at (5,5).
	_, err := b.PlaceShip(Coord{2, 5}, 4, Vertical)
	if !errors.Is(err, ErrAdjacent) {
		t.Fatalf("Expected ErrAdjacent, got %v", err)
	}

	grid := b.Snapshot()
	if got := grid.Count(CellShip); got != 1 {
		t.Errorf("Expected 1 ship cell after rejected placement, got %d", got)
	}
	if grid[2][5] != CellEmpty || grid[3][5] != CellEmpty {
		t.Error("Expected no partial placement")
	}
}

func TestBoard_PlaceShip_SizeRules(t *testing.T) {
	b := NewBoard(true)

	for _, size := range []int{0, 5, -1} {
		if _, err := b.PlaceShip(Coord{0, 0}, size, Horizontal); !errors.Is(err, ErrInvalidShipSize) {
			t.Errorf("Expected ErrInvalidShipSize for size %d, got %v", size, err)
		}
	}

	if _, err := b.PlaceShip(Coord{0, 0}, 4, Horizontal); err != nil {
		t.Fatalf("Failed to place first 4-cell ship: %v", err)
	}
	if _, err := b.PlaceShip(Coord{5, 0}, 4, Horizontal); !errors.Is(err, ErrFleetFull) {
		t.Errorf("Expected ErrFleetFull for second 4-cell ship, got %v", err)
	}

	remaining := b.RemainingSizes()
	expected := []int{3, 3, 2, 2, 2, 1, 1, 1, 1}
	if len(remaining) != len(expected) {
		t.Fatalf("Expected remaining %v, got %v", expected, remaining)
	}
	for i := range expected {
		if remaining[i] != expected[i] {
			t.Errorf("Expected remaining %v, got %v", expected, remaining)
			break
		}
	}
}

func TestBoard_FireAt(t *testing.T) {
	b := NewBoard(true)
	placeKnownFleet(t, b)

	miss := b.FireAt(Coord{5, 5})
	if miss.Outcome != OutcomeMiss {
		t.Errorf("Expected miss, got %s", miss.Outcome)
	}
	if b.Snapshot()[5][5] != CellMiss {
		t.Error("Expected (5,5) to be marked as miss")
	}

	before := b.Snapshot()
	again := b.FireAt(Coord{5, 5})
	if again.Outcome != OutcomeAlreadyFired {
		t.Errorf("Expected already fired, got %s", again.Outcome)
	}
	if b.Snapshot() != before {
		t.Error("Expected no state change when firing at a terminal cell")
	}

	hit := b.FireAt(Coord{2, 0})
	if hit.Outcome != OutcomeHit {
		t.Errorf("Expected hit, got %s", hit.Outcome)
	}
	if hit.Sunk {
		t.Error("Expected 4-cell ship not to be sunk by one hit")
	}
	if hit.ShipSize != 4 {
		t.Errorf("Expected ship size 4, got %d", hit.ShipSize)
	}
}

func TestBoard_FireAt_RepeatDoesNotDoubleCount(t *testing.T) {
	b := NewBoard(true)
	if _, err := b.PlaceShip(Coord{0, 0}, 2, Horizontal); err != nil {
		t.Fatalf("Failed to place ship: %v", err)
	}

	b.FireAt(Coord{0, 0})
	hitsBefore := b.Ships()[0].Hits

	result := b.FireAt(Coord{0, 0})
	if result.Outcome != OutcomeAlreadyFired {
		t.Fatalf("Expected already fired, got %s", result.Outcome)
	}
	if got := b.Ships()[0].Hits; got != hitsBefore {
		t.Errorf("Expected hits to stay %d, got %d", hitsBefore, got)
	}
	if b.Ships()[0].Sunk {
		t.Error("Expected ship not to be sunk after a repeated shot")
	}
}

func TestBoard_SinkRevealsMoat(t *testing.T) {
	b := NewBoard(true)
	if _, err := b.PlaceShip(Coord{0, 0}, 1, Horizontal); err != nil {
		t.Fatalf("Failed to place ship: %v", err)
	}

	result := b.FireAt(Coord{0, 0})
	if result.Outcome != OutcomeHit || !result.Sunk {
		t.Fatalf("Expected hit and sunk, got %s sunk=%v", result.Outcome, result.Sunk)
	}
	if len(result.Revealed) != 3 {
		t.Fatalf("Expected 3 revealed cells, got %v", result.Revealed)
	}

	grid := b.Snapshot()
	for _, c := range []Coord{{0, 1}, {1, 0}, {1, 1}} {
		if grid[c.Row][c.Col] != CellMiss {
			t.Errorf("Expected moat cell %s to be a miss, got %s", c, grid[c.Row][c.Col])
		}
	}
	if again := b.FireAt(Coord{1, 1}); again.Outcome != OutcomeAlreadyFired {
		t.Errorf("Expected moat cell to reject a shot, got %s", again.Outcome)
	}
}

func TestBoard_SinkWithoutMoat(t *testing.T) {
	b := NewBoard(false)
	if _, err := b.PlaceShip(Coord{4, 4}, 2, Vertical); err != nil {
		t.Fatalf("Failed to place ship: %v", err)
	}

	b.FireAt(Coord{4, 4})
	result := b.FireAt(Coord{5, 4})
	if !result.Sunk {
		t.Fatal("Expected ship to be sunk")
	}
	if len(result.Revealed) != 0 {
		t.Errorf("Expected no revealed cells, got %v", result.Revealed)
	}
	if got := b.Snapshot().Count(CellMiss); got != 0 {
		t.Errorf("Expected no misses on the board, got %d", got)
	}
}

func TestBoard_MissesDoNotTouchShips(t *testing.T) {
	b := NewBoard(false)
	placeKnownFleet(t, b)
	before := b.Ships()

	for _, c := range []Coord{{5, 5}, {5, 9}, {7, 7}, {3, 9}} {
		if r := b.FireAt(c); r.Outcome != OutcomeMiss {
			t.Fatalf("Expected miss at %s, got %s", c, r.Outcome)
		}
	}

	after := b.Ships()
	for i := range before {
		if before[i].Hits != after[i].Hits || before[i].Sunk != after[i].Sunk {
			t.Errorf("Expected ship %d unchanged by misses", before[i].ID)
		}
	}
}

func TestBoard_AllSunk(t *testing.T) {
	b := NewBoard(false)
	if b.AllSunk() {
		t.Error("Expected empty board not to report all sunk")
	}

	placeKnownFleet(t, b)
	ships := b.Ships()
	if len(ships) != len(FleetSizes) {
		t.Fatalf("Expected %d ships, got %d", len(FleetSizes), len(ships))
	}

	var cells []Coord
	for _, s := range ships {
		cells = append(cells, s.Coords...)
	}

	for i, c := range cells {
		if b.AllSunk() {
			t.Fatalf("Expected board not sunk with %d cells left", len(cells)-i)
		}
		if r := b.FireAt(c); r.Outcome != OutcomeHit {
			t.Fatalf("Expected hit at %s, got %s", c, r.Outcome)
		}
		if got := b.Snapshot().Count(CellShip); got != unhitShipCells(b) {
			t.Fatalf("Expected %d ship cells to match unhit ship cells %d", got, unhitShipCells(b))
		}
	}

	if !b.AllSunk() {
		t.Error("Expected all ships sunk")
	}
	if b.ShipsAfloat() != 0 {
		t.Errorf("Expected 0 ships afloat, got %d", b.ShipsAfloat())
	}
}

func TestBoard_Fog(t *testing.T) {
	b := NewBoard(false)
	if _, err := b.PlaceShip(Coord{3, 3}, 2, Horizontal); err != nil {
		t.Fatalf("Failed to place ship: %v", err)
	}

	fog := b.Fog()
	if fog.Count(CellShip) != 0 {
		t.Error("Expected fog to hide ship cells")
	}

	b.FireAt(Coord{3, 3})
	fog = b.Fog()
	if fog[3][3] != CellHit {
		t.Errorf("Expected fog to show hit, got %s", fog[3][3])
	}
	if fog[3][4] != CellEmpty {
		t.Errorf("Expected fog to hide unhit ship cell, got %s", fog[3][4])
	}
	if b.Snapshot()[3][4] != CellShip {
		t.Error("Expected snapshot to still show the ship")
	}
}

func TestBoard_Fire_OutOfBounds(t *testing.T) {
	b := NewBoard(true)
	for _, c := range []Coord{{-1, 0}, {0, 10}, {10, 10}} {
		if _, err := b.Fire(c); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Expected ErrOutOfBounds for %s, got %v", c, err)
		}
	}
}

func TestBoard_ShipAt(t *testing.T) {
	b := NewBoard(true)
	placeKnownFleet(t, b)

	ship, ok := b.ShipAt(Coord{2, 3})
	if !ok {
		t.Fatal("Expected a ship at (2,3)")
	}
	if ship.Size != 4 {
		t.Errorf("Expected 4-cell ship, got %d", ship.Size)
	}
	if _, ok := b.ShipAt(Coord{5, 5}); ok {
		t.Error("Expected no ship at (5,5)")
	}
}

// crowdedFleet leaves the 4-cell ship exactly four vertical spots, all in the
// top-left corner, and one 1-cell ship still to place:
//
//	. . . . S . . . S S
//	. . . . . . . . . .
//	. . . . . . . . . .
//	. . . S S S . . . .
//	. . . . . . . . . .
//	. . . . . . . . S S
//	S . . S . . S . . .
//	S . . . . . S . . .
//	. . . S . . S . . .
//	. . . . . . . . . .
var crowdedFleet = []struct {
	origin      Coord
	size        int
	orientation Orientation
}{
	{Coord{3, 3}, 3, Horizontal},
	{Coord{6, 6}, 3, Vertical},
	{Coord{6, 0}, 2, Vertical},
	{Coord{0, 8}, 2, Horizontal},
	{Coord{5, 8}, 2, Horizontal},
	{Coord{8, 3}, 1, Horizontal},
	{Coord{6, 3}, 1, Horizontal},
	{Coord{0, 4}, 1, Horizontal},
}

func TestBoard_PlaceShip_KeepsRoomForFleet(t *testing.T) {
	b := NewBoard(true)
	for _, s := range crowdedFleet {
		if _, err := b.PlaceShip(s.origin, s.size, s.orientation); err != nil {
			t.Fatalf("Failed to place ship of size %d at %s: %v", s.size, s.origin, err)
		}
	}
	if !b.CanPlace(Coord{0, 0}, 4, Vertical) {
		t.Fatal("Expected the 4-cell ship to fit in the first column")
	}
	before := b.Snapshot()

	// A 1-cell ship in the corner would leave the 4-cell ship nowhere to go.
	_, err := b.PlaceShip(Coord{0, 0}, 1, Horizontal)
	if !errors.Is(err, ErrFleetBlocked) {
		t.Fatalf("Expected ErrFleetBlocked, got %v", err)
	}
	if b.CanPlace(Coord{0, 0}, 1, Horizontal) {
		t.Error("Expected CanPlace to agree with PlaceShip")
	}
	if b.Snapshot() != before {
		t.Error("Expected grid to be unchanged after rejected placement")
	}

	if _, err := b.PlaceShip(Coord{0, 2}, 1, Horizontal); err != nil {
		t.Fatalf("Expected (0,2) to leave room for the 4-cell ship, got %v", err)
	}
	if _, err := b.PlaceShip(Coord{0, 0}, 4, Vertical); err != nil {
		t.Fatalf("Failed to place the last ship: %v", err)
	}
	if !b.FleetComplete() {
		t.Errorf("Expected complete fleet, remaining %v", b.RemainingSizes())
	}
}

func TestFleetFits(t *testing.T) {
	var empty Grid
	if !fleetFits(empty, FleetSizes) {
		t.Error("Expected the whole fleet to fit on an empty grid")
	}
	if !fleetFits(empty, nil) {
		t.Error("Expected nothing to always fit")
	}

	// Ships on every other cell of every other row leave no free neighbourhood.
	var lattice Grid
	for row := 0; row < BoardSize; row += 2 {
		for col := 0; col < BoardSize; col += 2 {
			lattice[row][col] = CellShip
		}
	}
	if fleetFits(lattice, []int{1}) {
		t.Error("Expected no room for a 1-cell ship on the lattice")
	}
}

func TestBoard_Truncate(t *testing.T) {
	b := NewBoard(true)
	placeKnownFleet(t, b)

	b.truncate(2)

	if len(b.Ships()) != 2 {
		t.Fatalf("Expected 2 ships, got %d", len(b.Ships()))
	}
	if got := b.Snapshot().Count(CellShip); got != 5 {
		t.Errorf("Expected 5 ship cells, got %d", got)
	}
	if _, ok := b.ShipAt(Coord{4, 0}); ok {
		t.Error("Expected removed ship to be gone")
	}
	if _, err := b.PlaceShip(Coord{4, 0}, 3, Horizontal); err != nil {
		t.Errorf("Expected freed cells to be placeable, got %v", err)
	}
}
