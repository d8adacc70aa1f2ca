package engine

import (
	"context"
	"errors"
	"math/rand"
)

var ErrNoTargets = errors.New("no untouched cells left to fire at")

// Shooter produces the next coordinate to fire at. target is the fogged view
// of the opponent's board.
type Shooter interface {
	NextShot(ctx context.Context, target Grid) (Coord, error)
}

// CoordSource supplies coordinates chosen outside the engine, typically by a human.
type CoordSource interface {
	NextCoord(ctx context.Context) (Coord, error)
}

// CoordSourceFunc adapts a function to CoordSource.
type CoordSourceFunc func(ctx context.Context) (Coord, error)

// NextCoord calls f.
func (f CoordSourceFunc) NextCoord(ctx context.Context) (Coord, error) {
	return f(ctx)
}

// ManualShooter fires wherever its source says. It does no validation of its
// own; the board already treats repeated shots as no-ops.
type ManualShooter struct {
	Source CoordSource
}

// NewManualShooter creates a shooter backed by source.
func NewManualShooter(source CoordSource) *ManualShooter {
	return &ManualShooter{Source: source}
}

// NextShot blocks until the source yields a coordinate.
func (m *ManualShooter) NextShot(ctx context.Context, _ Grid) (Coord, error) {
	return m.Source.NextCoord(ctx)
}

// ChannelSource is a CoordSource fed through a channel.
type ChannelSource <-chan Coord

// NextCoord waits for the next coordinate or for ctx to end.
func (ch ChannelSource) NextCoord(ctx context.Context) (Coord, error) {
	select {
	case c, ok := <-ch:
		if !ok {
			return Coord{}, context.Canceled
		}
		return c, nil
	case <-ctx.Done():
		return Coord{}, ctx.Err()
	}
}

// RandomShooter picks uniformly among cells that have not been fired upon,
// drawing coordinates and rejecting ones already hit or missed.
type RandomShooter struct {
	rng *rand.Rand
}

// NewRandomShooter creates a shooter drawing from rng.
func NewRandomShooter(rng *rand.Rand) *RandomShooter {
	return &RandomShooter{rng: rng}
}

// NextShot returns a coordinate that is neither hit nor missed on target.
func (r *RandomShooter) NextShot(ctx context.Context, target Grid) (Coord, error) {
	if err := ctx.Err(); err != nil {
		return Coord{}, err
	}
	if target.Count(CellHit)+target.Count(CellMiss) == BoardSize*BoardSize {
		return Coord{}, ErrNoTargets
	}
	for {
		c := Coord{Row: r.rng.Intn(BoardSize), Col: r.rng.Intn(BoardSize)}
		if !target[c.Row][c.Col].Terminal() {
			return c, nil
		}
	}
}
