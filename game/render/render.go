// Package render draws boards as plain text for the console and MCP output.
package render

import (
	"fmt"
	"strings"

	"github.com/wricardo/battleship-game/game/engine"
)

const rowLetters = "ABCDEFGHIJ"

// Symbol returns the character drawn for a cell state.
func Symbol(s engine.CellState) byte {
	switch s {
	case engine.CellShip:
		return 'S'
	case engine.CellHit:
		return 'X'
	case engine.CellMiss:
		return 'O'
	default:
		return '.'
	}
}

// Board renders grid with a column header and lettered rows:
//
//	  0 1 2 3 4 5 6 7 8 9
//	A S S . . . . . . . .
//	B . . . O . . . . . .
func Board(grid engine.Grid) string {
	var sb strings.Builder
	for _, line := range lines(grid) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func lines(grid engine.Grid) []string {
	out := make([]string, 0, engine.BoardSize+1)

	var header strings.Builder
	header.WriteString(" ")
	for col := 0; col < engine.BoardSize; col++ {
		fmt.Fprintf(&header, " %d", col)
	}
	out = append(out, header.String())

	for row := 0; row < engine.BoardSize; row++ {
		var sb strings.Builder
		sb.WriteByte(rowLetters[row])
		for col := 0; col < engine.BoardSize; col++ {
			sb.WriteByte(' ')
			sb.WriteByte(Symbol(grid[row][col]))
		}
		out = append(out, sb.String())
	}
	return out
}

// SideBySide renders two boards next to each other under their titles.
func SideBySide(leftTitle string, left engine.Grid, rightTitle string, right engine.Grid) string {
	const gap = "    "
	l, r := lines(left), lines(right)
	width := len(l[0])

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s%s%s\n", width, leftTitle, gap, rightTitle)
	for i := range l {
		fmt.Fprintf(&sb, "%-*s%s%s\n", width, l[i], gap, r[i])
	}
	return sb.String()
}

// Legend explains the board symbols.
func Legend() string {
	return ". empty  S ship  X hit  O miss"
}
