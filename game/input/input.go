// Package input parses the text forms players type for coordinates and ship
// placements.
//
// Coordinates are row first. Accepted forms:
//
//	34     row 3, column 4
//	3 4    row 3, column 4
//	3,4    row 3, column 4
//	B4     row B (1), column 4
//
// Placements prefix a coordinate with an orientation: H09, V85, "h 0 9",
// "v B4" or "horizontal 3,4".
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wricardo/battleship-game/game/engine"
)

var (
	ErrEmptyInput         = errors.New("empty input")
	ErrInvalidCoord       = errors.New("invalid coordinate")
	ErrInvalidOrientation = errors.New("invalid orientation")
)

// rowLetters labels the board rows A through J.
const rowLetters = "ABCDEFGHIJ"

// ParseCoord parses a coordinate in any of the accepted forms. The result is
// always on the board.
func ParseCoord(s string) (engine.Coord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return engine.Coord{}, ErrEmptyInput
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	var rowText, colText string
	switch len(fields) {
	case 1:
		// Compact form: exactly two characters, row then column.
		compact := []rune(fields[0])
		if len(compact) != 2 {
			return engine.Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
		}
		rowText, colText = string(compact[0]), string(compact[1])
	case 2:
		rowText, colText = fields[0], fields[1]
	default:
		return engine.Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}

	row, ok := parseRow(rowText)
	if !ok {
		return engine.Coord{}, fmt.Errorf("%w: bad row %q", ErrInvalidCoord, rowText)
	}
	col, err := strconv.Atoi(colText)
	if err != nil {
		return engine.Coord{}, fmt.Errorf("%w: bad column %q", ErrInvalidCoord, colText)
	}

	c := engine.Coord{Row: row, Col: col}
	if !c.InBounds() {
		return engine.Coord{}, fmt.Errorf("%w: %s is off the board", ErrInvalidCoord, c)
	}
	return c, nil
}

// parseRow accepts a row number or a row letter in either case.
func parseRow(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if len(s) != 1 {
		return 0, false
	}
	idx := strings.IndexByte(rowLetters, byte(unicode.ToUpper(rune(s[0]))))
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// ParseOrientation accepts H, V, horizontal or vertical in any case.
func ParseOrientation(s string) (engine.Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return engine.Horizontal, nil
	case "v", "vertical":
		return engine.Vertical, nil
	case "":
		return 0, ErrEmptyInput
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
	}
}

// Placement is a parsed ship placement without its size
type Placement struct {
	Orientation engine.Orientation
	Origin      engine.Coord
}

// ParsePlacement parses an orientation followed by a coordinate.
func ParsePlacement(s string) (Placement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placement{}, ErrEmptyInput
	}

	var orientText, rest string
	if fields := strings.Fields(s); len(fields) > 1 && len(fields[0]) > 1 {
		// Spelled-out orientation: "horizontal 3 4"
		orientText, rest = fields[0], strings.TrimSpace(s[len(fields[0]):])
	} else {
		orientText, rest = s[:1], s[1:]
	}

	orientation, err := ParseOrientation(orientText)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			err = fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
		}
		return Placement{}, err
	}
	origin, err := ParseCoord(rest)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			err = fmt.Errorf("%w: missing position in %q", ErrInvalidCoord, s)
		}
		return Placement{}, err
	}
	return Placement{Orientation: orientation, Origin: origin}, nil
}

// FormatCoord returns the letter form of c, e.g. "B4".
func FormatCoord(c engine.Coord) string {
	if !c.InBounds() {
		return c.String()
	}
	return fmt.Sprintf("%c%d", rowLetters[c.Row], c.Col)
}

// IsAuto reports whether s asks for automatic placement.
func IsAuto(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "a", "random":
		return true
	}
	return false
}
