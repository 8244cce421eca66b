// Package othello implements the Othello (Reversi) rules: board state, legal
// move search, stone flipping and the turn/termination controller.
package othello

import (
	"fmt"
	"strings"
)

// Size is the board edge length.
const Size = 8

// Cell is the occupancy of a single square. Dark and Light double as the two sides.
type Cell uint8

const (
	Empty Cell = iota
	Dark
	Light
)

// String returns the lower-case colour name used in snapshots.
func (c Cell) String() string {
	switch c {
	case Dark:
		return "dark"
	case Light:
		return "light"
	default:
		return "empty"
	}
}

// MarshalText renders the cell as its colour name so boards serialise as strings.
func (c Cell) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a colour name.
func (c *Cell) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "empty", "":
		*c = Empty
	case "dark", "black":
		*c = Dark
	case "light", "white":
		*c = Light
	default:
		return fmt.Errorf("unknown cell %q", string(text))
	}
	return nil
}

// Opponent returns the other side. Empty has no opponent.
func Opponent(side Cell) Cell {
	switch side {
	case Dark:
		return Light
	case Light:
		return Dark
	default:
		return Empty
	}
}

func validSide(side Cell) bool {
	return side == Dark || side == Light
}

// Point addresses a square by column and row, both 0-indexed.
type Point struct {
	Col int `json:"column"`
	Row int `json:"row"`
}

func (p Point) add(d Point) Point {
	return Point{Col: p.Col + d.Col, Row: p.Row + d.Row}
}

// InBounds reports whether p lies on the board.
func (p Point) InBounds() bool {
	return p.Col >= 0 && p.Col < Size && p.Row >= 0 && p.Row < Size
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Col, p.Row)
}

// Board is the 8x8 grid indexed [row][column].
type Board [Size][Size]Cell

// NewBoard returns the canonical opening position: dark on (3,4) and (4,3),
// light on (3,3) and (4,4).
func NewBoard() Board {
	var b Board
	mid := Size / 2
	b[mid-1][mid-1], b[mid][mid] = Light, Light
	b[mid][mid-1], b[mid-1][mid] = Dark, Dark
	return b
}

// At returns the content of p. Off-board points read as Empty.
func (b *Board) At(p Point) Cell {
	if !p.InBounds() {
		return Empty
	}
	return b[p.Row][p.Col]
}

func (b *Board) set(p Point, c Cell) {
	b[p.Row][p.Col] = c
}

// Counts returns the number of dark stones, light stones and empty squares.
func (b *Board) Counts() (dark, light, empty int) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switch b[r][c] {
			case Dark:
				dark++
			case Light:
				light++
			default:
				empty++
			}
		}
	}
	return dark, light, empty
}

// Stones returns the number of occupied squares.
func (b *Board) Stones() int {
	dark, light, _ := b.Counts()
	return dark + light
}

// Full reports whether every square is occupied.
func (b *Board) Full() bool {
	_, _, empty := b.Counts()
	return empty == 0
}

// String draws the board one row per line: '.' empty, 'X' dark, 'O' light.
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switch b[r][c] {
			case Dark:
				sb.WriteByte('X')
			case Light:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		if r < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseBoard reads the format produced by String. Whitespace inside a row is ignored.
func ParseBoard(rows ...string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("board needs %d rows, got %d", Size, len(rows))
	}
	for r, line := range rows {
		line = strings.Join(strings.Fields(line), "")
		if len(line) != Size {
			return b, fmt.Errorf("row %d needs %d cells, got %d", r, Size, len(line))
		}
		for c := 0; c < Size; c++ {
			switch line[c] {
			case '.', '-':
				b[r][c] = Empty
			case 'X', 'x', 'B', 'b':
				b[r][c] = Dark
			case 'O', 'o', 'W', 'w':
				b[r][c] = Light
			default:
				return b, fmt.Errorf("row %d col %d: unknown cell %q", r, c, line[c])
			}
		}
	}
	return b, nil
}
