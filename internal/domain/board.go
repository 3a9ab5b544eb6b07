package domain

import (
	"errors"
	"fmt"
)

// Cell represents a board cell state. X and O double as player identities.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// String returns "X", "O" or "" for an empty cell.
func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other player; Empty has no opponent.
func Opponent(c Cell) Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// ParseCell maps "X"/"O"/"" to a Cell.
func ParseCell(s string) (Cell, error) {
	switch s {
	case "X", "x":
		return X, nil
	case "O", "o":
		return O, nil
	case "":
		return Empty, nil
	}
	return Empty, fmt.Errorf("%w: %q", ErrBadSymbol, s)
}

// Size is the number of cells on the board.
const Size = 9

// Board is a fixed 3x3 board stored row-major.
type Board [Size]Cell

// Line is one row, column or diagonal as three cell indices.
type Line [3]int

// Lines lists every winning line: rows, then columns, then diagonals.
var Lines = [8]Line{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

var (
	ErrBadBoard  = errors.New("board must have 9 cells")
	ErrBadSymbol = errors.New("unknown cell symbol")
)

// ParseBoard converts the ["X","","O",...] form used by clients.
func ParseBoard(cells []string) (Board, error) {
	var b Board
	if len(cells) != Size {
		return b, ErrBadBoard
	}
	for i, s := range cells {
		c, err := ParseCell(s)
		if err != nil {
			return b, fmt.Errorf("cell %d: %w", i, err)
		}
		b[i] = c
	}
	return b, nil
}

// Strings is the inverse of ParseBoard.
func (b Board) Strings() []string {
	out := make([]string, Size)
	for i, c := range b {
		out[i] = c.String()
	}
	return out
}

// EmptyCells returns the indices of empty cells in ascending order.
func (b Board) EmptyCells() []int {
	out := make([]int, 0, Size)
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no mark has been placed yet.
func (b Board) IsEmpty() bool {
	for _, c := range b {
		if c != Empty {
			return false
		}
	}
	return true
}

// Count returns how many cells hold p.
func (b Board) Count(p Cell) int {
	n := 0
	for _, c := range b {
		if c == p {
			n++
		}
	}
	return n
}
