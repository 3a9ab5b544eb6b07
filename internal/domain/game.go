package domain

import "errors"

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
	Board  Board
	Turn   Cell
	Winner Cell
	Over   bool
	Moves  int
	// Line is the winning line when Winner is set.
	Line Line
}

// Errors returned by domain operations.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
)

// New returns a new game with X to move.
func New() Game {
	return Game{Turn: X}
}

// Play attempts to play the current turn at row r, column c (0..2).
func (g *Game) Play(r, c int) error {
	if g.Over {
		return ErrGameOver
	}
	if r < 0 || r > 2 || c < 0 || c > 2 {
		return ErrOutOfBounds
	}
	return g.PlayIndex(r*3 + c)
}

// PlayIndex plays the current turn at cell idx (0..8).
func (g *Game) PlayIndex(idx int) error {
	if g.Over {
		return ErrGameOver
	}
	if idx < 0 || idx >= Size {
		return ErrOutOfBounds
	}
	if g.Board[idx] != Empty {
		return ErrOccupied
	}

	g.Board[idx] = g.Turn
	g.Moves++

	res := Evaluate(g.Board)
	switch res.Outcome {
	case Win:
		g.Winner = res.Winner
		g.Line = res.Line
		g.Over = true
		return nil
	case Draw:
		g.Winner = Empty
		g.Over = true
		return nil
	}

	g.Turn = Opponent(g.Turn)
	return nil
}

// Result evaluates the current board.
func (g Game) Result() Result {
	return Evaluate(g.Board)
}

// IsValidMove reports whether idx can be played in g right now.
func IsValidMove(g Game, idx int) bool {
	return !g.Over && idx >= 0 && idx < Size && g.Board[idx] == Empty
}

// InLine reports whether idx is part of the winning line.
func (g Game) InLine(idx int) bool {
	if g.Winner == Empty {
		return false
	}
	for _, i := range g.Line {
		if i == idx {
			return true
		}
	}
	return false
}
