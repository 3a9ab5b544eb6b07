package domain

// Outcome classifies a board position.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Win
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Result is the evaluation of a board. Winner and Line are only set for Win.
type Result struct {
	Outcome Outcome
	Winner  Cell
	Line    Line
}

// HasWon reports whether p occupies every cell of some winning line.
func HasWon(b Board, p Cell) bool {
	for _, ln := range Lines {
		if b[ln[0]] == p && b[ln[1]] == p && b[ln[2]] == p {
			return true
		}
	}
	return false
}

// Evaluate returns the first winning line in table order, a draw when the
// board is full, or Ongoing.
func Evaluate(b Board) Result {
	for _, ln := range Lines {
		c := b[ln[0]]
		if c != Empty && c == b[ln[1]] && c == b[ln[2]] {
			return Result{Outcome: Win, Winner: c, Line: ln}
		}
	}
	if b.Full() {
		return Result{Outcome: Draw}
	}
	return Result{Outcome: Ongoing}
}
