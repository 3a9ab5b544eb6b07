package domain

import (
	"errors"
	"testing"
)

func mustBoard(t *testing.T, cells ...string) Board {
	t.Helper()
	b, err := ParseBoard(cells)
	if err != nil {
		t.Fatalf("ParseBoard(%v): %v", cells, err)
	}
	return b
}

func TestHasWon(t *testing.T) {
	var empty Board
	if HasWon(empty, X) || HasWon(empty, O) {
		t.Fatalf("nobody has won on an empty board")
	}
	for _, ln := range Lines {
		var b Board
		for _, i := range ln {
			b[i] = O
		}
		if !HasWon(b, O) {
			t.Fatalf("expected O to win on %v", ln)
		}
		if HasWon(b, X) {
			t.Fatalf("X must not win on %v", ln)
		}
	}
	// two in a row is not a win
	b := mustBoard(t, "X", "X", "", "O", "O", "", "", "", "")
	if HasWon(b, X) || HasWon(b, O) {
		t.Fatalf("no three-in-a-row on %v", b)
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name   string
		board  Board
		want   Outcome
		winner Cell
		line   Line
	}{
		{"empty", Board{}, Ongoing, Empty, Line{}},
		{"column", mustBoard(t, "O", "X", "X", "O", "X", "", "O", "", ""), Win, O, Line{0, 3, 6}},
		{"diagonal", mustBoard(t, "X", "O", "O", "", "X", "", "", "", "X"), Win, X, Line{0, 4, 8}},
		{"draw", mustBoard(t, "X", "O", "X", "X", "O", "O", "O", "X", "X"), Draw, Empty, Line{}},
		// X holds row 0 and the left column; the row comes first in table order
		{"first line wins", mustBoard(t, "X", "X", "X", "X", "O", "O", "X", "O", "O"), Win, X, Line{0, 1, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.board)
			if got.Outcome != tc.want || got.Winner != tc.winner || got.Line != tc.line {
				t.Fatalf("Evaluate = %+v, want outcome=%v winner=%v line=%v", got, tc.want, tc.winner, tc.line)
			}
		})
	}
}

func TestParseBoard(t *testing.T) {
	if _, err := ParseBoard([]string{"X"}); !errors.Is(err, ErrBadBoard) {
		t.Fatalf("expected ErrBadBoard, got %v", err)
	}
	if _, err := ParseBoard([]string{"X", "", "", "", "Z", "", "", "", ""}); !errors.Is(err, ErrBadSymbol) {
		t.Fatalf("expected ErrBadSymbol, got %v", err)
	}
	b := mustBoard(t, "X", "", "o", "", "", "", "", "", "")
	if b[0] != X || b[2] != O || b.Count(Empty) != 7 {
		t.Fatalf("unexpected board %v", b)
	}
	got := b.Strings()
	if got[0] != "X" || got[2] != "O" || got[1] != "" {
		t.Fatalf("Strings() = %v", got)
	}
}

func TestEmptyCellsAscending(t *testing.T) {
	b := mustBoard(t, "X", "", "O", "", "X", "", "", "O", "")
	want := []int{1, 3, 5, 6, 8}
	got := b.EmptyCells()
	if len(got) != len(want) {
		t.Fatalf("EmptyCells = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EmptyCells = %v, want %v", got, want)
		}
	}
	if b.Full() || b.IsEmpty() {
		t.Fatalf("board is neither full nor empty")
	}
	if Opponent(X) != O || Opponent(O) != X || Opponent(Empty) != Empty {
		t.Fatalf("Opponent mapping broken")
	}
}
