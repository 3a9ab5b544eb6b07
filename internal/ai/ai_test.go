package ai

import (
	"math/rand/v2"
	"testing"

	"github.com/jaminalder/tictactoe/internal/domain"
)

func board(t *testing.T, cells ...string) domain.Board {
	t.Helper()
	b, err := domain.ParseBoard(cells)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	return b
}

func seeded(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, 7)) }

// positions plays random games and collects every non-terminal position
// with O to move.
func positions(n int, seed uint64) []domain.Board {
	rng := seeded(seed)
	var out []domain.Board
	for len(out) < n {
		g := domain.New()
		for !g.Over {
			if g.Turn == domain.O {
				out = append(out, g.Board)
			}
			_ = g.PlayIndex(RandomMove(g.Board, rng))
		}
	}
	return out
}

func TestParseDifficulty(t *testing.T) {
	cases := map[string]Difficulty{
		"easy": Easy, "medium": Medium, "hard": Hard,
		" HARD ": Hard, "Medium": Medium,
		"extreme": Easy, "": Easy,
	}
	for in, want := range cases {
		if got := ParseDifficulty(in); got != want {
			t.Fatalf("ParseDifficulty(%q) = %v, want %v", in, got, want)
		}
	}
	if Hard.String() != "hard" || Difficulty(42).String() != "easy" {
		t.Fatalf("unexpected String() values")
	}
}

func TestRandomMove(t *testing.T) {
	full := board(t, "X", "O", "X", "X", "O", "O", "O", "X", "X")
	if got := RandomMove(full, seeded(1)); got != NoMove {
		t.Fatalf("expected NoMove on full board, got %d", got)
	}

	b := board(t, "X", "", "O", "", "X", "", "O", "", "X")
	rng := seeded(2)
	seen := map[int]int{}
	for i := 0; i < 400; i++ {
		m := RandomMove(b, rng)
		if b[m] != domain.Empty {
			t.Fatalf("RandomMove picked occupied cell %d", m)
		}
		seen[m]++
	}
	for _, idx := range []int{1, 3, 5, 7} {
		if seen[idx] == 0 {
			t.Fatalf("cell %d never chosen in 400 draws: %v", idx, seen)
		}
	}
	// nil rng falls back to the package source
	if m := RandomMove(b, nil); b[m] != domain.Empty {
		t.Fatalf("nil rng picked occupied cell %d", m)
	}
}

func TestHeuristicScenarios(t *testing.T) {
	cases := []struct {
		name  string
		board domain.Board
		want  int
	}{
		{"block opponent row", board(t, "X", "X", "", "", "O", "", "", "", ""), 2},
		{"complete own row", board(t, "O", "O", "", "", "X", "", "", "", ""), 2},
		{"win beats block", board(t, "X", "X", "", "O", "O", "", "X", "", ""), 5},
		{"middle cell", board(t, "O", "", "O", "X", "X", "", "", "", "X"), 1},
		{"first cell", board(t, "", "X", "", "O", "X", "", "O", "", ""), 0},
		{"first line in table order", board(t, "O", "O", "", "O", "X", "X", "", "X", ""), 2},
		{"center", board(t, "X", "", "", "", "", "", "", "", ""), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HeuristicMove(tc.board, domain.O, domain.X, seeded(3)); got != tc.want {
				t.Fatalf("HeuristicMove = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestHeuristicCornerThenEdge(t *testing.T) {
	// center taken, no threats: a corner must be chosen
	b := board(t, "", "", "", "", "X", "", "", "", "")
	rng := seeded(4)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		m := HeuristicMove(b, domain.O, domain.X, rng)
		if m != 0 && m != 2 && m != 6 && m != 8 {
			t.Fatalf("expected a corner, got %d", m)
		}
		seen[m] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected all four corners over 200 draws, got %v", seen)
	}

	// X O X
	// X O O
	// O X .   nothing to win or block, only corner 8 left
	b = board(t, "X", "O", "X", "X", "O", "O", "O", "X", "")
	if got := HeuristicMove(b, domain.O, domain.X, rng); got != 8 {
		t.Fatalf("expected corner 8, got %d", got)
	}

	// O X O
	// . X .
	// X O X   corners and center taken, edges 3 and 5 are quiet
	b = board(t, "O", "X", "O", "", "X", "", "X", "O", "X")
	seen = map[int]bool{}
	for i := 0; i < 100; i++ {
		m := HeuristicMove(b, domain.O, domain.X, rng)
		if m != 3 && m != 5 {
			t.Fatalf("expected an edge, got %d", m)
		}
		seen[m] = true
	}
	if len(seen) != 2 {
		t.Fatalf("expected both edges over 100 draws, got %v", seen)
	}

	full := board(t, "X", "O", "X", "X", "O", "O", "O", "X", "X")
	if got := HeuristicMove(full, domain.O, domain.X, rng); got != NoMove {
		t.Fatalf("expected NoMove on full board, got %d", got)
	}
}

func TestHeuristicAlwaysWinsOrBlocks(t *testing.T) {
	rng := seeded(6)
	for _, b := range positions(500, 11) {
		before := b
		m := HeuristicMove(b, domain.O, domain.X, rng)
		if b != before {
			t.Fatalf("board mutated")
		}
		if m == NoMove || b[m] != domain.Empty {
			t.Fatalf("invalid move %d on %v", m, b)
		}
		after := b
		after[m] = domain.O
		if completingCell(b, domain.O) != NoMove {
			if !domain.HasWon(after, domain.O) {
				t.Fatalf("missed a win on %v: played %d", b, m)
			}
			continue
		}
		if completingCell(b, domain.X) != NoMove {
			blocked := b
			blocked[m] = domain.X
			if !domain.HasWon(blocked, domain.X) {
				t.Fatalf("missed a block on %v: played %d", b, m)
			}
		}
	}
}

func TestOptimalOpening(t *testing.T) {
	var b domain.Board
	move, nodes := searchOptimal(b, domain.O, domain.X, true)
	if move != 4 || nodes != 0 {
		t.Fatalf("expected center without search, got move=%d nodes=%d", move, nodes)
	}
	if OptimalMove(b, domain.X, domain.O) != 4 {
		t.Fatalf("expected center for X too")
	}
}

func TestOptimalTakesWinAndBlocks(t *testing.T) {
	cases := []struct {
		name  string
		board domain.Board
		want  int
	}{
		{"block", board(t, "X", "X", "", "", "O", "", "", "", ""), 2},
		{"win", board(t, "O", "O", "", "X", "X", "", "X", "", ""), 2},
		{"win beats block", board(t, "X", "X", "", "O", "O", "", "X", "", ""), 5},
		// a flat score would pick 0, which also wins but two plies later
		{"shortest win", board(t, "", "X", "X", "O", "O", "", "", "X", ""), 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OptimalMove(tc.board, domain.O, domain.X); got != tc.want {
				t.Fatalf("OptimalMove = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestOptimalFullBoard(t *testing.T) {
	full := board(t, "X", "O", "X", "X", "O", "O", "O", "X", "X")
	if got := OptimalMove(full, domain.O, domain.X); got != NoMove {
		t.Fatalf("expected NoMove, got %d", got)
	}
}

func TestOptimalSelfPlayDraws(t *testing.T) {
	g := domain.New()
	for !g.Over {
		m := OptimalMove(g.Board, g.Turn, domain.Opponent(g.Turn))
		if err := g.PlayIndex(m); err != nil {
			t.Fatalf("play %d: %v", m, err)
		}
	}
	if g.Winner != domain.Empty {
		t.Fatalf("self play should draw, %v won: %v", g.Winner, g.Board)
	}
}

func TestOptimalNeverLosesToRandom(t *testing.T) {
	rng := seeded(8)
	for _, hard := range []domain.Cell{domain.X, domain.O} {
		for i := 0; i < 60; i++ {
			g := domain.New()
			for !g.Over {
				var m int
				if g.Turn == hard {
					m = OptimalMove(g.Board, hard, domain.Opponent(hard))
				} else {
					m = RandomMove(g.Board, rng)
				}
				if err := g.PlayIndex(m); err != nil {
					t.Fatalf("play %d: %v", m, err)
				}
			}
			if g.Winner == domain.Opponent(hard) {
				t.Fatalf("hard %v lost: %v", hard, g.Board)
			}
		}
	}
}

func TestPruningKeepsChosenMove(t *testing.T) {
	for _, b := range positions(300, 21) {
		pruned, prunedNodes := searchOptimal(b, domain.O, domain.X, true)
		full, fullNodes := searchOptimal(b, domain.O, domain.X, false)
		if pruned != full {
			t.Fatalf("pruning changed the move on %v: %d vs %d", b, pruned, full)
		}
		if prunedNodes > fullNodes {
			t.Fatalf("pruning visited more nodes: %d > %d", prunedNodes, fullNodes)
		}
	}
}

func TestSearchRestoresScratchBoard(t *testing.T) {
	b := board(t, "X", "", "", "", "O", "", "", "", "X")
	s := &search{board: b, ai: domain.O, opp: domain.X, prune: true}
	s.try(1, domain.O, 0, false, -inf, inf)
	if s.board != b {
		t.Fatalf("scratch board not restored: %v", s.board)
	}
}
