package ai

import "github.com/jaminalder/tictactoe/internal/domain"

const (
	winScore = 10
	inf      = 1 << 20
)

// OptimalMove returns the best move for ai by exhaustive minimax search.
// Wins score 10-depth and losses depth-10, so faster wins and slower losses
// are preferred. Ties keep the lowest index. An empty board returns the
// center without searching.
func OptimalMove(b domain.Board, ai, opp domain.Cell) int {
	move, _ := searchOptimal(b, ai, opp, true)
	return move
}

// searchOptimal also reports how many positions were scored.
func searchOptimal(b domain.Board, ai, opp domain.Cell, prune bool) (int, int) {
	if b.IsEmpty() {
		return center, 0
	}
	s := &search{board: b, ai: ai, opp: opp, prune: prune}
	best, bestScore := NoMove, -inf
	alpha, beta := -inf, inf
	for i := range s.board {
		if s.board[i] != domain.Empty {
			continue
		}
		score := s.try(i, ai, 0, false, alpha, beta)
		if score > bestScore {
			best, bestScore = i, score
		}
		if prune {
			alpha = max(alpha, bestScore)
		}
	}
	return best, s.nodes
}

// search owns a scratch copy of the caller's board. Every mark it places is
// cleared again before try returns.
type search struct {
	board   domain.Board
	ai, opp domain.Cell
	prune   bool
	nodes   int
}

func (s *search) try(i int, mark domain.Cell, depth int, maximizing bool, alpha, beta int) int {
	s.board[i] = mark
	defer func() { s.board[i] = domain.Empty }()
	return s.score(depth, maximizing, alpha, beta)
}

func (s *search) score(depth int, maximizing bool, alpha, beta int) int {
	s.nodes++
	switch {
	case domain.HasWon(s.board, s.opp):
		return depth - winScore
	case domain.HasWon(s.board, s.ai):
		return winScore - depth
	case s.board.Full():
		return 0
	}

	mark, best := s.opp, inf
	if maximizing {
		mark, best = s.ai, -inf
	}
	for i := range s.board {
		if s.board[i] != domain.Empty {
			continue
		}
		v := s.try(i, mark, depth+1, !maximizing, alpha, beta)
		if maximizing {
			best = max(best, v)
			alpha = max(alpha, best)
		} else {
			best = min(best, v)
			beta = min(beta, best)
		}
		if s.prune && beta <= alpha {
			break
		}
	}
	return best
}
