package ai

import (
	"math/rand/v2"

	"github.com/jaminalder/tictactoe/internal/domain"
)

const center = 4

var (
	corners = []int{0, 2, 6, 8}
	edges   = []int{1, 3, 5, 7}
)

// HeuristicMove applies the rules in order and returns on the first match:
// complete own line, block the opponent's line, center, random corner,
// random edge, random empty cell. It never looks further than one ply.
func HeuristicMove(b domain.Board, ai, opp domain.Cell, rng *rand.Rand) int {
	if idx := completingCell(b, ai); idx != NoMove {
		return idx
	}
	if idx := completingCell(b, opp); idx != NoMove {
		return idx
	}
	if b[center] == domain.Empty {
		return center
	}
	if idx := pick(rng, emptyOf(b, corners)); idx != NoMove {
		return idx
	}
	if idx := pick(rng, emptyOf(b, edges)); idx != NoMove {
		return idx
	}
	return RandomMove(b, rng)
}

// completingCell finds the first line, in table order, where p holds two
// cells and the third is empty. Within a line the last cell is tried first,
// then the middle, then the first.
func completingCell(b domain.Board, p domain.Cell) int {
	for _, ln := range domain.Lines {
		first, mid, last := ln[0], ln[1], ln[2]
		switch {
		case b[first] == p && b[mid] == p && b[last] == domain.Empty:
			return last
		case b[first] == p && b[last] == p && b[mid] == domain.Empty:
			return mid
		case b[mid] == p && b[last] == p && b[first] == domain.Empty:
			return first
		}
	}
	return NoMove
}
