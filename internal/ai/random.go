package ai

import (
	"math/rand/v2"

	"github.com/jaminalder/tictactoe/internal/domain"
)

// RandomMove returns an empty cell chosen uniformly at random, or NoMove.
// A nil rng uses the package-level source.
func RandomMove(b domain.Board, rng *rand.Rand) int {
	return pick(rng, b.EmptyCells())
}

func pick(rng *rand.Rand, cells []int) int {
	switch {
	case len(cells) == 0:
		return NoMove
	case rng == nil:
		return cells[rand.IntN(len(cells))]
	default:
		return cells[rng.IntN(len(cells))]
	}
}

// emptyOf filters idxs down to the cells that are empty on b.
func emptyOf(b domain.Board, idxs []int) []int {
	out := make([]int, 0, len(idxs))
	for _, i := range idxs {
		if b[i] == domain.Empty {
			out = append(out, i)
		}
	}
	return out
}
