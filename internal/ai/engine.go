package ai

import (
	"math/rand/v2"
	"sync"

	"github.com/jaminalder/tictactoe/internal/domain"
)

// Strategy picks a cell for ai on b, or NoMove.
type Strategy func(b domain.Board, ai, opp domain.Cell, rng *rand.Rand) int

var strategies = [...]Strategy{
	Easy: func(b domain.Board, _, _ domain.Cell, rng *rand.Rand) int {
		return RandomMove(b, rng)
	},
	Medium: HeuristicMove,
	Hard: func(b domain.Board, ai, opp domain.Cell, _ *rand.Rand) int {
		return OptimalMove(b, ai, opp)
	},
}

// Move routes to the strategy for d. Out-of-range difficulties play Easy.
func Move(b domain.Board, d Difficulty, ai, opp domain.Cell, rng *rand.Rand) int {
	if int(d) >= len(strategies) {
		d = Easy
	}
	return strategies[d](b, ai, opp, rng)
}

// Engine pairs the dispatcher with its own random source so draws can be
// reproduced from a seed. It is safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an engine seeded with seed.
func NewEngine(seed uint64) *Engine {
	return &Engine{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Move picks a cell for ai on b at difficulty d.
func (e *Engine) Move(b domain.Board, d Difficulty, ai domain.Cell) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Move(b, d, ai, domain.Opponent(ai), e.rng)
}
