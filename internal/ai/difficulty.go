// Package ai picks moves for the computer player.
//
// Three strategies are available: Easy plays a uniformly random empty cell,
// Medium applies a fixed tactical rule order (win, block, center, corner,
// edge) and Hard runs a full alpha-beta minimax search. Every function
// takes the board by value and keeps no state between calls.
package ai

import "strings"

// NoMove is returned when the board has no empty cell.
const NoMove = -1

// Difficulty selects a strategy.
type Difficulty uint8

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "easy"
	}
}

// ParseDifficulty maps a tag to a Difficulty. Unknown tags are Easy.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "medium":
		return Medium
	case "hard":
		return Hard
	default:
		return Easy
	}
}
