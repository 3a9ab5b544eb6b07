package app

import (
	"strings"
	"unicode/utf8"

	"github.com/jaminalder/tictactoe/internal/ai"
)

// Mode selects who plays O.
type Mode string

const (
	ModeTwoPlayer Mode = "two-player"
	ModeAI        Mode = "ai"
)

// ParseMode returns ModeAI for "ai" and ModeTwoPlayer for anything else.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeAI)) {
		return ModeAI
	}
	return ModeTwoPlayer
}

const maxNameLen = 20

// Default display names.
const (
	DefaultNameX  = "Player X"
	DefaultNameO  = "Player O"
	DefaultNameAI = "Computer"
)

// ValidName reports whether name is 1..20 characters after trimming.
func ValidName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n > 0 && n <= maxNameLen
}

func nameOr(name, fallback string) string {
	if !ValidName(name) {
		return fallback
	}
	return strings.TrimSpace(name)
}

// Options configure a new game.
type Options struct {
	Mode       Mode
	Difficulty ai.Difficulty
	NameX      string
	NameO      string
}

func (o Options) normalize() Options {
	if o.Mode != ModeAI {
		o.Mode = ModeTwoPlayer
	}
	o.NameX = nameOr(o.NameX, DefaultNameX)
	if o.Mode == ModeAI {
		o.NameO = nameOr(o.NameO, DefaultNameAI)
	} else {
		o.NameO = nameOr(o.NameO, DefaultNameO)
	}
	return o
}
