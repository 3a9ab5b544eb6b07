// Package stats keeps win/loss/draw statistics and a short game history.
//
// Results are counted from X's point of view: an X win is a win, an O win
// is a loss. All-time totals and history go through a Store; session
// counters live for the lifetime of the process only.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe/internal/domain"
)

// MaxHistory is the number of finished games kept.
const MaxHistory = 10

// Totals are the all-time counters.
type Totals struct {
	Wins          int    `json:"totalWins"`
	Losses        int    `json:"totalLosses"`
	Draws         int    `json:"totalDraws"`
	CurrentStreak int    `json:"currentStreak"`
	BestStreak    int    `json:"bestStreak"`
	GamesPlayed   int    `json:"gamesPlayed"`
	LastWinner    string `json:"lastWinner,omitempty"`
}

// Session counts games since the process started or the last session reset.
type Session struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
	Games  int `json:"total"`
}

// Entry is one finished game in the history.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Result     string    `json:"result"`
	Winner     string    `json:"winner,omitempty"`
	WinnerName string    `json:"winnerName"`
	PlayerX    string    `json:"playerX"`
	PlayerO    string    `json:"playerO"`
	Board      []string  `json:"board"`
	Mode       string    `json:"mode,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
}

// Snapshot is what a Store persists.
type Snapshot struct {
	Totals  Totals  `json:"stats"`
	History []Entry `json:"history"`
}

// Record describes a finished game.
type Record struct {
	GameID     string
	Result     domain.Result
	Board      domain.Board
	PlayerX    string
	PlayerO    string
	Mode       string
	Difficulty string
}

// AllTime is Totals plus the derived win percentage.
type AllTime struct {
	Totals
	WinPercentage int `json:"winPercentage"`
}

// Summary is the formatted view served to clients.
type Summary struct {
	Session Session `json:"session"`
	AllTime AllTime `json:"allTime"`
}

// Tracker records results and owns the history. It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	store   Store
	log     *slog.Logger
	now     func() time.Time
	totals  Totals
	session Session
	history []Entry
}

// NewTracker loads the persisted snapshot from store.
func NewTracker(ctx context.Context, store Store, logger *slog.Logger) (*Tracker, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	if len(snap.History) > MaxHistory {
		snap.History = snap.History[:MaxHistory]
	}
	return &Tracker{
		store:   store,
		log:     logger,
		now:     time.Now,
		totals:  snap.Totals,
		history: snap.History,
	}, nil
}

// Record counts a finished game and prepends it to the history. Games that
// are still ongoing are ignored. Store failures are logged, not returned.
func (t *Tracker) Record(ctx context.Context, r Record) (Entry, bool) {
	if r.Result.Outcome == domain.Ongoing {
		return Entry{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.session.Games++
	t.totals.GamesPlayed++
	switch {
	case r.Result.Outcome == domain.Draw:
		t.session.Draws++
		t.totals.Draws++
		t.totals.CurrentStreak = 0
		t.totals.LastWinner = ""
	case r.Result.Winner == domain.X:
		t.session.Wins++
		t.totals.Wins++
		t.totals.CurrentStreak++
		if t.totals.CurrentStreak > t.totals.BestStreak {
			t.totals.BestStreak = t.totals.CurrentStreak
		}
		t.totals.LastWinner = domain.X.String()
	default:
		t.session.Losses++
		t.totals.Losses++
		t.totals.CurrentStreak = 0
		t.totals.LastWinner = r.Result.Winner.String()
	}

	id := r.GameID
	if id == "" {
		id = uuid.NewString()
	}
	e := Entry{
		ID:         id,
		Timestamp:  t.now().UTC(),
		Result:     r.Result.Outcome.String(),
		Winner:     r.Result.Winner.String(),
		WinnerName: winnerName(r.Result, r.PlayerX, r.PlayerO),
		PlayerX:    r.PlayerX,
		PlayerO:    r.PlayerO,
		Board:      r.Board.Strings(),
		Mode:       r.Mode,
		Difficulty: r.Difficulty,
	}
	t.history = append([]Entry{e}, t.history...)
	if len(t.history) > MaxHistory {
		t.history = t.history[:MaxHistory]
	}
	if err := t.saveLocked(ctx); err != nil {
		t.log.Warn("persist stats", "err", err)
	}
	return e, true
}

func winnerName(res domain.Result, playerX, playerO string) string {
	switch {
	case res.Outcome != domain.Win:
		return "Draw"
	case res.Winner == domain.X:
		return playerX
	default:
		return playerO
	}
}

// Summary returns session and all-time counters.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summary{
		Session: t.session,
		AllTime: AllTime{Totals: t.totals, WinPercentage: percent(t.totals.Wins, t.totals.GamesPlayed)},
	}
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// ResetSession zeroes the session counters.
func (t *Tracker) ResetSession() {
	t.mu.Lock()
	t.session = Session{}
	t.mu.Unlock()
}

// ResetAll zeroes session and all-time counters. History is kept.
func (t *Tracker) ResetAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = Session{}
	t.totals = Totals{}
	return t.saveLocked(ctx)
}

func (t *Tracker) saveLocked(ctx context.Context) error {
	snap := Snapshot{Totals: t.totals, History: append([]Entry(nil), t.history...)}
	if err := t.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}
