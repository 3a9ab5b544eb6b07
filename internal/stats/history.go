package stats

import (
	"context"
	"encoding/json"
)

// DefaultRecent is the count Recent uses for n <= 0.
const DefaultRecent = 5

// History returns a copy of all kept entries, newest first.
func (t *Tracker) History() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.history...)
}

// Recent returns up to n entries, newest first.
func (t *Tracker) Recent(n int) []Entry {
	if n <= 0 {
		n = DefaultRecent
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > len(t.history) {
		n = len(t.history)
	}
	return append([]Entry(nil), t.history[:n]...)
}

// ClearHistory drops every entry. Counters are kept.
func (t *Tracker) ClearHistory(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
	return t.saveLocked(ctx)
}

// HistorySummary aggregates the kept entries only.
type HistorySummary struct {
	TotalGames int `json:"totalGames"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Draws      int `json:"draws"`
	WinRate    int `json:"winRate"`
}

func (t *Tracker) HistorySummary() HistorySummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	var s HistorySummary
	s.TotalGames = len(t.history)
	for _, e := range t.history {
		switch {
		case e.Result == "draw":
			s.Draws++
		case e.Winner == "X":
			s.Wins++
		default:
			s.Losses++
		}
	}
	s.WinRate = percent(s.Wins, s.TotalGames)
	return s
}

type exportGame struct {
	GameID  string `json:"gameId"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Result  string `json:"result"`
	Winner  string `json:"winner"`
	PlayerX string `json:"playerX"`
	PlayerO string `json:"playerO"`
}

type exportDoc struct {
	ExportDate string       `json:"exportDate"`
	TotalGames int          `json:"totalGames"`
	Games      []exportGame `json:"games"`
}

// Export renders the history as an indented JSON document for download.
func (t *Tracker) Export() ([]byte, error) {
	t.mu.Lock()
	doc := exportDoc{
		ExportDate: t.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		TotalGames: len(t.history),
		Games:      make([]exportGame, 0, len(t.history)),
	}
	for _, e := range t.history {
		doc.Games = append(doc.Games, exportGame{
			GameID:  e.ID,
			Date:    e.Timestamp.Format("2006-01-02"),
			Time:    e.Timestamp.Format("15:04:05"),
			Result:  e.Result,
			Winner:  e.WinnerName,
			PlayerX: e.PlayerX,
			PlayerO: e.PlayerO,
		})
	}
	t.mu.Unlock()
	return json.MarshalIndent(doc, "", "  ")
}

// ExportFilename is the suggested download name for Export output.
func (t *Tracker) ExportFilename() string {
	return "tictactoe-history-" + t.now().UTC().Format("2006-01-02") + ".json"
}
