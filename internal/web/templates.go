package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe/internal/app"
	"github.com/jaminalder/tictactoe/internal/domain"
	"github.com/jaminalder/tictactoe/internal/stats"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
	stats *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic Tac Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	template.Must(base.New("board").Parse(boardTemplate))
	template.Must(base.New("stats").Parse(statsTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Tic Tac Toe</h1>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board" sse-swap="board">{{template "board" .Board}}</div>
</div>
<div id="stats" hx-get="/stats" hx-trigger="load, every 5s">{{template "stats" .Stats}}</div>
<p><a href="/">New game</a></p>`))
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	statsOnly := template.Must(template.New("stats_only").Parse(statsTemplate))
	return &templates{game: game, board: board, index: index, stats: statsOnly}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const indexTemplate = `<h1>Tic Tac Toe</h1>
<form action="/game" method="post">
  <fieldset>
    <legend>Mode</legend>
    <label><input type="radio" name="mode" value="two-player" checked> Two players</label>
    <label><input type="radio" name="mode" value="ai"> Against the computer</label>
  </fieldset>
  <label>Difficulty
    <select name="difficulty">
    {{range .Difficulties}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
    </select>
  </label>
  <label>Player X <input name="nameX" maxlength="20" placeholder="Player X"></label>
  <label>Player O <input name="nameO" maxlength="20" placeholder="Player O"></label>
  <button>Create</button>
</form>`

const boardTemplate = `
<div id="board">
  <p class="status">{{.Status}}</p>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="r" value="{{.Row}}">
        <input type="hidden" name="c" value="{{.Col}}">
        <button type="submit" class="cell{{if .Win}} win{{end}}"{{if .Disabled}} disabled{{end}}>{{.Symbol}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  {{if .CanRestart}}
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">Play again</button>
  </form>
  {{end}}
</div>
`

const statsTemplate = `
<table class="stats">
  <tr><th></th><th>Wins</th><th>Losses</th><th>Draws</th><th>Games</th></tr>
  <tr><td>Session</td><td>{{.Session.Wins}}</td><td>{{.Session.Losses}}</td><td>{{.Session.Draws}}</td><td>{{.Session.Games}}</td></tr>
  <tr><td>All time</td><td>{{.AllTime.Wins}}</td><td>{{.AllTime.Losses}}</td><td>{{.AllTime.Draws}}</td><td>{{.AllTime.GamesPlayed}}</td></tr>
</table>
<p>Win rate {{.AllTime.WinPercentage}}%, streak {{.AllTime.CurrentStreak}} (best {{.AllTime.BestStreak}})</p>
`

type cellView struct {
	Row, Col int
	Symbol   string
	Win      bool
	Disabled bool
}

type boardView struct {
	ID         string
	Status     string
	Error      string
	Rows       [3][3]cellView
	CanRestart bool
}

type gamePage struct {
	ID    string
	Board boardView
	Stats stats.Summary
}

type difficultyOption struct {
	Value, Label string
	Selected     bool
}

// statusText describes the game from the viewer's side of the table.
func statusText(gs app.GameState) string {
	g := gs.Game
	switch {
	case g.Over && g.Winner != domain.Empty:
		return gs.PlayerName(g.Winner) + " Wins!"
	case g.Over:
		return "It's a Draw!"
	case gs.AwaitingAI():
		return gs.PlayerName(g.Turn) + " is thinking..."
	default:
		return gs.PlayerName(g.Turn) + "'s turn (" + g.Turn.String() + ")"
	}
}

func newBoardView(gs app.GameState, role app.Role, errMsg string) boardView {
	v := boardView{ID: gs.ID, Status: statusText(gs), Error: errMsg, CanRestart: role == app.Owner && gs.Game.Over}
	locked := role != app.Owner || gs.Game.Over || gs.AwaitingAI()
	for i, c := range gs.Game.Board {
		v.Rows[i/3][i%3] = cellView{
			Row:      i / 3,
			Col:      i % 3,
			Symbol:   c.String(),
			Win:      gs.Game.InLine(i),
			Disabled: locked || c != domain.Empty,
		}
	}
	return v
}

const playerCookie = "player_id"

// ensurePlayerCookie returns the visitor's id, issuing one if missing.
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookie); err == nil && c.Value != "" {
		return c.Value
	}
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}

func playerID(r *http.Request) string {
	if c, err := r.Cookie(playerCookie); err == nil {
		return c.Value
	}
	return ""
}
