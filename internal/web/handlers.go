package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/tictactoe/internal/ai"
	"github.com/jaminalder/tictactoe/internal/app"
	"github.com/jaminalder/tictactoe/internal/domain"
)

type handlers struct {
	svc        *app.Service
	tpl        *templates
	log        *slog.Logger
	engine     *ai.Engine
	difficulty ai.Difficulty
}

func roleOf(gs app.GameState, pid string) app.Role {
	if gs.Owner != "" && gs.Owner == pid {
		return app.Owner
	}
	return app.Spectator
}

func (h *handlers) renderBoard(gs app.GameState, role app.Role, errMsg string) []byte {
	return renderTemplate(h.tpl.board, "", newBoardView(gs, role, errMsg))
}

func writeHTML(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	data := struct{ Difficulties []difficultyOption }{}
	for _, d := range []ai.Difficulty{ai.Easy, ai.Medium, ai.Hard} {
		label := d.String()
		data.Difficulties = append(data.Difficulties, difficultyOption{
			Value:    label,
			Label:    strings.ToUpper(label[:1]) + label[1:],
			Selected: d == h.difficulty,
		})
	}
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.index, "", data))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	pid := ensurePlayerCookie(w, r)
	_ = r.ParseForm()
	opts := app.Options{
		Mode:       app.ParseMode(r.Form.Get("mode")),
		Difficulty: h.difficulty,
		NameX:      r.Form.Get("nameX"),
		NameO:      r.Form.Get("nameO"),
	}
	if d := r.Form.Get("difficulty"); d != "" {
		opts.Difficulty = ai.ParseDifficulty(d)
	}
	gs, err := h.svc.CreateGame(opts, pid)
	if err != nil {
		h.log.Error("create game", "err", err)
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	role, gs, err := h.svc.Join(id, pid)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := gamePage{
		ID:    gs.ID,
		Board: newBoardView(*gs, role, ""),
		Stats: h.svc.Tracker().Summary(),
	}
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.game, "", data))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	role, gs, err := h.svc.Join(id, pid)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, role, ""))
}

// moveError maps service and domain errors to a message for the board.
func moveError(err error) string {
	switch {
	case errors.Is(err, app.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, app.ErrNotAPlayer):
		return "You are a spectator"
	case errors.Is(err, domain.ErrOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	default:
		return "Invalid move"
	}
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_ = r.ParseForm()
	ri, errR := strconv.Atoi(r.Form.Get("r"))
	ci, errC := strconv.Atoi(r.Form.Get("c"))
	var gs *app.GameState
	var err error
	if errR != nil || errC != nil {
		err = domain.ErrOutOfBounds
	} else {
		gs, err = h.svc.Play(r.Context(), id, pid, ri, ci)
	}
	h.respondBoard(w, r, id, pid, gs, err)
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	gs, err := h.svc.Restart(r.Context(), id, pid)
	h.respondBoard(w, r, id, pid, gs, err)
}

func (h *handlers) respondBoard(w http.ResponseWriter, r *http.Request, id, pid string, gs *app.GameState, err error) {
	if errors.Is(err, app.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	var errMsg string
	if err != nil {
		errMsg = moveError(err)
		if gs == nil {
			if g, ok := h.svc.Get(id); ok {
				gs = g
			}
		}
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, roleOf(*gs, pid), errMsg))
}

func (h *handlers) statsFragment(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.stats, "", h.svc.Tracker().Summary()))
}

var heartbeatInterval = 15 * time.Second

// writeSSE writes one event; multi-line payloads get one data line each.
func writeSSE(w io.Writer, event string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(string(payload), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// Plain GETs only get the headers.
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	pid := playerID(r)
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case gs, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, "board", h.renderBoard(gs, roleOf(gs, pid), ""))
			flusher.Flush()
		}
	}
}
