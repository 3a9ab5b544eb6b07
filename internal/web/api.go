package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jaminalder/tictactoe/internal/ai"
	"github.com/jaminalder/tictactoe/internal/domain"
	"github.com/jaminalder/tictactoe/internal/stats"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type moveRequest struct {
	Board      []string `json:"board"`
	Difficulty string   `json:"difficulty"`
	AI         string   `json:"ai"`
}

type moveResponse struct {
	Move *int `json:"move"`
}

// apiMove answers with the computer's move for an arbitrary position.
// A full board answers {"move": null}.
func (h *handlers) apiMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := domain.ParseBoard(req.Board)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	side := domain.O
	if req.AI != "" {
		side, err = domain.ParseCell(req.AI)
		if err != nil || side == domain.Empty {
			writeError(w, http.StatusBadRequest, "ai must be X or O")
			return
		}
	}
	idx := h.engine.Move(b, ai.ParseDifficulty(req.Difficulty), side)
	var resp moveResponse
	if idx != ai.NoMove {
		resp.Move = &idx
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) apiStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Tracker().Summary())
}

func (h *handlers) apiResetSession(w http.ResponseWriter, r *http.Request) {
	t := h.svc.Tracker()
	t.ResetSession()
	writeJSON(w, http.StatusOK, t.Summary())
}

func (h *handlers) apiResetAll(w http.ResponseWriter, r *http.Request) {
	t := h.svc.Tracker()
	if err := t.ResetAll(r.Context()); err != nil {
		h.log.Error("reset statistics", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to reset statistics")
		return
	}
	writeJSON(w, http.StatusOK, t.Summary())
}

type historyResponse struct {
	Games   []stats.Entry        `json:"games"`
	Summary stats.HistorySummary `json:"summary"`
}

// apiHistory lists recent games; limit defaults to stats.DefaultRecent.
func (h *handlers) apiHistory(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		var err error
		n, err = strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}
	t := h.svc.Tracker()
	resp := historyResponse{Games: t.Recent(n), Summary: t.HistorySummary()}
	if resp.Games == nil {
		resp.Games = []stats.Entry{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) apiClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Tracker().ClearHistory(r.Context()); err != nil {
		h.log.Error("clear history", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) apiExportHistory(w http.ResponseWriter, r *http.Request) {
	t := h.svc.Tracker()
	b, err := t.Export()
	if err != nil {
		h.log.Error("export history", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to export game history")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+t.ExportFilename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
