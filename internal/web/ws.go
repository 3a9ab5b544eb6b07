package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/tictactoe/internal/app"
	"github.com/jaminalder/tictactoe/internal/domain"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

const wsIdlePingInterval = 30 * time.Second

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsMove struct {
	Cell int `json:"cell"`
}

type wsError struct {
	Error string `json:"error"`
}

// stateDTO is the JSON view of a game pushed to websocket clients.
type stateDTO struct {
	ID         string   `json:"id"`
	Board      []string `json:"board"`
	Turn       string   `json:"turn"`
	Status     string   `json:"status"`
	Winner     string   `json:"winner,omitempty"`
	Line       []int    `json:"line,omitempty"`
	Message    string   `json:"message"`
	Mode       string   `json:"mode"`
	Difficulty string   `json:"difficulty,omitempty"`
	PlayerX    string   `json:"playerX"`
	PlayerO    string   `json:"playerO"`
	Moves      int      `json:"moves"`
	Round      int      `json:"round"`
	Role       string   `json:"role"`
}

func newStateDTO(gs app.GameState, pid string) stateDTO {
	res := gs.Game.Result()
	dto := stateDTO{
		ID:      gs.ID,
		Board:   gs.Game.Board.Strings(),
		Turn:    gs.Game.Turn.String(),
		Status:  res.Outcome.String(),
		Winner:  res.Winner.String(),
		Message: statusText(gs),
		Mode:    string(gs.Options.Mode),
		PlayerX: gs.Options.NameX,
		PlayerO: gs.Options.NameO,
		Moves:   gs.Game.Moves,
		Round:   gs.Round,
		Role:    "spectator",
	}
	if gs.Options.Mode == app.ModeAI {
		dto.Difficulty = gs.Options.Difficulty.String()
	}
	if gs.Game.Winner != domain.Empty {
		dto.Line = gs.Game.Line[:]
	}
	if roleOf(gs, pid) == app.Owner {
		dto.Role = "owner"
	}
	return dto
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func stateMessage(gs app.GameState, pid string) []byte {
	return mustMarshal(wsMessage{Type: "state", Payload: mustMarshal(newStateDTO(gs, pid))})
}

// ws streams game states as JSON and accepts "move", "restart" and
// "request_state" messages from the owner.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	pid := playerID(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", "game", id, "err", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	states, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		_ = conn.Close()
		return
	}
	defer unsub()

	send := make(chan []byte, 8)
	queue := func(msg []byte) {
		select {
		case send <- msg:
		default:
		}
	}
	if gs, ok := h.svc.Get(id); ok {
		queue(stateMessage(*gs, pid))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, pid, states, send); err != nil {
			h.log.Debug("ws write failed", "game", id, "err", err)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "move":
			var mv wsMove
			if err := json.Unmarshal(msg.Payload, &mv); err != nil {
				queue(mustMarshal(wsMessage{Type: "error", Payload: mustMarshal(wsError{Error: "Invalid move"})}))
				continue
			}
			if _, err := h.svc.PlayIndex(ctx, id, pid, mv.Cell); err != nil {
				queue(mustMarshal(wsMessage{Type: "error", Payload: mustMarshal(wsError{Error: moveError(err)})}))
			}
		case "restart":
			if _, err := h.svc.Restart(ctx, id, pid); err != nil {
				queue(mustMarshal(wsMessage{Type: "error", Payload: mustMarshal(wsError{Error: moveError(err)})}))
			}
		case "request_state":
			if gs, ok := h.svc.Get(id); ok {
				queue(stateMessage(*gs, pid))
			}
		}
	}
	cancel()
	<-done
}

// writeWSWithHeartbeat is the connection's only writer. It returns when
// the state channel closes or a write fails.
func writeWSWithHeartbeat(conn *websocket.Conn, pid string, states <-chan app.GameState, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	write := func(msg []byte) error {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return err
		}
		lastWrite = time.Now()
		return nil
	}
	for {
		select {
		case gs, ok := <-states:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := write(stateMessage(gs, pid)); err != nil {
				return err
			}
		case msg := <-send:
			if err := write(msg); err != nil {
				return err
			}
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := write(pingPayload); err != nil {
				return err
			}
		}
	}
}
