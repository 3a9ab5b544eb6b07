package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jaminalder/tictactoe/internal/app"
	"github.com/jaminalder/tictactoe/internal/stats"
)

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestAPIMove(t *testing.T) {
	_, h := newTestServer(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"opening", `{"board":["","","","","","","","",""],"difficulty":"hard"}`, 4},
		{"win over block", `{"board":["X","X","","O","O","","","",""],"difficulty":"medium"}`, 5},
		{"hard blocks", `{"board":["X","X","","","O","","","",""],"difficulty":"hard"}`, 2},
		{"ai plays X", `{"board":["O","O","","X","X","","","",""],"difficulty":"hard","ai":"X"}`, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, h, "/api/move", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			got := decode[moveResponse](t, rr)
			if got.Move == nil || *got.Move != tt.want {
				t.Fatalf("expected move %d, got %s", tt.want, rr.Body.String())
			}
		})
	}
}

func TestAPIMoveFullBoardIsNull(t *testing.T) {
	_, h := newTestServer(t)
	rr := postJSON(t, h, "/api/move", `{"board":["X","O","X","X","O","O","O","X","X"],"difficulty":"hard"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"move":null}` {
		t.Fatalf("expected null move, got %s", rr.Body.String())
	}
}

func TestAPIMoveUnknownDifficultyPlaysLegalMove(t *testing.T) {
	_, h := newTestServer(t)
	rr := postJSON(t, h, "/api/move", `{"board":["X","O","X","O","X","O","","X","O"],"difficulty":"impossible"}`)
	got := decode[moveResponse](t, rr)
	if got.Move == nil || *got.Move != 6 {
		t.Fatalf("expected the only empty cell 6, got %s", rr.Body.String())
	}
}

func TestAPIMoveRejectsBadInput(t *testing.T) {
	_, h := newTestServer(t)
	for _, body := range []string{
		`not json`,
		`{"board":["","",""]}`,
		`{"board":["","","","","","","","","Z"]}`,
		`{"board":["","","","","","","","",""],"ai":"Q"}`,
	} {
		if rr := postJSON(t, h, "/api/move", body); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rr.Code)
		}
	}
}

func playXWin(t *testing.T, svc *app.Service) {
	t.Helper()
	ctx := context.Background()
	gs, _ := svc.CreateGame(app.Options{NameX: "Ada", NameO: "Bob"}, "p1")
	for _, idx := range []int{0, 3, 1, 4, 2} {
		if _, err := svc.PlayIndex(ctx, gs.ID, "p1", idx); err != nil {
			t.Fatalf("play %d: %v", idx, err)
		}
	}
}

func TestAPIStatsAndResets(t *testing.T) {
	svc, h := newTestServer(t)
	playXWin(t, svc)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/stats", nil))
	sum := decode[stats.Summary](t, rr)
	if sum.Session.Wins != 1 || sum.AllTime.Wins != 1 || sum.AllTime.WinPercentage != 100 {
		t.Fatalf("unexpected stats: %s", rr.Body.String())
	}

	sum = decode[stats.Summary](t, postJSON(t, h, "/api/stats/reset-session", ""))
	if sum.Session.Games != 0 || sum.AllTime.GamesPlayed != 1 {
		t.Fatalf("session reset should keep all-time: %+v", sum)
	}

	sum = decode[stats.Summary](t, postJSON(t, h, "/api/stats/reset", ""))
	if sum.AllTime.GamesPlayed != 0 || sum.AllTime.Wins != 0 {
		t.Fatalf("full reset should zero the counters: %+v", sum)
	}
	if len(svc.Tracker().History()) != 1 {
		t.Fatalf("full reset keeps the history")
	}
}

func TestAPIHistoryListClearAndExport(t *testing.T) {
	svc, h := newTestServer(t)
	for i := 0; i < 7; i++ {
		playXWin(t, svc)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/history", nil))
	hist := decode[historyResponse](t, rr)
	if len(hist.Games) != stats.DefaultRecent || hist.Summary.TotalGames != 7 || hist.Summary.WinRate != 100 {
		t.Fatalf("unexpected history: %s", rr.Body.String())
	}
	if hist.Games[0].WinnerName != "Ada" || hist.Games[0].Result != "win" {
		t.Fatalf("unexpected entry: %+v", hist.Games[0])
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/history?limit=2", nil))
	if hist = decode[historyResponse](t, rr); len(hist.Games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(hist.Games))
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/history?limit=-1", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/history/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "tictactoe-history-") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	var doc struct {
		TotalGames int               `json:"totalGames"`
		Games      []json.RawMessage `json:"games"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil || doc.TotalGames != 7 || len(doc.Games) != 7 {
		t.Fatalf("unexpected export %s (err %v)", rr.Body.String(), err)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/history", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/history", nil))
	if hist = decode[historyResponse](t, rr); len(hist.Games) != 0 || hist.Summary.TotalGames != 0 {
		t.Fatalf("expected empty history, got %s", rr.Body.String())
	}
	if svc.Tracker().Summary().AllTime.GamesPlayed != 7 {
		t.Fatalf("clearing history should keep counters")
	}
}
