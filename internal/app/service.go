package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe/internal/ai"
	"github.com/jaminalder/tictactoe/internal/domain"
	"github.com/jaminalder/tictactoe/internal/stats"
)

// Errors exposed by the service layer.
var (
	ErrNotFound    = errors.New("game not found")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotAPlayer  = errors.New("not a player")
)

// AISeat is the mark the computer plays in ModeAI.
const AISeat = domain.O

// Role is what a visitor may do in a game.
type Role uint8

const (
	Spectator Role = iota
	Owner
)

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    domain.Game
	Options Options
	// Owner plays X, and O too unless the computer does.
	Owner string
	// AI is the computer's mark, Empty in two-player games.
	AI domain.Cell
	// Round counts restarts; AI replies scheduled in an older round are dropped.
	Round   int
	Created time.Time
	Updated time.Time

	recorded bool
}

// PlayerName returns the display name for mark c.
func (gs GameState) PlayerName(c domain.Cell) string {
	if c == domain.O {
		return gs.Options.NameO
	}
	return gs.Options.NameX
}

// AwaitingAI reports whether the next move belongs to the computer.
func (gs GameState) AwaitingAI() bool {
	return gs.AI != domain.Empty && !gs.Game.Over && gs.Game.Turn == gs.AI
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan GameState
	closed bool
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// offer delivers gs, replacing a snapshot the reader has not taken yet.
// It reports false once the subscriber is closed.
func (s *subscriber) offer(gs GameState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- gs:
		return true
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- gs:
		return true
	default:
		return false
	}
}

// Config wires the collaborators of a Service. Zero values get defaults.
type Config struct {
	Engine  *ai.Engine
	Tracker *stats.Tracker
	Logger  *slog.Logger
	// AIDelay postpones the computer's reply; zero replies inside Play.
	AIDelay time.Duration
}

// Service manages games and subscribers.
type Service struct {
	mu      sync.Mutex
	games   map[string]*GameState
	subs    map[string]map[*subscriber]struct{}
	engine  *ai.Engine
	tracker *stats.Tracker
	log     *slog.Logger
	aiDelay time.Duration
}

// NewService creates a service; missing collaborators are replaced by
// in-memory defaults.
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Engine == nil {
		cfg.Engine = ai.NewEngine(uint64(time.Now().UnixNano()))
	}
	if cfg.Tracker == nil {
		// a memory store never fails to load
		cfg.Tracker, _ = stats.NewTracker(context.Background(), stats.NewMemoryStore(), cfg.Logger)
	}
	return &Service{
		games:   make(map[string]*GameState),
		subs:    make(map[string]map[*subscriber]struct{}),
		engine:  cfg.Engine,
		tracker: cfg.Tracker,
		log:     cfg.Logger,
		aiDelay: cfg.AIDelay,
	}
}

// Tracker returns the statistics tracker results are recorded in.
func (s *Service) Tracker() *stats.Tracker { return s.tracker }

// CreateGame creates and registers a new game owned by ownerID (may be empty).
func (s *Service) CreateGame(opts Options, ownerID string) (*GameState, error) {
	opts = opts.normalize()
	now := time.Now()
	gs := &GameState{ID: uuid.NewString(), Game: domain.New(), Options: opts, Owner: ownerID, Created: now, Updated: now}
	if opts.Mode == ModeAI {
		gs.AI = AISeat
	}
	s.mu.Lock()
	s.games[gs.ID] = gs
	cp := *gs
	s.mu.Unlock()
	s.log.Info("game created", "game", gs.ID, "mode", opts.Mode, "difficulty", opts.Difficulty.String())
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Join claims ownership of an unowned game; everyone else spectates.
func (s *Service) Join(id, playerID string) (Role, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return Spectator, nil, ErrNotFound
	}
	role := Spectator
	if gs.Owner == "" || gs.Owner == playerID {
		gs.Owner = playerID
		role = Owner
		gs.Updated = time.Now()
	}
	cp := *gs
	return role, &cp, nil
}

// Play applies the owner's move at row r, column c.
func (s *Service) Play(ctx context.Context, id, playerID string, r, c int) (*GameState, error) {
	return s.play(ctx, id, playerID, func(g *domain.Game) error { return g.Play(r, c) })
}

// PlayIndex applies the owner's move at cell idx.
func (s *Service) PlayIndex(ctx context.Context, id, playerID string, idx int) (*GameState, error) {
	return s.play(ctx, id, playerID, func(g *domain.Game) error { return g.PlayIndex(idx) })
}

// play validates seat and turn, applies a move, records a finished game,
// broadcasts and then lets the computer answer.
func (s *Service) play(ctx context.Context, id, playerID string, move func(*domain.Game) error) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Owner == "" || gs.Owner != playerID {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if gs.AwaitingAI() {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	if err := move(&gs.Game); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gs.Updated = time.Now()
	rec, finished := s.finishLocked(gs)
	cp := *gs
	subs := s.copySubsLocked(id)
	s.mu.Unlock()

	if finished {
		s.tracker.Record(ctx, rec)
	}
	s.fanOut(id, subs, cp)

	if cp.AwaitingAI() {
		if s.aiDelay > 0 {
			round, moves := cp.Round, cp.Game.Moves
			time.AfterFunc(s.aiDelay, func() { s.aiMove(context.Background(), id, round, moves) })
		} else if next, ok := s.aiMove(ctx, id, cp.Round, cp.Game.Moves); ok {
			cp = *next
		}
	}
	return &cp, nil
}

// aiMove asks the engine for the computer's reply on a snapshot of the
// board. The reply is dropped if the game moved on while the engine ran.
func (s *Service) aiMove(ctx context.Context, id string, round, moves int) (*GameState, bool) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok || gs.Round != round || gs.Game.Moves != moves || !gs.AwaitingAI() {
		s.mu.Unlock()
		return nil, false
	}
	board, diff, side := gs.Game.Board, gs.Options.Difficulty, gs.AI
	s.mu.Unlock()

	start := time.Now()
	idx := s.engine.Move(board, diff, side)
	s.log.Debug("ai move", "game", id, "difficulty", diff.String(), "cell", idx, "dur", time.Since(start))
	if idx == ai.NoMove {
		return nil, false
	}

	s.mu.Lock()
	gs, ok = s.games[id]
	if !ok || gs.Round != round || gs.Game.Moves != moves {
		s.mu.Unlock()
		return nil, false
	}
	if err := gs.Game.PlayIndex(idx); err != nil {
		s.mu.Unlock()
		s.log.Warn("ai move rejected", "game", id, "cell", idx, "err", err)
		return nil, false
	}
	gs.Updated = time.Now()
	rec, finished := s.finishLocked(gs)
	cp := *gs
	subs := s.copySubsLocked(id)
	s.mu.Unlock()

	if finished {
		s.tracker.Record(ctx, rec)
	}
	s.fanOut(id, subs, cp)
	return &cp, true
}

// finishLocked marks a finished game as recorded and describes it.
func (s *Service) finishLocked(gs *GameState) (stats.Record, bool) {
	if !gs.Game.Over || gs.recorded {
		return stats.Record{}, false
	}
	gs.recorded = true
	rec := stats.Record{
		GameID:  gs.ID,
		Result:  gs.Game.Result(),
		Board:   gs.Game.Board,
		PlayerX: gs.Options.NameX,
		PlayerO: gs.Options.NameO,
		Mode:    string(gs.Options.Mode),
	}
	if gs.Options.Mode == ModeAI {
		rec.Difficulty = gs.Options.Difficulty.String()
	}
	if gs.Round > 0 {
		rec.GameID = gs.ID + "-" + strconv.Itoa(gs.Round)
	}
	s.log.Info("game finished", "game", gs.ID, "result", rec.Result.Outcome.String(), "winner", rec.Result.Winner.String())
	return rec, true
}

// Restart clears the board for another round with the same options.
func (s *Service) Restart(ctx context.Context, id, playerID string) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Owner == "" || gs.Owner != playerID {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	gs.Game = domain.New()
	gs.Round++
	gs.recorded = false
	gs.Updated = time.Now()
	cp := *gs
	subs := s.copySubsLocked(id)
	s.mu.Unlock()
	s.fanOut(id, subs, cp)
	return &cp, nil
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// fanOut delivers a snapshot to every subscriber and forgets closed ones.
func (s *Service) fanOut(id string, subs map[*subscriber]struct{}, gs GameState) {
	var toDrop []*subscriber
	for sub := range subs {
		if !sub.offer(gs) {
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) == 0 {
		return
	}
	s.log.Debug("dropped subscribers", "game", id, "count", len(toDrop))
	s.mu.Lock()
	for _, sub := range toDrop {
		if set, ok := s.subs[id]; ok {
			delete(set, sub)
		}
	}
	s.mu.Unlock()
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sweep removes games idle for longer than maxAge and closes their
// subscribers. It returns the number of games removed.
func (s *Service) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	var closing []*subscriber
	n := 0
	for id, gs := range s.games {
		if gs.Updated.After(cutoff) {
			continue
		}
		for sub := range s.subs[id] {
			closing = append(closing, sub)
		}
		delete(s.subs, id)
		delete(s.games, id)
		n++
	}
	s.mu.Unlock()
	for _, sub := range closing {
		sub.close()
	}
	if n > 0 {
		s.log.Info("swept idle games", "count", n)
	}
	return n
}
