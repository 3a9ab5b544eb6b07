package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore keeps the snapshot in two tables: a single counters row and
// the kept history entries.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dsn, pings it and creates the tables if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// Init creates the tables.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tictactoe_stats (
			id INT PRIMARY KEY,
			wins INT NOT NULL DEFAULT 0,
			losses INT NOT NULL DEFAULT 0,
			draws INT NOT NULL DEFAULT 0,
			current_streak INT NOT NULL DEFAULT 0,
			best_streak INT NOT NULL DEFAULT 0,
			games_played INT NOT NULL DEFAULT 0,
			last_winner VARCHAR(1) NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating stats table: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tictactoe_history (
			id VARCHAR(64) PRIMARY KEY,
			played_at TIMESTAMPTZ NOT NULL,
			result VARCHAR(8) NOT NULL,
			winner VARCHAR(1) NOT NULL,
			winner_name VARCHAR(50) NOT NULL,
			player_x VARCHAR(50) NOT NULL,
			player_o VARCHAR(50) NOT NULL,
			board JSONB NOT NULL,
			mode VARCHAR(16) NOT NULL,
			difficulty VARCHAR(16) NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating history table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	t := &snap.Totals
	err := s.db.QueryRowContext(ctx,
		"SELECT wins, losses, draws, current_streak, best_streak, games_played, last_winner FROM tictactoe_stats WHERE id = 1",
	).Scan(&t.Wins, &t.Losses, &t.Draws, &t.CurrentStreak, &t.BestStreak, &t.GamesPlayed, &t.LastWinner)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, played_at, result, winner, winner_name, player_x, player_o, board, mode, difficulty FROM tictactoe_history ORDER BY played_at DESC LIMIT $1",
		MaxHistory,
	)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		var board []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Result, &e.Winner, &e.WinnerName, &e.PlayerX, &e.PlayerO, &board, &e.Mode, &e.Difficulty); err != nil {
			return Snapshot{}, err
		}
		if err := json.Unmarshal(board, &e.Board); err != nil {
			return Snapshot{}, fmt.Errorf("history %s: %w", e.ID, err)
		}
		snap.History = append(snap.History, e)
	}
	return snap, rows.Err()
}

// Save replaces the counters row and the history in one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	t := snap.Totals
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tictactoe_stats (id, wins, losses, draws, current_streak, best_streak, games_played, last_winner, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			draws = EXCLUDED.draws,
			current_streak = EXCLUDED.current_streak,
			best_streak = EXCLUDED.best_streak,
			games_played = EXCLUDED.games_played,
			last_winner = EXCLUDED.last_winner,
			updated_at = EXCLUDED.updated_at
	`, t.Wins, t.Losses, t.Draws, t.CurrentStreak, t.BestStreak, t.GamesPlayed, t.LastWinner)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tictactoe_history"); err != nil {
		return err
	}
	for _, e := range snap.History {
		board, err := json.Marshal(e.Board)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO tictactoe_history (id, played_at, result, winner, winner_name, player_x, player_o, board, mode, difficulty) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
			e.ID, e.Timestamp, e.Result, e.Winner, e.WinnerName, e.PlayerX, e.PlayerO, string(board), e.Mode, e.Difficulty,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
