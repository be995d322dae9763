package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS game_history (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	difficulty  TEXT NOT NULL DEFAULT '',
	board       JSONB NOT NULL,
	winner      TEXT NOT NULL,
	player_x    TEXT NOT NULL DEFAULT '',
	player_o    TEXT NOT NULL DEFAULT '',
	moves       INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS game_history_player_x_idx ON game_history (player_x, finished_at DESC);
CREATE INDEX IF NOT EXISTS game_history_player_o_idx ON game_history (player_o, finished_at DESC);
`

const upsertRecord = `
INSERT INTO game_history (id, type, difficulty, board, winner, player_x, player_o, moves, created_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
	board = EXCLUDED.board,
	winner = EXCLUDED.winner,
	moves = EXCLUDED.moves,
	finished_at = EXCLUDED.finished_at
`

const selectByPlayer = `
SELECT id, type, difficulty, board, winner, player_x, player_o, moves, created_at, finished_at
FROM game_history
WHERE player_x = $1 OR player_o = $1
ORDER BY finished_at DESC
LIMIT $2
`

type HistoryRepository interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, record *entity.GameRecord) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.GameRecord, error)
}

type dbHistory struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &dbHistory{
		db: db,
	}
}

// Init creates the history table when it is missing.
func (that *dbHistory) Init(ctx context.Context) error {
	if _, err := that.db.ExecContext(ctx, createHistoryTable); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}

	return nil
}

// Save inserts the record, or overwrites the result of a game saved before.
func (that *dbHistory) Save(ctx context.Context, record *entity.GameRecord) error {
	boardJSON, err := json.Marshal(record.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	_, err = that.db.ExecContext(ctx, upsertRecord,
		record.ID, record.Type, record.Difficulty, boardJSON, record.Winner,
		record.PlayerX, record.PlayerO, record.Moves, record.CreatedAt, record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %w", err)
	}

	return nil
}

// ListByPlayer returns the newest finished games of a player. limit is clamped to 1..MaxHistoryLimit.
func (that *dbHistory) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.GameRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	rows, err := that.db.QueryContext(ctx, selectByPlayer, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := make([]*entity.GameRecord, 0, limit)
	for rows.Next() {
		var (
			record    entity.GameRecord
			boardJSON []byte
		)

		if err = rows.Scan(
			&record.ID, &record.Type, &record.Difficulty, &boardJSON, &record.Winner,
			&record.PlayerX, &record.PlayerO, &record.Moves, &record.CreatedAt, &record.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game record: %w", err)
		}

		if err = json.Unmarshal(boardJSON, &record.Board); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board: %w", err)
		}

		records = append(records, &record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return records, nil
}
