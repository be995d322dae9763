package entity

import "time"

// GameRecord is a finished game kept in history.
type GameRecord struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Difficulty string    `json:"difficulty,omitempty"`
	Board      Board     `json:"board"`
	Winner     string    `json:"winner"`
	PlayerX    string    `json:"player_x"`
	PlayerO    string    `json:"player_o"`
	Moves      int       `json:"moves"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewGameRecord(game *Game, finishedAt time.Time) *GameRecord {
	record := &GameRecord{
		ID:         game.ID,
		Type:       game.Type,
		Difficulty: game.Difficulty,
		Board:      game.Board,
		Winner:     game.Winner,
		Moves:      game.Moves(),
		CreatedAt:  game.CreatedAt,
		FinishedAt: finishedAt.UTC(),
	}

	if player := game.PlayerByMark(PlayerX); player != nil {
		record.PlayerX = player.ID
	}

	if player := game.PlayerByMark(PlayerO); player != nil {
		record.PlayerO = player.ID
	}

	return record
}
