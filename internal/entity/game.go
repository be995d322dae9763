package entity

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	PublicType  = "public"
	PrivateType = "private"
	WithBotType = "bot"
)

const (
	EasyDifficulty = "easy"
	HardDifficulty = "hard"
)

var (
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrUnknownGameStatus = errors.New("unknown game status")
	ErrUnknownGameType   = errors.New("unknown game type")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

type Game struct {
	ID         string    `json:"id"`
	Board      Board     `json:"board"`
	Winner     string    `json:"winner"`
	Status     string    `json:"status"`
	Turn       Mark      `json:"player_turn"`
	Players    []*Player `json:"players,omitempty"`
	Type       string    `json:"type,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewGame(id, gameType, difficulty string) *Game {
	return &Game{
		ID:         id,
		Turn:       PlayerX,
		Status:     StatusWaiting,
		Type:       gameType,
		Difficulty: difficulty,
		CreatedAt:  time.Now().UTC(),
	}
}

// ValidateGameType checks the type a client asked for; bot games also need a known difficulty.
// NormalizeDifficulty maps anything other than easy to hard.
func NormalizeDifficulty(difficulty string) string {
	if difficulty == EasyDifficulty {
		return EasyDifficulty
	}

	return HardDifficulty
}

func ValidateGameType(gameType, difficulty string) error {
	switch gameType {
	case PublicType, PrivateType:
		return nil
	case WithBotType:
		switch difficulty {
		case EasyDifficulty, HardDifficulty:
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownGameType, gameType)
	}
}

// DetermineGameResult returns the winning mark, PlayerTie for a full board, or "" while the game goes on.
func (that *Game) DetermineGameResult() string {
	if winner := that.Board.Winner(); winner != Empty {
		return winner.String()
	}

	// the game will continue until all the squares are full
	if that.Board.HasEmpty() {
		return ""
	}

	return PlayerTie
}

func (that *Game) UpdateGameState() {
	switch winner := that.DetermineGameResult(); winner {
	// game continue
	case "":
		that.Status = StatusOngoing
	// one player wins or tie
	default:
		that.Winner = winner
		that.Status = StatusFinished
		that.Turn = Empty
	}
}

func (that *Game) MakeTurn(playerMark Mark, cell int) error {
	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != Empty {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = playerMark
	that.Turn = playerMark.Opponent()

	that.UpdateGameState()

	return nil
}

// Moves is the number of marks placed so far.
func (that *Game) Moves() int {
	return len(that.Board) - that.Board.Count(Empty)
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// Bot returns the bot seated in the game, or nil.
func (that *Game) Bot() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

// PlayerByMark returns the player holding mark, or nil.
func (that *Game) PlayerByMark(mark Mark) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

func (that *Game) GetRandomMarks() (Mark, Mark) {
	if rand.IntN(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}
