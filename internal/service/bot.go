package service

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
)

type BotService interface {
	MakeTurn(game *entity.Game) error
	ChooseCell(game *entity.Game, mark entity.Mark) (int, error)
}

type botService struct {
	defaultDifficulty string
}

// NewBotService returns a bot that plays games without a difficulty at defaultDifficulty.
func NewBotService(defaultDifficulty string) BotService {
	return &botService{
		defaultDifficulty: entity.NormalizeDifficulty(defaultDifficulty),
	}
}

func (that *botService) MakeTurn(game *entity.Game) error {
	botPlayer := game.Bot()
	if botPlayer == nil {
		return ErrBotNotFound
	}

	cell, err := that.ChooseCell(game, botPlayer.Mark)
	if err != nil {
		return err
	}

	if err = game.MakeTurn(botPlayer.Mark, cell); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}

// ChooseCell picks the cell mark would play: a random free cell on easy, the minimax move otherwise.
func (that *botService) ChooseCell(game *entity.Game, mark entity.Mark) (int, error) {
	difficulty := game.Difficulty
	if difficulty == "" {
		difficulty = that.defaultDifficulty
	}

	if difficulty == entity.EasyDifficulty {
		availableCells := game.Board.EmptyCells()
		if len(availableCells) == 0 {
			return tictactoe.NoMove, ErrNoAvailableMoves
		}

		return availableCells[rand.IntN(len(availableCells))], nil //nolint: gosec // it's ok
	}

	board := game.Board
	cell := tictactoe.New(mark).FindBestMove(&board)
	if cell == tictactoe.NoMove {
		return tictactoe.NoMove, ErrNoAvailableMoves
	}

	return cell, nil
}
