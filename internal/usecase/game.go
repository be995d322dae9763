package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
)

type GameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType, difficulty string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)
	EndGame(ctx context.Context, game *entity.Game)

	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)

	History(ctx context.Context, playerID string, limit int) ([]*entity.GameRecord, error)
}

type playerService interface {
	CreatePlayer(ctx context.Context) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameService interface {
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
}

type gamePlayService interface {
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error)
	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType, difficulty string) (*entity.Game, error)
	CleanupGame(ctx context.Context, game *entity.Game)
	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)
}

type historyRepo interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.GameRecord, error)
}

type gameUseCase struct {
	logger *slog.Logger

	playerService   playerService
	gameService     gameService
	gamePlayService gamePlayService
	historyRepo     historyRepo

	defaultDifficulty string
}

func NewGameUseCase(
	logger *slog.Logger,
	playerService playerService,
	gameService gameService,
	gamePlayService gamePlayService,
	historyRepo historyRepo,
	defaultDifficulty string,
) GameUseCase {
	return &gameUseCase{
		logger:            logger.With("component", "game_usecase"),
		playerService:     playerService,
		gameService:       gameService,
		gamePlayService:   gamePlayService,
		historyRepo:       historyRepo,
		defaultDifficulty: entity.NormalizeDifficulty(defaultDifficulty),
	}
}

func (that *gameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID == "" {
		player, err := that.playerService.CreatePlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// GetOrCreateGame returns the player's current game. A player without one joins the waiting
// public game when asking for a public game, and opens a new game otherwise.
func (that *gameUseCase) GetOrCreateGame(ctx context.Context, playerID, gameType, difficulty string) (*entity.Game, error) {
	if gameType == entity.WithBotType && difficulty == "" {
		difficulty = that.defaultDifficulty
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if player.GameID == "" {
		if err = entity.ValidateGameType(gameType, difficulty); err != nil {
			return nil, err
		}
	}

	if player.GameID == "" && gameType == entity.PublicType {
		game, err := that.gamePlayService.JoinWaitingPublicGame(ctx, playerID)
		switch {
		case err == nil:
			return game, nil
		case !errors.Is(err, repository.ErrGameNotFound) && !errors.Is(err, apperror.ErrGameIsFull):
			return nil, fmt.Errorf("failed to join public game: %w", err)
		}
	}

	game, err := that.gamePlayService.GetOrCreateGame(ctx, player, gameType, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gamePlayService.JoinGameByID(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// EndGame drops the game from live storage and frees its players.
func (that *gameUseCase) EndGame(ctx context.Context, game *entity.Game) {
	that.gamePlayService.CleanupGame(ctx, game)
}

// MakeTurn plays the move. A move that ends the game records it in history, clears it from
// live storage and returns the final state together with apperror.ErrGameFinished.
func (that *gameUseCase) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	game, err := that.gamePlayService.MakeTurn(ctx, playerID, cell)
	if err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if game.IsFinished() {
		that.record(ctx, game)
		that.gamePlayService.CleanupGame(ctx, game)

		return game, apperror.ErrGameFinished
	}

	return game, nil
}

func (that *gameUseCase) History(ctx context.Context, playerID string, limit int) ([]*entity.GameRecord, error) {
	records, err := that.historyRepo.ListByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	return records, nil
}

func (that *gameUseCase) record(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "record", "gameID", game.ID)

	if err := that.historyRepo.Save(ctx, entity.NewGameRecord(game, time.Now())); err != nil {
		log.Error("failed to save game history", "error", err)
		return
	}

	log.Info("game recorded", "winner", game.Winner, "moves", game.Moves())
}
