package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

var ErrGameNotFound = errors.New("game not found")

const (
	gameKeyPrefix     = "game:"
	waitingPublicGame = "game:public:waiting"
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

// CreateOrUpdate stores the game and keeps the waiting public game pointer in sync with it.
func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKeyPrefix+game.ID, gameJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	if !game.IsPublic() {
		return nil
	}

	if game.IsWaiting() {
		if err = that.client.Set(ctx, waitingPublicGame, game.ID, 0).Err(); err != nil {
			return fmt.Errorf("failed to mark public game as waiting: %w", err)
		}

		return nil
	}

	return that.clearWaiting(ctx, game.ID)
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKeyPrefix+id).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by ID: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

// GetWaitingPublicGame returns the public game still waiting for an opponent.
func (that *dbGame) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	gameID, err := that.client.Get(ctx, waitingPublicGame).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	game, err := that.GetByID(ctx, gameID)
	if errors.Is(err, ErrGameNotFound) {
		// the pointer outlived its game
		_ = that.clearWaiting(ctx, gameID)
		return game, ErrGameNotFound
	}

	return game, err
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted == 0 {
		return ErrGameNotFound
	}

	return that.clearWaiting(ctx, id)
}

func (that *dbGame) clearWaiting(ctx context.Context, id string) error {
	waitingID, err := that.client.Get(ctx, waitingPublicGame).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get waiting public game: %w", err)
	}

	if waitingID != id {
		return nil
	}

	if err = that.client.Del(ctx, waitingPublicGame).Err(); err != nil {
		return fmt.Errorf("failed to clear waiting public game: %w", err)
	}

	return nil
}
