package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

// memStore keeps players and games in memory for flows that touch storage many times.
type memStore struct {
	mu      sync.Mutex
	players map[string]entity.Player
	games   map[string]*entity.Game
	waiting string
}

func newMemStore() *memStore {
	return &memStore{
		players: make(map[string]entity.Player),
		games:   make(map[string]*entity.Game),
	}
}

type memPlayerRepo struct{ *memStore }

func (that memPlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.players[player.ID] = *player
	return nil
}

func (that memPlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[id]
	if !ok {
		return &entity.Player{}, repository.ErrPlayerNotFound
	}

	return &player, nil
}

type memGameRepo struct{ *memStore }

func (that memGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored := *game
	stored.Players = make([]*entity.Player, 0, len(game.Players))
	for _, player := range game.Players {
		p := *player
		stored.Players = append(stored.Players, &p)
	}
	that.games[game.ID] = &stored

	switch {
	case game.IsPublic() && game.IsWaiting():
		that.waiting = game.ID
	case that.waiting == game.ID:
		that.waiting = ""
	}

	return nil
}

func (that memGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return &entity.Game{}, repository.ErrGameNotFound
	}

	copied := *game
	copied.Players = make([]*entity.Player, 0, len(game.Players))
	for _, player := range game.Players {
		p := *player
		copied.Players = append(copied.Players, &p)
	}

	return &copied, nil
}

func (that memGameRepo) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	that.mu.Lock()
	waiting := that.waiting
	that.mu.Unlock()

	if waiting == "" {
		return &entity.Game{}, repository.ErrGameNotFound
	}

	return that.GetByID(ctx, waiting)
}

func (that memGameRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return repository.ErrGameNotFound
	}

	delete(that.games, id)
	if that.waiting == id {
		that.waiting = ""
	}

	return nil
}
