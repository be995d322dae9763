package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
)

var errRedisDown = errors.New("redis down")

type gamePlayFixture struct {
	store    *memStore
	players  PlayerService
	gamePlay GamePlayService
}

func newGamePlayFixture(difficulty string) *gamePlayFixture {
	store := newMemStore()
	players := NewPlayerService(memPlayerRepo{store})
	games := NewGameService(memGameRepo{store})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &gamePlayFixture{
		store:    store,
		players:  players,
		gamePlay: NewGamePlayService(logger, players, games, NewBotService(difficulty)),
	}
}

func (that *gamePlayFixture) newPlayer(t *testing.T) *entity.Player {
	t.Helper()

	player, err := that.players.CreatePlayer(context.Background())
	require.NoError(t, err)

	return player
}

func TestGamePlayService_PrivateGame(t *testing.T) {
	ctx := context.Background()
	fx := newGamePlayFixture(entity.HardDifficulty)

	// Given: a host who opened a private game
	host := fx.newPlayer(t)
	game, err := fx.gamePlay.GetOrCreateGame(ctx, host, entity.PrivateType, entity.HardDifficulty)
	require.NoError(t, err)
	assert.True(t, game.IsWaiting())
	assert.Empty(t, game.Difficulty)

	// And: a move before anyone joins is refused
	_, err = fx.gamePlay.MakeTurn(ctx, host.ID, 0)
	require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)

	// When: a guest joins by ID
	guest := fx.newPlayer(t)
	game, err = fx.gamePlay.JoinGameByID(ctx, game.ID, guest.ID)

	// Then: the game starts with the guest as O
	require.NoError(t, err)
	assert.True(t, game.IsOngoing())
	require.Len(t, game.Players, 2)
	assert.Equal(t, guest.ID, game.PlayerByMark(entity.PlayerO).ID)

	storedGuest, err := fx.players.GetPlayerByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, storedGuest.GameID)

	// And: a third player cannot join
	third := fx.newPlayer(t)
	_, err = fx.gamePlay.JoinGameByID(ctx, game.ID, third.ID)
	require.ErrorIs(t, err, apperror.ErrGameIsFull)

	// And: joining again is a no-op for a seated player
	again, err := fx.gamePlay.JoinGameByID(ctx, game.ID, guest.ID)
	require.NoError(t, err)
	assert.Len(t, again.Players, 2)
}

func TestGamePlayService_JoinWhileSeatedElsewhere(t *testing.T) {
	ctx := context.Background()
	fx := newGamePlayFixture(entity.HardDifficulty)

	// Given: a guest playing in private game A and a host waiting in private game B
	hostA := fx.newPlayer(t)
	gameA, err := fx.gamePlay.GetOrCreateGame(ctx, hostA, entity.PrivateType, "")
	require.NoError(t, err)

	guest := fx.newPlayer(t)
	_, err = fx.gamePlay.JoinGameByID(ctx, gameA.ID, guest.ID)
	require.NoError(t, err)

	hostB := fx.newPlayer(t)
	gameB, err := fx.gamePlay.GetOrCreateGame(ctx, hostB, entity.PrivateType, "")
	require.NoError(t, err)

	// When: the guest tries to join game B
	_, err = fx.gamePlay.JoinGameByID(ctx, gameB.ID, guest.ID)

	// Then: the join is refused and both games keep their seats
	require.ErrorIs(t, err, apperror.ErrAlreadyInGame)

	storedGuest, err := fx.players.GetPlayerByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, gameA.ID, storedGuest.GameID)
	assert.Equal(t, entity.PlayerO, storedGuest.Mark)

	storedA, err := memGameRepo{fx.store}.GetByID(ctx, gameA.ID)
	require.NoError(t, err)
	assert.True(t, storedA.IsOngoing())
	assert.Len(t, storedA.Players, 2)

	storedB, err := memGameRepo{fx.store}.GetByID(ctx, gameB.ID)
	require.NoError(t, err)
	assert.True(t, storedB.IsWaiting())
	assert.Len(t, storedB.Players, 1)

	// And: a host waiting in its own game cannot join another one
	_, err = fx.gamePlay.JoinGameByID(ctx, gameA.ID, hostB.ID)
	require.ErrorIs(t, err, apperror.ErrAlreadyInGame)
}

func TestGamePlayService_MakeTurn(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*gamePlayFixture, *entity.Player, *entity.Player, string) {
		t.Helper()

		fx := newGamePlayFixture(entity.HardDifficulty)
		host := fx.newPlayer(t)
		game, err := fx.gamePlay.GetOrCreateGame(ctx, host, entity.PrivateType, "")
		require.NoError(t, err)

		guest := fx.newPlayer(t)
		_, err = fx.gamePlay.JoinGameByID(ctx, game.ID, guest.ID)
		require.NoError(t, err)

		return fx, host, guest, game.ID
	}

	t.Run("Players alternate and the top row wins", func(t *testing.T) {
		fx, host, guest, gameID := setup(t)

		// Given: X and O trade moves
		moves := []struct {
			player *entity.Player
			cell   int
		}{
			{host, 0}, {guest, 3}, {host, 1}, {guest, 4}, {host, 2},
		}

		// When: the moves are played
		var game *entity.Game
		for _, move := range moves {
			var err error
			game, err = fx.gamePlay.MakeTurn(ctx, move.player.ID, move.cell)
			require.NoError(t, err)
		}

		// Then: X wins and the finished game is stored
		assert.True(t, game.IsFinished())
		assert.Equal(t, "X", game.Winner)
		assert.Equal(t, entity.Empty, game.Turn)

		stored, err := memGameRepo{fx.store}.GetByID(ctx, gameID)
		require.NoError(t, err)
		assert.True(t, stored.IsFinished())

		// And: further moves are refused
		_, err = fx.gamePlay.MakeTurn(ctx, guest.ID, 8)
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Out of turn", func(t *testing.T) {
		fx, _, guest, _ := setup(t)

		game, err := fx.gamePlay.MakeTurn(ctx, guest.ID, 0)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, entity.Board{}, game.Board)
	})

	t.Run("Occupied cell", func(t *testing.T) {
		fx, host, guest, _ := setup(t)

		_, err := fx.gamePlay.MakeTurn(ctx, host.ID, 4)
		require.NoError(t, err)

		_, err = fx.gamePlay.MakeTurn(ctx, guest.ID, 4)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Cell out of range", func(t *testing.T) {
		fx, host, _, _ := setup(t)

		_, err := fx.gamePlay.MakeTurn(ctx, host.ID, 9)

		require.ErrorIs(t, err, entity.ErrInvalidCell)
	})

	t.Run("Player without a game", func(t *testing.T) {
		fx := newGamePlayFixture(entity.HardDifficulty)
		loner := fx.newPlayer(t)

		_, err := fx.gamePlay.MakeTurn(ctx, loner.ID, 0)

		require.ErrorIs(t, err, apperror.ErrNoActiveGames)
	})
}

func TestGamePlayService_BotGame(t *testing.T) {
	ctx := context.Background()

	for range 10 {
		fx := newGamePlayFixture(entity.HardDifficulty)
		human := fx.newPlayer(t)

		// Given: a new hard bot game
		game, err := fx.gamePlay.GetOrCreateGame(ctx, human, entity.WithBotType, entity.HardDifficulty)
		require.NoError(t, err)

		// Then: it starts at once, and a bot holding X has already opened
		require.True(t, game.IsOngoing())
		bot := game.Bot()
		require.NotNil(t, bot)
		assert.Equal(t, human.Mark.Opponent(), bot.Mark)
		assert.Equal(t, human.Mark, game.Turn)
		if bot.Mark == entity.PlayerX {
			assert.Equal(t, 1, game.Moves())
		} else {
			assert.Zero(t, game.Moves())
		}

		// When: the human keeps playing the lowest free cell
		for !game.IsFinished() {
			cell := game.Board.EmptyCells()[0]
			game, err = fx.gamePlay.MakeTurn(ctx, human.ID, cell)
			require.NoError(t, err)
		}

		// Then: the bot never loses
		assert.NotEqual(t, human.Mark.String(), game.Winner)
	}
}

func TestGamePlayService_JoinWaitingPublicGame(t *testing.T) {
	ctx := context.Background()
	fx := newGamePlayFixture(entity.HardDifficulty)

	// Given: no public game yet
	first := fx.newPlayer(t)
	_, err := fx.gamePlay.JoinWaitingPublicGame(ctx, first.ID)
	require.ErrorIs(t, err, repository.ErrGameNotFound)

	// When: one is opened and another player looks for one
	game, err := fx.gamePlay.GetOrCreateGame(ctx, first, entity.PublicType, "")
	require.NoError(t, err)

	second := fx.newPlayer(t)
	joined, err := fx.gamePlay.JoinWaitingPublicGame(ctx, second.ID)

	// Then: the second player is seated in it and it is no longer waiting
	require.NoError(t, err)
	assert.Equal(t, game.ID, joined.ID)
	assert.True(t, joined.IsOngoing())

	_, err = fx.gamePlay.JoinWaitingPublicGame(ctx, fx.newPlayer(t).ID)
	require.ErrorIs(t, err, repository.ErrGameNotFound)
}

func TestGamePlayService_CleanupGame(t *testing.T) {
	ctx := context.Background()
	fx := newGamePlayFixture(entity.HardDifficulty)

	// Given: a bot game
	human := fx.newPlayer(t)
	game, err := fx.gamePlay.GetOrCreateGame(ctx, human, entity.WithBotType, entity.EasyDifficulty)
	require.NoError(t, err)

	// When: it is cleaned up
	fx.gamePlay.CleanupGame(ctx, game)

	// Then: the game is gone and the human is free again
	_, err = memGameRepo{fx.store}.GetByID(ctx, game.ID)
	require.ErrorIs(t, err, repository.ErrGameNotFound)

	stored, err := fx.players.GetPlayerByID(ctx, human.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.GameID)
	assert.Equal(t, entity.Empty, stored.Mark)

	_, err = fx.players.GetPlayerByID(ctx, game.Bot().ID)
	require.ErrorIs(t, err, repository.ErrPlayerNotFound)
}

func TestGamePlayService_StorageFailures(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Game update fails after a move", func(t *testing.T) {
		// Given: an ongoing game whose save fails
		playerRepo := &mockPlayerRepo{}
		gameRepo := &mockGameRepo{}
		gamePlay := NewGamePlayService(logger, NewPlayerService(playerRepo), NewGameService(gameRepo), NewBotService(""))

		game := entity.NewGame("G1", entity.PrivateType, "")
		game.Status = entity.StatusOngoing
		game.Players = []*entity.Player{{ID: "p1", Mark: entity.PlayerX, GameID: "G1"}}

		playerRepo.On("GetByID", mock.Anything, "p1").Return(game.Players[0], nil).Once()
		gameRepo.On("GetByID", mock.Anything, "G1").Return(game, nil).Once()
		gameRepo.On("CreateOrUpdate", mock.Anything, game).Return(errRedisDown).Once()

		// When: the player moves
		result, err := gamePlay.MakeTurn(ctx, "p1", 4)

		// Then: the storage error is returned
		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, result)
		playerRepo.AssertExpectations(t)
		gameRepo.AssertExpectations(t)
	})

	t.Run("Create fails", func(t *testing.T) {
		playerRepo := &mockPlayerRepo{}
		gameRepo := &mockGameRepo{}
		gamePlay := NewGamePlayService(logger, NewPlayerService(playerRepo), NewGameService(gameRepo), NewBotService(""))

		gameRepo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()

		game, err := gamePlay.GetOrCreateGame(ctx, &entity.Player{ID: "p1"}, entity.PrivateType, "")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
		playerRepo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Cleanup keeps going when delete fails", func(t *testing.T) {
		playerRepo := &mockPlayerRepo{}
		gameRepo := &mockGameRepo{}
		gamePlay := NewGamePlayService(logger, NewPlayerService(playerRepo), NewGameService(gameRepo), NewBotService(""))

		game := entity.NewGame("G1", entity.PrivateType, "")
		game.Players = []*entity.Player{{ID: "p1", Mark: entity.PlayerX, GameID: "G1"}}

		gameRepo.On("DeleteByID", mock.Anything, "G1").Return(errRedisDown).Once()
		playerRepo.On("CreateOrUpdate", mock.Anything, &entity.Player{ID: "p1"}).Return(nil).Once()

		gamePlay.CleanupGame(ctx, game)

		playerRepo.AssertExpectations(t)
		gameRepo.AssertExpectations(t)
		assert.Equal(t, entity.PlayerX, game.Players[0].Mark)
	})
}
