package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// handleConnect registers the player and hands out a session token.
func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	playerID := ""
	if payloadReq.Token != "" {
		if playerID, err = that.auth.ParseToken(payloadReq.Token); err != nil {
			log.Warn("rejected token", "error", err)
			return that.sendErrorResponse(conn, msg.Action, apperror.ErrUnauthorized.Error())
		}
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player")
	}

	token, err := that.auth.GenerateToken(player.ID)
	if err != nil {
		log.Error("failed to generate token", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a session")
	}

	that.connections.add(player.ID, conn)

	payloadResp := Payload{
		Token:  token,
		Player: player,
	}

	if player.GameID != "" {
		game, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		if err != nil {
			log.Warn("failed to restore game", "gameID", player.GameID, "error", err)
		} else {
			payloadResp.Game = maskGameDetails(game)
		}
	}

	if err = conn.send(msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, playerID, ok := that.authorize(msg, conn)
	if !ok {
		return nil
	}

	if payloadReq.Game == nil {
		return that.sendErrorResponse(conn, msg.Action, "game is required")
	}

	game, err := that.gameUseCase.GetOrCreateGame(ctx, playerID, payloadReq.Game.Type, payloadReq.Game.Difficulty)
	if err != nil {
		log.Error("failed to create or get game", "playerID", playerID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("failed to create a new game: %v", err))
	}

	that.broadcast(msg.Action, game, "")

	log.Info("player is in game", "playerID", playerID, "gameID", game.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleJoinGame")

	payloadReq, playerID, ok := that.authorize(msg, conn)
	if !ok {
		return nil
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		return that.sendErrorResponse(conn, msg.Action, "game id is required")
	}

	game, err := that.gameUseCase.JoinGameByID(ctx, payloadReq.Game.ID, playerID)
	if err != nil {
		log.Error("failed to join game", "playerID", playerID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("game %s: %v", payloadReq.Game.ID, err))
	}

	that.broadcast(msg.Action, game, "")

	log.Info("player joined game", "playerID", playerID, "gameID", game.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, playerID, ok := that.authorize(msg, conn)
	if !ok {
		return nil
	}

	if payloadReq.Cell == nil {
		return that.sendErrorResponse(conn, msg.Action, "cell is required")
	}

	game, err := that.gameUseCase.MakeTurn(ctx, playerID, *payloadReq.Cell)

	switch {
	case errors.Is(err, apperror.ErrGameFinished) && game != nil && game.IsFinished():
		that.broadcast(msg.Action, game, "")
		log.Info("game finished", "gameID", game.ID, "winner", game.Winner)
		return nil
	case err != nil:
		log.Debug("turn rejected", "playerID", playerID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, turnErrorMessage(err))
	}

	that.broadcast(msg.Action, game, "")

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameLeave")

	_, playerID, ok := that.authorize(msg, conn)
	if !ok {
		return nil
	}

	game, err := that.gameUseCase.GetGameByPlayerID(ctx, playerID)
	if err != nil {
		log.Debug("no game to leave", "playerID", playerID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "game doesn't exist")
	}

	that.gameUseCase.EndGame(ctx, game)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		status := gameStatusOpponentOut
		if player.ID == playerID {
			status = gameStatusLeave
		}

		that.sendGame(msg.Action, player, game, status)
	}

	log.Info("player left", "playerID", playerID, "gameID", game.ID)

	return nil
}

// authorize decodes the payload and resolves the player from its token. Failures are answered on conn.
func (that *Server) authorize(msg *Message, conn *connection) (*Payload, string, bool) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		_ = that.sendErrorResponse(conn, msg.Action, "invalid payload")
		return nil, "", false
	}

	playerID, err := that.auth.ParseToken(payloadReq.Token)
	if err != nil {
		_ = that.sendErrorResponse(conn, msg.Action, apperror.ErrUnauthorized.Error())
		return nil, "", false
	}

	that.connections.add(playerID, conn)

	return payloadReq, playerID, true
}

// broadcast sends the game to every connected human seated in it.
func (that *Server) broadcast(action string, game *entity.Game, status string) {
	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		that.sendGame(action, player, game, status)
	}
}

func (that *Server) sendGame(action string, player *entity.Player, game *entity.Game, status string) {
	log := that.logger.With("method", "sendGame", "playerID", player.ID)

	conn, ok := that.connections.get(player.ID)
	if !ok {
		log.Debug("connection not found for player")
		return
	}

	masked := maskGameDetails(game)
	if status != "" {
		masked.Status = status
	}

	if err := conn.send(action, Payload{Player: player, Game: masked}); err != nil {
		log.Error("failed to send game update", "error", err)
	}
}

func (that *Server) sendErrorResponse(conn *connection, action, errorMsg string) error {
	if err := conn.send(action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func decodePayload(msg *Message) (*Payload, error) {
	payload := &Payload{}
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func turnErrorMessage(err error) string {
	for _, known := range []error{
		apperror.ErrNotYourTurn,
		apperror.ErrCellOccupied,
		apperror.ErrGameIsNotStarted,
		apperror.ErrGameFinished,
		apperror.ErrNoActiveGames,
		entity.ErrInvalidCell,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "failed to make turn"
}
