package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameJoin  = "game:join"
	actionGameTurn  = "game:turn"
	actionGameLeave = "game:leave"
)

const (
	gameStatusLeave       = "leave"
	gameStatusOpponentOut = "opponent_out"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Token  string         `json:"token,omitempty"`
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Cell   *int           `json:"cell,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// maskGameDetails returns a copy of the game without the seat list.
func maskGameDetails(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil

	return &masked
}
