package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

type historyResponse struct {
	PlayerID string               `json:"player_id"`
	Games    []*entity.GameRecord `json:"games"`
}

const bearerPrefix = "Bearer "

// HistoryHandler lists finished games of the token's player, newest first, at most ?limit= of them.
// The session token comes from an "Authorization: Bearer" header or ?token=.
func (that *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "HistoryHandler")

	token := requestToken(r)
	if token == "" {
		http.Error(w, "token is required", http.StatusUnauthorized)
		return
	}

	playerID, err := that.auth.ParseToken(token)
	if err != nil {
		log.Debug("rejected token", "error", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative number", http.StatusBadRequest)
			return
		}

		limit = parsed
	}

	records, err := that.history.History(r.Context(), playerID, limit)
	if err != nil {
		log.Error("failed to load history", "playerID", playerID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(historyResponse{PlayerID: playerID, Games: records}); err != nil {
		log.Error("failed to write history", "error", err)
	}
}

func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}

	return r.URL.Query().Get("token")
}
