package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	gameIDLength   = 6
	gameIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-session-id"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}

// GenerateGameID - generates a short code players can type to join a game.
func GenerateGameID() (string, error) {
	id := make([]byte, gameIDLength)
	limit := big.NewInt(int64(len(gameIDAlphabet)))

	for i := range id {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random index: %w", err)
		}

		id[i] = gameIDAlphabet[n.Int64()]
	}

	return string(id), nil
}
