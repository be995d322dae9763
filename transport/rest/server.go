package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/pkg/handlers"
)

const shutdownWait = 5 * time.Second

type historyUseCase interface {
	History(ctx context.Context, playerID string, limit int) ([]*entity.GameRecord, error)
}

type tokenParser interface {
	ParseToken(token string) (string, error)
}

type Server struct {
	logger  *slog.Logger
	history historyUseCase
	auth    tokenParser
}

func New(logger *slog.Logger, history historyUseCase, auth tokenParser) *Server {
	return &Server{
		logger:  logger.With("component", "rest"),
		history: history,
		auth:    auth,
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", handlers.PingHandler)
	mux.HandleFunc("GET /history", that.HistoryHandler)

	return mux
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down http server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
