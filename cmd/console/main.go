package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/rocketscienceinc/tictactoe/internal/config"
	"github.com/rocketscienceinc/tictactoe/internal/console"
)

// main - plays tic-tac-toe on the terminal.
func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	flag.Parse()

	_ = godotenv.Load()

	conf, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: conf.SlogLevel()}))

	if err = console.New(logger, os.Stdin, os.Stdout).Run(); err != nil {
		logger.Error("console session failed", "error", err)
		os.Exit(1)
	}
}
