// Package console runs interactive tic-tac-toe sessions over a text stream.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

const (
	TwoPlayersMode = 1
	ComputerMode   = 2
)

type Driver struct {
	logger *slog.Logger
	in     *bufio.Scanner
	out    io.Writer
}

func New(logger *slog.Logger, in io.Reader, out io.Writer) *Driver {
	return &Driver{
		logger: logger.With("component", "console"),
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run shows the mode menu and plays the chosen mode until the game ends.
func (that *Driver) Run() error {
	log := that.logger.With("method", "Run")

	writeBanner(that.out, "          === Tic-Tac-Toe Game ===\n")
	fmt.Fprint(that.out, "1) Two players\n2) Play vs Computer (AI)\nChoose mode (1 or 2): ")

	line, err := that.readLine()
	if err != nil {
		fmt.Fprint(that.out, "Invalid input. Exiting.\n")
		return nil
	}

	mode, err := strconv.Atoi(line)
	if err != nil {
		fmt.Fprint(that.out, "Invalid input. Exiting.\n")
		return nil
	}

	log.Debug("mode selected", "mode", mode)

	switch mode {
	case TwoPlayersMode:
		return that.TwoPlayers()
	case ComputerMode:
		return that.AgainstComputer()
	default:
		fmt.Fprint(that.out, "Unknown mode. Exiting.\n")
		return nil
	}
}

// TwoPlayers alternates X and O on the same input, X first.
func (that *Driver) TwoPlayers() error {
	log := that.logger.With("method", "TwoPlayers")

	// O plays the "computer" role only so outcomes can be told apart.
	engine := tictactoe.New(entity.PlayerO)

	var board entity.Board
	turn := entity.PlayerX

	writeBanner(that.out, " Two-player mode. X = Player1, O = Player2\n")
	RenderBoard(that.out, &board)

	for {
		writeBanner(that.out, fmt.Sprintf(" Player %s's turn.\n", turn))

		cell, err := that.PromptMove(&board)
		if err != nil {
			return fmt.Errorf("player %s move: %w", turn, err)
		}

		board[cell] = turn
		RenderBoard(that.out, &board)

		outcome := engine.CheckWin(&board)
		switch outcome {
		case tictactoe.ComputerWin:
			writeBanner(that.out, " O (Player 2) wins!\n")
		case tictactoe.HumanWin:
			writeBanner(that.out, " X (Player 1) wins!\n")
		case tictactoe.Draw:
			writeBanner(that.out, " It's a draw!\n")
		case tictactoe.Ongoing:
			turn = turn.Opponent()
			continue
		}

		log.Debug("game finished", "outcome", outcome.String())
		return nil
	}
}

// AgainstComputer plays the human as X against the minimax engine as O.
func (that *Driver) AgainstComputer() error {
	log := that.logger.With("method", "AgainstComputer")

	engine := tictactoe.New(entity.PlayerO)

	var board entity.Board

	writeBanner(that.out, " Human vs Computer\n You are X. Computer is O.\n")
	RenderBoard(that.out, &board)

	fmt.Fprint(that.out, "Do you want to go first? (y/n): ")

	answer, err := that.readLine()
	if err != nil {
		return fmt.Errorf("read first move choice: %w", err)
	}

	// Only the first character counts, so "yes" is a yes.
	humanTurn := strings.HasPrefix(strings.ToLower(answer), "y")

	for {
		if humanTurn {
			writeBanner(that.out, " Your move (X):\n")

			cell, err := that.PromptMove(&board)
			if err != nil {
				return fmt.Errorf("human move: %w", err)
			}

			board[cell] = engine.Human()
		} else {
			writeBanner(that.out, " Computer is thinking...\n")

			cell := engine.FindBestMove(&board)
			if cell == tictactoe.NoMove {
				// FindBestMove only gives up on a full board, which CheckWin already ended.
				empty := board.EmptyCells()
				if len(empty) == 0 {
					return errors.New("computer has no move on a full board")
				}

				cell = empty[0]
			}

			board[cell] = engine.Computer()
			log.Debug("computer moved", "cell", cell)
			fmt.Fprintf(that.out, " Computer chose position %d.\n", cell+1)
		}

		RenderBoard(that.out, &board)

		outcome := engine.CheckWin(&board)
		switch outcome {
		case tictactoe.ComputerWin:
			writeBanner(that.out, " Computer (O) wins!\n")
		case tictactoe.HumanWin:
			writeBanner(that.out, " You (X) win! Congrats!\n")
		case tictactoe.Draw:
			writeBanner(that.out, " It's a draw!\n")
		case tictactoe.Ongoing:
			humanTurn = !humanTurn
			continue
		}

		log.Debug("game finished", "outcome", outcome.String())
		return nil
	}
}

// PromptMove asks until a free position 1..9 is entered and returns its cell index.
func (that *Driver) PromptMove(board *entity.Board) (int, error) {
	for {
		fmt.Fprint(that.out, "Enter your move (1-9): ")

		line, err := that.readLine()
		if err != nil {
			return -1, err
		}

		cell, err := ParseMove(board, line)
		if err != nil {
			that.logger.Debug("rejected move", "method", "PromptMove", "input", line, "error", err)
			fmt.Fprint(that.out, inputMessage(err))
			continue
		}

		return cell, nil
	}
}

// readLine returns the next non-blank line, trimmed.
func (that *Driver) readLine() (string, error) {
	for that.in.Scan() {
		if line := strings.TrimSpace(that.in.Text()); line != "" {
			return line, nil
		}
	}

	if err := that.in.Err(); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return "", fmt.Errorf("failed to read input: %w", io.ErrUnexpectedEOF)
}
