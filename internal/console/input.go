package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

var (
	ErrNotANumber = errors.New("not a number")
	ErrOutOfRange = errors.New("position out of range")
)

// ParseMove turns a 1..9 position typed by a player into a free cell index.
func ParseMove(board *entity.Board, input string) (int, error) {
	position, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return -1, fmt.Errorf("%w: %q", ErrNotANumber, input)
	}

	if position < 1 || position > len(board) {
		return -1, fmt.Errorf("%w: %d", ErrOutOfRange, position)
	}

	cell := position - 1
	if board[cell] != entity.Empty {
		return -1, fmt.Errorf("position %d: %w", position, apperror.ErrCellOccupied)
	}

	return cell, nil
}

// inputMessage is what the player sees before being asked again.
func inputMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotANumber):
		return "Invalid input. Please enter a number 1-9.\n"
	case errors.Is(err, ErrOutOfRange):
		return "Position must be 1..9.\n"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "Cell already taken. Choose another.\n"
	default:
		return err.Error() + "\n"
	}
}
