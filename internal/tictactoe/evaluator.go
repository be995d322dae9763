// Package tictactoe scores 3x3 boards and picks the computer's move with an exhaustive minimax search.
package tictactoe

import "github.com/rocketscienceinc/tictactoe/internal/entity"

const (
	winScore  = 10
	lossScore = -10
	drawScore = 0
)

// Outcome is the state of a board as seen by CheckWin.
type Outcome int

const (
	Ongoing Outcome = iota
	ComputerWin
	HumanWin
	Draw
)

func (that Outcome) String() string {
	switch that {
	case ComputerWin:
		return "computer win"
	case HumanWin:
		return "human win"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Engine evaluates boards from the point of view of the computer's mark.
// It keeps no state between calls.
type Engine struct {
	computer entity.Mark
	human    entity.Mark
}

// New binds the computer to the given mark; the human plays its opponent.
func New(computer entity.Mark) *Engine {
	return &Engine{
		computer: computer,
		human:    computer.Opponent(),
	}
}

// Computer returns the mark the engine plays.
func (that *Engine) Computer() entity.Mark {
	return that.computer
}

// Human returns the opponent's mark.
func (that *Engine) Human() entity.Mark {
	return that.human
}

// Evaluate returns +10 when the computer owns a complete line, -10 when the human does, and 0 otherwise.
func (that *Engine) Evaluate(board *entity.Board) int {
	switch board.Winner() {
	case that.computer:
		return winScore
	case that.human:
		return lossScore
	default:
		return drawScore
	}
}

// MovesLeft reports whether any cell is still empty.
func MovesLeft(board *entity.Board) bool {
	return board.HasEmpty()
}

// CheckWin classifies the board. A score of 0 is a draw only once no empty cell remains.
func (that *Engine) CheckWin(board *entity.Board) Outcome {
	switch that.Evaluate(board) {
	case winScore:
		return ComputerWin
	case lossScore:
		return HumanWin
	}

	if !MovesLeft(board) {
		return Draw
	}

	return Ongoing
}
