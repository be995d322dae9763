package tictactoe

import (
	"math"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// NoMove is returned by FindBestMove when the board has no empty cell.
const NoMove = -1

// Minimax scores the board for the side to move. Wins are worth 10 minus the depth they are reached at,
// losses -10 plus the depth, so faster wins and slower losses are preferred.
// Every trial mark is removed again before returning.
func (that *Engine) Minimax(board *entity.Board, depth int, maximizing bool) int {
	switch score := that.Evaluate(board); score {
	case winScore:
		return score - depth
	case lossScore:
		return score + depth
	}

	if !MovesLeft(board) {
		return drawScore
	}

	mark, best := that.human, math.MaxInt
	if maximizing {
		mark, best = that.computer, math.MinInt
	}

	for cell := range board {
		if board[cell] != entity.Empty {
			continue
		}

		board[cell] = mark
		score := that.Minimax(board, depth+1, !maximizing)
		board[cell] = entity.Empty

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}

// FindBestMove returns the cell with the highest minimax score for the computer.
// Ties go to the lowest index. NoMove is returned for a full board.
func (that *Engine) FindBestMove(board *entity.Board) int {
	bestMove, bestScore := NoMove, math.MinInt

	for cell := range board {
		if board[cell] != entity.Empty {
			continue
		}

		board[cell] = that.computer
		score := that.Minimax(board, 0, false)
		board[cell] = entity.Empty

		if score > bestScore {
			bestMove, bestScore = cell, score
		}
	}

	return bestMove
}
