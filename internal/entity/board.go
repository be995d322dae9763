package entity

import (
	"errors"
	"fmt"
)

// Mark is the content of a single board cell.
type Mark uint8

const (
	Empty Mark = iota
	PlayerX
	PlayerO
)

// PlayerTie is stored as the game winner when the board fills up without a line.
const PlayerTie = "-"

var ErrInvalidMark = errors.New("invalid mark")

// WinCombos lists every line of three cells: rows, columns, then diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func (that Mark) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other player's mark. Empty has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	mark, err := ParseMark(string(text))
	if err != nil {
		return err
	}

	*that = mark

	return nil
}

func ParseMark(value string) (Mark, error) {
	switch value {
	case "":
		return Empty, nil
	case "X":
		return PlayerX, nil
	case "O":
		return PlayerO, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrInvalidMark, value)
	}
}

// Board is a 3x3 grid in row-major order: index = row*3 + col.
type Board [9]Mark

// Winner returns the mark occupying a complete line, or Empty when there is none.
func (that *Board) Winner() Mark {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != Empty && a == b && b == c {
			return a
		}
	}

	return Empty
}

func (that *Board) HasEmpty() bool {
	for _, cell := range that {
		if cell == Empty {
			return true
		}
	}

	return false
}

func (that *Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == Empty {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that *Board) Count(mark Mark) int {
	var count int
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}
