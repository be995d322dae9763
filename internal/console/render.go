package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

var ruleLine = strings.Repeat("#", 44) + "\n"

func writeRule(w io.Writer) {
	fmt.Fprint(w, ruleLine)
}

// writeBanner prints text between two rule lines.
func writeBanner(w io.Writer, text string) {
	writeRule(w)
	fmt.Fprint(w, text)
	writeRule(w)
}

// RenderBoard draws the board as three rows separated by ---+---+---.
func RenderBoard(w io.Writer, board *entity.Board) {
	fmt.Fprint(w, "\n")
	writeRule(w)

	for row := 0; row < 3; row++ {
		fmt.Fprintf(w, " %s | %s | %s \n", cellSymbol(board[row*3]), cellSymbol(board[row*3+1]), cellSymbol(board[row*3+2]))
		if row < 2 {
			fmt.Fprint(w, "---+---+---\n")
		}
	}

	writeRule(w)
	fmt.Fprint(w, "\n")
}

func cellSymbol(mark entity.Mark) string {
	if mark == entity.Empty {
		return " "
	}

	return mark.String()
}
