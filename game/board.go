package game

import (
	"fmt"
	"strings"
)

// Mark is the content of a tic-tac-toe square.
type Mark uint8

const (
	Empty Mark = iota
	Cross
	Nought
)

func (m Mark) Opponent() Mark {
	switch m {
	case Cross:
		return Nought
	case Nought:
		return Cross
	default:
		return Empty
	}
}

func (m Mark) String() string {
	switch m {
	case Cross:
		return "x"
	case Nought:
		return "o"
	default:
		return "."
	}
}

// Square indexes the board row by row from a1 (0) to c3 (8).
type Square uint8

const NumSquares = 9

func (s Square) String() string {
	return fmt.Sprintf("%c%c", 'a'+byte(s%3), '1'+byte(s/3))
}

// ParseSquare reads a square in "b2" notation.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'c' || s[1] < '1' || s[1] > '3' {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	return Square((s[1]-'1')*3 + (s[0] - 'a')), nil
}

var lines = [8][3]Square{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is an immutable tic-tac-toe position. Cross always moves first.
type Board struct {
	cells  [NumSquares]Mark
	toMove Mark
	plies  uint8
}

func NewBoard() Board {
	return Board{toMove: Cross}
}

// ParseBoard reads rows from a1 upwards separated by '/', e.g. "x.o/.x./...".
// The side to move is derived from the piece counts.
func ParseBoard(s string) (Board, error) {
	rows := strings.Split(s, "/")
	if len(rows) != 3 {
		return Board{}, fmt.Errorf("board %q: expected 3 rows, got %d", s, len(rows))
	}

	b := NewBoard()
	crosses, noughts := 0, 0
	for r, row := range rows {
		if len(row) != 3 {
			return Board{}, fmt.Errorf("board %q: row %d has %d squares", s, r+1, len(row))
		}
		for c, ch := range row {
			sq := r*3 + c
			switch ch {
			case 'x', 'X':
				b.cells[sq] = Cross
				crosses++
			case 'o', 'O':
				b.cells[sq] = Nought
				noughts++
			case '.', '-':
			default:
				return Board{}, fmt.Errorf("board %q: unexpected character %q", s, ch)
			}
		}
	}

	switch crosses - noughts {
	case 0:
		b.toMove = Cross
	case 1:
		b.toMove = Nought
	default:
		return Board{}, fmt.Errorf("board %q: %d crosses and %d noughts cannot occur", s, crosses, noughts)
	}
	b.plies = uint8(crosses + noughts)
	return b, nil
}

func (b Board) ToMove() Mark {
	return b.toMove
}

func (b Board) Plies() int {
	return int(b.plies)
}

func (b Board) At(sq Square) Mark {
	return b.cells[sq]
}

// Winner returns the mark that completed a line, if any.
func (b Board) Winner() (Mark, bool) {
	for _, line := range lines {
		m := b.cells[line[0]]
		if m != Empty && m == b.cells[line[1]] && m == b.cells[line[2]] {
			return m, true
		}
	}
	return Empty, false
}

func (b Board) Full() bool {
	return b.plies == NumSquares
}

func (b Board) EmptySquares() []Square {
	squares := make([]Square, 0, NumSquares-int(b.plies))
	for sq := Square(0); sq < NumSquares; sq++ {
		if b.cells[sq] == Empty {
			squares = append(squares, sq)
		}
	}
	return squares
}

// Play returns the board after the side to move marks sq.
func (b Board) Play(sq Square) (Board, error) {
	if sq >= NumSquares {
		return b, fmt.Errorf("square %d is off the board", sq)
	}
	if _, over := b.Winner(); over || b.Full() {
		return b, fmt.Errorf("cannot play %v: game is over", sq)
	}
	if b.cells[sq] != Empty {
		return b, fmt.Errorf("cannot play %v: square is taken", sq)
	}

	b.cells[sq] = b.toMove
	b.toMove = b.toMove.Opponent()
	b.plies++
	return b, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < 3; c++ {
			sb.WriteString(b.cells[r*3+c].String())
		}
	}
	return sb.String()
}
