package entity

const (
	BoardSize = 3

	PlayerX = "X"
	PlayerO = "O"

	ResultDraw = "draw"

	EmptyCell = ""
)

// Cell is a board coordinate as [row, col].
type Cell [2]int

// Board is the 3x3 grid. Cells hold PlayerX, PlayerO or EmptyCell.
type Board [BoardSize][BoardSize]string

// winLines enumerates rows, then columns, then both diagonals, so the
// reported winning line coordinates are stable.
var winLines = [][3]Cell{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Evaluate returns the terminal result of the board: PlayerX or PlayerO with
// the winning line, ResultDraw once every cell is filled, or an empty string
// while the game continues.
func (that *Board) Evaluate() (string, []Cell) {
	for _, line := range winLines {
		a := that[line[0][0]][line[0][1]]
		b := that[line[1][0]][line[1][1]]
		c := that[line[2][0]][line[2][1]]

		if a != EmptyCell && a == b && b == c {
			return a, []Cell{line[0], line[1], line[2]}
		}
	}

	for row := range that {
		for col := range that[row] {
			if that[row][col] == EmptyCell {
				return "", nil
			}
		}
	}

	return ResultDraw, nil
}

// Legal reports whether a move at the given coordinates is possible.
func (that *Board) Legal(row, col int) bool {
	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return false
	}

	return that[row][col] == EmptyCell
}

// InBounds reports whether the coordinates address a cell at all.
func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// ToggleMark returns the opposite mark.
func ToggleMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
