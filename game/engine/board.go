package engine

import "encoding/json"

// Player identifies one of the two seats in a session. PlayerNone marks
// an empty cell or "no winner".
type Player int

const (
	PlayerNone Player = 0
	Player1    Player = 1
	Player2    Player = 2
)

// Opponent returns the other seat.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return PlayerNone
}

// Board is a rectangular grid of cells. Cells hold the Player that marked
// them, row-major with row 0 at the top.
type Board struct {
	Rows  int
	Cols  int
	Cells []Player
}

// NewBoard returns an empty board of the given dimensions.
func NewBoard(rows, cols int) Board {
	return Board{
		Rows:  rows,
		Cols:  cols,
		Cells: make([]Player, rows*cols),
	}
}

// At returns the mark at (row, col). Out-of-range coordinates read as empty.
func (b Board) At(row, col int) Player {
	if row < 0 || row >= b.Rows || col < 0 || col >= b.Cols {
		return PlayerNone
	}
	return b.Cells[row*b.Cols+col]
}

// set writes a mark at (row, col). Caller guarantees the range.
func (b Board) set(row, col int, p Player) {
	b.Cells[row*b.Cols+col] = p
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := Board{Rows: b.Rows, Cols: b.Cols, Cells: make([]Player, len(b.Cells))}
	copy(out.Cells, b.Cells)
	return out
}

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
	for _, c := range b.Cells {
		if c == PlayerNone {
			return false
		}
	}
	return true
}

// Grid returns the board as a row-major [][]int, the shape used on the wire
// and in persisted records.
func (b Board) Grid() [][]int {
	grid := make([][]int, b.Rows)
	for r := 0; r < b.Rows; r++ {
		row := make([]int, b.Cols)
		for c := 0; c < b.Cols; c++ {
			row[c] = int(b.At(r, c))
		}
		grid[r] = row
	}
	return grid
}

// MarshalJSON encodes the board as its grid form.
func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Grid())
}

// UnmarshalJSON decodes a grid back into a board.
func (b *Board) UnmarshalJSON(data []byte) error {
	var grid [][]int
	if err := json.Unmarshal(data, &grid); err != nil {
		return err
	}
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}
	out := NewBoard(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols && c < len(grid[r]); c++ {
			out.set(r, c, Player(grid[r][c]))
		}
	}
	*b = out
	return nil
}

// lineDirections are the four scan directions that cover every row, column
// and both diagonals when walked from each cell.
var lineDirections = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// scanWinner walks every cell in every direction looking for winLen equal
// consecutive non-empty marks. The first line found decides.
func scanWinner(b Board, winLen int) Player {
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			mark := b.At(r, c)
			if mark == PlayerNone {
				continue
			}
			for _, d := range lineDirections {
				count := 1
				nr, nc := r+d[0], c+d[1]
				for b.At(nr, nc) == mark {
					count++
					if count >= winLen {
						return mark
					}
					nr += d[0]
					nc += d[1]
				}
			}
		}
	}
	return PlayerNone
}
