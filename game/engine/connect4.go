package engine

const (
	connect4Rows   = 6
	connect4Cols   = 7
	connect4WinLen = 4
)

// connect4Rules implements Rules for the 6x7 drop game. Positions are
// column indexes 0..6; the landing row is derived at apply time as the
// lowest empty cell in the column, never supplied by the caller.
type connect4Rules struct{}

func (connect4Rules) GameType() GameType { return Connect4 }

func (connect4Rules) NewBoard() Board {
	return NewBoard(connect4Rows, connect4Cols)
}

func (connect4Rules) IsLegal(b Board, position int, p Player) bool {
	if p != Player1 && p != Player2 {
		return false
	}
	if position < 0 || position >= connect4Cols {
		return false
	}
	// The column has room iff its top cell is empty.
	return b.At(0, position) == PlayerNone
}

func (r connect4Rules) Apply(b Board, position int, p Player) (Board, error) {
	if !r.IsLegal(b, position, p) {
		return Board{}, ErrIllegalPosition
	}
	out := b.Clone()
	row := dropRow(out, position)
	out.set(row, position, p)
	return out, nil
}

func (connect4Rules) Winner(b Board) Player {
	return scanWinner(b, connect4WinLen)
}

func (r connect4Rules) IsDraw(b Board) bool {
	if r.Winner(b) != PlayerNone {
		return false
	}
	for col := 0; col < b.Cols; col++ {
		if b.At(0, col) == PlayerNone {
			return false
		}
	}
	return true
}

// dropRow returns the lowest empty row in the column, or -1 if full.
func dropRow(b Board, col int) int {
	for row := b.Rows - 1; row >= 0; row-- {
		if b.At(row, col) == PlayerNone {
			return row
		}
	}
	return -1
}
