package engine

const (
	ticTacToeSize   = 3
	ticTacToeWinLen = 3
	ticTacToeCells  = ticTacToeSize * ticTacToeSize
)

// ticTacToeRules implements Rules for the 3x3 game. Positions are cell
// indexes 0..8, row-major.
type ticTacToeRules struct{}

func (ticTacToeRules) GameType() GameType { return TicTacToe }

func (ticTacToeRules) NewBoard() Board {
	return NewBoard(ticTacToeSize, ticTacToeSize)
}

func (ticTacToeRules) IsLegal(b Board, position int, p Player) bool {
	if p != Player1 && p != Player2 {
		return false
	}
	if position < 0 || position >= ticTacToeCells {
		return false
	}
	return b.Cells[position] == PlayerNone
}

func (r ticTacToeRules) Apply(b Board, position int, p Player) (Board, error) {
	if !r.IsLegal(b, position, p) {
		return Board{}, ErrIllegalPosition
	}
	out := b.Clone()
	out.Cells[position] = p
	return out, nil
}

func (ticTacToeRules) Winner(b Board) Player {
	return scanWinner(b, ticTacToeWinLen)
}

func (r ticTacToeRules) IsDraw(b Board) bool {
	return r.Winner(b) == PlayerNone && b.Full()
}
