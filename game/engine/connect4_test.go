package engine

import "testing"

func TestConnect4DropLandsOnLowestEmptyRow(t *testing.T) {
	rules, err := RulesFor(Connect4)
	if err != nil {
		t.Fatalf("RulesFor(Connect4) failed: %v", err)
	}

	board := rules.NewBoard()

	board, err = rules.Apply(board, 3, Player1)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if board.At(5, 3) != Player1 {
		t.Errorf("first drop should land on bottom row, board[5][3] = %v", board.At(5, 3))
	}

	board, err = rules.Apply(board, 3, Player2)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if board.At(4, 3) != Player2 {
		t.Errorf("second drop should stack, board[4][3] = %v", board.At(4, 3))
	}
}

func TestConnect4ColumnFull(t *testing.T) {
	rules, _ := RulesFor(Connect4)

	board := rules.NewBoard()
	player := Player1
	for i := 0; i < connect4Rows; i++ {
		next, err := rules.Apply(board, 3, player)
		if err != nil {
			t.Fatalf("drop %d failed: %v", i, err)
		}
		board = next
		player = player.Opponent()
	}

	if rules.IsLegal(board, 3, player) {
		t.Error("seventh drop on a full column should be illegal")
	}
	if _, err := rules.Apply(board, 3, player); err == nil {
		t.Error("Apply on a full column should fail")
	}
	// Other columns stay playable.
	if !rules.IsLegal(board, 2, player) {
		t.Error("adjacent column should still be legal")
	}
}

func TestConnect4ColumnRange(t *testing.T) {
	rules, _ := RulesFor(Connect4)
	board := rules.NewBoard()

	for _, col := range []int{-1, 7, 100} {
		if rules.IsLegal(board, col, Player1) {
			t.Errorf("column %d should be out of range", col)
		}
	}
}

func TestConnect4Winner(t *testing.T) {
	rules, _ := RulesFor(Connect4)

	tests := []struct {
		name    string
		columns []int // alternating drops, Player1 first
		want    Player
	}{
		{"empty board", nil, PlayerNone},
		{"three in a row is not enough", []int{0, 6, 1, 6, 2}, PlayerNone},
		{"horizontal", []int{0, 6, 1, 6, 2, 6, 3}, Player1},
		{"vertical", []int{6, 0, 6, 1, 6, 2}, PlayerNone},
		{"vertical four", []int{6, 0, 6, 1, 6, 2, 6}, Player1},
		{"player2 horizontal", []int{0, 2, 0, 3, 1, 4, 1, 5}, Player2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := rules.NewBoard()
			player := Player1
			for i, col := range tt.columns {
				next, err := rules.Apply(board, col, player)
				if err != nil {
					t.Fatalf("drop %d on column %d failed: %v", i, col, err)
				}
				board = next
				player = player.Opponent()
			}
			if got := rules.Winner(board); got != tt.want {
				t.Errorf("Winner() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConnect4DiagonalWinner(t *testing.T) {
	rules, _ := RulesFor(Connect4)

	// Build a rising diagonal for Player1 at columns 0..3 by stacking
	// filler discs underneath.
	board := rules.NewBoard()
	drops := []struct {
		col    int
		player Player
	}{
		{0, Player1},
		{1, Player2}, {1, Player1},
		{2, Player2}, {2, Player2}, {2, Player1},
		{3, Player2}, {3, Player2}, {3, Player2}, {3, Player1},
	}
	for i, d := range drops {
		next, err := rules.Apply(board, d.col, d.player)
		if err != nil {
			t.Fatalf("drop %d failed: %v", i, err)
		}
		board = next
	}

	if got := rules.Winner(board); got != Player1 {
		t.Errorf("Winner() = %v, want Player1 on the rising diagonal", got)
	}
}

func TestConnect4DrawWhenAllColumnsFull(t *testing.T) {
	rules, _ := RulesFor(Connect4)

	// A full board with 21 discs each and no four in a row anywhere.
	grid := [][]int{
		{1, 1, 2, 1, 2, 2, 2},
		{1, 1, 2, 1, 2, 1, 2},
		{2, 2, 1, 2, 1, 2, 1},
		{2, 2, 1, 2, 1, 1, 1},
		{1, 1, 2, 1, 2, 2, 2},
		{1, 1, 2, 1, 2, 1, 2},
	}
	board := rules.NewBoard()
	for row := 0; row < connect4Rows; row++ {
		for col := 0; col < connect4Cols; col++ {
			board.set(row, col, Player(grid[row][col]))
		}
	}

	if w := rules.Winner(board); w != PlayerNone {
		t.Fatalf("filler pattern should have no winner, got %v", w)
	}
	if !rules.IsDraw(board) {
		t.Error("full board without winner should be a draw")
	}
}

func TestConnect4NotDrawWhileColumnsOpen(t *testing.T) {
	rules, _ := RulesFor(Connect4)
	board, err := rules.Apply(rules.NewBoard(), 0, Player1)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if rules.IsDraw(board) {
		t.Error("board with open columns should not be a draw")
	}
}
