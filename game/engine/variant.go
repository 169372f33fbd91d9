package engine

import (
	"errors"
	"fmt"
)

// GameType tags a rule variant. The tag is chosen at session creation and
// selects the rule set for every later call.
type GameType string

const (
	TicTacToe GameType = "tictactoe"
	Connect4  GameType = "connect4"
)

var (
	ErrUnknownGameType = errors.New("unknown game type")
	ErrIllegalPosition = errors.New("illegal position")
)

// Rules is the full contract of one game variant. Implementations are
// stateless; a board goes in and an answer (or a new board) comes out.
type Rules interface {
	// GameType returns the tag this rule set is registered under.
	GameType() GameType

	// NewBoard returns the variant's empty starting board.
	NewBoard() Board

	// IsLegal reports whether the given player may mark position on board.
	// The position unit is variant-specific: a cell index for Tic-Tac-Toe,
	// a column index for Connect-4.
	IsLegal(b Board, position int, p Player) bool

	// Apply returns a new board with the mark placed. It never mutates the
	// input board and fails with ErrIllegalPosition on an illegal move.
	Apply(b Board, position int, p Player) (Board, error)

	// Winner returns the player with a completed line, or PlayerNone.
	Winner(b Board) Player

	// IsDraw reports whether no winner exists and no legal moves remain.
	IsDraw(b Board) bool
}

var variants = map[GameType]Rules{
	TicTacToe: ticTacToeRules{},
	Connect4:  connect4Rules{},
}

// RulesFor looks up the rule set for a game type tag.
func RulesFor(gt GameType) (Rules, error) {
	rules, ok := variants[gt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, gt)
	}
	return rules, nil
}

// GameTypes lists the registered variant tags.
func GameTypes() []GameType {
	return []GameType{TicTacToe, Connect4}
}

// ParseGameType validates a tag coming off the wire.
func ParseGameType(s string) (GameType, error) {
	gt := GameType(s)
	if _, ok := variants[gt]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGameType, s)
	}
	return gt, nil
}
