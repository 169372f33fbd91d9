// Package engine implements the board rules for the supported game
// variants. Everything in this package is pure: rules take a board and
// return answers (or a new board) without touching any shared state, so
// they are safe to call speculatively from validation paths.
package engine
