package service

import "fmt"

// Error codes surfaced to clients in error events.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeNotAPlayer         = "NOT_A_PLAYER"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeGameOver           = "GAME_OVER"
	CodeIllegalMove        = "ILLEGAL_MOVE"
	CodeAlreadyQueued      = "ALREADY_QUEUED"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
)

// Error is a domain error carrying the wire code delivered to the
// offending caller. Two Errors match under errors.Is when their codes
// match, so handlers can branch on the sentinel values below.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "session not found"}
	ErrNotAPlayer         = &Error{Code: CodeNotAPlayer, Message: "caller is not a player in this session"}
	ErrNotYourTurn        = &Error{Code: CodeNotYourTurn, Message: "not your turn"}
	ErrGameOver           = &Error{Code: CodeGameOver, Message: "session is no longer active"}
	ErrIllegalMove        = &Error{Code: CodeIllegalMove, Message: "illegal move"}
	ErrAlreadyQueued      = &Error{Code: CodeAlreadyQueued, Message: "already waiting in this queue"}
	ErrPersistenceFailure = &Error{Code: CodePersistenceFailure, Message: "failed to persist; safe to retry"}
)

// persistenceError wraps a storage failure so the caller sees the
// PERSISTENCE_FAILURE code with the underlying cause attached.
func persistenceError(err error) *Error {
	return &Error{
		Code:    CodePersistenceFailure,
		Message: "failed to persist; safe to retry",
		cause:   err,
	}
}
