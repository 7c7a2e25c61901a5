package engine

import "errors"

// Error kinds of the session engine, transport-agnostic. Handlers map them
// to status codes with errors.Is; messages are wrapped around them with
// fmt.Errorf("%w: ...").
var (
	ErrInvalidArgument   = errors.New("invalid_argument")
	ErrNotFound          = errors.New("not_found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrIllegalMove       = errors.New("illegal_move")
	ErrInvalidState      = errors.New("invalid_state")
	ErrDependency        = errors.New("dependency_failed")
)
