package apperror

import "errors"

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrTwoPlayersExact = errors.New("exactly two players are required")
)
