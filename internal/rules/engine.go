package rules

import (
	"github.com/corentings/chess/v2"

	"github.com/llmarena/chessmatch-backend/internal/entity"
)

// Engine is a thin wrapper around a single chess rules engine instance. It is
// not safe for use across games: the registry hands out one Engine per game.
type Engine struct {
	game *chess.Game
}

func NewEngine() *Engine {
	return &Engine{game: chess.NewGame()}
}

// ApplyMove - tries to apply a move token in algebraic notation. Returns
// false and leaves the position untouched when the move is illegal.
func (that *Engine) ApplyMove(token string) bool {
	err := that.game.PushNotationMove(token, chess.AlgebraicNotation{}, nil)
	return err == nil
}

// FEN - serializes the current position.
func (that *Engine) FEN() string {
	return that.game.FEN()
}

// IsTerminal - reports whether the game has reached a rules-terminal state.
func (that *Engine) IsTerminal() bool {
	return that.game.Outcome() != chess.NoOutcome
}

// TerminalStatus - maps the engine's outcome to a game status. Only
// meaningful once IsTerminal reports true.
func (that *Engine) TerminalStatus() string {
	switch that.game.Method() {
	case chess.Checkmate:
		return entity.StatusCheckmate
	case chess.Stalemate:
		return entity.StatusStalemate
	default:
		if that.game.Outcome() == chess.WhiteWon || that.game.Outcome() == chess.BlackWon {
			return entity.StatusCheckmate
		}
		return entity.StatusDraw
	}
}

// Reset - returns the engine to the starting position.
func (that *Engine) Reset() {
	that.game = chess.NewGame()
}
